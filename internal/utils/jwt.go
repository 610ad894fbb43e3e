package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrExpiredToken = errors.New("token expired")
	ErrBadToken     = errors.New("invalid token")
)

// AuthClaims is the payload carried by both access and refresh tokens.
// The two differ only in the Refresh flag and their lifetime. The jti
// (RegisteredClaims.ID) is what the blacklist revokes.
type AuthClaims struct {
	UserID  primitive.ObjectID `json:"user"`
	Email   string             `json:"email"`
	Role    string             `json:"role"`
	Refresh bool               `json:"refresh"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

func GenerateToken(userID primitive.ObjectID, email, role string, refresh bool, ttl time.Duration, secretKey string) (string, error) {
	now := time.Now()
	claims := &AuthClaims{
		UserID:  userID,
		Email:   email,
		Role:    role,
		Refresh: refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    AppName,
			Subject:   userID.Hex(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

func GenerateTokenPair(userID primitive.ObjectID, email, role string, accessTTL, refreshTTL time.Duration, secretKey string) (*TokenPair, error) {
	accessToken, err := GenerateToken(userID, email, role, false, accessTTL, secretKey)
	if err != nil {
		return nil, err
	}

	refreshToken, err := GenerateToken(userID, email, role, true, refreshTTL, secretKey)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(accessTTL.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

func VerifyToken(tokenString, secretKey string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrBadToken
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrBadToken
	}

	if claims.ID == "" || claims.UserID.IsZero() {
		return nil, ErrBadToken
	}

	return claims, nil
}
