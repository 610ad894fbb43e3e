package middleware

import (
	"strings"

	"tushare/internal/models"
	"tushare/internal/repositories/interfaces"
	"tushare/internal/services"
	"tushare/internal/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth gate.
const (
	ContextUserID = "user_id"
	ContextClaims = "claims"
	ContextJTI    = "jti"
	ContextRole   = "role"
)

// AuthGate is the single authentication gate for the API. Requests to
// allow-listed path prefixes pass through untouched. Everything else
// must present a bearer token that verifies, matches the expected type
// for the route, and has not been revoked.
type AuthGate struct {
	secret          string
	blacklist       services.TokenBlacklist
	allowPrefixes   []string
	refreshPrefixes []string
}

func NewAuthGate(secret string, blacklist services.TokenBlacklist) *AuthGate {
	return &AuthGate{
		secret:    secret,
		blacklist: blacklist,
		allowPrefixes: []string{
			"/auth/login",
			"/auth/signup",
			"/auth/request-verification-link",
			"/auth/verify",
			"/auth/reset-password",
			"/auth/confirm-reset-password",
			"/health",
			"/media",
			"/docs",
		},
		refreshPrefixes: []string{
			"/auth/refresh-token",
		},
	}
}

func (g *AuthGate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if g.isAllowed(path) {
			c.Next()
			return
		}

		claims, ok := g.authenticate(c)
		if !ok {
			return
		}

		if g.wantsRefresh(path) {
			if !claims.Refresh {
				utils.ErrorResponse(c, 401, "REFRESH_TOKEN_REQUIRED", services.ErrRefreshTokenRequired.Error())
				c.Abort()
				return
			}
		} else if claims.Refresh {
			utils.ErrorResponse(c, 403, "ACCESS_TOKEN_REQUIRED", services.ErrAccessTokenRequired.Error())
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextClaims, claims)
		c.Set(ContextJTI, claims.ID)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

func (g *AuthGate) authenticate(c *gin.Context) (*utils.AuthClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		utils.UnauthorizedResponse(c, "not authenticated")
		c.Abort()
		return nil, false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		utils.UnauthorizedResponse(c, "bearer token required")
		c.Abort()
		return nil, false
	}

	claims, err := utils.VerifyToken(tokenString, g.secret)
	if err != nil {
		if err == utils.ErrExpiredToken {
			utils.ErrorResponse(c, 401, "TOKEN_EXPIRED", services.ErrTokenExpired.Error())
		} else {
			utils.ErrorResponse(c, 401, "INVALID_TOKEN", services.ErrInvalidToken.Error())
		}
		c.Abort()
		return nil, false
	}

	revoked, err := g.blacklist.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		c.Abort()
		return nil, false
	}
	if revoked {
		utils.ErrorResponse(c, 401, "TOKEN_REVOKED", services.ErrTokenRevoked.Error())
		c.Abort()
		return nil, false
	}

	return claims, true
}

func (g *AuthGate) isAllowed(path string) bool {
	for _, prefix := range g.allowPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (g *AuthGate) wantsRefresh(path string) bool {
	for _, prefix := range g.refreshPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// RoleRequired guards a route group to verified users holding one of the
// given roles. Verification is checked against the stored record, not
// the token, so a user verified after login is let through.
func RoleRequired(userRepo interfaces.UserRepository, roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := GetUserID(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "not authenticated")
			c.Abort()
			return
		}

		user, lookupErr := userRepo.GetByID(c.Request.Context(), userID)
		if lookupErr != nil {
			utils.UnauthorizedResponse(c, "not authenticated")
			c.Abort()
			return
		}

		if !user.IsVerified {
			utils.ForbiddenResponse(c, services.ErrAccountNotVerified.Error())
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		utils.ForbiddenResponse(c, services.ErrPermissionRequired.Error())
		c.Abort()
	}
}
