package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tushare/internal/config"
	"tushare/internal/models"
	"tushare/internal/repositories/interfaces"
	"tushare/internal/utils"
	"tushare/pkg/logger"
)

const (
	verifyTokenSalt = "email-configuration"
	resetTokenSalt  = "password-reset"
)

type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*utils.TokenPair, *models.User, error)
	RefreshAccessToken(ctx context.Context, claims *utils.AuthClaims) (string, error)
	Logout(ctx context.Context, jti string) error

	RequestVerificationLink(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, token string) (*models.User, error)

	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, password, confirmPassword string) error
}

type SignupRequest struct {
	FirstName    string          `form:"first_name" validate:"required,min=2,max=50"`
	LastName     string          `form:"last_name" validate:"required,min=2,max=50"`
	Username     string          `form:"username" validate:"required,username"`
	Email        string          `form:"email" validate:"required,email"`
	MobileNumber string          `form:"mobile_number" validate:"required,mobile"`
	Password     string          `form:"password" validate:"required,strong_password"`
	Gender       string          `form:"gender" validate:"omitempty,oneof=male female other"`
	Role         models.UserRole `form:"role" validate:"required,oneof=passenger driver"`
	Bio          string          `form:"bio" validate:"omitempty,max=500"`
	ProfileImage string          `form:"-"`
}

type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email" form:"username_or_email" validate:"required"`
	Password        string `json:"password" form:"password" validate:"required"`
}

type authService struct {
	userRepo    interfaces.UserRepository
	blacklist   TokenBlacklist
	email       EmailService
	verifyCodec *utils.URLTokenCodec
	resetCodec  *utils.URLTokenCodec
	config      *config.Config
	logger      *logger.Logger
}

func NewAuthService(
	userRepo interfaces.UserRepository,
	blacklist TokenBlacklist,
	email EmailService,
	cfg *config.Config,
	log *logger.Logger,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		blacklist:   blacklist,
		email:       email,
		verifyCodec: utils.NewURLTokenCodec(cfg.Security.URLTokenSecret, verifyTokenSalt, cfg.Security.URLTokenMaxAge),
		resetCodec:  utils.NewURLTokenCodec(cfg.Security.URLTokenSecret, resetTokenSalt, cfg.Security.URLTokenMaxAge),
		config:      cfg,
		logger:      log,
	}
}

func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("signup validation failed: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Uniqueness pre-checks give precise conflicts. The unique indexes
	// still back this up against a concurrent duplicate signup.
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profileImage := req.ProfileImage
	if profileImage == "" {
		profileImage = models.DefaultProfileImage
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		Email:        email,
		MobileNumber: req.MobileNumber,
		Password:     hash,
		Gender:       req.Gender,
		Bio:          req.Bio,
		Role:         req.Role,
		ProfileImage: profileImage,
		IsActive:     true,
		IsVerified:   false,
		DateJoined:   time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.sendVerificationLink(ctx, user); err != nil {
		// Signup already committed; the user can request a new link.
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to queue verification email")
	}

	s.logger.WithUserID(user.ID).WithField("username", user.Username).Info("User signed up")

	return user, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*utils.TokenPair, *models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, nil, fmt.Errorf("login validation failed: %w", err)
	}

	user, err := s.findByUsernameOrEmail(ctx, req.UsernameOrEmail)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := utils.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.config.Security.JWTAccessTokenTTL,
		s.config.Security.JWTRefreshTokenTTL,
		s.config.Security.JWTSecret,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to record last login")
	}

	s.logger.WithUserID(user.ID).Info("User logged in")

	return pair, user, nil
}

func (s *authService) RefreshAccessToken(ctx context.Context, claims *utils.AuthClaims) (string, error) {
	if !claims.Refresh {
		return "", ErrRefreshTokenRequired
	}

	// The user may have been deleted or demoted since the refresh token
	// was issued, so claims are re-derived from the stored record.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	return utils.GenerateToken(
		user.ID,
		user.Email,
		string(user.Role),
		false,
		s.config.Security.JWTAccessTokenTTL,
		s.config.Security.JWTSecret,
	)
}

func (s *authService) Logout(ctx context.Context, jti string) error {
	return s.blacklist.Revoke(ctx, jti)
}

func (s *authService) RequestVerificationLink(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	return s.sendVerificationLink(ctx, user)
}

func (s *authService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	email, err := s.verifyCodec.Verify(token)
	if err != nil {
		if errors.Is(err, utils.ErrURLTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if email == "" {
		return nil, ErrTokenMissingEmail
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsVerified {
		if err := s.userRepo.SetVerified(ctx, user.ID, true); err != nil {
			return nil, fmt.Errorf("failed to mark user verified: %w", err)
		}
		user.IsVerified = true
		s.logger.WithUserID(user.ID).Info("User verified email")
	}

	return user, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	token := s.resetCodec.Sign(user.Email)
	link := fmt.Sprintf("%s/auth/confirm-reset-password/%s", s.config.App.BaseURL, token)

	return s.email.SendPasswordResetEmail(ctx, user.Email, user.FirstName, link)
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, token, password, confirmPassword string) error {
	if len(password) < utils.PasswordMinLength {
		return ErrPasswordTooShort
	}
	if password != confirmPassword {
		return ErrPasswordsDontMatch
	}

	email, err := s.resetCodec.Verify(token)
	if err != nil {
		if errors.Is(err, utils.ErrURLTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.Update(ctx, user.ID, map[string]interface{}{"password": hash}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.WithUserID(user.ID).Info("User reset password")

	return nil
}

func (s *authService) sendVerificationLink(ctx context.Context, user *models.User) error {
	token := s.verifyCodec.Sign(user.Email)
	link := fmt.Sprintf("%s/auth/verify/%s", s.config.App.BaseURL, token)

	return s.email.SendVerificationEmail(ctx, user.Email, user.FirstName, link)
}

func (s *authService) findByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*models.User, error) {
	if strings.Contains(usernameOrEmail, "@") {
		return s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(usernameOrEmail)))
	}
	return s.userRepo.GetByUsername(ctx, usernameOrEmail)
}
