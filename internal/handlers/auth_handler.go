package handlers

import (
	"tushare/internal/middleware"
	"tushare/internal/services"
	"tushare/internal/utils"
	"tushare/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	userService services.UserService
	logger      *logger.Logger
}

func NewAuthHandler(authService services.AuthService, userService services.UserService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		logger:      log,
	}
}

// Signup handles POST /auth/signup. The body is a multipart form with
// an optional profile_image file part.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequestResponse(c, "invalid signup payload")
		return
	}

	if fileHeader, err := c.FormFile("profile_image"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			utils.BadRequestResponse(c, "could not read profile image")
			return
		}
		defer file.Close()

		key, err := h.userService.UploadProfileImage(c.Request.Context(), file, fileHeader.Filename)
		if err != nil {
			respondServiceError(c, h.logger, err)
			return
		}
		req.ProfileImage = key
	}

	user, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		// The avatar was stored before the account existed. Clean it up
		// so a rejected signup leaves nothing behind.
		if req.ProfileImage != "" {
			if rmErr := h.userService.RemoveProfileImage(c.Request.Context(), req.ProfileImage); rmErr != nil {
				h.logger.WithError(rmErr).Warn("Failed to remove orphaned profile image")
			}
		}
		respondServiceError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "account created, check your email for a verification link", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequestResponse(c, "invalid login payload")
		return
	}

	pair, user, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "logged in", gin.H{
		"tokens": pair,
		"user":   user,
	})
}

// Logout revokes the presented access token. Other sessions keep their
// own tokens.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, err := middleware.GetClaims(c)
	if err != nil {
		utils.UnauthorizedResponse(c, "not authenticated")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims.ID); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "logged out", nil)
}

// RefreshToken handles GET /auth/refresh-token. The auth gate has
// already required a refresh-type bearer here.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	claims, err := middleware.GetClaims(c)
	if err != nil {
		utils.UnauthorizedResponse(c, "not authenticated")
		return
	}

	accessToken, err := h.authService.RefreshAccessToken(c.Request.Context(), claims)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "token refreshed", gin.H{
		"access_token": accessToken,
		"token_type":   "Bearer",
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, "not authenticated")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "", user)
}

type emailRequest struct {
	Email string `json:"email" form:"email" binding:"required"`
}

func (h *AuthHandler) RequestVerificationLink(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequestResponse(c, "email is required")
		return
	}

	if err := h.authService.RequestVerificationLink(c.Request.Context(), req.Email); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "verification link sent", nil)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Param("token")

	user, err := h.authService.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "email verified", gin.H{
		"username":    user.Username,
		"is_verified": user.IsVerified,
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequestResponse(c, "email is required")
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "password reset link sent", nil)
}

type confirmResetRequest struct {
	Password        string `json:"password" form:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" binding:"required"`
}

func (h *AuthHandler) ConfirmResetPassword(c *gin.Context) {
	var req confirmResetRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequestResponse(c, "password and confirmation are required")
		return
	}

	token := c.Param("token")

	if err := h.authService.ConfirmPasswordReset(c.Request.Context(), token, req.Password, req.ConfirmPassword); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "password updated", nil)
}
