package handlers

import (
	"strings"

	"tushare/internal/middleware"
	"tushare/internal/services"
	"tushare/internal/utils"
	"tushare/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserHandler struct {
	userService services.UserService
	logger      *logger.Logger
}

func NewUserHandler(userService services.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      log,
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
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

// UpdateProfile handles PUT /profile/:id/edit. Users may only edit their
// own profile; the path id exists for compatibility and must match the
// authenticated user.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, "not authenticated")
		return
	}

	pathID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid user id")
		return
	}
	if pathID != userID {
		utils.ForbiddenResponse(c, services.ErrPermissionRequired.Error())
		return
	}

	var patch services.ProfileUpdate
	if err := c.ShouldBind(&patch); err != nil {
		utils.BadRequestResponse(c, "invalid profile payload")
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
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
			patch.ProfileImage = &key
		}
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &patch)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "profile updated", user)
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, "not authenticated")
		return
	}

	if err := h.userService.Delete(c.Request.Context(), userID); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.NoContentResponse(c)
}
