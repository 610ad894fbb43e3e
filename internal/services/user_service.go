package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"tushare/internal/models"
	"tushare/internal/repositories/interfaces"
	"tushare/internal/utils"
	"tushare/pkg/logger"
	"tushare/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, patch *ProfileUpdate) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	UploadProfileImage(ctx context.Context, file multipart.File, filename string) (string, error)
	RemoveProfileImage(ctx context.Context, key string) error
}

// ProfileUpdate is a partial update. Nil fields are left untouched; each
// non-nil field is merged explicitly so only known attributes can change.
type ProfileUpdate struct {
	FirstName       *string `json:"first_name" form:"first_name" validate:"omitempty,min=2,max=50"`
	LastName        *string `json:"last_name" form:"last_name" validate:"omitempty,min=2,max=50"`
	Gender          *string `json:"gender" form:"gender" validate:"omitempty,oneof=male female other"`
	Bio             *string `json:"bio" form:"bio" validate:"omitempty,max=500"`
	MobileNumber    *string `json:"mobile_number" form:"mobile_number" validate:"omitempty,mobile"`
	FacebookHandle  *string `json:"facebook_handle" form:"facebook_handle" validate:"omitempty,max=30"`
	InstagramHandle *string `json:"instagram_handle" form:"instagram_handle" validate:"omitempty,max=30"`
	TwitterHandle   *string `json:"twitter_handle" form:"twitter_handle" validate:"omitempty,max=30"`
	WorkAddress     *string `json:"work_address" form:"work_address" validate:"omitempty,max=200"`
	HomeAddress     *string `json:"home_address" form:"home_address" validate:"omitempty,max=200"`
	ProfileImage    *string `json:"-" form:"-"`
}

type userService struct {
	userRepo interfaces.UserRepository
	storage  storage.Provider
	logger   *logger.Logger
}

func NewUserService(userRepo interfaces.UserRepository, storageProvider storage.Provider, log *logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		storage:  storageProvider,
		logger:   log,
	}
}

func (s *userService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id primitive.ObjectID, patch *ProfileUpdate) (*models.User, error) {
	if err := utils.ValidateStruct(patch); err != nil {
		return nil, fmt.Errorf("profile validation failed: %w", err)
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if patch.FirstName != nil {
		updates["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		updates["last_name"] = *patch.LastName
	}
	if patch.Gender != nil {
		updates["gender"] = *patch.Gender
	}
	if patch.Bio != nil {
		updates["bio"] = *patch.Bio
	}
	if patch.MobileNumber != nil && *patch.MobileNumber != user.MobileNumber {
		other, err := s.userRepo.GetByMobileNumber(ctx, *patch.MobileNumber)
		if err == nil && other.ID != id {
			return nil, ErrMobileNumberTaken
		} else if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			return nil, fmt.Errorf("failed to check mobile number: %w", err)
		}
		updates["mobile_number"] = *patch.MobileNumber
	}
	if patch.FacebookHandle != nil {
		updates["facebook_handle"] = *patch.FacebookHandle
	}
	if patch.InstagramHandle != nil {
		updates["instagram_handle"] = *patch.InstagramHandle
	}
	if patch.TwitterHandle != nil {
		updates["twitter_handle"] = *patch.TwitterHandle
	}
	if patch.WorkAddress != nil {
		updates["work_address"] = *patch.WorkAddress
	}
	if patch.HomeAddress != nil {
		updates["home_address"] = *patch.HomeAddress
	}
	if patch.ProfileImage != nil {
		updates["profile_image"] = *patch.ProfileImage
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.userRepo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, ErrMobileNumberTaken
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.WithUserID(id).Info("Profile updated")

	return s.GetByID(ctx, id)
}

func (s *userService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.WithUserID(id).Info("User deleted")

	return nil
}

// UploadProfileImage validates, resizes and stores an avatar, returning
// the storage key to persist on the user record.
func (s *userService) UploadProfileImage(ctx context.Context, file multipart.File, filename string) (string, error) {
	if err := utils.ValidateImageUpload(file, filename); err != nil {
		return "", fmt.Errorf("invalid profile image: %w", err)
	}

	img, err := utils.ResizeProfileImage(file, filename, utils.ProfileImageDimension)
	if err != nil {
		return "", fmt.Errorf("failed to process profile image: %w", err)
	}

	buf, err := utils.EncodeImage(img, filename)
	if err != nil {
		return "", fmt.Errorf("failed to encode profile image: %w", err)
	}

	key := utils.GenerateUniqueFilename(filename)

	resp, err := s.storage.Upload(ctx, &storage.UploadRequest{
		Key:         key,
		Reader:      buf,
		ContentType: utils.GetContentTypeFromExtension(filename),
		Size:        int64(buf.Len()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store profile image: %w", err)
	}

	s.logger.WithField("key", resp.Key).Debug("Profile image uploaded")

	return resp.Key, nil
}

// RemoveProfileImage deletes a stored avatar, used when the account it
// was uploaded for never materialized. The default image is a shared
// static asset and is never deleted.
func (s *userService) RemoveProfileImage(ctx context.Context, key string) error {
	if key == "" || key == models.DefaultProfileImage {
		return nil
	}

	if err := s.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete profile image: %w", err)
	}

	s.logger.WithField("key", key).Debug("Profile image removed")

	return nil
}
