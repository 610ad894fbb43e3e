package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tushare/internal/models"
	"tushare/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// recordingStorage counts deletes so tests can assert cleanup behavior.
type recordingStorage struct {
	deleted []string
}

func (s *recordingStorage) Upload(_ context.Context, req *storage.UploadRequest) (*storage.UploadResponse, error) {
	return &storage.UploadResponse{Key: req.Key}, nil
}

func (s *recordingStorage) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *recordingStorage) GetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "/" + key, nil
}

func (s *recordingStorage) FileExists(_ context.Context, key string) (bool, error) {
	return false, nil
}

func strPtr(s string) *string { return &s }

func newUserFixture(t *testing.T) (*fakeUserRepo, UserService) {
	t.Helper()
	users := newFakeUserRepo()
	return users, NewUserService(users, nil, testLogger(t))
}

func seedProfileUser(t *testing.T, users *fakeUserRepo, username, mobile string) *models.User {
	t.Helper()
	user := &models.User{
		FirstName:    "Ada",
		LastName:     "Obi",
		Username:     username,
		Email:        username + "@example.com",
		MobileNumber: mobile,
		Role:         models.UserRolePassenger,
		IsVerified:   true,
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestUpdateProfileMergesNonNilFields(t *testing.T) {
	users, service := newUserFixture(t)
	user := seedProfileUser(t, users, "ada_obi", "+2348011111111")

	updated, err := service.UpdateProfile(context.Background(), user.ID, &ProfileUpdate{
		FirstName: strPtr("Adaeze"),
		Bio:       strPtr("weekend road-tripper"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.FirstName != "Adaeze" {
		t.Errorf("first name = %q", updated.FirstName)
	}
	if updated.Bio != "weekend road-tripper" {
		t.Errorf("bio = %q", updated.Bio)
	}
	// Untouched fields survive the patch.
	if updated.LastName != "Obi" {
		t.Errorf("last name = %q, want Obi", updated.LastName)
	}
	if updated.MobileNumber != "+2348011111111" {
		t.Errorf("mobile = %q, want unchanged", updated.MobileNumber)
	}
}

func TestUpdateProfileEmptyPatchIsNoOp(t *testing.T) {
	users, service := newUserFixture(t)
	user := seedProfileUser(t, users, "ada_obi", "+2348011111111")

	updated, err := service.UpdateProfile(context.Background(), user.ID, &ProfileUpdate{})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.FirstName != user.FirstName || updated.MobileNumber != user.MobileNumber {
		t.Error("empty patch changed the record")
	}
}

func TestUpdateProfileMobileUniqueness(t *testing.T) {
	users, service := newUserFixture(t)
	user := seedProfileUser(t, users, "ada_obi", "+2348011111111")
	seedProfileUser(t, users, "bola_ade", "+2348022222222")

	if _, err := service.UpdateProfile(context.Background(), user.ID, &ProfileUpdate{
		MobileNumber: strPtr("+2348022222222"),
	}); !errors.Is(err, ErrMobileNumberTaken) {
		t.Errorf("got %v, want ErrMobileNumberTaken", err)
	}

	// Re-submitting your own number is fine.
	if _, err := service.UpdateProfile(context.Background(), user.ID, &ProfileUpdate{
		MobileNumber: strPtr("+2348011111111"),
	}); err != nil {
		t.Errorf("own number: %v", err)
	}

	if _, err := service.UpdateProfile(context.Background(), user.ID, &ProfileUpdate{
		MobileNumber: strPtr("+2348033333333"),
	}); err != nil {
		t.Errorf("fresh number: %v", err)
	}
}

func TestUpdateProfileValidatesFields(t *testing.T) {
	users, service := newUserFixture(t)
	user := seedProfileUser(t, users, "ada_obi", "+2348011111111")

	if _, err := service.UpdateProfile(context.Background(), user.ID, &ProfileUpdate{
		MobileNumber: strPtr("not-a-number"),
	}); err == nil {
		t.Error("malformed mobile accepted")
	}
	if _, err := service.UpdateProfile(context.Background(), user.ID, &ProfileUpdate{
		FirstName: strPtr("A"),
	}); err == nil {
		t.Error("one-letter first name accepted")
	}
}

func TestRemoveProfileImage(t *testing.T) {
	store := &recordingStorage{}
	service := NewUserService(newFakeUserRepo(), store, testLogger(t))

	if err := service.RemoveProfileImage(context.Background(), "media/dps/abc123.png"); err != nil {
		t.Fatalf("RemoveProfileImage: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "media/dps/abc123.png" {
		t.Fatalf("deleted keys = %v, want the uploaded key", store.deleted)
	}

	// The shared default image and empty keys are left alone.
	if err := service.RemoveProfileImage(context.Background(), models.DefaultProfileImage); err != nil {
		t.Fatalf("RemoveProfileImage default: %v", err)
	}
	if err := service.RemoveProfileImage(context.Background(), ""); err != nil {
		t.Fatalf("RemoveProfileImage empty: %v", err)
	}
	if len(store.deleted) != 1 {
		t.Errorf("deleted keys = %v, want only the uploaded key", store.deleted)
	}
}

func TestDeleteUser(t *testing.T) {
	users, service := newUserFixture(t)
	user := seedProfileUser(t, users, "ada_obi", "+2348011111111")

	if err := service.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := service.GetByID(context.Background(), user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}
	if err := service.Delete(context.Background(), primitive.NewObjectID()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown id: got %v, want ErrUserNotFound", err)
	}
}
