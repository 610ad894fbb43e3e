package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	UserRolePassenger UserRole = "passenger"
	UserRoleDriver    UserRole = "driver"
)

const DefaultProfileImage = "media/dps/default.png"

type User struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName       string             `json:"first_name" bson:"first_name" validate:"required,min=2,max=50"`
	LastName        string             `json:"last_name" bson:"last_name" validate:"required,min=2,max=50"`
	Gender          string             `json:"gender" bson:"gender" validate:"required"`
	Username        string             `json:"username" bson:"username" validate:"required,min=3,max=30"`
	Bio             string             `json:"bio" bson:"bio"`
	Email           string             `json:"email" bson:"email" validate:"required,email"`
	MobileNumber    string             `json:"mobile_number" bson:"mobile_number" validate:"required"`
	FacebookHandle  string             `json:"facebook_handle" bson:"facebook_handle"`
	InstagramHandle string             `json:"instagram_handle" bson:"instagram_handle"`
	TwitterHandle   string             `json:"twitter_handle" bson:"twitter_handle"`
	WorkAddress     string             `json:"work_address" bson:"work_address"`
	HomeAddress     string             `json:"home_address" bson:"home_address"`
	Password        string             `json:"-" bson:"password"`
	ProfileImage    string             `json:"profile_image" bson:"profile_image"`
	Role            UserRole           `json:"role" bson:"role" validate:"required,oneof=passenger driver"`
	IsActive        bool               `json:"is_active" bson:"is_active"`
	IsVerified      bool               `json:"is_verified" bson:"is_verified"`
	LastLogin       *time.Time         `json:"last_login" bson:"last_login"`
	DateJoined      time.Time          `json:"date_joined" bson:"date_joined"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// PublicProfile is the projection returned to other riders: enough to recognize
// a co-passenger, nothing more.
type PublicProfile struct {
	ID           primitive.ObjectID `json:"id"`
	FirstName    string             `json:"first_name"`
	LastName     string             `json:"last_name"`
	ProfileImage string             `json:"profile_image"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) Public() *PublicProfile {
	return &PublicProfile{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ProfileImage: u.ProfileImage,
	}
}
