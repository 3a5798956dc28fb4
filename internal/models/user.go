package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Title     string             `bson:"title" json:"title"`
	Role      string             `bson:"role" json:"role"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt-хэш, наружу не отдаём
	IsAdmin   bool               `bson:"isAdmin" json:"isAdmin"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary is the subset of a user embedded into populated tasks and team lists.
type UserSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Title    string             `bson:"title" json:"title"`
	Role     string             `bson:"role" json:"role,omitempty"`
	Email    string             `bson:"email" json:"email"`
	IsActive *bool              `bson:"isActive,omitempty" json:"isActive,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:    u.ID,
		Name:  u.Name,
		Title: u.Title,
		Role:  u.Role,
		Email: u.Email,
	}
}

// TeamMember is Summary with the activation flag, used by the team listing.
func (u *User) TeamMember() UserSummary {
	s := u.Summary()
	active := u.IsActive
	s.IsActive = &active
	return s
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	IsAdmin  bool   `json:"isAdmin"`
	Role     string `json:"role" binding:"required"`
	Title    string `json:"title" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ProfileUpdate struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Role  string `json:"role"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

type ActivationRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}
