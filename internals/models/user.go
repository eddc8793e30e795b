package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID              string     `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Email           string     `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Name            string     `gorm:"column:name" json:"name"`
	PasswordHash    string     `gorm:"column:password_hash" json:"-"`
	Role            Role       `gorm:"column:role;type:varchar(16);not null" json:"role"`
	Banned          bool       `gorm:"column:banned;not null" json:"banned"`
	EmailVerifiedAt *time.Time `gorm:"column:email_verified_at" json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
