package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated customer.
type User struct {
	BaseModel
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Phone        string        `gorm:"uniqueIndex" json:"phone"`
	Email        string        `json:"email"`
	DisplayName  string        `json:"display_name"`
	PasswordHash string        `json:"-"`
	DateOfBirth  *time.Time    `json:"date_of_birth"`
	IsOfAge      bool          `json:"is_of_age"`
	IsVerified   bool          `json:"is_verified"`
	CompanyID    *uuid.UUID    `gorm:"type:uuid" json:"company_id,omitempty"`
	Addresses    []UserAddress `json:"addresses,omitempty"`
	Orders       []Order       `json:"orders,omitempty"`
}

// Company groups users that share a pooled rewards account.
type Company struct {
	BaseModel
	Name  string `json:"name"`
	ABN   string `json:"abn"`
	Users []User `json:"users,omitempty"`
}

// PasswordResetToken tracks one forgot-password attempt.
type PasswordResetToken struct {
	BaseModel
	Phone     string     `gorm:"index" json:"phone"`
	Token     string     `gorm:"uniqueIndex" json:"token"`
	Code      string     `json:"code"`
	ExpiresAt time.Time  `json:"expires_at"`
	Verified  bool       `json:"verified"`
	UsedAt    *time.Time `json:"used_at"`
}

// SMSVerification keeps track of OTP codes sent to users.
type SMSVerification struct {
	BaseModel
	Phone     string     `gorm:"index" json:"phone"`
	Code      string     `json:"code"`
	ExpiresAt time.Time  `json:"expires_at"`
	Verified  bool       `json:"verified"`
	UsedAt    *time.Time `json:"used_at"`
}
