package models

import "github.com/google/uuid"

type UserAddress struct {
	BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Label        string    `json:"label"`
	AddressLine  string    `json:"address_line"`
	Apartment    string    `json:"apartment"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postal_code"`
	Instructions string    `json:"instructions"`
	IsDefault    bool      `json:"is_default"`
}
