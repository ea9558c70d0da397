package models

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	BaseModel
	UserID              uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User                *User       `json:"user,omitempty"`
	OrderNumber         string      `gorm:"uniqueIndex" json:"order_number"`
	Status              string      `json:"status"`
	PlacedAt            time.Time   `json:"placed_at"`
	Subtotal            float64     `json:"subtotal"`
	GSTAmount           float64     `json:"gst_amount"`
	DeliveryFee         float64     `json:"delivery_fee"`
	TotalAmount         float64     `json:"total_amount"`
	Currency            string      `json:"currency"`
	DeliveryMethod      string      `json:"delivery_method"`
	DeliveryAddressID   *uuid.UUID  `gorm:"type:uuid" json:"delivery_address_id"`
	PickupStoreID       *uuid.UUID  `gorm:"type:uuid" json:"pickup_store_id"`
	DeliveryAddressLine string      `json:"delivery_address_line"`
	DeliveryApartment   string      `json:"delivery_apartment"`
	DeliveryCity        string      `json:"delivery_city"`
	DeliveryState       string      `json:"delivery_state"`
	PaymentMethod       string      `json:"payment_method"`
	VoucherCode         string      `json:"voucher_code"`
	VoucherDiscount     float64     `json:"voucher_discount"`
	PointsEarned        int64       `json:"points_earned"`
	Notes               string      `json:"notes"`
	Items               []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID          uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID        *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductVariantID *uuid.UUID `gorm:"type:uuid" json:"product_variant_id"`
	ProductName      string     `json:"product_name"`
	VariantLabel     string     `json:"variant_label"`
	Quantity         int        `json:"quantity"`
	UnitPrice        float64    `json:"unit_price"`
	LineTotal        float64    `json:"line_total"`
}
