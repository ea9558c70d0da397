package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	Slug             string           `gorm:"uniqueIndex" json:"slug"`
	Name             string           `json:"name"`
	ShortDescription string           `json:"short_description"`
	LongDescription  string           `json:"long_description"`
	BasePrice        float64          `json:"base_price"`
	Currency         string           `json:"currency"`
	RatingAverage    float64          `json:"rating_average"`
	RatingCount      int              `json:"rating_count"`
	AlcoholPercent   float64          `json:"alcohol_percent"`
	StandardDrinks   float64          `json:"standard_drinks"`
	Vintage          int              `json:"vintage"`
	Producer         string           `json:"producer"`
	CountryOfOrigin  string           `json:"country_of_origin"`
	TastingNotes     string           `json:"tasting_notes"`
	FoodPairings     pq.StringArray   `gorm:"type:text[]" json:"food_pairings"`
	HeroImage        string           `json:"hero_image"`
	IsLimitedRelease bool             `json:"is_limited_release"`
	BrandID          *uuid.UUID       `gorm:"type:uuid" json:"brand_id"`
	Brand            *Brand           `json:"brand,omitempty"`
	CategoryID       *uuid.UUID       `gorm:"type:uuid" json:"category_id"`
	Category         *Category        `json:"category,omitempty"`
	Variants         []ProductVariant `json:"variants,omitempty"`
	Media            []ProductMedia   `json:"media,omitempty"`
	Regions          []Region         `gorm:"many2many:product_regions;" json:"regions,omitempty"`
	Styles           []ProductStyle   `gorm:"many2many:product_styles_products;" json:"styles,omitempty"`
}

// ProductVariant is a purchasable pack size (single bottle, 6-pack, case).
type ProductVariant struct {
	BaseModel
	ProductID         uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	SKU               string    `json:"sku"`
	Label             string    `json:"label"`
	VolumeML          int       `json:"volume_ml"`
	PackSize          int       `json:"pack_size"`
	Price             float64   `json:"price"`
	Currency          string    `json:"currency"`
	InventoryQuantity int       `json:"inventory_quantity"`
	IsActive          bool      `json:"is_active"`
	InStock           bool      `json:"in_stock"`
}

type ProductMedia struct {
	BaseModel
	ProductID    uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Type         string    `json:"type"` // gallery|marketing
	URL          string    `json:"url"`
	AltText      string    `json:"alt_text"`
	DisplayOrder int       `json:"display_order"`
}
