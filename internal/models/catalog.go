package models

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name           string    `json:"name"`
	Slug           string    `gorm:"uniqueIndex" json:"slug"`
	Subtitle       string    `json:"subtitle"`
	Description    string    `json:"description"`
	HeroImageLight string    `json:"hero_image_light"`
	HeroImageDark  string    `json:"hero_image_dark"`
	CardImage      string    `json:"card_image"`
	ProductCount   int       `json:"product_count"`
	Products       []Product `json:"products,omitempty"`
}

type Brand struct {
	BaseModel
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Country      string     `json:"country"`
	Image        string     `json:"image"`
	ProductCount int        `json:"product_count"`
	CategoryID   *uuid.UUID `gorm:"type:uuid" json:"category_id"`
	Category     *Category  `json:"category,omitempty"`
	Products     []Product  `json:"products,omitempty"`
}

// Region is a growing/production region (Barossa Valley, Islay, ...).
type Region struct {
	BaseModel
	Name     string    `json:"name"`
	Country  string    `json:"country"`
	Products []Product `gorm:"many2many:product_regions;" json:"products,omitempty"`
}

// ProductStyle is a style/varietal tag (Shiraz, IPA, Single Malt, ...).
type ProductStyle struct {
	BaseModel
	Name     string    `json:"name"`
	Products []Product `gorm:"many2many:product_styles_products;" json:"products,omitempty"`
}
