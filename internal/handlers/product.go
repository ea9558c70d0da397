package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/quench/internal/models"
	"github.com/example/quench/internal/utils"
)

// ProductHandler manages product CRUD.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// RegisterProductRoutes wires product endpoints onto the router group.
func (h *ProductHandler) RegisterProductRoutes(router fiber.Router) {
	router.Get("/", h.ListProducts)
	router.Post("/", h.CreateProduct)
	router.Get("/:id", h.GetProduct)
	router.Put("/:id", h.UpdateProduct)
	router.Delete("/:id", h.DeleteProduct)
}

// ListProducts returns paginated products with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if v := c.Query("category_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			query = query.Where("category_id = ?", id)
		}
	}

	if v := c.Query("brand_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			query = query.Where("brand_id = ?", id)
		}
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + search + "%"
		query = query.Where("name ILIKE ? OR short_description ILIKE ?", q, q)
	}

	if minPrice := c.Query("min_price"); minPrice != "" {
		if val, err := strconv.ParseFloat(minPrice, 64); err == nil {
			query = query.Where("base_price >= ?", val)
		}
	}

	if maxPrice := c.Query("max_price"); maxPrice != "" {
		if val, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			query = query.Where("base_price <= ?", val)
		}
	}

	if country := c.Query("country"); country != "" {
		query = query.Where("country_of_origin = ?", country)
	}

	if maxABV := c.Query("max_abv"); maxABV != "" {
		if val, err := strconv.ParseFloat(maxABV, 64); err == nil {
			query = query.Where("alcohol_percent <= ?", val)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Brand").Preload("Category").
		Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProduct loads a product with relations.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.Preload("Brand").
		Preload("Category").
		Preload("Variants").
		Preload("Media").
		Preload("Regions").
		Preload("Styles").
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productRequest struct {
	Slug             string           `json:"slug"`
	Name             string           `json:"name"`
	ShortDescription string           `json:"short_description"`
	LongDescription  string           `json:"long_description"`
	BasePrice        float64          `json:"base_price"`
	Currency         string           `json:"currency"`
	AlcoholPercent   float64          `json:"alcohol_percent"`
	StandardDrinks   float64          `json:"standard_drinks"`
	Vintage          int              `json:"vintage"`
	Producer         string           `json:"producer"`
	CountryOfOrigin  string           `json:"country_of_origin"`
	TastingNotes     string           `json:"tasting_notes"`
	FoodPairings     []string         `json:"food_pairings"`
	HeroImage        string           `json:"hero_image"`
	IsLimitedRelease bool             `json:"is_limited_release"`
	BrandID          string           `json:"brand_id"`
	CategoryID       string           `json:"category_id"`
	Variants         []variantRequest `json:"variants"`
	Media            []mediaRequest   `json:"media"`
	RegionIDs        []string         `json:"region_ids"`
	StyleIDs         []string         `json:"style_ids"`
}

type variantRequest struct {
	ID                string  `json:"id"`
	SKU               string  `json:"sku"`
	Label             string  `json:"label"`
	VolumeML          int     `json:"volume_ml"`
	PackSize          int     `json:"pack_size"`
	Price             float64 `json:"price"`
	Currency          string  `json:"currency"`
	InventoryQuantity int     `json:"inventory_quantity"`
	IsActive          bool    `json:"is_active"`
	InStock           *bool   `json:"in_stock"`
}

type mediaRequest struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	URL          string `json:"url"`
	AltText      string `json:"alt_text"`
	DisplayOrder int    `json:"display_order"`
}

// CreateProduct handles product creation.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	product, err := h.buildProductFromRequest(req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := h.attachLookupRelations(tx, &product, req); err != nil {
			return err
		}
		return tx.Create(&product).Error
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct updates an existing product and replaces its associations.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var existing models.Product
	if err := h.db.Preload("Variants").
		Preload("Media").
		First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	product, err := h.buildProductFromRequest(req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	product.ID = existing.ID

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := h.attachLookupRelations(tx, &product, req); err != nil {
			return err
		}

		product.CreatedAt = existing.CreatedAt

		// Replace dependent associations
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductMedia{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&existing).Association("Regions").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&existing).Association("Styles").Clear(); err != nil {
			return err
		}

		if err := tx.Model(&existing).Omit("ID", "CreatedAt").Updates(product).Error; err != nil {
			return err
		}

		for i := range product.Variants {
			product.Variants[i].ProductID = product.ID
		}
		if len(product.Variants) > 0 {
			if err := tx.Create(&product.Variants).Error; err != nil {
				return err
			}
		}

		for i := range product.Media {
			product.Media[i].ProductID = product.ID
		}
		if len(product.Media) > 0 {
			if err := tx.Create(&product.Media).Error; err != nil {
				return err
			}
		}

		if len(product.Regions) > 0 {
			if err := tx.Model(&existing).Association("Regions").Replace(product.Regions); err != nil {
				return err
			}
		}
		if len(product.Styles) > 0 {
			if err := tx.Model(&existing).Association("Styles").Replace(product.Styles); err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product and its associations.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductMedia{}).Error; err != nil {
			return err
		}

		product := models.Product{BaseModel: models.BaseModel{ID: id}}
		if err := tx.Model(&product).Association("Regions").Clear(); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Model(&product).Association("Styles").Clear(); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Delete(&models.Product{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) buildProductFromRequest(req productRequest) (models.Product, error) {
	product := models.Product{
		Slug:             req.Slug,
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		BasePrice:        req.BasePrice,
		Currency:         req.Currency,
		AlcoholPercent:   req.AlcoholPercent,
		StandardDrinks:   req.StandardDrinks,
		Vintage:          req.Vintage,
		Producer:         req.Producer,
		CountryOfOrigin:  req.CountryOfOrigin,
		TastingNotes:     req.TastingNotes,
		FoodPairings:     req.FoodPairings,
		HeroImage:        req.HeroImage,
		IsLimitedRelease: req.IsLimitedRelease,
	}

	if req.BrandID != "" {
		id, err := uuid.Parse(req.BrandID)
		if err != nil {
			return product, errors.New("invalid brand_id")
		}
		product.BrandID = &id
	}
	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return product, errors.New("invalid category_id")
		}
		product.CategoryID = &id
	}

	for _, v := range req.Variants {
		variant := models.ProductVariant{
			SKU:               v.SKU,
			Label:             v.Label,
			VolumeML:          v.VolumeML,
			PackSize:          v.PackSize,
			Price:             v.Price,
			Currency:          v.Currency,
			InventoryQuantity: v.InventoryQuantity,
			IsActive:          v.IsActive,
		}
		if v.InStock != nil {
			variant.InStock = *v.InStock
		} else {
			variant.InStock = v.InventoryQuantity > 0
		}
		product.Variants = append(product.Variants, variant)
	}

	for _, m := range req.Media {
		product.Media = append(product.Media, models.ProductMedia{
			Type:         m.Type,
			URL:          m.URL,
			AltText:      m.AltText,
			DisplayOrder: m.DisplayOrder,
		})
	}

	return product, nil
}

// attachLookupRelations resolves region/style ids into loaded rows so GORM
// associates instead of inserting duplicates.
func (h *ProductHandler) attachLookupRelations(tx *gorm.DB, product *models.Product, req productRequest) error {
	if len(req.RegionIDs) > 0 {
		ids, err := parseUUIDList(req.RegionIDs)
		if err != nil {
			return errors.New("invalid region_ids")
		}
		if err := tx.Find(&product.Regions, "id IN ?", ids).Error; err != nil {
			return err
		}
	}

	if len(req.StyleIDs) > 0 {
		ids, err := parseUUIDList(req.StyleIDs)
		if err != nil {
			return errors.New("invalid style_ids")
		}
		if err := tx.Find(&product.Styles, "id IN ?", ids).Error; err != nil {
			return err
		}
	}

	return nil
}

func parseUUIDList(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
