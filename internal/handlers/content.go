package handlers

import (
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/quench/internal/models"
)

// ContentHandler manages storefront content settings endpoints.
type ContentHandler struct {
	db *gorm.DB
}

// NewContentHandler constructs ContentHandler.
func NewContentHandler(db *gorm.DB) *ContentHandler {
	return &ContentHandler{db: db}
}

const (
	defaultSupportPhone  = "1300 000 000"
	defaultSupportEmail  = "support@quench.example.com"
	defaultSupportHours  = "Mon - Sat: 09:00 - 21:00 AEST"
	defaultLicenseeText  = "Liquor licence held by Quench Retail Pty Ltd."
	defaultDrinkWiseText = "Is your drinking in check? DrinkWise."
	defaultCopyrightText = "© 2026 QUENCH. All Rights Reserved."
)

func applyContentDefaults(settings *models.ContentSettings) {
	if settings == nil {
		return
	}
	if strings.TrimSpace(settings.SupportPhone) == "" {
		settings.SupportPhone = defaultSupportPhone
	}
	if strings.TrimSpace(settings.SupportEmail) == "" {
		settings.SupportEmail = defaultSupportEmail
	}
	if strings.TrimSpace(settings.SupportHours) == "" {
		settings.SupportHours = defaultSupportHours
	}
	if strings.TrimSpace(settings.LicenseeText) == "" {
		settings.LicenseeText = defaultLicenseeText
	}
	if strings.TrimSpace(settings.DrinkWiseText) == "" {
		settings.DrinkWiseText = defaultDrinkWiseText
	}
	if strings.TrimSpace(settings.CopyrightText) == "" {
		settings.CopyrightText = defaultCopyrightText
	}
}

func validateContentSettings(input *models.ContentSettings) error {
	if input == nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(input.SupportEmail) != "" {
		if _, err := mail.ParseAddress(input.SupportEmail); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid email format")
		}
	}
	return nil
}

// GetContent returns the current content settings (public endpoint).
func (h *ContentHandler) GetContent(c *fiber.Ctx) error {
	var settings models.ContentSettings
	result := h.db.First(&settings)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			// Return default settings for first load
			defaults := models.ContentSettings{}
			applyContentDefaults(&defaults)
			return c.JSON(fiber.Map{
				"success": true,
				"data":    defaults,
			})
		}
		return result.Error
	}

	applyContentDefaults(&settings)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    settings,
	})
}

// UpdateContent creates or updates content settings (admin endpoint).
func (h *ContentHandler) UpdateContent(c *fiber.Ctx) error {
	var input models.ContentSettings
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateContentSettings(&input); err != nil {
		return err
	}

	var existing models.ContentSettings
	result := h.db.First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		// Create new
		if err := h.db.Create(&input).Error; err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    input,
		})
	} else if result.Error != nil {
		return result.Error
	}

	// Update existing record explicitly to avoid overwriting immutable fields
	// like created_at with zero values from client payload.
	existing.SupportPhone = input.SupportPhone
	existing.SupportEmail = input.SupportEmail
	existing.SupportHours = input.SupportHours

	existing.LicenseNumber = input.LicenseNumber
	existing.LicenseeText = input.LicenseeText
	existing.DrinkWiseText = input.DrinkWiseText
	existing.CopyrightText = input.CopyrightText

	existing.Instagram = input.Instagram
	existing.Facebook = input.Facebook
	existing.TikTok = input.TikTok

	existing.InstagramEnabled = input.InstagramEnabled
	existing.FacebookEnabled = input.FacebookEnabled
	existing.TikTokEnabled = input.TikTokEnabled

	if err := h.db.Save(&existing).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    existing,
	})
}
