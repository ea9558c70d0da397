package rewards

import (
	"fmt"

	"github.com/example/quench/internal/models"
)

// ValidateRewardItem enforces the closed reward union: every row must be a
// voucher, bundle or swag with the fields that variant requires. Malformed
// rows are rejected when the catalog is written, not when a redemption
// trips over them.
func ValidateRewardItem(item *models.RewardItem) error {
	if item.Title == "" {
		return fmt.Errorf("reward: title is required")
	}
	if item.Points <= 0 {
		return fmt.Errorf("reward: points cost must be positive")
	}

	switch item.Type {
	case models.RewardTypeVoucher:
		if item.Value <= 0 {
			return fmt.Errorf("reward: voucher value must be positive")
		}
		if item.ValidityDays < 0 {
			return fmt.Errorf("reward: validity days must not be negative")
		}
	case models.RewardTypeBundle:
		if item.Stock != nil {
			return fmt.Errorf("reward: bundles do not carry stock")
		}
	case models.RewardTypeSwag:
		if item.Stock != nil && *item.Stock < 0 {
			return fmt.Errorf("reward: stock must not be negative")
		}
	default:
		return fmt.Errorf("reward: unknown type %q", item.Type)
	}
	return nil
}

// Catalog returns the active reward items, cheapest first.
func (s *Service) Catalog() ([]models.RewardItem, error) {
	var items []models.RewardItem
	if err := s.db.Where("is_active = ?", true).
		Order("points asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// SaveRewardItem validates and upserts a catalog row.
func (s *Service) SaveRewardItem(item *models.RewardItem) error {
	if err := ValidateRewardItem(item); err != nil {
		return err
	}
	return s.db.Save(item).Error
}
