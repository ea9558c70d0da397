package rewards

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/quench/internal/models"
)

// AccountSnapshot is the read model served to the rewards screens.
type AccountSnapshot struct {
	Points           int64    `json:"points"`
	LifetimePoints   int64    `json:"lifetime_points"`
	YearlySpend      int64    `json:"yearly_spend"`
	Tier             string   `json:"tier"`
	TierBenefits     []string `json:"tier_benefits"`
	NextTier         string   `json:"next_tier,omitempty"`
	PointsToNextTier int64    `json:"points_to_next_tier"`
	RedeemedRewards  []string `json:"redeemed_rewards"`
}

// Snapshot returns the current account view. Rolling spend and tier are
// recomputed from the ledger at read time so the snapshot never reports a
// stale tier between mutations.
func (s *Service) Snapshot(userID uuid.UUID) (*AccountSnapshot, error) {
	var account models.RewardsAccount
	err := s.db.Where("user_id = ?", userID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &AccountSnapshot{
			Tier:             TierBronze,
			TierBenefits:     TierBenefits(TierBronze),
			NextTier:         TierSilver,
			PointsToNextTier: PointsToNextTier(0),
			RedeemedRewards:  []string{},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	spend, err := s.rollingSpend(s.db, userID, s.now())
	if err != nil {
		return nil, err
	}
	tier := ClassifyTier(spend)

	redeemed := account.RedeemedRewards
	if redeemed == nil {
		redeemed = []string{}
	}

	return &AccountSnapshot{
		Points:           account.Points,
		LifetimePoints:   account.LifetimePoints,
		YearlySpend:      spend,
		Tier:             tier,
		TierBenefits:     TierBenefits(tier),
		NextTier:         NextTier(spend),
		PointsToNextTier: PointsToNextTier(spend),
		RedeemedRewards:  redeemed,
	}, nil
}

// History returns the user's ledger entries newest first.
func (s *Service) History(userID uuid.UUID, limit, offset int) ([]models.PointsLedgerEntry, int64, error) {
	query := s.db.Model(&models.PointsLedgerEntry{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.PointsLedgerEntry
	if err := query.Order("occurred_at desc, created_at desc").
		Limit(limit).Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ExpiringPoints returns the batches expiring within daysAhead days,
// soonest first, so callers can warn users before the sweep debits them.
func (s *Service) ExpiringPoints(userID uuid.UUID, daysAhead int) ([]models.PointsExpiry, error) {
	if daysAhead <= 0 {
		daysAhead = 30
	}
	cutoff := s.now().Add(time.Duration(daysAhead) * 24 * time.Hour)

	var batches []models.PointsExpiry
	if err := s.db.Where("user_id = ? AND expires_at <= ?", userID, cutoff).
		Order("expires_at asc").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// VouchersByStatus lists the user's voucher redemptions, optionally filtered
// by lifecycle status, newest first.
func (s *Service) VouchersByStatus(userID uuid.UUID, status string) ([]models.VoucherRedemption, error) {
	query := s.db.Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var vouchers []models.VoucherRedemption
	if err := query.Order("redeemed_at desc").Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

// MissingPointsReports lists the user's claims, newest first.
func (s *Service) MissingPointsReports(userID uuid.UUID) ([]models.MissingPointsReport, error) {
	var reports []models.MissingPointsReport
	if err := s.db.Where("user_id = ?", userID).
		Order("reported_at desc").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// Reconcile verifies the cached balance against the ledger sum and each
// entry's running balance snapshot. A non-nil error with a nil DB failure
// means the ledger and the cache disagree.
func (s *Service) Reconcile(userID uuid.UUID) error {
	var account models.RewardsAccount
	if err := s.db.Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	var entries []models.PointsLedgerEntry
	if err := s.db.Where("user_id = ?", userID).
		Order("occurred_at asc, created_at asc").
		Find(&entries).Error; err != nil {
		return err
	}

	var running int64
	for _, entry := range entries {
		running += entry.PointsAmount
		if entry.PointsBalanceAfter != running {
			return fmt.Errorf("rewards: entry %s balance snapshot %d != running sum %d",
				entry.ID, entry.PointsBalanceAfter, running)
		}
	}
	if running != account.Points {
		return fmt.Errorf("rewards: account balance %d != ledger sum %d", account.Points, running)
	}
	return nil
}
