package rewards

import (
	"log"

	"github.com/example/quench/internal/models"
)

// SweepExpired expires every due point batch and voucher. The due sets are
// read from the database at sweep time and each expiry is idempotent, so the
// sweep is safe to run concurrently with user-triggered operations or a
// second sweep. Returns the number of batches and vouchers expired.
func (s *Service) SweepExpired() (int, int, error) {
	now := s.now()

	var due []models.PointsExpiry
	if err := s.db.Where("expires_at <= ?", now).Find(&due).Error; err != nil {
		return 0, 0, err
	}

	expiredBatches := 0
	for _, batch := range due {
		if err := s.ExpirePoints(batch.ID); err != nil {
			log.Printf("[Rewards] failed to expire batch %s: %v", batch.ID, err)
			continue
		}
		expiredBatches++
	}

	var vouchers []models.VoucherRedemption
	if err := s.db.Where("status IN ? AND expires_at <= ?",
		[]string{models.VoucherPending, models.VoucherConfirmed}, now).
		Find(&vouchers).Error; err != nil {
		return expiredBatches, 0, err
	}

	expiredVouchers := 0
	for _, voucher := range vouchers {
		if err := s.UpdateVoucherStatus(voucher.ID, models.VoucherExpired, nil, nil); err != nil {
			log.Printf("[Rewards] failed to expire voucher %s: %v", voucher.ID, err)
			continue
		}
		expiredVouchers++
	}

	return expiredBatches, expiredVouchers, nil
}
