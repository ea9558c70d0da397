package rewards

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/quench/internal/models"
	"github.com/example/quench/internal/utils"
)

const (
	defaultPointsValidityDays  = 365
	defaultVoucherValidityDays = 30

	// Rolling spend window for tier classification.
	spendWindow = 365 * 24 * time.Hour
)

// Service owns the rewards account and points ledger for the application.
// It is constructed once and passed by reference; every mutating method runs
// in a single transaction holding a row lock on the account, so the
// check-then-debit in RedeemReward can never observe a stale balance.
type Service struct {
	db              *gorm.DB
	now             func() time.Time
	pointsValidity  time.Duration
	voucherValidity time.Duration
}

// NewService constructs the rewards service. Zero validity arguments fall
// back to 365 days for point batches and 30 days for vouchers.
func NewService(db *gorm.DB, pointsValidityDays, voucherValidityDays int) *Service {
	if pointsValidityDays <= 0 {
		pointsValidityDays = defaultPointsValidityDays
	}
	if voucherValidityDays <= 0 {
		voucherValidityDays = defaultVoucherValidityDays
	}
	return &Service{
		db:              db,
		now:             time.Now,
		pointsValidity:  time.Duration(pointsValidityDays) * 24 * time.Hour,
		voucherValidity: time.Duration(voucherValidityDays) * 24 * time.Hour,
	}
}

// lockedAccount loads (or creates) the account row inside tx, holding a
// FOR UPDATE lock where the dialect supports it. SQLite serializes writers
// on its own, so the clause is skipped there.
func (s *Service) lockedAccount(tx *gorm.DB, userID uuid.UUID) (*models.RewardsAccount, error) {
	query := tx
	if tx.Dialector.Name() == "postgres" {
		query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var account models.RewardsAccount
	err := query.Where("user_id = ?", userID).First(&account).Error
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	account = models.RewardsAccount{
		UserID:          userID,
		Tier:            TierBronze,
		RedeemedRewards: []string{},
	}

	var user models.User
	if err := tx.First(&user, "id = ?", userID).Error; err == nil {
		account.CompanyID = user.CompanyID
	}

	if err := tx.Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// rollingSpend recomputes the trailing 12-month sum of credited points from
// the ledger. It is recomputed inside every mutating transaction rather than
// incremented, so old credits age out of the window.
func (s *Service) rollingSpend(tx *gorm.DB, userID uuid.UUID, now time.Time) (int64, error) {
	var spend int64
	err := tx.Model(&models.PointsLedgerEntry{}).
		Where("user_id = ? AND points_amount > 0 AND occurred_at > ?", userID, now.Add(-spendWindow)).
		Select("COALESCE(SUM(points_amount), 0)").
		Scan(&spend).Error
	return spend, err
}

func isCreditType(txType string) bool {
	switch txType {
	case models.PointsEarnedPurchase, models.PointsEarnedBonus,
		models.PointsEarnedReferral, models.PointsEarnedMilestone,
		models.PointsAdjusted, models.PointsRestored:
		return true
	}
	return false
}

// EarnPoints appends a credit entry and atomically updates the account
// balance, lifetime points and rolling spend. One expiry batch is opened per
// accrual so the credit can expire on its own schedule. Returns the new
// balance.
func (s *Service) EarnPoints(userID uuid.UUID, points int64, txType, description string, refID *uuid.UUID, refType string) (int64, error) {
	if points <= 0 {
		return 0, ErrInvalidAmount
	}
	if !isCreditType(txType) {
		txType = models.PointsEarnedPurchase
	}

	now := s.now()
	var balance int64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		account, err := s.lockedAccount(tx, userID)
		if err != nil {
			return err
		}

		balance = account.Points + points
		entry := models.PointsLedgerEntry{
			UserID:             userID,
			CompanyID:          account.CompanyID,
			TransactionType:    txType,
			PointsAmount:       points,
			PointsBalanceAfter: balance,
			Description:        description,
			ReferenceID:        refID,
			ReferenceType:      refType,
			OccurredAt:         now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		batch := models.PointsExpiry{
			UserID:    userID,
			Points:    points,
			Source:    description,
			EarnedAt:  now,
			ExpiresAt: now.Add(s.pointsValidity),
		}
		if err := tx.Create(&batch).Error; err != nil {
			return err
		}

		spend, err := s.rollingSpend(tx, userID, now)
		if err != nil {
			return err
		}

		account.Points = balance
		account.LifetimePoints += points
		account.YearlySpend = spend
		account.Tier = ClassifyTier(spend)
		return tx.Save(account).Error
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// EarnOrderPoints accrues loyalty points for a placed order. Points are
// earned 1:1 on the order total in whole dollars; the same number also feeds
// rolling spend for tier classification. This coupling is deliberate and
// this function is the only place the conversion happens.
func (s *Service) EarnOrderPoints(userID uuid.UUID, order *models.Order) (int64, error) {
	points := int64(math.Round(order.TotalAmount))
	if points <= 0 {
		return 0, nil
	}

	description := fmt.Sprintf("Points earned on order %s", order.OrderNumber)
	refID := order.ID
	balance, err := s.EarnPoints(userID, points, models.PointsEarnedPurchase, description, &refID, "order")
	if err != nil {
		return 0, err
	}

	order.PointsEarned = points
	return balance, nil
}

// RedeemReward debits the reward's cost from the account and, for
// voucher-type rewards, issues a pending VoucherRedemption. The balance check
// and the debit run under the account row lock: two concurrent redemptions
// whose combined cost exceeds the balance cannot both succeed.
func (s *Service) RedeemReward(userID, rewardID uuid.UUID) (*models.VoucherRedemption, error) {
	now := s.now()
	var voucher *models.VoucherRedemption

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var reward models.RewardItem
		if err := tx.First(&reward, "id = ? AND is_active = ?", rewardID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownReward
			}
			return err
		}
		if reward.Stock != nil && *reward.Stock <= 0 {
			return ErrRewardOutOfStock
		}

		account, err := s.lockedAccount(tx, userID)
		if err != nil {
			return err
		}
		if account.Points < reward.Points {
			return ErrInsufficientPoints
		}

		txType := models.PointsRedeemedReward
		if reward.Type == models.RewardTypeVoucher {
			txType = models.PointsRedeemedVoucher
		}

		balance := account.Points - reward.Points
		entry := models.PointsLedgerEntry{
			UserID:             userID,
			CompanyID:          account.CompanyID,
			TransactionType:    txType,
			PointsAmount:       -reward.Points,
			PointsBalanceAfter: balance,
			Description:        fmt.Sprintf("Redeemed: %s", reward.Title),
			ReferenceID:        &reward.ID,
			ReferenceType:      "reward",
			OccurredAt:         now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if reward.Type == models.RewardTypeVoucher && reward.Value > 0 {
			validity := s.voucherValidity
			if reward.ValidityDays > 0 {
				validity = time.Duration(reward.ValidityDays) * 24 * time.Hour
			}
			code, err := utils.GenerateConfirmationCode()
			if err != nil {
				return err
			}
			voucher = &models.VoucherRedemption{
				UserID:           userID,
				RewardID:         reward.ID,
				Title:            reward.Title,
				Value:            reward.Value,
				PointsUsed:       reward.Points,
				Status:           models.VoucherPending,
				ConfirmationCode: code,
				RedeemedAt:       now,
				ExpiresAt:        now.Add(validity),
			}
			if err := tx.Create(voucher).Error; err != nil {
				return err
			}
		}

		if reward.Stock != nil {
			remaining := *reward.Stock - 1
			if err := tx.Model(&models.RewardItem{}).
				Where("id = ?", reward.ID).
				Update("stock", remaining).Error; err != nil {
				return err
			}
		}

		account.Points = balance
		account.RedeemedRewards = append(account.RedeemedRewards, reward.ID.String())
		return tx.Save(account).Error
	})
	if err != nil {
		voucher = nil
		return nil, err
	}
	return voucher, nil
}

// ExpirePoints expires one credited batch: it appends an expired debit to the
// ledger and removes the batch. Expiring a batch that is already gone is a
// no-op, so a sweep and a user-triggered expiry cannot double-debit.
func (s *Service) ExpirePoints(expiryID uuid.UUID) error {
	now := s.now()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var batch models.PointsExpiry
		if err := tx.First(&batch, "id = ?", expiryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		account, err := s.lockedAccount(tx, batch.UserID)
		if err != nil {
			return err
		}

		balance := account.Points - batch.Points
		entry := models.PointsLedgerEntry{
			UserID:             batch.UserID,
			CompanyID:          account.CompanyID,
			TransactionType:    models.PointsExpired,
			PointsAmount:       -batch.Points,
			PointsBalanceAfter: balance,
			Description:        fmt.Sprintf("Points expired: %s", batch.Source),
			ReferenceID:        &batch.ID,
			ReferenceType:      "points_expiry",
			OccurredAt:         now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if err := tx.Delete(&batch).Error; err != nil {
			return err
		}

		account.Points = balance
		return tx.Save(account).Error
	})
}

// voucherTransitions holds the allowed lifecycle moves. used and expired are
// terminal.
var voucherTransitions = map[string][]string{
	models.VoucherPending:   {models.VoucherConfirmed, models.VoucherExpired},
	models.VoucherConfirmed: {models.VoucherUsed, models.VoucherExpired},
}

func canTransitionVoucher(from, to string) bool {
	for _, allowed := range voucherTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// UpdateVoucherStatus moves a voucher through its lifecycle. Transitions out
// of used or expired are rejected, as is marking a voucher used without the
// order that consumed it.
func (s *Service) UpdateVoucherStatus(voucherID uuid.UUID, newStatus string, usedAt *time.Time, orderID *uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.transitionVoucher(tx, voucherID, newStatus, usedAt, orderID)
	})
}

// MarkVoucherUsed consumes a voucher inside the caller's transaction, so an
// order and the voucher it spends commit or roll back together.
func (s *Service) MarkVoucherUsed(tx *gorm.DB, voucherID, orderID uuid.UUID) error {
	return s.transitionVoucher(tx, voucherID, models.VoucherUsed, nil, &orderID)
}

func (s *Service) transitionVoucher(tx *gorm.DB, voucherID uuid.UUID, newStatus string, usedAt *time.Time, orderID *uuid.UUID) error {
	var voucher models.VoucherRedemption
	if err := tx.First(&voucher, "id = ?", voucherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownVoucher
		}
		return err
	}

	if !canTransitionVoucher(voucher.Status, newStatus) {
		return ErrInvalidTransition
	}
	if newStatus == models.VoucherUsed && orderID == nil {
		return ErrInvalidTransition
	}

	voucher.Status = newStatus
	if newStatus == models.VoucherUsed {
		voucher.OrderID = orderID
		if usedAt == nil {
			t := s.now()
			usedAt = &t
		}
		voucher.UsedAt = usedAt
	}
	return tx.Save(&voucher).Error
}

// ReportMissingPoints files a customer claim for an order that did not
// accrue. No ledger mutation happens here; support credits the points via
// EarnPoints (adjusted/restored) and resolves the report separately.
func (s *Service) ReportMissingPoints(userID, orderID uuid.UUID, orderDate time.Time, expectedPoints int64, reason string) (*models.MissingPointsReport, error) {
	if expectedPoints <= 0 {
		return nil, ErrInvalidAmount
	}

	report := models.MissingPointsReport{
		UserID:         userID,
		OrderID:        orderID,
		OrderDate:      orderDate,
		ExpectedPoints: expectedPoints,
		Reason:         reason,
		Status:         models.MissingPointsReported,
		ReportedAt:     s.now(),
	}
	if err := s.db.Create(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

var missingPointsTransitions = map[string][]string{
	models.MissingPointsReported:      {models.MissingPointsInvestigating, models.MissingPointsResolved, models.MissingPointsRejected},
	models.MissingPointsInvestigating: {models.MissingPointsResolved, models.MissingPointsRejected},
}

func canTransitionReport(from, to string) bool {
	for _, allowed := range missingPointsTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ResolveMissingPoints updates a report's status. Resolved and rejected are
// terminal. Crediting the points is a separate, manual EarnPoints call.
func (s *Service) ResolveMissingPoints(reportID uuid.UUID, newStatus string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var report models.MissingPointsReport
		if err := tx.First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidTransition
			}
			return err
		}

		if !canTransitionReport(report.Status, newStatus) {
			return ErrInvalidTransition
		}

		report.Status = newStatus
		if newStatus == models.MissingPointsResolved || newStatus == models.MissingPointsRejected {
			t := s.now()
			report.ResolvedAt = &t
		}
		return tx.Save(&report).Error
	})
}
