package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Ledger transaction types. Positive amounts use the earned_* / adjusted /
// restored types, negative amounts use redeemed_* / expired.
const (
	PointsEarnedPurchase  = "earned_purchase"
	PointsEarnedBonus     = "earned_bonus"
	PointsEarnedReferral  = "earned_referral"
	PointsEarnedMilestone = "earned_milestone"
	PointsRedeemedVoucher = "redeemed_voucher"
	PointsRedeemedReward  = "redeemed_reward"
	PointsExpired         = "expired"
	PointsAdjusted        = "adjusted"
	PointsRestored        = "restored"
)

// PointsLedgerEntry is one immutable balance change. Rows are only ever
// appended; corrections land as new adjusted/restored entries.
type PointsLedgerEntry struct {
	BaseModel
	UserID             uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	CompanyID          *uuid.UUID `gorm:"type:uuid;index" json:"company_id,omitempty"`
	TransactionType    string     `json:"transaction_type"`
	PointsAmount       int64      `json:"points_amount"`
	PointsBalanceAfter int64      `json:"points_balance_after"`
	Description        string     `json:"description"`
	ReferenceID        *uuid.UUID `gorm:"type:uuid" json:"reference_id,omitempty"`
	ReferenceType      string     `json:"reference_type,omitempty"`
	OccurredAt         time.Time  `gorm:"index" json:"occurred_at"`
}

// IsCredit reports whether the entry increases the balance.
func (e *PointsLedgerEntry) IsCredit() bool {
	return e.PointsAmount > 0
}

// RewardsAccount is the cached account snapshot. Points, tier and spend must
// always reconcile to the ledger; the ledger is the source of truth.
type RewardsAccount struct {
	BaseModel
	UserID          uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	CompanyID       *uuid.UUID     `gorm:"type:uuid;index" json:"company_id,omitempty"`
	Points          int64          `json:"points"`
	LifetimePoints  int64          `json:"lifetime_points"`
	YearlySpend     int64          `json:"yearly_spend"`
	Tier            string         `json:"tier"`
	RedeemedRewards pq.StringArray `gorm:"type:text[]" json:"redeemed_rewards"`
}

// Reward catalog item types.
const (
	RewardTypeVoucher = "voucher"
	RewardTypeBundle  = "bundle"
	RewardTypeSwag    = "swag"
)

// RewardItem is an admin-managed redeemable catalog row.
type RewardItem struct {
	BaseModel
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Points       int64   `json:"points"`
	Type         string  `json:"type"`
	Value        float64 `json:"value"`
	Stock        *int    `json:"stock,omitempty"`
	ValidityDays int     `json:"validity_days"`
	IsActive     bool    `json:"is_active"`
}

// Voucher redemption states. used and expired are terminal.
const (
	VoucherPending   = "pending"
	VoucherConfirmed = "confirmed"
	VoucherUsed      = "used"
	VoucherExpired   = "expired"
)

// VoucherRedemption tracks one claimed voucher through its lifecycle.
// Rows transition status but are never deleted.
type VoucherRedemption struct {
	BaseModel
	UserID           uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	RewardID         uuid.UUID  `gorm:"type:uuid" json:"reward_id"`
	Title            string     `json:"title"`
	Value            float64    `json:"value"`
	PointsUsed       int64      `json:"points_used"`
	Status           string     `gorm:"index" json:"status"`
	ConfirmationCode string     `gorm:"uniqueIndex" json:"confirmation_code"`
	RedeemedAt       time.Time  `json:"redeemed_at"`
	ExpiresAt        time.Time  `json:"expires_at"`
	UsedAt           *time.Time `json:"used_at,omitempty"`
	OrderID          *uuid.UUID `gorm:"type:uuid" json:"order_id,omitempty"`
}

// PointsExpiry is one credited batch still waiting to expire. Each accrual
// opens exactly one batch; expiring it removes the row and debits the ledger.
type PointsExpiry struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Points    int64     `json:"points"`
	Source    string    `json:"source"`
	EarnedAt  time.Time `json:"earned_at"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

// Missing points report states.
const (
	MissingPointsReported      = "reported"
	MissingPointsInvestigating = "investigating"
	MissingPointsResolved      = "resolved"
	MissingPointsRejected      = "rejected"
)

// MissingPointsReport is a customer claim that an order did not accrue.
// Resolution never credits automatically; support credits via the ledger
// and updates the report separately.
type MissingPointsReport struct {
	BaseModel
	UserID         uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	OrderID        uuid.UUID  `gorm:"type:uuid" json:"order_id"`
	OrderDate      time.Time  `json:"order_date"`
	ExpectedPoints int64      `json:"expected_points"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	ReportedAt     time.Time  `json:"reported_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}
