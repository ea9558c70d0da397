package rewards

import (
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/quench/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	migrations := []interface{}{
		&models.User{},
		&models.Order{},
		&models.RewardsAccount{},
		&models.PointsLedgerEntry{},
		&models.RewardItem{},
		&models.VoucherRedemption{},
		&models.PointsExpiry{},
		&models.MissingPointsReport{},
	}
	for _, m := range migrations {
		if err := db.AutoMigrate(m); err != nil {
			t.Fatalf("migrate %T: %v", m, err)
		}
	}

	return NewService(db, 365, 30)
}

func mustEarn(t *testing.T, svc *Service, userID uuid.UUID, points int64) int64 {
	t.Helper()
	balance, err := svc.EarnPoints(userID, points, models.PointsEarnedPurchase, "test accrual", nil, "")
	if err != nil {
		t.Fatalf("EarnPoints(%d): %v", points, err)
	}
	return balance
}

func accountFor(t *testing.T, svc *Service, userID uuid.UUID) models.RewardsAccount {
	t.Helper()
	var account models.RewardsAccount
	if err := svc.db.Where("user_id = ?", userID).First(&account).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	return account
}

func TestEarnPointsCreatesLedgerEntryAndBatch(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()

	balance := mustEarn(t, svc, userID, 150)
	if balance != 150 {
		t.Fatalf("balance = %d, want 150", balance)
	}

	var entry models.PointsLedgerEntry
	if err := svc.db.Where("user_id = ?", userID).First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.PointsAmount != 150 || entry.PointsBalanceAfter != 150 {
		t.Fatalf("entry = %+v, want amount 150 balance 150", entry)
	}
	if !entry.IsCredit() {
		t.Fatal("entry should be a credit")
	}

	var batches []models.PointsExpiry
	if err := svc.db.Where("user_id = ?", userID).Find(&batches).Error; err != nil {
		t.Fatalf("load batches: %v", err)
	}
	if len(batches) != 1 || batches[0].Points != 150 {
		t.Fatalf("batches = %+v, want one batch of 150", batches)
	}

	account := accountFor(t, svc, userID)
	if account.Points != 150 || account.LifetimePoints != 150 {
		t.Fatalf("account = %+v, want points 150 lifetime 150", account)
	}
}

func TestEarnPointsRejectsNonPositiveAmount(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()

	for _, points := range []int64{0, -5} {
		if _, err := svc.EarnPoints(userID, points, models.PointsEarnedPurchase, "", nil, ""); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("EarnPoints(%d) err = %v, want ErrInvalidAmount", points, err)
		}
	}

	var count int64
	svc.db.Model(&models.PointsLedgerEntry{}).Where("user_id = ?", userID).Count(&count)
	if count != 0 {
		t.Fatalf("ledger entries = %d, want 0", count)
	}
}

func TestRedeemRejectsInsufficientPointsWithoutMutation(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()
	mustEarn(t, svc, userID, 100)

	reward := models.RewardItem{
		Title:    "$10 off voucher",
		Points:   500,
		Type:     models.RewardTypeVoucher,
		Value:    10,
		IsActive: true,
	}
	if err := svc.db.Create(&reward).Error; err != nil {
		t.Fatalf("create reward: %v", err)
	}

	if _, err := svc.RedeemReward(userID, reward.ID); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("RedeemReward err = %v, want ErrInsufficientPoints", err)
	}

	account := accountFor(t, svc, userID)
	if account.Points != 100 {
		t.Fatalf("balance mutated on rejected redemption: %d", account.Points)
	}

	var debits int64
	svc.db.Model(&models.PointsLedgerEntry{}).
		Where("user_id = ? AND points_amount < 0", userID).
		Count(&debits)
	if debits != 0 {
		t.Fatalf("debit entries = %d, want 0", debits)
	}

	if err := svc.Reconcile(userID); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
}

func TestRedeemVoucherDebitsAndIssuesPendingVoucher(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()
	mustEarn(t, svc, userID, 1000)

	stock := 3
	reward := models.RewardItem{
		Title:    "$25 off voucher",
		Points:   400,
		Type:     models.RewardTypeVoucher,
		Value:    25,
		Stock:    &stock,
		IsActive: true,
	}
	if err := svc.db.Create(&reward).Error; err != nil {
		t.Fatalf("create reward: %v", err)
	}

	voucher, err := svc.RedeemReward(userID, reward.ID)
	if err != nil {
		t.Fatalf("RedeemReward: %v", err)
	}
	if voucher == nil {
		t.Fatal("expected a voucher")
	}
	if voucher.Status != models.VoucherPending {
		t.Fatalf("voucher status = %q, want pending", voucher.Status)
	}
	if voucher.PointsUsed != 400 || voucher.Value != 25 {
		t.Fatalf("voucher = %+v", voucher)
	}
	if voucher.ConfirmationCode == "" {
		t.Fatal("voucher has no confirmation code")
	}

	account := accountFor(t, svc, userID)
	if account.Points != 600 {
		t.Fatalf("balance = %d, want 600", account.Points)
	}
	if account.LifetimePoints != 1000 {
		t.Fatalf("lifetime = %d, want 1000 (debits never reduce lifetime)", account.LifetimePoints)
	}
	if len(account.RedeemedRewards) != 1 || account.RedeemedRewards[0] != reward.ID.String() {
		t.Fatalf("redeemed rewards = %v", account.RedeemedRewards)
	}

	var updated models.RewardItem
	svc.db.First(&updated, "id = ?", reward.ID)
	if updated.Stock == nil || *updated.Stock != 2 {
		t.Fatalf("stock = %v, want 2", updated.Stock)
	}

	if err := svc.Reconcile(userID); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
}

func TestRedeemRejectsOutOfStock(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()
	mustEarn(t, svc, userID, 1000)

	stock := 0
	reward := models.RewardItem{
		Title:    "Branded glassware",
		Points:   200,
		Type:     models.RewardTypeSwag,
		Stock:    &stock,
		IsActive: true,
	}
	if err := svc.db.Create(&reward).Error; err != nil {
		t.Fatalf("create reward: %v", err)
	}

	if _, err := svc.RedeemReward(userID, reward.ID); !errors.Is(err, ErrRewardOutOfStock) {
		t.Fatalf("err = %v, want ErrRewardOutOfStock", err)
	}
}

func TestRedeemUnknownReward(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()
	mustEarn(t, svc, userID, 100)

	if _, err := svc.RedeemReward(userID, uuid.New()); !errors.Is(err, ErrUnknownReward) {
		t.Fatalf("err = %v, want ErrUnknownReward", err)
	}
}

func TestExpirePointsIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()
	mustEarn(t, svc, userID, 300)

	var batch models.PointsExpiry
	if err := svc.db.Where("user_id = ?", userID).First(&batch).Error; err != nil {
		t.Fatalf("load batch: %v", err)
	}

	if err := svc.ExpirePoints(batch.ID); err != nil {
		t.Fatalf("first expiry: %v", err)
	}
	if err := svc.ExpirePoints(batch.ID); err != nil {
		t.Fatalf("second expiry: %v", err)
	}

	account := accountFor(t, svc, userID)
	if account.Points != 0 {
		t.Fatalf("balance = %d, want 0 after single debit", account.Points)
	}

	var debits int64
	svc.db.Model(&models.PointsLedgerEntry{}).
		Where("user_id = ? AND transaction_type = ?", userID, models.PointsExpired).
		Count(&debits)
	if debits != 1 {
		t.Fatalf("expired entries = %d, want exactly 1", debits)
	}

	if err := svc.Reconcile(userID); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
}

func TestVoucherLifecycleTransitions(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()

	newVoucher := func(status string) models.VoucherRedemption {
		v := models.VoucherRedemption{
			UserID:           userID,
			RewardID:         uuid.New(),
			Title:            "$10 off",
			Value:            10,
			PointsUsed:       100,
			Status:           status,
			ConfirmationCode: uuid.NewString(),
			RedeemedAt:       time.Now(),
			ExpiresAt:        time.Now().Add(24 * time.Hour),
		}
		if err := svc.db.Create(&v).Error; err != nil {
			t.Fatalf("create voucher: %v", err)
		}
		return v
	}

	orderID := uuid.New()

	// pending -> confirmed -> used
	v := newVoucher(models.VoucherPending)
	if err := svc.UpdateVoucherStatus(v.ID, models.VoucherConfirmed, nil, nil); err != nil {
		t.Fatalf("pending->confirmed: %v", err)
	}
	if err := svc.UpdateVoucherStatus(v.ID, models.VoucherUsed, nil, &orderID); err != nil {
		t.Fatalf("confirmed->used: %v", err)
	}

	var used models.VoucherRedemption
	svc.db.First(&used, "id = ?", v.ID)
	if used.UsedAt == nil || used.OrderID == nil || *used.OrderID != orderID {
		t.Fatalf("used voucher missing used_at/order_id: %+v", used)
	}

	// used is terminal
	if err := svc.UpdateVoucherStatus(v.ID, models.VoucherExpired, nil, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("used->expired err = %v, want ErrInvalidTransition", err)
	}

	// pending -> used skips confirmation and must fail
	v2 := newVoucher(models.VoucherPending)
	if err := svc.UpdateVoucherStatus(v2.ID, models.VoucherUsed, nil, &orderID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending->used err = %v, want ErrInvalidTransition", err)
	}

	// marking used without an order is rejected
	v3 := newVoucher(models.VoucherConfirmed)
	if err := svc.UpdateVoucherStatus(v3.ID, models.VoucherUsed, nil, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("used without order err = %v, want ErrInvalidTransition", err)
	}

	// confirmed -> expired, then terminal
	if err := svc.UpdateVoucherStatus(v3.ID, models.VoucherExpired, nil, nil); err != nil {
		t.Fatalf("confirmed->expired: %v", err)
	}
	if err := svc.UpdateVoucherStatus(v3.ID, models.VoucherConfirmed, nil, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expired->confirmed err = %v, want ErrInvalidTransition", err)
	}

	if err := svc.UpdateVoucherStatus(uuid.New(), models.VoucherConfirmed, nil, nil); !errors.Is(err, ErrUnknownVoucher) {
		t.Fatalf("unknown voucher err = %v, want ErrUnknownVoucher", err)
	}
}

func TestMarkVoucherUsedCommitsWithCaller(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()

	newVoucher := func(status string) models.VoucherRedemption {
		v := models.VoucherRedemption{
			UserID:           userID,
			RewardID:         uuid.New(),
			Title:            "$10 off",
			Value:            10,
			PointsUsed:       100,
			Status:           status,
			ConfirmationCode: uuid.NewString(),
			RedeemedAt:       time.Now(),
			ExpiresAt:        time.Now().Add(24 * time.Hour),
		}
		if err := svc.db.Create(&v).Error; err != nil {
			t.Fatalf("create voucher: %v", err)
		}
		return v
	}

	newOrder := func() models.Order {
		return models.Order{
			UserID:      userID,
			OrderNumber: uuid.NewString(),
			Status:      "pending",
			PlacedAt:    time.Now(),
			TotalAmount: 90,
		}
	}

	// A voucher that cannot be consumed rolls the whole transaction back,
	// order included.
	pending := newVoucher(models.VoucherPending)
	order := newOrder()
	err := svc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return svc.MarkVoucherUsed(tx, pending.ID, order.ID)
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}

	var orderCount int64
	svc.db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&orderCount)
	if orderCount != 0 {
		t.Fatalf("order persisted despite rollback, count = %d", orderCount)
	}

	var unchanged models.VoucherRedemption
	svc.db.First(&unchanged, "id = ?", pending.ID)
	if unchanged.Status != models.VoucherPending {
		t.Fatalf("voucher status = %q, want pending", unchanged.Status)
	}

	// A confirmed voucher commits together with the order.
	confirmed := newVoucher(models.VoucherConfirmed)
	order = newOrder()
	err = svc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return svc.MarkVoucherUsed(tx, confirmed.ID, order.ID)
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	var used models.VoucherRedemption
	svc.db.First(&used, "id = ?", confirmed.ID)
	if used.Status != models.VoucherUsed {
		t.Fatalf("voucher status = %q, want used", used.Status)
	}
	if used.OrderID == nil || *used.OrderID != order.ID {
		t.Fatalf("voucher order id = %v, want %s", used.OrderID, order.ID)
	}
}

func TestLifetimePointsNeverDecrease(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()

	mustEarn(t, svc, userID, 500)
	mustEarn(t, svc, userID, 300)

	reward := models.RewardItem{
		Title:    "$10 off",
		Points:   200,
		Type:     models.RewardTypeVoucher,
		Value:    10,
		IsActive: true,
	}
	if err := svc.db.Create(&reward).Error; err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if _, err := svc.RedeemReward(userID, reward.ID); err != nil {
		t.Fatalf("RedeemReward: %v", err)
	}

	var batch models.PointsExpiry
	if err := svc.db.Where("user_id = ? AND points = ?", userID, 500).First(&batch).Error; err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if err := svc.ExpirePoints(batch.ID); err != nil {
		t.Fatalf("ExpirePoints: %v", err)
	}

	account := accountFor(t, svc, userID)
	if account.LifetimePoints != 800 {
		t.Fatalf("lifetime = %d, want 800", account.LifetimePoints)
	}
	if account.Points != 100 {
		t.Fatalf("balance = %d, want 100", account.Points)
	}

	if err := svc.Reconcile(userID); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
}

func TestRollingSpendAgesOutOldCredits(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()

	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	// Credit outside the 12-month window.
	svc.now = func() time.Time { return base.AddDate(0, 0, -400) }
	mustEarn(t, svc, userID, 60000)

	// Credit inside the window.
	svc.now = func() time.Time { return base }
	mustEarn(t, svc, userID, 10000)

	account := accountFor(t, svc, userID)
	if account.YearlySpend != 10000 {
		t.Fatalf("yearly spend = %d, want 10000 (old credit aged out)", account.YearlySpend)
	}
	if account.Tier != TierBronze {
		t.Fatalf("tier = %q, want bronze", account.Tier)
	}
	if account.LifetimePoints != 70000 {
		t.Fatalf("lifetime = %d, want 70000", account.LifetimePoints)
	}
}

func TestMissingPointsReportLifecycle(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()
	orderID := uuid.New()

	if _, err := svc.ReportMissingPoints(userID, orderID, time.Now(), 0, "no points"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero expected points err = %v, want ErrInvalidAmount", err)
	}

	report, err := svc.ReportMissingPoints(userID, orderID, time.Now(), 150, "order missing from ledger")
	if err != nil {
		t.Fatalf("ReportMissingPoints: %v", err)
	}
	if report.Status != models.MissingPointsReported {
		t.Fatalf("status = %q, want reported", report.Status)
	}

	if err := svc.ResolveMissingPoints(report.ID, models.MissingPointsInvestigating); err != nil {
		t.Fatalf("reported->investigating: %v", err)
	}
	if err := svc.ResolveMissingPoints(report.ID, models.MissingPointsResolved); err != nil {
		t.Fatalf("investigating->resolved: %v", err)
	}

	var resolved models.MissingPointsReport
	svc.db.First(&resolved, "id = ?", report.ID)
	if resolved.ResolvedAt == nil {
		t.Fatal("resolved report missing resolved_at")
	}

	// resolved is terminal
	if err := svc.ResolveMissingPoints(report.ID, models.MissingPointsRejected); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("resolved->rejected err = %v, want ErrInvalidTransition", err)
	}
}

func TestSweepExpiredIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()

	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	mustEarn(t, svc, userID, 200)

	voucher := models.VoucherRedemption{
		UserID:           userID,
		RewardID:         uuid.New(),
		Title:            "$10 off",
		Value:            10,
		PointsUsed:       100,
		Status:           models.VoucherConfirmed,
		ConfirmationCode: uuid.NewString(),
		RedeemedAt:       base,
		ExpiresAt:        base.Add(30 * 24 * time.Hour),
	}
	if err := svc.db.Create(&voucher).Error; err != nil {
		t.Fatalf("create voucher: %v", err)
	}

	// Jump past both expiry horizons.
	svc.now = func() time.Time { return base.AddDate(2, 0, 0) }

	points, vouchers, err := svc.SweepExpired()
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if points != 1 || vouchers != 1 {
		t.Fatalf("first sweep = (%d, %d), want (1, 1)", points, vouchers)
	}

	points, vouchers, err = svc.SweepExpired()
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if points != 0 || vouchers != 0 {
		t.Fatalf("second sweep = (%d, %d), want (0, 0)", points, vouchers)
	}

	account := accountFor(t, svc, userID)
	if account.Points != 0 {
		t.Fatalf("balance = %d, want 0", account.Points)
	}

	var expired models.VoucherRedemption
	svc.db.First(&expired, "id = ?", voucher.ID)
	if expired.Status != models.VoucherExpired {
		t.Fatalf("voucher status = %q, want expired", expired.Status)
	}

	if err := svc.Reconcile(userID); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
}

func TestEndToEndRedemptionScenario(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()

	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	// Old accrual outside the rolling window, later fully expired.
	svc.now = func() time.Time { return base.AddDate(0, 0, -400) }
	mustEarn(t, svc, userID, 125000)

	var oldBatch models.PointsExpiry
	if err := svc.db.Where("user_id = ?", userID).First(&oldBatch).Error; err != nil {
		t.Fatalf("load old batch: %v", err)
	}

	// Accrual inside the window.
	svc.now = func() time.Time { return base.AddDate(0, 0, -350) }
	mustEarn(t, svc, userID, 125000)

	svc.now = func() time.Time { return base }
	if err := svc.ExpirePoints(oldBatch.ID); err != nil {
		t.Fatalf("expire old batch: %v", err)
	}

	snapshot, err := svc.Snapshot(userID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snapshot.Points != 125000 || snapshot.LifetimePoints != 250000 {
		t.Fatalf("snapshot = %+v, want points 125000 lifetime 250000", snapshot)
	}
	if snapshot.YearlySpend != 125000 || snapshot.Tier != TierSilver {
		t.Fatalf("snapshot = %+v, want spend 125000 silver", snapshot)
	}

	reward := models.RewardItem{
		Title:    "$500 off voucher",
		Points:   20000,
		Type:     models.RewardTypeVoucher,
		Value:    500,
		IsActive: true,
	}
	if err := svc.db.Create(&reward).Error; err != nil {
		t.Fatalf("create reward: %v", err)
	}

	voucher, err := svc.RedeemReward(userID, reward.ID)
	if err != nil {
		t.Fatalf("RedeemReward: %v", err)
	}
	if voucher.Status != models.VoucherPending {
		t.Fatalf("voucher status = %q, want pending", voucher.Status)
	}

	account := accountFor(t, svc, userID)
	if account.Points != 105000 {
		t.Fatalf("balance = %d, want 105000", account.Points)
	}

	mustEarn(t, svc, userID, 15000)

	snapshot, err = svc.Snapshot(userID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snapshot.Points != 120000 {
		t.Fatalf("points = %d, want 120000", snapshot.Points)
	}
	if snapshot.LifetimePoints != 265000 {
		t.Fatalf("lifetime = %d, want 265000", snapshot.LifetimePoints)
	}
	if snapshot.YearlySpend != 140000 {
		t.Fatalf("spend = %d, want 140000", snapshot.YearlySpend)
	}
	if snapshot.Tier != TierSilver {
		t.Fatalf("tier = %q, want silver", snapshot.Tier)
	}

	if err := svc.Reconcile(userID); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()

	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		offset := i
		svc.now = func() time.Time { return base.Add(time.Duration(offset) * time.Hour) }
		mustEarn(t, svc, userID, int64(100*(i+1)))
	}

	entries, total, err := svc.History(userID, 10, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if total != 3 || len(entries) != 3 {
		t.Fatalf("history = %d entries, total %d, want 3/3", len(entries), total)
	}
	if entries[0].PointsAmount != 300 || entries[2].PointsAmount != 100 {
		t.Fatalf("history not newest first: %+v", entries)
	}
}

func TestSnapshotForUnknownUserDefaultsToBronze(t *testing.T) {
	svc := newTestService(t)

	snapshot, err := svc.Snapshot(uuid.New())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snapshot.Tier != TierBronze {
		t.Fatalf("tier = %q, want bronze", snapshot.Tier)
	}
	if snapshot.Points != 0 || snapshot.LifetimePoints != 0 {
		t.Fatalf("snapshot = %+v, want zeroes", snapshot)
	}
	if snapshot.NextTier != TierSilver {
		t.Fatalf("next tier = %q, want silver", snapshot.NextTier)
	}
}
