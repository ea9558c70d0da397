package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/quench/internal/middleware"
	"github.com/example/quench/internal/models"
	"github.com/example/quench/internal/rewards"
	"github.com/example/quench/internal/services"
	"github.com/example/quench/internal/utils"
)

// RewardsHandler manages loyalty rewards endpoints.
type RewardsHandler struct {
	db       *gorm.DB
	svc      *rewards.Service
	telegram *services.TelegramService
}

// NewRewardsHandler constructs RewardsHandler.
func NewRewardsHandler(db *gorm.DB, svc *rewards.Service, telegram *services.TelegramService) *RewardsHandler {
	return &RewardsHandler{db: db, svc: svc, telegram: telegram}
}

// rewardsError maps service errors to HTTP responses. Precondition failures
// come back as user-facing messages, never as generic 500s.
func rewardsError(err error) error {
	switch {
	case errors.Is(err, rewards.ErrInvalidAmount):
		return fiber.NewError(fiber.StatusBadRequest, "point amount must be positive")
	case errors.Is(err, rewards.ErrInsufficientPoints):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "not enough points")
	case errors.Is(err, rewards.ErrUnknownReward):
		return fiber.NewError(fiber.StatusNotFound, "reward not found")
	case errors.Is(err, rewards.ErrUnknownVoucher):
		return fiber.NewError(fiber.StatusNotFound, "voucher not found")
	case errors.Is(err, rewards.ErrRewardOutOfStock):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "reward out of stock")
	case errors.Is(err, rewards.ErrInvalidTransition):
		log.Printf("[Rewards] rejected invalid transition: %v", err)
		return fiber.NewError(fiber.StatusConflict, "invalid status transition")
	default:
		return err
	}
}

// GetAccount returns the rewards account snapshot.
func (h *RewardsHandler) GetAccount(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	snapshot, err := h.svc.Snapshot(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": snapshot})
}

// GetHistory returns the reverse-chronological points ledger.
func (h *RewardsHandler) GetHistory(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	entries, total, err := h.svc.History(userID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    entries,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetExpiringPoints returns point batches expiring within the window.
func (h *RewardsHandler) GetExpiringPoints(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	days := c.QueryInt("days", 30)
	batches, err := h.svc.ExpiringPoints(userID, days)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": batches})
}

// ListVouchers returns the user's voucher redemptions, optionally filtered
// by status.
func (h *RewardsHandler) ListVouchers(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	status := c.Query("status")
	switch status {
	case "", models.VoucherPending, models.VoucherConfirmed, models.VoucherUsed, models.VoucherExpired:
	default:
		return fiber.NewError(fiber.StatusBadRequest, "invalid voucher status")
	}

	vouchers, err := h.svc.VouchersByStatus(userID, status)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": vouchers})
}

// ListCatalog returns the active reward catalog. Public.
func (h *RewardsHandler) ListCatalog(c *fiber.Ctx) error {
	items, err := h.svc.Catalog()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

type redeemRequest struct {
	RewardID string `json:"reward_id"`
}

// Redeem claims a reward against the user's balance.
func (h *RewardsHandler) Redeem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req redeemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	rewardID, err := uuid.Parse(req.RewardID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid reward id")
	}

	voucher, err := h.svc.RedeemReward(userID, rewardID)
	if err != nil {
		return rewardsError(err)
	}

	snapshot, err := h.svc.Snapshot(userID)
	if err != nil {
		return err
	}

	data := fiber.Map{"account": snapshot}
	if voucher != nil {
		data["voucher"] = voucher
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

type missingPointsRequest struct {
	OrderID        string `json:"order_id"`
	OrderDate      string `json:"order_date"`
	ExpectedPoints int64  `json:"expected_points"`
	Reason         string `json:"reason"`
}

// ReportMissingPoints files a claim for an order that did not accrue points.
func (h *RewardsHandler) ReportMissingPoints(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req missingPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	orderDate, err := time.Parse(time.RFC3339, req.OrderDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order date")
	}

	report, err := h.svc.ReportMissingPoints(userID, orderID, orderDate, req.ExpectedPoints, req.Reason)
	if err != nil {
		return rewardsError(err)
	}

	if h.telegram != nil {
		var user models.User
		if err := h.db.First(&user, "id = ?", userID).Error; err == nil {
			go func() {
				notifyErr := h.telegram.NotifyMissingPointsReport(services.MissingPointsNotification{
					ReportID:       report.ID.String(),
					OrderID:        report.OrderID.String(),
					UserName:       user.DisplayName,
					UserPhone:      user.Phone,
					ExpectedPoints: report.ExpectedPoints,
					Reason:         report.Reason,
				})
				if notifyErr != nil {
					log.Printf("[Rewards] missing points notification failed: %v", notifyErr)
				}
			}()
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": report})
}

// ListMissingPointsReports returns the user's claims.
func (h *RewardsHandler) ListMissingPointsReports(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	reports, err := h.svc.MissingPointsReports(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": reports})
}

type updateVoucherStatusRequest struct {
	Status  string  `json:"status"`
	UsedAt  *string `json:"used_at"`
	OrderID *string `json:"order_id"`
}

// UpdateVoucherStatus moves a voucher through its lifecycle. Used by
// fulfilment and support tooling.
func (h *RewardsHandler) UpdateVoucherStatus(c *fiber.Ctx) error {
	voucherID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateVoucherStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var usedAt *time.Time
	if req.UsedAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.UsedAt)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid used_at")
		}
		usedAt = &parsed
	}

	var orderID *uuid.UUID
	if req.OrderID != nil {
		parsed, err := uuid.Parse(*req.OrderID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
		}
		orderID = &parsed
	}

	if err := h.svc.UpdateVoucherStatus(voucherID, req.Status, usedAt, orderID); err != nil {
		return rewardsError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "voucher updated"})
}

// ExpireBatch triggers expiry of one point batch. Idempotent ops hook; the
// cron sweep handles the normal path.
func (h *RewardsHandler) ExpireBatch(c *fiber.Ctx) error {
	batchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.svc.ExpirePoints(batchID); err != nil {
		return rewardsError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "batch expired"})
}

// Admin reward catalog management

// CreateRewardItem persists a new catalog row after shape validation.
func (h *RewardsHandler) CreateRewardItem(c *fiber.Ctx) error {
	var item models.RewardItem
	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	item.IsActive = true

	if err := h.svc.SaveRewardItem(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

// UpdateRewardItem updates an existing catalog row.
func (h *RewardsHandler) UpdateRewardItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var item models.RewardItem
	if err := h.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "reward not found")
		}
		return err
	}

	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	item.ID = id

	if err := h.svc.SaveRewardItem(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// ResolveMissingPoints updates a claim's status. Crediting points happens
// through a separate adjustment, never automatically.
func (h *RewardsHandler) ResolveMissingPoints(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.svc.ResolveMissingPoints(reportID, req.Status); err != nil {
		return rewardsError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "report updated"})
}

type adjustPointsRequest struct {
	UserID      string `json:"user_id"`
	Points      int64  `json:"points"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// AdjustPoints credits points manually (support workflow). Accepts the
// adjusted and restored transaction types only.
func (h *RewardsHandler) AdjustPoints(c *fiber.Ctx) error {
	var req adjustPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	if req.Type != models.PointsAdjusted && req.Type != models.PointsRestored {
		return fiber.NewError(fiber.StatusBadRequest, "type must be adjusted or restored")
	}

	balance, err := h.svc.EarnPoints(userID, req.Points, req.Type, req.Description, nil, "")
	if err != nil {
		return rewardsError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"points": balance}})
}
