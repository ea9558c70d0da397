package handlers

import (
	"errors"
	"fmt"
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

// OrderHandler manages order endpoints.
type OrderHandler struct {
	db       *gorm.DB
	rewards  *rewards.Service
	telegram *services.TelegramService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, rewardsSvc *rewards.Service, telegram *services.TelegramService) *OrderHandler {
	return &OrderHandler{db: db, rewards: rewardsSvc, telegram: telegram}
}

type orderProductRequest struct {
	ProductID        string  `json:"product_id"`
	ProductVariantID string  `json:"product_variant_id"`
	ProductName      string  `json:"product_name"`
	VariantLabel     string  `json:"variant_label"`
	Quantity         int     `json:"quantity"`
	UnitPrice        float64 `json:"unit_price"`
	LineTotal        float64 `json:"line_total"`
}

type createOrderRequest struct {
	DeliveryMethod    string                `json:"delivery_method"`
	DeliveryAddressID string                `json:"delivery_address_id"`
	PickupStoreID     string                `json:"pickup_store_id"`
	PaymentMethod     string                `json:"payment_method"`
	Currency          string                `json:"currency"`
	Products          []orderProductRequest `json:"products"`
	VoucherCode       string                `json:"voucher_code"`
	Notes             string                `json:"notes"`
}

// CreateOrder allows authenticated users to place an order. The priced total
// feeds the loyalty ledger: one point per dollar.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}
	if !user.IsOfAge {
		return fiber.NewError(fiber.StatusForbidden, "age verification required")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Products) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "order has no items")
	}

	order := models.Order{
		UserID:         userID,
		DeliveryMethod: req.DeliveryMethod,
		PaymentMethod:  req.PaymentMethod,
		Currency:       req.Currency,
		Notes:          req.Notes,
		Status:         "pending",
		PlacedAt:       time.Now(),
	}

	if order.Currency == "" {
		order.Currency = "AUD"
	}

	if req.DeliveryMethod == "address_delivery" && req.DeliveryAddressID != "" {
		if id, err := uuid.Parse(req.DeliveryAddressID); err == nil {
			var address models.UserAddress
			if err := h.db.First(&address, "id = ? AND user_id = ?", id, userID).Error; err == nil {
				order.DeliveryAddressID = &address.ID
				order.DeliveryAddressLine = address.AddressLine
				order.DeliveryApartment = address.Apartment
				order.DeliveryCity = address.City
				order.DeliveryState = address.State
			}
		}
	}

	if req.DeliveryMethod == "store_pickup" && req.PickupStoreID != "" {
		if id, err := uuid.Parse(req.PickupStoreID); err == nil {
			order.PickupStoreID = &id
		}
	}

	var subtotal float64
	for _, p := range req.Products {
		lineTotal := p.LineTotal
		if lineTotal == 0 {
			lineTotal = p.UnitPrice * float64(p.Quantity)
		}

		item := models.OrderItem{
			ProductName:  p.ProductName,
			VariantLabel: p.VariantLabel,
			Quantity:     p.Quantity,
			UnitPrice:    p.UnitPrice,
			LineTotal:    lineTotal,
		}

		if p.ProductID != "" {
			if id, err := uuid.Parse(p.ProductID); err == nil {
				item.ProductID = &id
			}
		}
		if p.ProductVariantID != "" {
			if id, err := uuid.Parse(p.ProductVariantID); err == nil {
				item.ProductVariantID = &id
			}
		}

		subtotal += item.LineTotal
		order.Items = append(order.Items, item)
	}

	quote := services.QuoteOrder(subtotal, req.DeliveryMethod)
	order.Subtotal = quote.Subtotal
	order.GSTAmount = quote.GSTAmount
	order.DeliveryFee = quote.DeliveryFee
	order.TotalAmount = quote.Total

	var voucher *models.VoucherRedemption
	if req.VoucherCode != "" {
		found, err := h.lookupVoucher(userID, req.VoucherCode)
		if err != nil {
			return err
		}
		voucher = found
		order.VoucherCode = req.VoucherCode
		order.VoucherDiscount = voucher.Value
		order.TotalAmount -= voucher.Value
		if order.TotalAmount < 0 {
			order.TotalAmount = 0
		}
	}

	if order.OrderNumber == "" {
		order.OrderNumber = h.generateOrderNumber()
	}

	// The order and the voucher it spends commit together: a discounted
	// order can never land while the voucher stays reusable.
	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if voucher != nil {
			return h.rewards.MarkVoucherUsed(tx, voucher.ID, order.ID)
		}
		return nil
	}); err != nil {
		if errors.Is(err, rewards.ErrInvalidTransition) || errors.Is(err, rewards.ErrUnknownVoucher) {
			return fiber.NewError(fiber.StatusBadRequest, "voucher is not usable")
		}
		return err
	}

	if _, err := h.rewards.EarnOrderPoints(userID, &order); err != nil {
		log.Printf("[Order] points accrual failed for order %s: %v", order.ID, err)
	} else if order.PointsEarned > 0 {
		if err := h.db.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("points_earned", order.PointsEarned).Error; err != nil {
			log.Printf("[Order] failed to record earned points for order %s: %v", order.ID, err)
		}
	}

	go h.notifyNewOrder(order, user, req)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":            order.ID,
			"order_number":  order.OrderNumber,
			"status":        order.Status,
			"placed_at":     order.PlacedAt,
			"subtotal":      order.Subtotal,
			"gst_amount":    order.GSTAmount,
			"delivery_fee":  order.DeliveryFee,
			"total":         order.TotalAmount,
			"currency":      order.Currency,
			"points_earned": order.PointsEarned,
		},
	})
}

// lookupVoucher resolves a confirmed rewards voucher by confirmation code.
func (h *OrderHandler) lookupVoucher(userID uuid.UUID, code string) (*models.VoucherRedemption, error) {
	var voucher models.VoucherRedemption
	if err := h.db.First(&voucher, "confirmation_code = ? AND user_id = ?", code, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "voucher not found")
		}
		return nil, err
	}
	if voucher.Status != models.VoucherConfirmed {
		return nil, fiber.NewError(fiber.StatusBadRequest, "voucher is not usable")
	}
	return &voucher, nil
}

func (h *OrderHandler) notifyNewOrder(order models.Order, user models.User, req createOrderRequest) {
	if h.telegram == nil {
		return
	}

	items := make([]services.OrderItemNotification, 0, len(req.Products))
	for _, p := range req.Products {
		items = append(items, services.OrderItemNotification{
			Name:     p.ProductName,
			Quantity: p.Quantity,
			Price:    p.UnitPrice,
			Currency: order.Currency,
		})
	}

	userName := user.DisplayName
	if userName == "" {
		userName = fmt.Sprintf("%s %s", user.FirstName, user.LastName)
	}

	notification := services.OrderNotification{
		OrderID:        order.ID.String(),
		OrderNumber:    order.OrderNumber,
		Items:          items,
		TotalAmount:    order.TotalAmount,
		Currency:       order.Currency,
		UserName:       userName,
		UserPhone:      user.Phone,
		PaymentMethod:  order.PaymentMethod,
		DeliveryMethod: order.DeliveryMethod,
		PointsEarned:   order.PointsEarned,
	}

	if err := h.telegram.NotifyNewOrder(notification); err != nil {
		log.Printf("[Order] Telegram notification failed: %v", err)
	}
}

// ListOrders returns orders for authenticated user.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Where("user_id = ?", userID).Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order for the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").
		First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

func (h *OrderHandler) generateOrderNumber() string {
	return fmt.Sprintf("#%d", time.Now().UnixNano()%1000000000)
}
