package services

import "math"

// GST is included in displayed prices; the quote breaks it out for receipts.
const gstRate = 0.10

// Delivery fee tiers. Orders at or above the free-delivery threshold ship
// free, smaller orders pay a flat fee, tiny orders pay a surcharge on top.
const (
	freeDeliveryThreshold = 100.0
	standardDeliveryFee   = 9.95
	smallOrderThreshold   = 30.0
	smallOrderSurcharge   = 5.0
)

// OrderQuote is the priced breakdown of a cart.
type OrderQuote struct {
	Subtotal    float64 `json:"subtotal"`
	GSTAmount   float64 `json:"gst_amount"`
	DeliveryFee float64 `json:"delivery_fee"`
	Total       float64 `json:"total"`
}

// QuoteOrder prices a cart subtotal for the given delivery method. The
// rewards ledger consumes the resulting total as the "order amount"; it does
// not re-derive any of this arithmetic.
func QuoteOrder(subtotal float64, deliveryMethod string) OrderQuote {
	quote := OrderQuote{
		Subtotal:  round2(subtotal),
		GSTAmount: round2(subtotal - subtotal/(1+gstRate)),
	}

	if deliveryMethod == "address_delivery" {
		switch {
		case subtotal >= freeDeliveryThreshold:
			quote.DeliveryFee = 0
		case subtotal < smallOrderThreshold:
			quote.DeliveryFee = standardDeliveryFee + smallOrderSurcharge
		default:
			quote.DeliveryFee = standardDeliveryFee
		}
	}

	quote.Total = round2(quote.Subtotal + quote.DeliveryFee)
	return quote
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
