package services

import "testing"

func TestQuoteOrderDeliveryFees(t *testing.T) {
	cases := []struct {
		name     string
		subtotal float64
		method   string
		wantFee  float64
	}{
		{"free delivery over threshold", 120.00, "address_delivery", 0},
		{"free delivery at threshold", 100.00, "address_delivery", 0},
		{"standard fee", 60.00, "address_delivery", 9.95},
		{"small order surcharge", 20.00, "address_delivery", 14.95},
		{"pickup never pays delivery", 20.00, "store_pickup", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote := QuoteOrder(tc.subtotal, tc.method)
			if quote.DeliveryFee != tc.wantFee {
				t.Fatalf("delivery fee = %.2f, want %.2f", quote.DeliveryFee, tc.wantFee)
			}
			if quote.Total != quote.Subtotal+quote.DeliveryFee {
				t.Fatalf("total = %.2f, want %.2f", quote.Total, quote.Subtotal+quote.DeliveryFee)
			}
		})
	}
}

func TestQuoteOrderBreaksOutIncludedGST(t *testing.T) {
	quote := QuoteOrder(110.00, "store_pickup")
	if quote.GSTAmount != 10.00 {
		t.Fatalf("gst = %.2f, want 10.00", quote.GSTAmount)
	}
	if quote.Subtotal != 110.00 {
		t.Fatalf("subtotal = %.2f, want 110.00", quote.Subtotal)
	}
}

func TestFormatPriceDefaultsToAUD(t *testing.T) {
	if got, want := FormatPrice(49.5, ""), "49 AUD"; got != want {
		t.Fatalf("FormatPrice = %q, want %q", got, want)
	}
	if got, want := FormatPrice(1250000, "AUD"), "1,250,000 AUD"; got != want {
		t.Fatalf("FormatPrice = %q, want %q", got, want)
	}
}
