package rewards

import (
	"testing"

	"github.com/example/quench/internal/models"
)

func intPtr(v int) *int { return &v }

func TestValidateRewardItem(t *testing.T) {
	cases := []struct {
		name    string
		item    models.RewardItem
		wantErr bool
	}{
		{
			name: "valid voucher",
			item: models.RewardItem{Title: "$10 off", Points: 100, Type: models.RewardTypeVoucher, Value: 10},
		},
		{
			name:    "voucher without value",
			item:    models.RewardItem{Title: "$10 off", Points: 100, Type: models.RewardTypeVoucher},
			wantErr: true,
		},
		{
			name: "valid bundle",
			item: models.RewardItem{Title: "Tasting pack", Points: 500, Type: models.RewardTypeBundle},
		},
		{
			name:    "bundle with stock",
			item:    models.RewardItem{Title: "Tasting pack", Points: 500, Type: models.RewardTypeBundle, Stock: intPtr(5)},
			wantErr: true,
		},
		{
			name: "valid swag with stock",
			item: models.RewardItem{Title: "Glassware", Points: 200, Type: models.RewardTypeSwag, Stock: intPtr(10)},
		},
		{
			name:    "swag with negative stock",
			item:    models.RewardItem{Title: "Glassware", Points: 200, Type: models.RewardTypeSwag, Stock: intPtr(-1)},
			wantErr: true,
		},
		{
			name:    "missing title",
			item:    models.RewardItem{Points: 100, Type: models.RewardTypeVoucher, Value: 10},
			wantErr: true,
		},
		{
			name:    "non-positive points",
			item:    models.RewardItem{Title: "$10 off", Points: 0, Type: models.RewardTypeVoucher, Value: 10},
			wantErr: true,
		},
		{
			name:    "unknown type",
			item:    models.RewardItem{Title: "Mystery", Points: 100, Type: "mystery"},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRewardItem(&tc.item)
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCatalogReturnsActiveItemsCheapestFirst(t *testing.T) {
	svc := newTestService(t)

	items := []models.RewardItem{
		{Title: "Expensive", Points: 900, Type: models.RewardTypeBundle, IsActive: true},
		{Title: "Cheap", Points: 100, Type: models.RewardTypeVoucher, Value: 5, IsActive: true},
		{Title: "Retired", Points: 50, Type: models.RewardTypeVoucher, Value: 1, IsActive: false},
	}
	for i := range items {
		if err := svc.db.Create(&items[i]).Error; err != nil {
			t.Fatalf("create item: %v", err)
		}
	}

	catalog, err := svc.Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("catalog has %d items, want 2", len(catalog))
	}
	if catalog[0].Title != "Cheap" || catalog[1].Title != "Expensive" {
		t.Fatalf("catalog order wrong: %+v", catalog)
	}
}

func TestSaveRewardItemRejectsInvalid(t *testing.T) {
	svc := newTestService(t)

	item := models.RewardItem{Title: "", Points: 100, Type: models.RewardTypeVoucher, Value: 10}
	if err := svc.SaveRewardItem(&item); err == nil {
		t.Fatal("expected validation error")
	}

	var count int64
	svc.db.Model(&models.RewardItem{}).Count(&count)
	if count != 0 {
		t.Fatalf("invalid item persisted, count = %d", count)
	}
}
