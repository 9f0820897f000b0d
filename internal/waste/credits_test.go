package waste

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
)

func mustCategory(t *testing.T, id string) Category {
	t.Helper()
	catalog, err := NewCatalog(defaultCategories)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	category, ok := catalog.Lookup(id)
	if !ok {
		t.Fatalf("category %q missing from default catalog", id)
	}
	return category
}

func TestCreditsRoundsHalfAwayFromZero(t *testing.T) {
	category := mustCategory(t, "plastic_bottle") // recycle base 10/kg

	cases := []struct {
		weight string
		want   int64
	}{
		{"1", 10},
		{"0.5", 5},
		{"0.25", 3},  // 2.5 rounds away from zero
		{"0.04", 0},  // 0.4 rounds down
		{"2.35", 24}, // 23.5 rounds up
	}
	for _, tc := range cases {
		got, err := Credits(category, enums.DisposalMethodRecycle, decimal.RequireFromString(tc.weight))
		if err != nil {
			t.Fatalf("Credits(%s): %v", tc.weight, err)
		}
		if got != tc.want {
			t.Fatalf("Credits(%s) = %d, want %d", tc.weight, got, tc.want)
		}
	}
}

func TestCreditsIsIdempotent(t *testing.T) {
	category := mustCategory(t, "metal_can")
	weight := decimal.RequireFromString("1.337")

	first, err := Credits(category, enums.DisposalMethodRecycle, weight)
	if err != nil {
		t.Fatalf("Credits: %v", err)
	}
	second, err := Credits(category, enums.DisposalMethodRecycle, weight)
	if err != nil {
		t.Fatalf("Credits: %v", err)
	}
	if first != second {
		t.Fatalf("identical inputs produced %d then %d", first, second)
	}
}

func TestCreditsLandfillIsNegative(t *testing.T) {
	category := mustCategory(t, "e_waste")

	got, err := Credits(category, enums.DisposalMethodLandfill, decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("Credits: %v", err)
	}
	if got != -30 {
		t.Fatalf("landfilled e-waste should cost credits, got %d", got)
	}
}

func TestCreditsUnsupportedMethod(t *testing.T) {
	category := mustCategory(t, "food_waste")

	if _, err := Credits(category, enums.DisposalMethodRecycle, decimal.NewFromInt(1)); err == nil {
		t.Fatal("food waste has no recycle entry; expected an error")
	}
}

func TestDefaultCatalogValidates(t *testing.T) {
	if _, err := NewCatalog(defaultCategories); err != nil {
		t.Fatalf("built-in catalog must validate: %v", err)
	}
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	broken := append([]Category{}, defaultCategories...)
	broken = append(broken, defaultCategories[0])

	if _, err := NewCatalog(broken); err == nil {
		t.Fatal("duplicate ids must be rejected")
	}
}
