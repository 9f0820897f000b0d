package waste

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
)

// Credits computes the signed credit award for one disposal event:
// round(base[method] * weightKg), half away from zero. Pure; identical
// inputs always produce identical output.
func Credits(category Category, method enums.DisposalMethod, weightKg decimal.Decimal) (int64, error) {
	base, ok := category.BaseCredits[method]
	if !ok {
		return 0, fmt.Errorf("category %q does not support method %q", category.ID, method)
	}
	return decimal.NewFromInt(base).Mul(weightKg).Round(0).IntPart(), nil
}
