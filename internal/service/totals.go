package service

import (
	"fmt"

	"jannypos/internal/dto"
	"jannypos/internal/model"

	"github.com/shopspring/decimal"
)

// pricedLine pairs a cart line with the catalog product it refers to.
type pricedLine struct {
	line    dto.CartLine
	product *model.Product
}

// verifyTotals recomputes the cart against catalog prices and checks the
// client-supplied figures. It returns the subtotal and total to persist.
//
// Rules, each within tol:
//   - every line price equals the catalog price
//   - subtotal equals Σ catalog price × qty
//   - 0 ≤ discount ≤ subtotal
//   - total equals subtotal − discount
func verifyTotals(lines []pricedLine, totals dto.Totals, tol decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	subtotal := decimal.Zero
	for _, l := range lines {
		if !within(l.line.Price, l.product.Price, tol) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: precio de %s es %s, se recibió %s",
				ErrTotalsMismatch, l.product.ID, l.product.Price.StringFixed(2), l.line.Price.StringFixed(2))
		}
		subtotal = subtotal.Add(l.product.Price.Mul(decimal.NewFromInt(int64(l.line.Qty))))
	}

	if !within(totals.Subtotal, subtotal, tol) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: subtotal esperado %s, se recibió %s",
			ErrTotalsMismatch, subtotal.StringFixed(2), totals.Subtotal.StringFixed(2))
	}
	if totals.Discount.IsNegative() || totals.Discount.GreaterThan(subtotal) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: descuento %s fuera de rango",
			ErrTotalsMismatch, totals.Discount.StringFixed(2))
	}
	total := subtotal.Sub(totals.Discount)
	if !within(totals.Total, total, tol) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: total esperado %s, se recibió %s",
			ErrTotalsMismatch, total.StringFixed(2), totals.Total.StringFixed(2))
	}
	return subtotal, total, nil
}

func within(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}
