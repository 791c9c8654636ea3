package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ─── Checkout ────────────────────────────────────────────────────────────────

// CartLine is one row of the cashier's cart. Price is what the UI displayed.
type CartLine struct {
	ProductID string          `json:"id"    validate:"required,max=64"`
	Qty       int             `json:"qty"   validate:"required,min=1"`
	Price     decimal.Decimal `json:"price" validate:"min=0"`
}

// Totals are the figures shown to the customer; they are re-checked server side.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal" validate:"min=0"`
	Discount decimal.Decimal `json:"discount" validate:"min=0"`
	Total    decimal.Decimal `json:"total"    validate:"min=0"`
}

type CheckoutRequest struct {
	// Emptiness is reported by the service as ErrEmptyCart (400), not as a field error.
	Cart       []CartLine `json:"cart"       validate:"dive"`
	Totals     Totals     `json:"totals"`
	Method     string     `json:"method"     validate:"omitempty,oneof=efectivo tarjeta transferencia qr"`
	Notes      string     `json:"notes"      validate:"max=500"`
	SiteName   string     `json:"siteName"   validate:"omitempty,max=80"`
	CustomerID *string    `json:"customerId" validate:"omitempty,max=64"`
	EmployeeID *string    `json:"employeeId" validate:"omitempty,max=64"`
}

type CheckoutResponse struct {
	OK    bool   `json:"ok"`
	Folio string `json:"folio"`
	ID    string `json:"id"`
}

// ─── Cancellation ────────────────────────────────────────────────────────────

// PIN accepts both "1111" and 1111 in JSON bodies. Numbers are written in
// their shortest form, so 1111.0 and 1.111e3 read as "1111".
type PIN string

func (p *PIN) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = PIN(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return err
	}
	*p = PIN(d.String())
	return nil
}

type CancelSaleRequest struct {
	PIN PIN `json:"pin"`
}

// ─── Filter / List ───────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /api/sales. Limit 0 = no limit.
type SaleFilter struct {
	Status string `form:"status" validate:"omitempty,oneof=completada cancelada"`
	Site   string `form:"site"   validate:"omitempty,max=80"`
	Limit  int    `form:"limit"  validate:"min=0,max=1000"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
}

// SaleResponse is used for both list rows (Items omitted) and the sale detail.
type SaleResponse struct {
	ID         string             `json:"id"`
	Folio      string             `json:"folio"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	Discount   decimal.Decimal    `json:"discount"`
	Total      decimal.Decimal    `json:"total"`
	Method     string             `json:"method"`
	Status     string             `json:"status"`
	Notes      *string            `json:"notes"`
	CustomerID *string            `json:"customerId"`
	EmployeeID *string            `json:"employeeId"`
	SiteID     *string            `json:"siteId"`
	SiteName   string             `json:"siteName,omitempty"`
	CreatedAt  string             `json:"createdAt"`
	Items      []SaleItemResponse `json:"items,omitempty"`
}

// TicketFile is a rendered ticket ready to be streamed.
type TicketFile struct {
	Filename string
	Content  []byte
}
