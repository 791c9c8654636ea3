package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateProductRequest is the body of POST /api/products. Stock, when given, is
// placed at SiteName (default site when empty).
type CreateProductRequest struct {
	ID       string          `json:"id"       validate:"omitempty,max=64"`
	Name     string          `json:"name"     validate:"required,min=1,max=160"`
	Barcode  *string         `json:"barcode"  validate:"omitempty,max=64"`
	Category string          `json:"category" validate:"omitempty,max=80"`
	Price    decimal.Decimal `json:"price"    validate:"min=0"`
	Stock    int             `json:"stock"    validate:"min=0"`
	SiteName string          `json:"siteName" validate:"omitempty,max=80"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

// ProductFilter is bound from the query string of GET /api/products.
type ProductFilter struct {
	Search string `form:"search"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Barcode     *string         `json:"barcode"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   string          `json:"createdAt"`
	StockBySite map[string]int  `json:"stockBySite"`
}

// PriceCheckResponse is returned by the barcode price check endpoint.
type PriceCheckResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

// StockMovementFilter is bound from the query string of GET /api/products/:id/movements.
type StockMovementFilter struct {
	Kind  string `form:"kind"  validate:"omitempty,oneof=venta cancelacion inicial"`
	Limit int    `form:"limit" validate:"min=0,max=500"`
}

type StockMovementResponse struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId"`
	SiteName    string  `json:"siteName"`
	Kind        string  `json:"kind"`
	Qty         int     `json:"qty"`
	QtyAfter    *int    `json:"qtyAfter"`
	ReferenceID *string `json:"referenceId"`
	Note        string  `json:"note"`
	CreatedAt   string  `json:"createdAt"`
}
