package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. ID is caller supplied (SKU style) or a generated UUID.
// Products are not edited while a sale references them; items keep their own snapshot.
type Product struct {
	ID        string          `gorm:"type:varchar(64);primaryKey"`
	Name      string          `gorm:"index;not null"`
	Barcode   *string         `gorm:"type:varchar(64);uniqueIndex"`
	Category  string          `gorm:"not null;default:'General'"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `gorm:"index"`

	Stock []Stock `gorm:"foreignKey:ProductID"`
}

// StockBySite flattens the preloaded stock rows into site name → quantity.
// Rows whose Site was not preloaded are skipped.
func (p *Product) StockBySite() map[string]int {
	out := make(map[string]int, len(p.Stock))
	for _, s := range p.Stock {
		if s.Site != nil {
			out[s.Site.Name] = s.Qty
		}
	}
	return out
}
