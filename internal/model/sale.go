package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods accepted at checkout.
const (
	MethodEfectivo      = "efectivo"
	MethodTarjeta       = "tarjeta"
	MethodTransferencia = "transferencia"
	MethodQR            = "qr"
)

// Sale status. A sale moves completada → cancelada exactly once.
const (
	StatusCompletada = "completada"
	StatusCancelada  = "cancelada"
)

// Sale is the ticket header. Items are created in the same transaction and never
// edited afterwards.
type Sale struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Folio      string          `gorm:"type:varchar(32);uniqueIndex;not null"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method     string          `gorm:"type:varchar(20);not null"`
	Status     string          `gorm:"type:varchar(20);not null;default:'completada'"`
	Notes      *string
	CustomerID *string    `gorm:"type:varchar(64)"`
	EmployeeID *string    `gorm:"type:varchar(64)"`
	SiteID     *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time  `gorm:"index"`

	Items []SaleItem `gorm:"foreignKey:SaleID"`
	Site  *Site      `gorm:"foreignKey:SiteID"`
}

// SaleItem snapshots the product name and price at sale time.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Position  int             `gorm:"not null"`
	ProductID string          `gorm:"type:varchar(64);index;not null"`
	Name      string          `gorm:"not null"`
	Qty       int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Amount is price × qty for the line.
func (i SaleItem) Amount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// IsCancelled reports whether the sale was already reversed.
func (s *Sale) IsCancelled() bool { return s.Status == StatusCancelada }
