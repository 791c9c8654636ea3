package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock movement kinds.
const (
	MovementSale    = "venta"
	MovementCancel  = "cancelacion"
	MovementInitial = "inicial"
)

// StockMovement records every change applied to a Stock row.
// Qty is signed: positive = entrada, negative = salida.
type StockMovement struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   string     `gorm:"type:varchar(64);not null;index"`
	SiteID      uuid.UUID  `gorm:"type:uuid;not null"`
	Kind        string     `gorm:"type:varchar(20);not null"`
	Qty         int        `gorm:"not null"`
	QtyAfter    *int       // nil when the upsert did not read the row back
	ReferenceID *uuid.UUID `gorm:"type:uuid;index"` // sale id
	Note        string
	CreatedAt   time.Time `gorm:"index"`

	Site *Site `gorm:"foreignKey:SiteID"`
}
