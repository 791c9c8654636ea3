package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock is the on-hand quantity of a product at a site.
// Rows are created on first upsert and only move through checkout, cancellation
// and initial stock on product creation.
type Stock struct {
	ProductID string    `gorm:"type:varchar(64);primaryKey"`
	SiteID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Qty       int       `gorm:"not null;default:0"`
	UpdatedAt time.Time

	Site *Site `gorm:"foreignKey:SiteID"`
}
