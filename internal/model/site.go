package model

import (
	"time"

	"github.com/google/uuid"
)

// Site is a physical selling location.
type Site struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(80);uniqueIndex;not null"`
	CreatedAt time.Time
}
