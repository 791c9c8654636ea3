package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const folioPrefix = "TCK-"

// NewFolio builds a ticket code TCK-YYYYMMDD-XXXXXX: the local date of now and the
// first six characters of a random UUID, upper-cased.
func NewFolio(now time.Time) string {
	return folioPrefix + now.Format("20060102") + "-" + strings.ToUpper(uuid.NewString()[:6])
}
