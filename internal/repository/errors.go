package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound aliases gorm's sentinel so callers need not import gorm.
	ErrNotFound = gorm.ErrRecordNotFound
	// ErrDuplicate is returned when a unique constraint rejects an insert.
	ErrDuplicate = errors.New("registro duplicado")
	// ErrInsufficientStock is returned by ReserveTx when qty on hand is lower than requested.
	ErrInsufficientStock = errors.New("stock insuficiente")
)

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err carries SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
