package service

import (
	"errors"

	"jannypos/internal/repository"
)

// Sentinel errors returned by the services. Handlers map them to HTTP status
// codes with errors.Is; the wrapped message is safe to show to the cashier.
var (
	ErrEmptyCart         = errors.New("carrito vacío")
	ErrInvalidPIN        = errors.New("PIN incorrecto")
	ErrSaleNotFound      = errors.New("venta no encontrada")
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrTotalsMismatch    = errors.New("los totales no coinciden")
	ErrInsufficientStock = repository.ErrInsufficientStock
	ErrDuplicateProduct  = errors.New("ya existe un producto con ese id o código de barras")
)
