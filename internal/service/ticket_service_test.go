package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketRender(t *testing.T) {
	m, _ := seeded()
	id := checkoutOne(t, newSaleServiceFor(m), cart(line("SKU1", 2, "10"), line("SKU2", 1, "3.50")))

	file, err := NewTicketService(memSales{m}, "JANNY POS").Render(context.Background(), id)
	require.NoError(t, err)
	assert.Regexp(t, `^ticket-TCK-\d{8}-[0-9A-Z]{6}\.pdf$`, file.Filename)
	assert.True(t, bytes.HasPrefix(file.Content, []byte("%PDF-")))
}

func TestTicketRender_NotFound(t *testing.T) {
	_, err := NewTicketService(memSales{newMemStore()}, "JANNY POS").Render(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSaleNotFound)
}
