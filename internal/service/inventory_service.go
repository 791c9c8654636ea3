package service

import (
	"context"
	"time"

	"jannypos/internal/dto"
	"jannypos/internal/repository"
)

// InventoryService exposes the stock movement ledger written by checkout,
// cancellation and product creation.
type InventoryService interface {
	ListMovements(ctx context.Context, productID string, filter dto.StockMovementFilter) ([]dto.StockMovementResponse, error)
}

type inventoryService struct {
	movements repository.StockMovementRepository
}

func NewInventoryService(movements repository.StockMovementRepository) InventoryService {
	return &inventoryService{movements: movements}
}

func (s *inventoryService) ListMovements(ctx context.Context, productID string, filter dto.StockMovementFilter) ([]dto.StockMovementResponse, error) {
	rows, err := s.movements.List(ctx, repository.StockMovementFilter{
		ProductID: productID,
		Kind:      filter.Kind,
		Limit:     filter.Limit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.StockMovementResponse, 0, len(rows))
	for _, m := range rows {
		r := dto.StockMovementResponse{
			ID:        m.ID.String(),
			ProductID: m.ProductID,
			Kind:      m.Kind,
			Qty:       m.Qty,
			QtyAfter:  m.QtyAfter,
			Note:      m.Note,
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		}
		if m.Site != nil {
			r.SiteName = m.Site.Name
		}
		if m.ReferenceID != nil {
			ref := m.ReferenceID.String()
			r.ReferenceID = &ref
		}
		out = append(out, r)
	}
	return out, nil
}
