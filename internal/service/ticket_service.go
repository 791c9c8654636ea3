package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"jannypos/internal/dto"
	"jannypos/internal/infra"
	"jannypos/internal/repository"

	"github.com/google/uuid"
)

// TicketService renders committed sales as printable PDF tickets.
type TicketService interface {
	Render(ctx context.Context, id uuid.UUID) (*dto.TicketFile, error)
}

type ticketService struct {
	sales        repository.SaleRepository
	businessName string
}

func NewTicketService(sales repository.SaleRepository, businessName string) TicketService {
	return &ticketService{sales: sales, businessName: businessName}
}

func (s *ticketService) Render(ctx context.Context, id uuid.UUID) (*dto.TicketFile, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	var buf bytes.Buffer
	if err := infra.WriteTicketPDF(&buf, sale, s.businessName); err != nil {
		return nil, fmt.Errorf("render ticket %s: %w", sale.Folio, err)
	}
	return &dto.TicketFile{
		Filename: "ticket-" + sale.Folio + ".pdf",
		Content:  buf.Bytes(),
	}, nil
}
