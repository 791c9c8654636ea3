package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"jannypos/internal/dto"
	"jannypos/internal/metrics"
	"jannypos/internal/model"
	"jannypos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	Checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, pin string) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]dto.SaleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
}

// SaleOptions carries the business settings of the sale service.
type SaleOptions struct {
	DefaultSite string
	Tolerance   decimal.Decimal
	// Now is the clock used for folios; time.Now when nil.
	Now func() time.Time
}

type saleService struct {
	tx        repository.TxManager
	sales     repository.SaleRepository
	products  repository.ProductRepository
	sites     repository.SiteRepository
	stock     repository.StockRepository
	movements repository.StockMovementRepository
	pins      *PINGuard
	opts      SaleOptions
}

func NewSaleService(
	tx repository.TxManager,
	sales repository.SaleRepository,
	products repository.ProductRepository,
	sites repository.SiteRepository,
	stock repository.StockRepository,
	movements repository.StockMovementRepository,
	pins *PINGuard,
	opts SaleOptions,
) SaleService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &saleService{
		tx:        tx,
		sales:     sales,
		products:  products,
		sites:     sites,
		stock:     stock,
		movements: movements,
		pins:      pins,
		opts:      opts,
	}
}

// ── Checkout ──────────────────────────────────────────────────────────────────
// One transaction:
//   1. resolve or create the site
//   2. look up every product (missing → rollback)
//   3. verify totals against catalog prices
//   4. create sale + items (input order, name/price snapshot)
//   5. reserve stock per line (insufficient → rollback)

func (s *saleService) Checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if len(req.Cart) == 0 {
		metrics.Checkouts.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	method := req.Method
	if method == "" {
		method = model.MethodEfectivo
	}
	siteName := strings.TrimSpace(req.SiteName)
	if siteName == "" {
		siteName = s.opts.DefaultSite
	}

	sale := model.Sale{
		ID:         uuid.New(),
		Folio:      NewFolio(s.opts.Now()),
		Discount:   req.Totals.Discount,
		Method:     method,
		Status:     model.StatusCompletada,
		Notes:      optionalString(req.Notes),
		CustomerID: req.CustomerID,
		EmployeeID: req.EmployeeID,
	}
	units := 0

	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		site, err := s.sites.FindOrCreateTx(tx, siteName)
		if err != nil {
			return fmt.Errorf("resolver sitio %q: %w", siteName, err)
		}
		sale.SiteID = &site.ID

		lines := make([]pricedLine, 0, len(req.Cart))
		for _, item := range req.Cart {
			p, err := s.products.FindByIDTx(tx, item.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
				}
				return err
			}
			lines = append(lines, pricedLine{line: item, product: p})
		}

		subtotal, total, err := verifyTotals(lines, req.Totals, s.opts.Tolerance)
		if err != nil {
			return err
		}
		sale.Subtotal = subtotal
		sale.Total = total

		for i, l := range lines {
			sale.Items = append(sale.Items, model.SaleItem{
				ID:        uuid.New(),
				SaleID:    sale.ID,
				Position:  i,
				ProductID: l.product.ID,
				Name:      l.product.Name,
				Qty:       l.line.Qty,
				Price:     l.product.Price,
			})
		}
		if err := s.sales.CreateTx(tx, &sale); err != nil {
			return err
		}

		// Lock stock rows in product id order so two carts touching the same
		// products cannot deadlock each other.
		order := make([]int, len(lines))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return lines[order[a]].product.ID < lines[order[b]].product.ID
		})

		for _, i := range order {
			l := lines[i]
			remaining, err := s.stock.ReserveTx(tx, l.product.ID, site.ID, l.line.Qty)
			if err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return fmt.Errorf("%w: %s en %s (disponible %d, solicitado %d)",
						ErrInsufficientStock, l.product.ID, site.Name, remaining, l.line.Qty)
				}
				return err
			}
			saleRef := sale.ID
			if err := s.movements.CreateTx(tx, &model.StockMovement{
				ID:          uuid.New(),
				ProductID:   l.product.ID,
				SiteID:      site.ID,
				Kind:        model.MovementSale,
				Qty:         -l.line.Qty,
				QtyAfter:    &remaining,
				ReferenceID: &saleRef,
				Note:        sale.Folio,
			}); err != nil {
				return err
			}
			units += l.line.Qty
		}
		return nil
	})
	if txErr != nil {
		metrics.Checkouts.WithLabelValues(checkoutResult(txErr)).Inc()
		log.Warn().Err(txErr).Str("folio", sale.Folio).Str("site", siteName).Msg("checkout rolled back")
		return nil, txErr
	}

	metrics.Checkouts.WithLabelValues("ok").Inc()
	metrics.UnitsSold.Add(float64(units))
	log.Info().
		Str("folio", sale.Folio).
		Str("sale_id", sale.ID.String()).
		Str("site", siteName).
		Str("total", sale.Total.StringFixed(2)).
		Msg("checkout committed")

	return &dto.CheckoutResponse{OK: true, Folio: sale.Folio, ID: sale.ID.String()}, nil
}

func checkoutResult(err error) string {
	switch {
	case errors.Is(err, ErrProductNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrTotalsMismatch):
		return "totals_mismatch"
	default:
		return "error"
	}
}

// ── Cancel ────────────────────────────────────────────────────────────────────
// PIN check, lookup, then one transaction: conditional status flip and stock
// restore. A sale that is already cancelled is returned as-is.

func (s *saleService) Cancel(ctx context.Context, id uuid.UUID, pin string) (*dto.SaleResponse, error) {
	if !s.pins.Verify(pin) {
		metrics.Cancellations.WithLabelValues("bad_pin").Inc()
		return nil, ErrInvalidPIN
	}

	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.Cancellations.WithLabelValues("not_found").Inc()
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	if sale.IsCancelled() {
		metrics.Cancellations.WithLabelValues("noop").Inc()
		return saleToResponse(sale, true), nil
	}

	flipped := false
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.sales.MarkCancelledTx(tx, sale.ID)
		if err != nil {
			return err
		}
		if !ok {
			// cancelled concurrently; the winner restored the stock
			return nil
		}
		flipped = true
		if sale.SiteID == nil {
			return nil
		}
		// Same product id order as Checkout.
		items := append([]model.SaleItem(nil), sale.Items...)
		sort.SliceStable(items, func(a, b int) bool {
			return items[a].ProductID < items[b].ProductID
		})
		for _, item := range items {
			if err := s.stock.AddTx(tx, item.ProductID, *sale.SiteID, item.Qty); err != nil {
				return err
			}
			saleRef := sale.ID
			if err := s.movements.CreateTx(tx, &model.StockMovement{
				ID:          uuid.New(),
				ProductID:   item.ProductID,
				SiteID:      *sale.SiteID,
				Kind:        model.MovementCancel,
				Qty:         item.Qty,
				ReferenceID: &saleRef,
				Note:        sale.Folio,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		metrics.Cancellations.WithLabelValues("error").Inc()
		return nil, txErr
	}

	if flipped {
		metrics.Cancellations.WithLabelValues("ok").Inc()
		log.Info().Str("folio", sale.Folio).Str("sale_id", sale.ID.String()).Msg("sale cancelled")
	} else {
		metrics.Cancellations.WithLabelValues("noop").Inc()
	}
	sale.Status = model.StatusCancelada
	return saleToResponse(sale, true), nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) ([]dto.SaleResponse, error) {
	sales, err := s.sales.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, *saleToResponse(&sales[i], false))
	}
	return out, nil
}

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return saleToResponse(sale, true), nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func saleToResponse(s *model.Sale, withItems bool) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:         s.ID.String(),
		Folio:      s.Folio,
		Subtotal:   s.Subtotal,
		Discount:   s.Discount,
		Total:      s.Total,
		Method:     s.Method,
		Status:     s.Status,
		Notes:      s.Notes,
		CustomerID: s.CustomerID,
		EmployeeID: s.EmployeeID,
		CreatedAt:  s.CreatedAt.UTC().Format(time.RFC3339),
	}
	if s.SiteID != nil {
		id := s.SiteID.String()
		resp.SiteID = &id
	}
	if s.Site != nil {
		resp.SiteName = s.Site.Name
	}
	if withItems {
		resp.Items = make([]dto.SaleItemResponse, 0, len(s.Items))
		for _, it := range s.Items {
			resp.Items = append(resp.Items, dto.SaleItemResponse{
				ProductID: it.ProductID,
				Name:      it.Name,
				Qty:       it.Qty,
				Price:     it.Price,
				Amount:    it.Amount(),
			})
		}
	}
	return resp
}

func optionalString(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
