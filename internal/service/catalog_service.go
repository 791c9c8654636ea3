package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jannypos/internal/dto"
	"jannypos/internal/model"
	"jannypos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	priceCacheTTL    = 4 * time.Hour
	priceCachePrefix = "price:"
	defaultCategory  = "General"
)

// CatalogService defines the business logic contract for products.
type CatalogService interface {
	Search(ctx context.Context, filter dto.ProductFilter) ([]dto.ProductResponse, error)
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	PriceCheck(ctx context.Context, barcode string) (*dto.PriceCheckResponse, error)
}

type catalogService struct {
	tx          repository.TxManager
	repo        repository.ProductRepository
	sites       repository.SiteRepository
	stock       repository.StockRepository
	movements   repository.StockMovementRepository
	rdb         *redis.Client // optional; nil disables the price cache
	defaultSite string
}

func NewCatalogService(
	tx repository.TxManager,
	repo repository.ProductRepository,
	sites repository.SiteRepository,
	stock repository.StockRepository,
	movements repository.StockMovementRepository,
	rdb *redis.Client,
	defaultSite string,
) CatalogService {
	return &catalogService{
		tx:          tx,
		repo:        repo,
		sites:       sites,
		stock:       stock,
		movements:   movements,
		rdb:         rdb,
		defaultSite: defaultSite,
	}
}

func (s *catalogService) Search(ctx context.Context, filter dto.ProductFilter) ([]dto.ProductResponse, error) {
	products, err := s.repo.Search(ctx, filter.Search)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, productToResponse(&products[i]))
	}
	return out, nil
}

// Create inserts a product and, when req.Stock > 0, its initial stock at the
// requested site. Both happen in one transaction.
func (s *catalogService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := model.Product{
		ID:       strings.TrimSpace(req.ID),
		Name:     strings.TrimSpace(req.Name),
		Category: strings.TrimSpace(req.Category),
		Price:    req.Price,
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Category == "" {
		p.Category = defaultCategory
	}
	if req.Barcode != nil {
		if b := strings.TrimSpace(*req.Barcode); b != "" {
			p.Barcode = &b
		}
	}
	siteName := strings.TrimSpace(req.SiteName)
	if siteName == "" {
		siteName = s.defaultSite
	}

	stockBySite := map[string]int{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, &p); err != nil {
			return err
		}
		if req.Stock <= 0 {
			return nil
		}
		site, err := s.sites.FindOrCreateTx(tx, siteName)
		if err != nil {
			return fmt.Errorf("resolver sitio %q: %w", siteName, err)
		}
		if err := s.stock.AddTx(tx, p.ID, site.ID, req.Stock); err != nil {
			return err
		}
		after := req.Stock
		stockBySite[site.Name] = req.Stock
		return s.movements.CreateTx(tx, &model.StockMovement{
			ID:        uuid.New(),
			ProductID: p.ID,
			SiteID:    site.ID,
			Kind:      model.MovementInitial,
			Qty:       req.Stock,
			QtyAfter:  &after,
			Note:      "alta de producto",
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateProduct
		}
		return nil, err
	}

	log.Info().Str("product_id", p.ID).Int("stock", req.Stock).Str("site", siteName).Msg("product created")
	resp := productToResponse(&p)
	resp.StockBySite = stockBySite
	return &resp, nil
}

// PriceCheck looks a product up by barcode. Hits are cached in Redis; misses are not.
func (s *catalogService) PriceCheck(ctx context.Context, barcode string) (*dto.PriceCheckResponse, error) {
	barcode = strings.TrimSpace(barcode)
	key := priceCachePrefix + barcode

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var resp dto.PriceCheckResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return &resp, nil
			}
		}
	}

	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, barcode)
		}
		return nil, err
	}
	resp := dto.PriceCheckResponse{ID: p.ID, Name: p.Name, Price: p.Price, Category: p.Category}

	// Populate cache, best effort
	if s.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = s.rdb.Set(ctx, key, b, priceCacheTTL).Err()
		}
	}
	return &resp, nil
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Barcode:     p.Barcode,
		Category:    p.Category,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		StockBySite: p.StockBySite(),
	}
}
