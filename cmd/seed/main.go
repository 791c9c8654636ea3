// cmd/seed: crea el sitio por defecto y, con -demo, un catálogo de prueba.
// Uso: go run ./cmd/seed -demo
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"jannypos/internal/config"
	"jannypos/internal/dto"
	"jannypos/internal/infra"
	"jannypos/internal/repository"
	"jannypos/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type demoProduct struct {
	id, name, barcode, category, price string
	stock                              int
}

var demoCatalog = []demoProduct{
	{"SKU1", "Galletas de avena", "7501000000011", "Abarrotes", "10.00", 5},
	{"SKU2", "Refresco cola 600ml", "7501000000028", "Bebidas", "18.50", 24},
	{"SKU3", "Jabón de tocador", "7501000000035", "Higiene", "22.00", 12},
	{"SKU4", "Arroz 1kg", "7501000000042", "Abarrotes", "31.90", 10},
	{"SKU5", "Pan de caja", "", "Panadería", "45.00", 6},
}

func main() {
	demo := flag.Bool("demo", false, "también crear el catálogo de prueba")
	site := flag.String("site", "", "sitio para el stock inicial (default: DEFAULT_SITE)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	siteRepo := repository.NewSiteRepository(db)
	created, err := service.NewSiteService(siteRepo, cfg.DefaultSite).EnsureDefault(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("default site")
	}
	log.Info().Bool("created", created).Str("site", cfg.DefaultSite).Msg("default site ready")

	if !*demo {
		return
	}

	// No price cache needed for a one-shot import.
	catalog := service.NewCatalogService(
		repository.NewTxManager(db),
		repository.NewProductRepository(db),
		siteRepo,
		repository.NewStockRepository(db),
		repository.NewStockMovementRepository(db),
		nil,
		cfg.DefaultSite,
	)

	for _, p := range demoCatalog {
		req := dto.CreateProductRequest{
			ID:       p.id,
			Name:     p.name,
			Category: p.category,
			Price:    decimal.RequireFromString(p.price),
			Stock:    p.stock,
			SiteName: *site,
		}
		if p.barcode != "" {
			b := p.barcode
			req.Barcode = &b
		}
		_, err := catalog.Create(ctx, req)
		switch {
		case errors.Is(err, service.ErrDuplicateProduct):
			log.Info().Str("product_id", p.id).Msg("already exists, skipped")
		case err != nil:
			log.Fatal().Err(err).Str("product_id", p.id).Msg("create product")
		}
	}
	log.Info().Int("products", len(demoCatalog)).Msg("demo catalog ready")
}
