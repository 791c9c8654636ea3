package infra

import (
	"fmt"

	"jannypos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx, sizes the pool and brings
// the schema up to date (AutoMigrate followed by idempotent SQL patches).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every table, then applies the patches.
// Integration tests call it directly against their container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Site{},
		&model.Product{},
		&model.Stock{},
		&model.Sale{},
		&model.SaleItem{},
		&model.StockMovement{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs DDL that GORM tags cannot express. Every statement is
// guarded so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"sales status check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_sales_status') THEN
    ALTER TABLE sales ADD CONSTRAINT chk_sales_status
      CHECK (status IN ('completada', 'cancelada'));
  END IF;
END $$`},
		{"sales method check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_sales_method') THEN
    ALTER TABLE sales ADD CONSTRAINT chk_sales_method
      CHECK (method IN ('efectivo', 'tarjeta', 'transferencia', 'qr'));
  END IF;
END $$`},
		// history screen: newest completed sales first
		{"sales status/created_at index",
			`CREATE INDEX IF NOT EXISTS idx_sales_status_created ON sales (status, created_at DESC)`},
		{"sale_items ordering index",
			`CREATE INDEX IF NOT EXISTS idx_sale_items_sale_position ON sale_items (sale_id, position)`},
		{"stock_movements product/created_at index",
			`CREATE INDEX IF NOT EXISTS idx_stock_movements_product_created ON stock_movements (product_id, created_at DESC)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
