package repository

import (
	"jannypos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository owns the per (product, site) quantity ledger.
// Both methods must run inside the caller's transaction.
type StockRepository interface {
	// ReserveTx decrements qty for (productID, siteID) by qty and returns the
	// remaining quantity. Contract, all within tx:
	//   1. insert the row with qty 0 when absent
	//   2. read it with SELECT ... FOR UPDATE
	//   3. fail with ErrInsufficientStock when qty on hand < qty
	//   4. write qty on hand - qty
	// The row lock is held until tx ends, so a concurrent reservation on the same
	// row waits and then sees the decremented value.
	ReserveTx(tx *gorm.DB, productID string, siteID uuid.UUID, qty int) (int, error)
	// AddTx upserts the row, creating it at qty or incrementing it by qty.
	AddTx(tx *gorm.DB, productID string, siteID uuid.UUID, qty int) error
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) ReserveTx(tx *gorm.DB, productID string, siteID uuid.UUID, qty int) (int, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Stock{ProductID: productID, SiteID: siteID, Qty: 0}).Error; err != nil {
		return 0, err
	}

	var st model.Stock
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND site_id = ?", productID, siteID).
		First(&st).Error; err != nil {
		return 0, err
	}
	if st.Qty < qty {
		return st.Qty, ErrInsufficientStock
	}

	remaining := st.Qty - qty
	err := tx.Model(&model.Stock{}).
		Where("product_id = ? AND site_id = ?", productID, siteID).
		Update("qty", remaining).Error
	return remaining, err
}

func (r *stockRepo) AddTx(tx *gorm.DB, productID string, siteID uuid.UUID, qty int) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "site_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"qty":        gorm.Expr("stocks.qty + EXCLUDED.qty"),
			"updated_at": gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(&model.Stock{ProductID: productID, SiteID: siteID, Qty: qty}).Error
}
