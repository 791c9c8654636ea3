package repository

import (
	"context"

	"jannypos/internal/dto"
	"jannypos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	// CreateTx inserts the header and its Items in one statement batch.
	CreateTx(tx *gorm.DB, s *model.Sale) error
	// FindByID loads the sale with Items (ordered, Product preloaded) and Site.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	// MarkCancelledTx flips completada → cancelada. It reports false when the
	// sale was no longer completada, i.e. another request cancelled it first.
	MarkCancelledTx(tx *gorm.DB, id uuid.UUID) (bool, error)
	// List returns sale headers newest first.
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, error)
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Product").
		Preload("Site").
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) MarkCancelledTx(tx *gorm.DB, id uuid.UUID) (bool, error) {
	res := tx.Model(&model.Sale{}).
		Where("id = ? AND status = ?", id, model.StatusCompletada).
		Update("status", model.StatusCancelada)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, error) {
	var sales []model.Sale
	q := r.db.WithContext(ctx).Model(&model.Sale{}).Preload("Site")

	if filter.Status != "" {
		q = q.Where("sales.status = ?", filter.Status)
	}
	if filter.Site != "" {
		q = q.Joins("JOIN sites ON sites.id = sales.site_id").Where("sites.name = ?", filter.Site)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Order("sales.created_at DESC").Find(&sales).Error
	return sales, err
}
