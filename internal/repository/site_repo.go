package repository

import (
	"context"

	"jannypos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SiteRepository interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, s *model.Site) error
	// FindOrCreateTx resolves a site by name, inserting it when missing.
	// Safe under concurrent callers thanks to the unique index on name.
	FindOrCreateTx(tx *gorm.DB, name string) (*model.Site, error)
}

type siteRepo struct{ db *gorm.DB }

func NewSiteRepository(db *gorm.DB) SiteRepository { return &siteRepo{db: db} }

func (r *siteRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Site{}).Count(&n).Error
	return n, err
}

func (r *siteRepo) Create(ctx context.Context, s *model.Site) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *siteRepo) FindOrCreateTx(tx *gorm.DB, name string) (*model.Site, error) {
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&model.Site{Name: name}).Error; err != nil {
		return nil, err
	}
	var s model.Site
	if err := tx.Where("name = ?", name).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
