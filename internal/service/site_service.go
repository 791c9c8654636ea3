package service

import (
	"context"
	"errors"

	"jannypos/internal/model"
	"jannypos/internal/repository"

	"github.com/rs/zerolog/log"
)

// SiteService owns the bootstrap of selling locations.
type SiteService interface {
	// EnsureDefault creates the default site when no site exists yet.
	// It is idempotent and reports whether a site was created.
	EnsureDefault(ctx context.Context) (bool, error)
}

type siteService struct {
	repo        repository.SiteRepository
	defaultName string
}

func NewSiteService(repo repository.SiteRepository, defaultName string) SiteService {
	return &siteService{repo: repo, defaultName: defaultName}
}

func (s *siteService) EnsureDefault(ctx context.Context) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := s.repo.Create(ctx, &model.Site{Name: s.defaultName}); err != nil {
		// Lost the race against another instance: the site exists, which is all we need.
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	log.Info().Str("site", s.defaultName).Msg("default site created")
	return true, nil
}
