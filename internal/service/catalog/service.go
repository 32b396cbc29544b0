// Package catalog serves the bookable service list. Entries change
// rarely, so reads go through a short-lived in-process cache.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

const (
	defaultCacheTTL = 5 * time.Minute
	activeListKey   = "services:active"
	codeKeyTemplate = "services:code:%s"
)

type Service struct {
	repo  repository.ServiceRepository
	cache *cache.Cache
}

// NewService wraps the repository with a read-through cache. A zero or
// negative ttl falls back to the default.
func NewService(repo repository.ServiceRepository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Service{
		repo:  repo,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (s *Service) ListActive(ctx context.Context) ([]*model.Service, error) {
	if cached, found := s.cache.Get(activeListKey); found {
		return cached.([]*model.Service), nil
	}

	services, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	s.cache.Set(activeListKey, services, cache.DefaultExpiration)
	return services, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*model.Service, error) {
	key := fmt.Sprintf(codeKeyTemplate, code)
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.Service), nil
	}

	svc, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, svc, cache.DefaultExpiration)
	return svc, nil
}

// Invalidate drops cached entries, for use after catalog changes.
func (s *Service) Invalidate() {
	s.cache.Flush()
}
