package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type ServiceRepository struct {
	mu       sync.RWMutex
	services []*model.Service
}

// NewServiceRepository seeds the catalog with the given entries.
func NewServiceRepository(services ...*model.Service) *ServiceRepository {
	r := &ServiceRepository{}
	r.services = append(r.services, services...)
	return r
}

func (r *ServiceRepository) ListActive(ctx context.Context) ([]*model.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []*model.Service
	for _, svc := range r.services {
		if svc.Active {
			copied := *svc
			active = append(active, &copied)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].Position != active[j].Position {
			return active[i].Position < active[j].Position
		}
		return active[i].Name < active[j].Name
	})
	return active, nil
}

func (r *ServiceRepository) GetByCode(ctx context.Context, code string) (*model.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, svc := range r.services {
		if svc.Code == code {
			copied := *svc
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("service", nil)
}
