package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type AdminRepository struct {
	mu     sync.RWMutex
	admins map[uuid.UUID]*model.Admin
}

func NewAdminRepository() *AdminRepository {
	return &AdminRepository{admins: make(map[uuid.UUID]*model.Admin)}
}

func (r *AdminRepository) Create(ctx context.Context, admin *model.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	stored := *admin
	r.admins[admin.ID] = &stored
	return nil
}

func (r *AdminRepository) Get(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	admin, ok := r.admins[id]
	if !ok {
		return nil, apperrors.NewNotFound("admin", nil)
	}
	copied := *admin
	return &copied, nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, admin := range r.admins {
		if strings.EqualFold(admin.Email, email) {
			copied := *admin
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("admin", nil)
}

func (r *AdminRepository) UpdateLoginState(ctx context.Context, admin *model.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.admins[admin.ID]
	if !ok {
		return apperrors.NewNotFound("admin", nil)
	}
	stored.FailedLoginAttempts = admin.FailedLoginAttempts
	stored.LockedUntil = admin.LockedUntil
	stored.LastLoginAt = admin.LastLoginAt
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.admins), nil
}
