package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

func (r *serviceRepository) ListActive(ctx context.Context) ([]*model.Service, error) {
	query := `
		SELECT id, code, name, description, duration_minutes, active, position, created_at, updated_at
		FROM services
		WHERE active = TRUE
		ORDER BY position ASC, name ASC
	`

	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (r *serviceRepository) GetByCode(ctx context.Context, code string) (*model.Service, error) {
	query := `
		SELECT id, code, name, description, duration_minutes, active, position, created_at, updated_at
		FROM services
		WHERE code = $1
	`

	var svc model.Service
	if err := r.db.GetContext(ctx, &svc, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", err)
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &svc, nil
}
