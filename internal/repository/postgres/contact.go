package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/booking-api/internal/model"
)

// Create stores the contact message and its outbox event in one
// transaction.
func (r *contactRepository) Create(ctx context.Context, msg *model.ContactMessage, event *model.OutboxEvent) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	msg.CreatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO contact_messages (
				id, name, email, phone, message, created_at
			) VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err := tx.ExecContext(ctx, query,
			msg.ID,
			msg.Name,
			msg.Email,
			msg.Phone,
			msg.Message,
			msg.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create contact message: %w", err)
		}

		return insertOutboxEventTx(ctx, tx, event)
	})
}
