package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is one admin login in the relational session store. The
// refresh token is persisted only as a digest; refresh rotates it,
// logout revokes the row.
type Session struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	AdminID          uuid.UUID  `db:"admin_id" json:"admin_id"`
	RefreshTokenHash string     `db:"refresh_token_hash" json:"-"`
	UserAgent        string     `db:"user_agent" json:"user_agent,omitempty"`
	ClientIP         string     `db:"client_ip" json:"client_ip,omitempty"`
	ExpiresAt        time.Time  `db:"expires_at" json:"expires_at"`
	RevokedAt        *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// Active reports whether the session can still mint tokens.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
