package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/auth"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/security"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
)

type Service struct {
	admins     repository.AdminRepository
	sessions   repository.SessionRepository
	jwtSvc     auth.JWTService
	hasher     security.PasswordHasher
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(admins repository.AdminRepository, sessions repository.SessionRepository,
	jwtSvc auth.JWTService, hasher security.PasswordHasher, sessionTTL time.Duration) *Service {
	return &Service{
		admins:     admins,
		sessions:   sessions,
		jwtSvc:     jwtSvc,
		hasher:     hasher,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Login verifies the credentials, opens a session and returns an
// access/refresh token pair. Five consecutive failures lock the account
// for fifteen minutes.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest, userAgent, clientIP string) (*model.TokenResponse, error) {
	admin, err := s.admins.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}

	now := s.now()
	if admin.Locked(now) {
		return nil, model.ErrAccountLocked
	}

	if err := s.hasher.Compare(admin.PasswordHash, req.Password); err != nil {
		admin.FailedLoginAttempts++
		if admin.FailedLoginAttempts >= maxLoginAttempts {
			until := now.Add(lockoutDuration)
			admin.LockedUntil = &until
			admin.FailedLoginAttempts = 0
		}
		if err := s.admins.UpdateLoginState(ctx, admin); err != nil {
			return nil, fmt.Errorf("failed to update login attempts: %w", err)
		}
		return nil, model.ErrInvalidCredentials
	}

	admin.FailedLoginAttempts = 0
	admin.LockedUntil = nil
	lastLogin := now
	admin.LastLoginAt = &lastLogin
	if err := s.admins.UpdateLoginState(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to update login state: %w", err)
	}

	session := &model.Session{
		ID:        uuid.New(),
		AdminID:   admin.ID,
		UserAgent: userAgent,
		ClientIP:  clientIP,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	tokens, err := s.issueTokens(admin, session.ID)
	if err != nil {
		return nil, err
	}
	session.RefreshTokenHash = security.HashToken(tokens.RefreshToken)

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return tokens, nil
}

// Refresh rotates the refresh token: the presented token must match the
// stored hash of the latest issued one. A mismatch on a live session
// means the token was already used, so the whole session is revoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, model.ErrSessionRevoked
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	now := s.now()
	if !session.Active(now) {
		return nil, model.ErrSessionRevoked
	}
	if !security.TokenEqual(session.RefreshTokenHash, refreshToken) {
		if err := s.sessions.Revoke(ctx, session.ID, now); err != nil {
			return nil, fmt.Errorf("failed to revoke session: %w", err)
		}
		return nil, model.ErrSessionRevoked
	}

	admin, err := s.admins.Get(ctx, claims.AdminID)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}

	tokens, err := s.issueTokens(admin, session.ID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Rotate(ctx, session.ID, security.HashToken(tokens.RefreshToken), now.Add(s.sessionTTL)); err != nil {
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}
	return tokens, nil
}

// Logout revokes the session behind the presented access token.
func (s *Service) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessions.Revoke(ctx, sessionID, s.now()); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Bootstrap creates the first admin account when the store is empty.
func (s *Service) Bootstrap(ctx context.Context, email, name, password string) error {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	admin := &model.Admin{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	return nil
}

func (s *Service) issueTokens(admin *model.Admin, sessionID uuid.UUID) (*model.TokenResponse, error) {
	accessToken, err := s.jwtSvc.GenerateAccessToken(admin, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwtSvc.GenerateRefreshToken(admin, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
