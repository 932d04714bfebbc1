package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned when a session is missing or expired
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps login sessions, revoked token IDs and password reset tokens
type SessionStore struct {
	cache      outbound.CacheRepository
	keyBuilder *KeyBuilder
	logger     *zap.Logger
}

// Session represents one login on one device. Refresh rotates RefreshID.
type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	RefreshID string    `json:"refreshId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewSessionStore creates a session store on top of a cache repository
func NewSessionStore(cache outbound.CacheRepository, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		cache:      cache,
		keyBuilder: NewKeyBuilder(),
		logger:     logger,
	}
}

// SaveSession stores a session until its expiry
func (s *SessionStore) SaveSession(ctx context.Context, session *Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.cache.Set(ctx, s.keyBuilder.BuildSessionKey(session.ID), data, ttl); err != nil {
		return fmt.Errorf("failed to cache session: %w", err)
	}
	return nil
}

// GetSession loads a session
func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.cache.Get(ctx, s.keyBuilder.BuildSessionKey(sessionID))
	if err != nil {
		if errors.Is(err, outbound.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// DeleteSession removes a session
func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.cache.Delete(ctx, s.keyBuilder.BuildSessionKey(sessionID)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.Debug("Session deleted", zap.String("session_id", sessionID))
	return nil
}

// RevokeToken blacklists a token ID until the token would have expired anyway
func (s *SessionStore) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, s.keyBuilder.BuildRevokedTokenKey(tokenID), []byte("1"), ttl)
}

// IsRevoked reports whether a token ID was revoked
func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.cache.Exists(ctx, s.keyBuilder.BuildRevokedTokenKey(tokenID))
}

// SaveResetToken stores a single-use password reset token for a user
func (s *SessionStore) SaveResetToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return s.cache.Set(ctx, s.keyBuilder.BuildResetTokenKey(token), []byte(userID.String()), ttl)
}

// ConsumeResetToken returns the user a reset token belongs to and deletes it
func (s *SessionStore) ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	data, err := s.cache.GetDel(ctx, s.keyBuilder.BuildResetTokenKey(token))
	if err != nil {
		if errors.Is(err, outbound.ErrCacheMiss) {
			return uuid.Nil, ErrSessionNotFound
		}
		return uuid.Nil, err
	}
	return uuid.Parse(string(data))
}
