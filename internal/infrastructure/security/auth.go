// Package security provides token issuance, two-factor authentication,
// role-based access control and request validation
package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/cache"
	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrTokenRevoked   = errors.New("token has been revoked")
	ErrSessionExpired = errors.New("session has ended")
)

// TokenType represents different types of JWT tokens
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Claims represents JWT claims structure
type Claims struct {
	Email     string    `json:"email,omitempty"`
	Role      user.Role `json:"role,omitempty"`
	TokenType TokenType `json:"type"`
	SessionID string    `json:"sid"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a UUID
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenPair is what a successful sign-in hands back
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	SessionID    string
}

// TokenService issues, validates and revokes JWTs. Every pair belongs to a
// session kept in the cache, and the session remembers which refresh token
// is current so a replayed refresh token is rejected.
type TokenService struct {
	sessions   *cache.SessionStore
	logger     *zap.Logger
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService creates a new token service
func NewTokenService(cfg *config.AuthConfig, sessions *cache.SessionStore, logger *zap.Logger) *TokenService {
	return &TokenService{
		sessions:   sessions,
		logger:     logger.Named("tokens"),
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}
}

// Issue opens a new session for u and returns its first token pair
func (s *TokenService) Issue(ctx context.Context, u *user.User) (*TokenPair, error) {
	now := s.now()
	session := &cache.Session{
		ID:        uuid.New().String(),
		UserID:    u.ID(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	return s.issuePair(ctx, u, session)
}

// Rotate exchanges a refresh token for a fresh pair on the same session.
// The presented refresh token is revoked.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string, load func(uuid.UUID) (*user.User, error)) (*TokenPair, *user.User, error) {
	claims, err := s.Validate(ctx, refreshToken, RefreshToken)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, cache.ErrSessionNotFound) {
			return nil, nil, ErrSessionExpired
		}
		return nil, nil, err
	}
	if session.RefreshID != claims.ID {
		// an older refresh token of this session: end the session
		s.logger.Warn("Refresh token reuse detected",
			zap.String("session_id", session.ID),
			zap.String("user_id", session.UserID.String()),
		)
		_ = s.sessions.DeleteSession(ctx, session.ID)
		return nil, nil, ErrTokenRevoked
	}

	u, err := load(session.UserID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.sessions.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return nil, nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	pair, err := s.issuePair(ctx, u, session)
	if err != nil {
		return nil, nil, err
	}
	return pair, u, nil
}

// Reissue mints a new pair on an existing session, for example after the
// user's role changed
func (s *TokenService) Reissue(ctx context.Context, u *user.User, sessionID string) (*TokenPair, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, cache.ErrSessionNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	return s.issuePair(ctx, u, session)
}

// Validate parses a token, checks its type, revocation and session
func (s *TokenService) Validate(ctx context.Context, tokenString string, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expected {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, expected)
	}

	revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	if expected == AccessToken {
		if _, err := s.sessions.GetSession(ctx, claims.SessionID); err != nil {
			if errors.Is(err, cache.ErrSessionNotFound) {
				return nil, ErrSessionExpired
			}
			return nil, err
		}
	}

	return claims, nil
}

// Revoke blacklists the access token and ends its session
func (s *TokenService) Revoke(ctx context.Context, tokenID, sessionID string, expiresAt time.Time) error {
	if err := s.sessions.RevokeToken(ctx, tokenID, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	return nil
}

func (s *TokenService) issuePair(ctx context.Context, u *user.User, session *cache.Session) (*TokenPair, error) {
	now := s.now()

	access, accessExp, _, err := s.sign(u, AccessToken, session.ID, now, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, _, refreshID, err := s.sign(u, RefreshToken, session.ID, now, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	session.RefreshID = refreshID
	session.ExpiresAt = now.Add(s.refreshTTL)
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExp,
		SessionID:    session.ID,
	}, nil
}

func (s *TokenService) sign(u *user.User, typ TokenType, sessionID string, now time.Time, ttl time.Duration) (string, time.Time, string, error) {
	expiresAt := now.Add(ttl)
	claims := &Claims{
		TokenType: typ,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   u.ID().String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	if typ == AccessToken {
		claims.Email = u.Email()
		claims.Role = u.Role()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, "", fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, expiresAt, claims.ID, nil
}
