package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// KeyBuilder provides standardized cache key generation
type KeyBuilder struct {
	prefix    string
	separator string
}

// NewKeyBuilder creates a new key builder
func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{
		prefix:    "ayurwell",
		separator: ":",
	}
}

// BuildKey constructs a cache key from components
func (kb *KeyBuilder) BuildKey(components ...string) string {
	parts := make([]string, 0, len(components)+1)
	parts = append(parts, kb.prefix)
	parts = append(parts, components...)
	return strings.Join(parts, kb.separator)
}

// BuildSessionKey creates a key for session data
func (kb *KeyBuilder) BuildSessionKey(sessionID string) string {
	return kb.BuildKey("session", sessionID)
}

// BuildRevokedTokenKey creates a key marking a token ID as revoked
func (kb *KeyBuilder) BuildRevokedTokenKey(tokenID string) string {
	return kb.BuildKey("revoked", tokenID)
}

// BuildResetTokenKey creates a key for a password reset token.
// Only the hash of the token is stored.
func (kb *KeyBuilder) BuildResetTokenKey(token string) string {
	return kb.BuildKey("reset", Hash(token))
}

// BuildAIKey creates a key for an AI flow response
func (kb *KeyBuilder) BuildAIKey(flow string, input []byte) string {
	sum := sha256.Sum256(append([]byte(flow+"\x00"), input...))
	return kb.BuildKey("ai", flow, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of s
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
