package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogMailer_SendPasswordReset(t *testing.T) {
	// Arrange
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer("no-reply@ayurwell.com", zap.New(core))

	// Act
	err := m.SendPasswordReset(context.Background(), "asha@example.com", "Asha", "https://app.ayurwell.test/reset-password?token=abc")

	// Assert
	require.NoError(t, err)
	entries := logs.FilterMessage("Password reset e-mail").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "asha@example.com", fields["to"])
	assert.Equal(t, "no-reply@ayurwell.com", fields["from"])
	assert.Contains(t, fields["body"], "Hello Asha")
	assert.Contains(t, fields["body"], "token=abc")
}

func TestLogMailer_CancelledContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer("no-reply@ayurwell.com", zap.New(core))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.SendPasswordReset(ctx, "asha@example.com", "Asha", "link")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, logs.Len())
}
