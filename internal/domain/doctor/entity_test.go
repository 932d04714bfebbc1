package doctor

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReview(t *testing.T) {
	p := NewPending(uuid.New(), "Dr. Rao", "rao@example.com")
	admin := uuid.New()
	assert.False(t, p.Bookable())

	require.NoError(t, p.Review(admin, StatusVerified))
	assert.True(t, p.Bookable())
	assert.NotNil(t, p.VerifiedAt)
	assert.Equal(t, admin, *p.VerifiedBy)

	assert.ErrorIs(t, p.Review(admin, StatusVerified), ErrAlreadyReviewed)
	assert.Error(t, p.Review(admin, StatusPending))

	require.NoError(t, p.Review(admin, StatusRejected))
	assert.False(t, p.Bookable())
	assert.Nil(t, p.VerifiedAt)
}

func TestEdit(t *testing.T) {
	p := NewPending(uuid.New(), "Dr. Rao", "rao@example.com")
	require.NoError(t, p.Review(uuid.New(), StatusVerified))

	require.NoError(t, p.Edit(" Panchakarma ", "Twenty years in practice"))

	assert.Equal(t, "Panchakarma", p.Specialization)
	assert.Equal(t, StatusVerified, p.Status, "editing keeps verification")
}
