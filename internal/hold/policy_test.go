package hold

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPolicy_Window(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 10*time.Minute, p.window(0))
	assert.Equal(t, 10*time.Minute, p.window(-time.Second))
	assert.Equal(t, 3*time.Minute, p.window(3*time.Minute))
	assert.Equal(t, 15*time.Minute, p.window(time.Hour))
}

func TestPolicy_Normalized(t *testing.T) {
	p := Policy{Ceiling: 20 * time.Minute}.normalized()

	assert.Equal(t, Policy{
		BaseWindow:     10 * time.Minute,
		Extension:      5 * time.Minute,
		Ceiling:        20 * time.Minute,
		TxAttempts:     3,
		ReconcileBatch: 500,
	}, p)
}

func TestReason_Valid(t *testing.T) {
	assert.True(t, ReasonSystemSweep.Valid())
	assert.True(t, ReasonCheckoutFailed.Valid())
	assert.False(t, Reason("").Valid())
	assert.False(t, Reason("bored").Valid())
}

func TestUniqueSorted(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	assert.Equal(t, []uuid.UUID{a, b}, uniqueSorted([]uuid.UUID{b, uuid.Nil, a, b}))
	assert.Empty(t, uniqueSorted(nil))
}
