package clock

import (
	"testing"
	"time"

	"petcare-plus/internal/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToday(t *testing.T) {
	now := time.Date(2026, 3, 7, 23, 10, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-07", Today(now))
}

func TestParseTimestamp(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		got, err := ParseTimestamp("2026-03-07T10:30:00Z", nil)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 7, 10, 30, 0, 0, time.UTC), got)
	})

	t.Run("datetime-local without seconds", func(t *testing.T) {
		got, err := ParseTimestamp("2026-03-07T10:30", time.UTC)
		require.NoError(t, err)
		assert.Equal(t, 10, got.Hour())
		assert.Equal(t, 30, got.Minute())
	})

	t.Run("garbage fails fast", func(t *testing.T) {
		_, err := ParseTimestamp("not-a-date", nil)
		assert.ErrorIs(t, err, apperr.ErrInvalidTimestamp)
	})

	t.Run("empty fails fast", func(t *testing.T) {
		_, err := ParseTimestamp("  ", nil)
		assert.ErrorIs(t, err, apperr.ErrInvalidTimestamp)
	})
}

func TestParseHHMM(t *testing.T) {
	h, m, ok := ParseHHMM("09:45")
	assert.True(t, ok)
	assert.Equal(t, 9, h)
	assert.Equal(t, 45, m)

	_, _, ok = ParseHHMM("25:00")
	assert.False(t, ok)

	_, _, ok = ParseHHMM("nine")
	assert.False(t, ok)
}
