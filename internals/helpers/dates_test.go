package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

	t.Run("defaults to the last N days", func(t *testing.T) {
		start, end, err := ParseWindow("", "", now, 30)
		require.NoError(t, err)
		require.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), end)
		require.Equal(t, time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC), start)
	})

	t.Run("tenant timezone decides the default day", func(t *testing.T) {
		jakarta, err := time.LoadLocation("Asia/Jakarta")
		require.NoError(t, err)
		// 18:00 UTC on the 15th is already the 16th in Jakarta
		local := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC).In(jakarta)
		start, end, err := ParseWindow("", "", local, 30)
		require.NoError(t, err)
		require.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), end)
		require.Equal(t, time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), start)
	})

	t.Run("explicit bounds win", func(t *testing.T) {
		start, end, err := ParseWindow("2026-01-01", "2026-01-31", now, 30)
		require.NoError(t, err)
		require.Equal(t, "2026-01-01", start.Format("2006-01-02"))
		require.Equal(t, "2026-01-31", end.Format("2006-01-02"))
	})

	t.Run("reversed window rejected", func(t *testing.T) {
		_, _, err := ParseWindow("2026-02-01", "2026-01-01", now, 30)
		var ae *ApiError
		require.ErrorAs(t, err, &ae)
		require.Equal(t, CodeInvalidInput, ae.Code)
	})

	t.Run("garbage dates rejected", func(t *testing.T) {
		_, _, err := ParseWindow("not-a-date", "", now, 30)
		var ae *ApiError
		require.ErrorAs(t, err, &ae)
		require.Equal(t, CodeInvalidInput, ae.Code)
	})
}
