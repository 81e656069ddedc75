package dbtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSameOrFutureDateTenantBoundary(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 18:00 UTC on the 9th is already the 10th in Jakarta (UTC+7)
	now := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)

	d9 := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	d10 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	require.True(t, SameOrFutureDate(d9, now, time.UTC), "still the 9th in UTC")
	require.False(t, SameOrFutureDate(d9, now, jakarta), "the 9th already passed in Jakarta")
	require.True(t, SameOrFutureDate(d10, now, jakarta))
}

func TestTodRoundTrip(t *testing.T) {
	tod, err := Parse("08:05")
	require.NoError(t, err)
	require.Equal(t, "08:05:00", tod.String())

	v, err := tod.Value()
	require.NoError(t, err)
	require.Equal(t, "08:05:00", v)

	var scanned Tod
	require.NoError(t, scanned.Scan("13:45:30"))
	require.Equal(t, "13:45:30", scanned.String())

	b, err := tod.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `"08:05:00"`, string(b))
}
