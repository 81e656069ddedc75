package helper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPercentage(t *testing.T) {
	require.Equal(t, 0.0, Percentage(5, 0), "zero denominator never divides")
	require.Equal(t, 100.0, Percentage(3, 3))
	require.Equal(t, 33.33, Percentage(1, 3))
	require.Equal(t, 66.67, Percentage(2, 3), "rounds half away from zero")
	require.Equal(t, 0.0, Percentage(0, 10))
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	require.Equal(t, 12.35, Round2(12.345))
	require.Equal(t, -12.35, Round2(-12.345))
	require.Equal(t, 12.34, Round2(12.344))
}
