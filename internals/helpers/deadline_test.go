package helper

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestDeadlineFor(t *testing.T) {
	for _, m := range []string{fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete} {
		require.Equal(t, 10*time.Second, DeadlineFor(m), m)
	}
	require.Equal(t, 5*time.Second, DeadlineFor(fiber.MethodGet))
	require.Equal(t, 5*time.Second, DeadlineFor(fiber.MethodHead))
}
