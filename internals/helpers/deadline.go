// file: internals/helpers/deadline.go
package helper

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// DeadlineFor is the per-request context budget: mutating verbs get the write
// deadline, everything else the read deadline. The prediction client carries
// its own tighter timeout underneath this guard.
func DeadlineFor(method string) time.Duration {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		return 10 * time.Second
	}
	return 5 * time.Second
}
