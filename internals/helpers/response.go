// file: internals/helpers/response.go
package helper

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

/* ===============================
   Error codes (stable wire surface)
=================================*/

const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeNotFound         = "NOT_FOUND"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeConflict         = "CONFLICT"
	CodeExpired          = "EXPIRED"
	CodeNotEnrolled      = "NOT_ENROLLED"
	CodeDeadline         = "DEADLINE"
	CodeUnavailable      = "UNAVAILABLE"
)

func codeToStatus(code string) int {
	switch code {
	case CodeInvalidInput:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodePermissionDenied:
		return fiber.StatusForbidden
	case CodeConflict:
		return fiber.StatusConflict
	case CodeExpired:
		return fiber.StatusGone
	case CodeNotEnrolled:
		return fiber.StatusUnprocessableEntity
	case CodeDeadline:
		return fiber.StatusGatewayTimeout
	case CodeUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

/* ===============================
   ApiError — typed error carried up from services
=================================*/

type ApiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Detail carries structured extras (e.g. offending student ids).
	// Never echoes submitted values, only identifiers.
	Detail any `json:"detail,omitempty"`
}

func (e *ApiError) Error() string { return e.Code + ": " + e.Message }

func NewApiError(code, message string) *ApiError {
	return &ApiError{Code: code, Message: message}
}

func NewApiErrorWithDetail(code, message string, detail any) *ApiError {
	return &ApiError{Code: code, Message: message, Detail: detail}
}

// Opaque denial: one shape for every authorization failure so callers cannot
// infer resource existence.
func ErrPermissionDenied() *ApiError {
	return NewApiError(CodePermissionDenied, "permission denied")
}

/* ===============================
   JSON envelope (success / error)
=================================*/

func JsonOK(c *fiber.Ctx, message string, data any) error {
	if strings.TrimSpace(message) == "" {
		message = "ok"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func JsonCreated(c *fiber.Ctx, message string, data any) error {
	if strings.TrimSpace(message) == "" {
		message = "created"
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func JsonUpdated(c *fiber.Ctx, message string, data any) error {
	if strings.TrimSpace(message) == "" {
		message = "updated"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// JsonList: list responses with pagination block.
func JsonList(c *fiber.Ctx, message string, data any, pagination any) error {
	if strings.TrimSpace(message) == "" {
		message = "ok"
	}
	body := fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	}
	if pagination != nil {
		body["pagination"] = pagination
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

func JsonErrorCode(c *fiber.Ctx, code, message string, detail any) error {
	body := fiber.Map{
		"success": false,
		"error": &ApiError{
			Code:    code,
			Message: message,
			Detail:  detail,
		},
	}
	return c.Status(codeToStatus(code)).JSON(body)
}

// JsonFromError converts whatever bubbled out of a service into the one
// envelope shape. Order matters: typed ApiError first, then well-known
// sentinels, then fiber errors, then 500.
func JsonFromError(c *fiber.Ctx, err error) error {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return JsonErrorCode(c, apiErr.Code, apiErr.Message, apiErr.Detail)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return JsonErrorCode(c, CodeDeadline, "deadline exceeded", nil)
	}
	if errors.Is(err, context.Canceled) {
		return JsonErrorCode(c, CodeDeadline, "request canceled", nil)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return JsonErrorCode(c, CodeNotFound, "resource not found", nil)
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make([]string, 0, len(ve))
		for _, fe := range ve {
			// field names only, never submitted values
			fields = append(fields, fe.Field())
		}
		return JsonErrorCode(c, CodeInvalidInput, "validation failed", fiber.Map{"fields": fields})
	}
	if fe, ok := err.(*fiber.Error); ok {
		code := CodeInvalidInput
		switch fe.Code {
		case fiber.StatusNotFound:
			code = CodeNotFound
		case fiber.StatusForbidden, fiber.StatusUnauthorized:
			code = CodePermissionDenied
		case fiber.StatusConflict:
			code = CodeConflict
		}
		return JsonErrorCode(c, code, fe.Message, nil)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    "INTERNAL_ERROR",
			"message": "internal server error",
		},
	})
}
