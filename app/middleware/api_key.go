// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v3"

	"github.com/icct-platform/registration-backend/app/dto"
)

const apiKeyHeader = "X-API-Key"

// APIKeyMiddleware guards admin endpoints with static API keys
type APIKeyMiddleware struct {
	keys map[string]string
}

// NewAPIKeyMiddleware creates a new API key middleware. keys maps an admin
// name to their key; the matching admin name is stored in locals for audit.
func NewAPIKeyMiddleware(keys map[string]string) *APIKeyMiddleware {
	return &APIKeyMiddleware{keys: keys}
}

// RequireAPIKey rejects requests without a valid admin API key
func (m *APIKeyMiddleware) RequireAPIKey() fiber.Handler {
	return func(c fiber.Ctx) error {
		provided := c.Get(apiKeyHeader)
		if provided == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "API key is required",
				Error:   dto.ErrorDetail{Code: "MISSING_API_KEY"},
			})
		}

		for admin, key := range m.keys {
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) == 1 {
				c.Locals("admin_name", admin)
				if requestID := c.Get("X-Request-ID"); requestID != "" {
					c.Locals("request_id", requestID)
				}
				return c.Next()
			}
		}

		return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
			Success: false,
			Message: "Invalid API key",
			Error:   dto.ErrorDetail{Code: "INVALID_API_KEY"},
		})
	}
}

// GetAdminNameFromContext extracts the authenticated admin name
func GetAdminNameFromContext(c fiber.Ctx) (string, bool) {
	name, ok := c.Locals("admin_name").(string)
	return name, ok
}
