// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/icct-platform/registration-backend/app/dto"
	businessflow "github.com/icct-platform/registration-backend/business_flow"
	"github.com/icct-platform/registration-backend/utils"
)

// SequenceAdminHandlerInterface defines the contract for sequence admin handlers
type SequenceAdminHandlerInterface interface {
	CurrentValue(c fiber.Ctx) error
	Resync(c fiber.Ctx) error
}

// SequenceAdminHandler handles counter inspection and repair HTTP requests
type SequenceAdminHandler struct {
	flow      businessflow.SequenceAdminFlow
	validator *validator.Validate
}

// NewSequenceAdminHandler creates a new sequence admin handler
func NewSequenceAdminHandler(flow businessflow.SequenceAdminFlow) *SequenceAdminHandler {
	return &SequenceAdminHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *SequenceAdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *SequenceAdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// CurrentValue reports a counter's last issued value
// @Summary Current Sequence Value
// @Tags Admin
// @Produce json
// @Param name path string true "Sequence name (e.g. team)"
// @Success 200 {object} dto.APIResponse{data=dto.SequenceStateResponse}
// @Router /api/v1/admin/sequences/{name} [get]
func (h *SequenceAdminHandler) CurrentValue(c fiber.Ctx) error {
	name := c.Params("name")

	result, err := h.flow.CurrentValue(h.createRequestContext(c, "/api/v1/admin/sequences/:name"), name)
	if err != nil {
		if businessflow.IsSequenceNameRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Sequence name is required", "SEQUENCE_NAME_REQUIRED", nil)
		}
		log.Println("Sequence read failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read sequence", "SEQUENCE_READ_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Sequence retrieved", result)
}

// Resync forces a counter to a new value
// @Summary Resync Sequence
// @Tags Admin
// @Accept json
// @Produce json
// @Param name path string true "Sequence name (e.g. team)"
// @Param request body dto.ResyncSequenceRequest true "New counter value"
// @Success 200 {object} dto.APIResponse{data=dto.ResyncSequenceResponse}
// @Failure 400 {object} dto.APIResponse "Invalid value"
// @Router /api/v1/admin/sequences/{name}/resync [post]
func (h *SequenceAdminHandler) Resync(c fiber.Ctx) error {
	name := c.Params("name")

	var req dto.ResyncSequenceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.AddAdditional("admin", c.Get("X-Admin-Name"))

	result, err := h.flow.Resync(h.createRequestContext(c, "/api/v1/admin/sequences/:name/resync"), name, &req, metadata)
	if err != nil {
		if businessflow.IsSequenceNameRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Sequence name is required", "SEQUENCE_NAME_REQUIRED", nil)
		}
		if businessflow.IsResyncValueNegative(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Resync value cannot be negative", "RESYNC_VALUE_NEGATIVE", nil)
		}
		log.Println("Sequence resync failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resync sequence", "SEQUENCE_RESYNC_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *SequenceAdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
