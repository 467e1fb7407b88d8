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

// RegistrationHandlerInterface defines the contract for registration handlers
type RegistrationHandlerInterface interface {
	Register(c fiber.Ctx) error
	GetTeam(c fiber.Ctx) error
}

// RegistrationHandler handles team registration HTTP requests
type RegistrationHandler struct {
	flow      businessflow.RegistrationFlow
	validator *validator.Validate
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(flow businessflow.RegistrationFlow) *RegistrationHandler {
	h := &RegistrationHandler{
		flow:      flow,
		validator: validator.New(),
	}
	h.setupCustomValidations()
	return h
}

// Custom validation setup
func (h *RegistrationHandler) setupCustomValidations() {
	// Register custom validation for alpha characters with spaces
	h.validator.RegisterValidation("alpha_space", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, char := range value {
			if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || char == ' ') {
				return false
			}
		}
		return true
	})

	// Register custom validation for mobile format
	h.validator.RegisterValidation("mobile_format", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		// International format: + followed by 10 to 14 digits
		if len(value) < 11 || len(value) > 15 {
			return false
		}
		if value[0] != '+' {
			return false
		}
		for _, char := range value[1:] {
			if char < '0' || char > '9' {
				return false
			}
		}
		return true
	})
}

func (h *RegistrationHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *RegistrationHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Register handles the team registration process
// @Summary Register Team
// @Description Register a new team with its roster and supporting documents
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body dto.RegistrationRequest true "Team registration data"
// @Success 201 {object} dto.APIResponse{data=dto.RegistrationResponse} "Registration submitted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Team name already exists"
// @Failure 503 {object} dto.APIResponse "Identifier sequence unavailable"
// @Router /api/v1/registrations [post]
func (h *RegistrationHandler) Register(c fiber.Ctx) error {
	var req dto.RegistrationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.flow.Register(h.createRequestContext(c, "/api/v1/registrations"), &req, metadata)
	if err != nil {
		if businessflow.IsTeamNameAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Team name already exists", "TEAM_NAME_EXISTS", nil)
		}
		if businessflow.IsRosterTooSmall(err) || businessflow.IsRosterTooLarge(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Roster size is out of range", "ROSTER_SIZE_INVALID", nil)
		}
		if businessflow.IsDuplicateJerseyNumber(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Duplicate jersey number in roster", "DUPLICATE_JERSEY_NUMBER", nil)
		}
		if businessflow.IsPaymentProofRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Payment proof document is required", "PAYMENT_PROOF_REQUIRED", nil)
		}
		if businessflow.IsDocumentTooLarge(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Document exceeds the size limit", "DOCUMENT_TOO_LARGE", nil)
		}
		if businessflow.IsDocumentContentInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Document content is not an allowed type", "DOCUMENT_CONTENT_INVALID", nil)
		}
		if businessflow.IsSequenceUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Registration is temporarily unavailable, please retry", "SEQUENCE_UNAVAILABLE", nil)
		}

		log.Println("Registration failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Registration failed", "REGISTRATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// GetTeam returns a registered team by its display identifier
// @Summary Get Team
// @Description Retrieve a registered team with its roster by display ID
// @Tags Registration
// @Produce json
// @Param display_id path string true "Team display ID (e.g. ICCT-042)"
// @Success 200 {object} dto.APIResponse{data=dto.TeamDTO}
// @Failure 404 {object} dto.APIResponse "Team not found"
// @Router /api/v1/registrations/{display_id} [get]
func (h *RegistrationHandler) GetTeam(c fiber.Ctx) error {
	displayID := c.Params("display_id")
	if displayID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Display ID is required", "DISPLAY_ID_REQUIRED", nil)
	}

	result, err := h.flow.GetByDisplayID(h.createRequestContext(c, "/api/v1/registrations/:display_id"), displayID)
	if err != nil {
		if businessflow.IsTeamNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Team not found", "TEAM_NOT_FOUND", nil)
		}
		log.Println("Get team failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve team", "TEAM_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Team retrieved", result)
}

func (h *RegistrationHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *RegistrationHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
