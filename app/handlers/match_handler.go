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

// MatchHandlerInterface defines the contract for match handlers
type MatchHandlerInterface interface {
	CreateMatch(c fiber.Ctx) error
	UpdateMatch(c fiber.Ctx) error
	ListMatches(c fiber.Ctx) error
}

// MatchHandler handles match scheduling HTTP requests
type MatchHandler struct {
	flow      businessflow.MatchFlow
	validator *validator.Validate
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(flow businessflow.MatchFlow) *MatchHandler {
	return &MatchHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *MatchHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *MatchHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// CreateMatch schedules a fixture between two approved teams
// @Summary Schedule Match
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.CreateMatchRequest true "Fixture data"
// @Success 201 {object} dto.APIResponse{data=dto.MatchDTO}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Team not found"
// @Router /api/v1/admin/matches [post]
func (h *MatchHandler) CreateMatch(c fiber.Ctx) error {
	var req dto.CreateMatchRequest
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

	result, err := h.flow.CreateMatch(h.createRequestContext(c, "/api/v1/admin/matches"), &req, metadata)
	if err != nil {
		if businessflow.IsTeamNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Team not found", "TEAM_NOT_FOUND", nil)
		}
		if businessflow.IsMatchTeamsIdentical(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "A team cannot play itself", "MATCH_TEAMS_IDENTICAL", nil)
		}
		if businessflow.IsMatchTeamNotApproved(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Both teams must be approved", "MATCH_TEAM_NOT_APPROVED", nil)
		}
		if businessflow.IsMatchScheduleInPast(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Match cannot be scheduled in the past", "MATCH_SCHEDULE_IN_PAST", nil)
		}
		log.Println("Create match failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to schedule match", "MATCH_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Match scheduled", result)
}

// UpdateMatch reschedules a fixture, records a result, or cancels it
// @Summary Update Match
// @Tags Admin
// @Accept json
// @Produce json
// @Param uuid path string true "Match UUID"
// @Param request body dto.UpdateMatchRequest true "Fixture update"
// @Success 200 {object} dto.APIResponse{data=dto.MatchDTO}
// @Failure 404 {object} dto.APIResponse "Match not found"
// @Failure 409 {object} dto.APIResponse "Match already finalized"
// @Router /api/v1/admin/matches/{uuid} [patch]
func (h *MatchHandler) UpdateMatch(c fiber.Ctx) error {
	matchUUID := c.Params("uuid")
	if matchUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Match UUID is required", "MATCH_UUID_REQUIRED", nil)
	}

	var req dto.UpdateMatchRequest
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

	result, err := h.flow.UpdateMatch(h.createRequestContext(c, "/api/v1/admin/matches/:uuid"), matchUUID, &req, metadata)
	if err != nil {
		if businessflow.IsMatchNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Match not found", "MATCH_NOT_FOUND", nil)
		}
		if businessflow.IsMatchAlreadyFinalized(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Match is already completed or cancelled", "MATCH_ALREADY_FINALIZED", nil)
		}
		if businessflow.IsMatchResultIncomplete(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Both scores are required to complete a match", "MATCH_RESULT_INCOMPLETE", nil)
		}
		log.Println("Update match failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update match", "MATCH_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Match updated", result)
}

// ListMatches returns the public match schedule
// @Summary List Matches
// @Tags Matches
// @Produce json
// @Param round query string false "Filter by round"
// @Param status query string false "Filter by status (scheduled, completed, cancelled)"
// @Success 200 {object} dto.APIResponse{data=dto.ListMatchesResponse}
// @Router /api/v1/matches [get]
func (h *MatchHandler) ListMatches(c fiber.Ctx) error {
	round := c.Query("round")
	status := c.Query("status")

	result, err := h.flow.ListMatches(h.createRequestContext(c, "/api/v1/matches"), round, status)
	if err != nil {
		log.Println("List matches failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list matches", "MATCH_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Matches retrieved", result)
}

func (h *MatchHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *MatchHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
