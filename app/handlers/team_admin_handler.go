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

// TeamAdminHandlerInterface defines the contract for admin team handlers
type TeamAdminHandlerInterface interface {
	ListTeams(c fiber.Ctx) error
	ApproveTeam(c fiber.Ctx) error
	RejectTeam(c fiber.Ctx) error
	ExportTeams(c fiber.Ctx) error
}

// TeamAdminHandler handles admin team review HTTP requests
type TeamAdminHandler struct {
	flow      businessflow.AdminTeamFlow
	validator *validator.Validate
}

// NewTeamAdminHandler creates a new admin team handler
func NewTeamAdminHandler(flow businessflow.AdminTeamFlow) *TeamAdminHandler {
	return &TeamAdminHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *TeamAdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *TeamAdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// ListTeams returns registered teams for review
// @Summary List Teams
// @Tags Admin
// @Produce json
// @Param status query string false "Filter by status" Enums(pending, approved, rejected)
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListTeamsResponse}
// @Router /api/v1/admin/teams [get]
func (h *TeamAdminHandler) ListTeams(c fiber.Ctx) error {
	var req dto.ListTeamsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.flow.ListTeams(h.createRequestContext(c, "/api/v1/admin/teams"), &req)
	if err != nil {
		log.Println("List teams failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list teams", "TEAM_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Teams retrieved", result)
}

// ApproveTeam approves a pending team
// @Summary Approve Team
// @Tags Admin
// @Accept json
// @Produce json
// @Param display_id path string true "Team display ID"
// @Param request body dto.ReviewTeamRequest true "Review decision"
// @Success 200 {object} dto.APIResponse{data=dto.ReviewTeamResponse}
// @Failure 404 {object} dto.APIResponse "Team not found"
// @Failure 409 {object} dto.APIResponse "Team not pending"
// @Router /api/v1/admin/teams/{display_id}/approve [post]
func (h *TeamAdminHandler) ApproveTeam(c fiber.Ctx) error {
	return h.review(c, "approve")
}

// RejectTeam rejects a pending team
// @Summary Reject Team
// @Tags Admin
// @Accept json
// @Produce json
// @Param display_id path string true "Team display ID"
// @Param request body dto.ReviewTeamRequest true "Review decision with mandatory note"
// @Success 200 {object} dto.APIResponse{data=dto.ReviewTeamResponse}
// @Failure 404 {object} dto.APIResponse "Team not found"
// @Failure 409 {object} dto.APIResponse "Team not pending"
// @Router /api/v1/admin/teams/{display_id}/reject [post]
func (h *TeamAdminHandler) RejectTeam(c fiber.Ctx) error {
	return h.review(c, "reject")
}

func (h *TeamAdminHandler) review(c fiber.Ctx, decision string) error {
	displayID := c.Params("display_id")
	if displayID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Display ID is required", "DISPLAY_ID_REQUIRED", nil)
	}

	var req dto.ReviewTeamRequest
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

	ctx := h.createRequestContext(c, "/api/v1/admin/teams/:display_id/"+decision)
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.AddAdditional("admin", req.ReviewedBy)

	var result *dto.ReviewTeamResponse
	var err error
	if decision == "approve" {
		result, err = h.flow.ApproveTeam(ctx, displayID, &req, metadata)
	} else {
		result, err = h.flow.RejectTeam(ctx, displayID, &req, metadata)
	}

	if err != nil {
		if businessflow.IsTeamNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Team not found", "TEAM_NOT_FOUND", nil)
		}
		if businessflow.IsTeamNotPending(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Team is not pending review", "TEAM_NOT_PENDING", nil)
		}
		if businessflow.IsReviewNoteRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Review note is required for rejection", "REVIEW_NOTE_REQUIRED", nil)
		}
		log.Println("Team review failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to review team", "TEAM_REVIEW_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ExportTeams downloads all teams and rosters as an Excel workbook
// @Summary Export Teams
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Filter by status" Enums(pending, approved, rejected)
// @Success 200 {file} binary
// @Router /api/v1/admin/teams/export [get]
func (h *TeamAdminHandler) ExportTeams(c fiber.Ctx) error {
	status := c.Query("status")

	ctx := h.createRequestContextWithTimeout(c, "/api/v1/admin/teams/export", 2*time.Minute)
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	filename, data, err := h.flow.ExportTeams(ctx, status, metadata)
	if err != nil {
		log.Println("Team export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export teams", "TEAM_EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

func (h *TeamAdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *TeamAdminHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
