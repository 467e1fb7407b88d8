// Package businessflow contains the core business logic and use cases for tournament registration workflows
package businessflow

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/icct-platform/registration-backend/app/dto"
	"github.com/icct-platform/registration-backend/app/services"
	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/repository"
	"github.com/icct-platform/registration-backend/utils"
)

// AdminTeamFlow provides use cases for reviewing and exporting registrations
type AdminTeamFlow interface {
	ListTeams(ctx context.Context, req *dto.ListTeamsRequest) (*dto.ListTeamsResponse, error)
	ApproveTeam(ctx context.Context, displayID string, req *dto.ReviewTeamRequest, metadata *ClientMetadata) (*dto.ReviewTeamResponse, error)
	RejectTeam(ctx context.Context, displayID string, req *dto.ReviewTeamRequest, metadata *ClientMetadata) (*dto.ReviewTeamResponse, error)
	ExportTeams(ctx context.Context, status string, metadata *ClientMetadata) (string, []byte, error)
}

// AdminTeamFlowImpl implements the admin team review flow
type AdminTeamFlowImpl struct {
	teamRepo        repository.TeamRepository
	playerRepo      repository.PlayerRepository
	auditRepo       repository.AuditLogRepository
	notificationSvc services.NotificationService
	db              *gorm.DB
}

// NewAdminTeamFlow creates a new admin team flow instance
func NewAdminTeamFlow(
	teamRepo repository.TeamRepository,
	playerRepo repository.PlayerRepository,
	auditRepo repository.AuditLogRepository,
	notificationSvc services.NotificationService,
	db *gorm.DB,
) AdminTeamFlow {
	return &AdminTeamFlowImpl{
		teamRepo:        teamRepo,
		playerRepo:      playerRepo,
		auditRepo:       auditRepo,
		notificationSvc: notificationSvc,
		db:              db,
	}
}

// ListTeams returns registered teams filtered by status, newest first
func (s *AdminTeamFlowImpl) ListTeams(ctx context.Context, req *dto.ListTeamsRequest) (*dto.ListTeamsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := models.TeamFilter{}
	if req.Status != "" {
		filter.Status = &req.Status
	}

	total, err := s.teamRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("TEAM_LIST_FAILED", "Failed to list teams", err)
	}

	teams, err := s.teamRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("TEAM_LIST_FAILED", "Failed to list teams", err)
	}

	resp := &dto.ListTeamsResponse{
		Teams:    make([]dto.TeamDTO, 0, len(teams)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, t := range teams {
		resp.Teams = append(resp.Teams, ToTeamDTO(*t))
	}
	return resp, nil
}

// ApproveTeam transitions a pending team to approved and notifies the captain
func (s *AdminTeamFlowImpl) ApproveTeam(ctx context.Context, displayID string, req *dto.ReviewTeamRequest, metadata *ClientMetadata) (*dto.ReviewTeamResponse, error) {
	return s.reviewTeam(ctx, displayID, models.TeamStatusApproved, models.AuditActionTeamApproved, req, metadata)
}

// RejectTeam transitions a pending team to rejected. A review note is
// mandatory so the captain knows why.
func (s *AdminTeamFlowImpl) RejectTeam(ctx context.Context, displayID string, req *dto.ReviewTeamRequest, metadata *ClientMetadata) (*dto.ReviewTeamResponse, error) {
	if req.ReviewNote == "" {
		return nil, NewBusinessError("REVIEW_NOTE_REQUIRED", "Review note is required for rejection", ErrReviewNoteRequired)
	}
	return s.reviewTeam(ctx, displayID, models.TeamStatusRejected, models.AuditActionTeamRejected, req, metadata)
}

func (s *AdminTeamFlowImpl) reviewTeam(ctx context.Context, displayID, status, auditAction string, req *dto.ReviewTeamRequest, metadata *ClientMetadata) (*dto.ReviewTeamResponse, error) {
	team, err := s.teamRepo.ByDisplayID(ctx, displayID)
	if err != nil {
		return nil, NewBusinessError("TEAM_REVIEW_FAILED", "Failed to review team", err)
	}
	if team == nil {
		return nil, NewBusinessError("TEAM_NOT_FOUND", "Team not found", ErrTeamNotFound)
	}
	if !team.IsPending() {
		return nil, NewBusinessError("TEAM_NOT_PENDING", "Team is not pending review", ErrTeamNotPending)
	}

	var reviewNote *string
	if req.ReviewNote != "" {
		reviewNote = &req.ReviewNote
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		return s.teamRepo.UpdateStatus(txCtx, team.ID, status, &req.ReviewedBy, reviewNote)
	})
	if err != nil {
		errMsg := fmt.Sprintf("Review of %s failed: %s", displayID, err.Error())
		_ = s.createAuditLog(ctx, team, auditAction, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("TEAM_REVIEW_FAILED", "Failed to review team", err)
	}

	team.Status = status
	team.ReviewedBy = &req.ReviewedBy
	team.ReviewNote = reviewNote

	msg := fmt.Sprintf("Team %s %s by %s", displayID, status, req.ReviewedBy)
	_ = s.createAuditLog(ctx, team, auditAction, msg, true, nil, metadata)

	go func() {
		subject := fmt.Sprintf("Registration %s: %s", status, displayID)
		if err := s.notificationSvc.SendEmail(context.Background(), team.CaptainEmail, subject, s.reviewEmailBody(team)); err != nil {
			log.Printf("failed to send review email for %s: %v", displayID, err)
		}
	}()

	return &dto.ReviewTeamResponse{
		Message: fmt.Sprintf("Team %s", status),
		Team:    ToTeamDTO(*team),
	}, nil
}

// ExportTeams renders all teams (optionally filtered by status) with their
// rosters as an Excel workbook
func (s *AdminTeamFlowImpl) ExportTeams(ctx context.Context, status string, metadata *ClientMetadata) (string, []byte, error) {
	filter := models.TeamFilter{}
	if status != "" {
		filter.Status = &status
	}

	teams, err := s.teamRepo.ByFilter(ctx, filter, "display_id ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("TEAM_EXPORT_FAILED", "Failed to export teams", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	teamsSheet := "Teams"
	xl.SetSheetName(xl.GetSheetName(0), teamsSheet)

	header := []string{"display_id", "name", "institution", "captain_name", "captain_email", "captain_mobile", "status", "reviewed_by", "review_note", "registered_at"}
	_ = xl.SetSheetRow(teamsSheet, "A1", &header)

	for ri, t := range teams {
		reviewedBy := ""
		if t.ReviewedBy != nil {
			reviewedBy = *t.ReviewedBy
		}
		reviewNote := ""
		if t.ReviewNote != nil {
			reviewNote = *t.ReviewNote
		}
		record := []string{
			t.DisplayID,
			t.Name,
			t.Institution,
			t.CaptainName,
			t.CaptainEmail,
			t.CaptainMobile,
			t.Status,
			reviewedBy,
			reviewNote,
			t.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(teamsSheet, cellRef, &record)
	}

	playersSheet := "Players"
	_, _ = xl.NewSheet(playersSheet)
	playerHeader := []string{"player_id", "team_id", "position", "full_name", "role", "jersey_number"}
	_ = xl.SetSheetRow(playersSheet, "A1", &playerHeader)

	row := 2
	for _, t := range teams {
		players, err := s.playerRepo.ListByTeam(ctx, t.ID)
		if err != nil {
			return "", nil, NewBusinessError("TEAM_EXPORT_FAILED", "Failed to export rosters", err)
		}
		for _, p := range players {
			record := []string{
				p.DisplayID,
				t.DisplayID,
				strconv.Itoa(p.Position),
				p.FullName,
				p.Role,
				strconv.Itoa(p.JerseyNumber),
			}
			cellRef, _ := excelize.CoordinatesToCellName(1, row)
			_ = xl.SetSheetRow(playersSheet, cellRef, &record)
			row++
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	msg := fmt.Sprintf("Exported %d teams", len(teams))
	_ = s.createAuditLog(ctx, nil, models.AuditActionTeamExported, msg, true, nil, metadata)

	filename := fmt.Sprintf("teams_%s.xlsx", utils.UTCNow().Format("20060102_150405"))
	return filename, buf.Bytes(), nil
}

func (s *AdminTeamFlowImpl) reviewEmailBody(team *models.Team) string {
	if team.Status == models.TeamStatusApproved {
		return fmt.Sprintf(
			"<p>Dear %s,</p><p>Your team <strong>%s</strong> (%s) has been approved. Welcome to the tournament.</p>",
			team.CaptainName, team.Name, team.DisplayID)
	}
	note := ""
	if team.ReviewNote != nil {
		note = *team.ReviewNote
	}
	return fmt.Sprintf(
		"<p>Dear %s,</p><p>Your team <strong>%s</strong> (%s) could not be approved.</p><p>Reason: %s</p>",
		team.CaptainName, team.Name, team.DisplayID, note)
}

func (s *AdminTeamFlowImpl) createAuditLog(ctx context.Context, team *models.Team, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	var teamID *uint
	if team != nil {
		teamID = &team.ID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	actor := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
		actor = metadata.Additional["admin"]
	}

	audit := &models.AuditLog{
		TeamID:       teamID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}
	if actor != "" {
		audit.Actor = &actor
	}

	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		if requestIDStr, ok := requestID.(string); ok {
			audit.RequestID = &requestIDStr
		}
	}

	return s.auditRepo.Save(ctx, audit)
}
