// Package businessflow contains the core business logic and use cases for tournament registration workflows
package businessflow

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/icct-platform/registration-backend/app/dto"
	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/repository"
	"github.com/icct-platform/registration-backend/utils"
)

// MatchFlow provides fixture scheduling and the public schedule
type MatchFlow interface {
	CreateMatch(ctx context.Context, req *dto.CreateMatchRequest, metadata *ClientMetadata) (*dto.MatchDTO, error)
	UpdateMatch(ctx context.Context, matchUUID string, req *dto.UpdateMatchRequest, metadata *ClientMetadata) (*dto.MatchDTO, error)
	ListMatches(ctx context.Context, round, status string) (*dto.ListMatchesResponse, error)
}

// MatchFlowImpl implements the match scheduling flow
type MatchFlowImpl struct {
	matchRepo repository.MatchRepository
	teamRepo  repository.TeamRepository
	auditRepo repository.AuditLogRepository
	db        *gorm.DB
}

// NewMatchFlow creates a new match flow instance
func NewMatchFlow(
	matchRepo repository.MatchRepository,
	teamRepo repository.TeamRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) MatchFlow {
	return &MatchFlowImpl{
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
		auditRepo: auditRepo,
		db:        db,
	}
}

// CreateMatch schedules a fixture between two approved teams
func (s *MatchFlowImpl) CreateMatch(ctx context.Context, req *dto.CreateMatchRequest, metadata *ClientMetadata) (*dto.MatchDTO, error) {
	if req.HomeTeamDisplayID == req.AwayTeamDisplayID {
		return nil, NewBusinessError("MATCH_TEAMS_IDENTICAL", "A team cannot play itself", ErrMatchTeamsIdentical)
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, NewBusinessError("MATCH_VALIDATION_FAILED", "Invalid scheduled_at timestamp", err)
	}
	if scheduledAt.Before(utils.UTCNow()) {
		return nil, NewBusinessError("MATCH_SCHEDULE_IN_PAST", "Match cannot be scheduled in the past", ErrMatchScheduleInPast)
	}

	home, err := s.approvedTeam(ctx, req.HomeTeamDisplayID)
	if err != nil {
		return nil, err
	}
	away, err := s.approvedTeam(ctx, req.AwayTeamDisplayID)
	if err != nil {
		return nil, err
	}

	match := &models.Match{
		Round:       req.Round,
		HomeTeamID:  home.ID,
		AwayTeamID:  away.ID,
		Venue:       req.Venue,
		ScheduledAt: scheduledAt.UTC(),
		Status:      models.MatchStatusScheduled,
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		return s.matchRepo.Save(txCtx, match)
	})
	if err != nil {
		return nil, NewBusinessError("MATCH_CREATE_FAILED", "Failed to schedule match", err)
	}

	match.HomeTeam = home
	match.AwayTeam = away

	msg := fmt.Sprintf("Match scheduled: %s vs %s at %s", home.DisplayID, away.DisplayID, req.Venue)
	_ = s.createAuditLog(ctx, models.AuditActionMatchScheduled, msg, true, nil, metadata)

	d := ToMatchDTO(*match)
	return &d, nil
}

// UpdateMatch reschedules a fixture, records a result, or cancels it
func (s *MatchFlowImpl) UpdateMatch(ctx context.Context, matchUUID string, req *dto.UpdateMatchRequest, metadata *ClientMetadata) (*dto.MatchDTO, error) {
	match, err := s.matchRepo.ByUUID(ctx, matchUUID)
	if err != nil {
		return nil, NewBusinessError("MATCH_UPDATE_FAILED", "Failed to update match", err)
	}
	if match == nil {
		return nil, NewBusinessError("MATCH_NOT_FOUND", "Match not found", ErrMatchNotFound)
	}
	if match.Status != models.MatchStatusScheduled {
		return nil, NewBusinessError("MATCH_ALREADY_FINALIZED", "Match is already completed or cancelled", ErrMatchAlreadyFinalized)
	}

	update := &models.Match{ID: match.ID}
	auditAction := models.AuditActionMatchUpdated

	if req.Round != nil {
		update.Round = *req.Round
	}
	if req.Venue != nil {
		update.Venue = *req.Venue
	}
	if req.ScheduledAt != nil {
		scheduledAt, err := time.Parse(time.RFC3339, *req.ScheduledAt)
		if err != nil {
			return nil, NewBusinessError("MATCH_VALIDATION_FAILED", "Invalid scheduled_at timestamp", err)
		}
		update.ScheduledAt = scheduledAt.UTC()
	}
	if req.Status != nil {
		switch *req.Status {
		case models.MatchStatusCompleted:
			if req.HomeScore == nil || req.AwayScore == nil {
				return nil, NewBusinessError("MATCH_RESULT_INCOMPLETE", "Both scores are required to complete a match", ErrMatchResultIncomplete)
			}
			update.Status = models.MatchStatusCompleted
			update.HomeScore = req.HomeScore
			update.AwayScore = req.AwayScore
			if *req.HomeScore > *req.AwayScore {
				update.WinnerTeamID = &match.HomeTeamID
			} else if *req.AwayScore > *req.HomeScore {
				update.WinnerTeamID = &match.AwayTeamID
			}
		case models.MatchStatusCancelled:
			update.Status = models.MatchStatusCancelled
			auditAction = models.AuditActionMatchCancelled
		case models.MatchStatusScheduled:
			// No status change
		}
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		return s.matchRepo.Update(txCtx, update)
	})
	if err != nil {
		return nil, NewBusinessError("MATCH_UPDATE_FAILED", "Failed to update match", err)
	}

	updated, err := s.matchRepo.ByUUID(ctx, matchUUID)
	if err != nil || updated == nil {
		return nil, NewBusinessError("MATCH_UPDATE_FAILED", "Failed to reload match", err)
	}

	msg := fmt.Sprintf("Match %s updated", matchUUID)
	_ = s.createAuditLog(ctx, auditAction, msg, true, nil, metadata)

	d := ToMatchDTO(*updated)
	return &d, nil
}

// ListMatches returns the schedule, optionally restricted by round and status
func (s *MatchFlowImpl) ListMatches(ctx context.Context, round, status string) (*dto.ListMatchesResponse, error) {
	filter := models.MatchFilter{}
	if round != "" {
		filter.Round = &round
	}
	if status != "" {
		filter.Status = &status
	}

	total, err := s.matchRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("MATCH_LIST_FAILED", "Failed to list matches", err)
	}

	matches, err := s.matchRepo.ByFilter(ctx, filter, "scheduled_at ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("MATCH_LIST_FAILED", "Failed to list matches", err)
	}

	resp := &dto.ListMatchesResponse{
		Matches: make([]dto.MatchDTO, 0, len(matches)),
		Total:   total,
	}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, ToMatchDTO(*m))
	}
	return resp, nil
}

func (s *MatchFlowImpl) approvedTeam(ctx context.Context, displayID string) (*models.Team, error) {
	team, err := s.teamRepo.ByDisplayID(ctx, displayID)
	if err != nil {
		return nil, NewBusinessError("MATCH_CREATE_FAILED", "Failed to look up team", err)
	}
	if team == nil {
		return nil, NewBusinessError("TEAM_NOT_FOUND", fmt.Sprintf("Team %s not found", displayID), ErrTeamNotFound)
	}
	if team.Status != models.TeamStatusApproved {
		return nil, NewBusinessError("MATCH_TEAM_NOT_APPROVED", fmt.Sprintf("Team %s is not approved", displayID), ErrMatchTeamNotApproved)
	}
	return team, nil
}

func (s *MatchFlowImpl) createAuditLog(ctx context.Context, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	actor := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
		actor = metadata.Additional["admin"]
	}

	audit := &models.AuditLog{
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
