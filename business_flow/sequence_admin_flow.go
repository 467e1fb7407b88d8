// Package businessflow contains the core business logic and use cases for tournament registration workflows
package businessflow

import (
	"context"
	"fmt"
	"log"

	"github.com/icct-platform/registration-backend/app/dto"
	"github.com/icct-platform/registration-backend/app/services"
	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/repository"
	"github.com/icct-platform/registration-backend/utils"
)

// SequenceAdminFlow exposes counter inspection and repair to operators
type SequenceAdminFlow interface {
	CurrentValue(ctx context.Context, sequence string) (*dto.SequenceStateResponse, error)
	Resync(ctx context.Context, sequence string, req *dto.ResyncSequenceRequest, metadata *ClientMetadata) (*dto.ResyncSequenceResponse, error)
	ReconcileTeamSequence(ctx context.Context) error
}

// SequenceAdminFlowImpl implements the sequence administration flow
type SequenceAdminFlowImpl struct {
	identifierSvc services.IdentifierService
	teamRepo      repository.TeamRepository
	auditRepo     repository.AuditLogRepository
	teamPrefix    string
}

// NewSequenceAdminFlow creates a new sequence admin flow instance
func NewSequenceAdminFlow(
	identifierSvc services.IdentifierService,
	teamRepo repository.TeamRepository,
	auditRepo repository.AuditLogRepository,
	teamPrefix string,
) SequenceAdminFlow {
	return &SequenceAdminFlowImpl{
		identifierSvc: identifierSvc,
		teamRepo:      teamRepo,
		auditRepo:     auditRepo,
		teamPrefix:    teamPrefix,
	}
}

// CurrentValue reports a counter's last issued value without consuming one
func (s *SequenceAdminFlowImpl) CurrentValue(ctx context.Context, sequence string) (*dto.SequenceStateResponse, error) {
	if sequence == "" {
		return nil, NewBusinessError("SEQUENCE_NAME_REQUIRED", "Sequence name is required", ErrSequenceNameRequired)
	}

	value, err := s.identifierSvc.CurrentValue(ctx, sequence)
	if err != nil {
		return nil, NewBusinessError("SEQUENCE_READ_FAILED", "Failed to read sequence", err)
	}

	resp := &dto.SequenceStateResponse{
		Sequence:  sequence,
		LastValue: value,
	}
	if value > 0 {
		resp.LastDisplayID = s.identifierSvc.Format(value)
	}
	return resp, nil
}

// Resync forces a counter to the requested value. No guard rails beyond
// non-negativity: operators own the consequences, so every call is audited.
func (s *SequenceAdminFlowImpl) Resync(ctx context.Context, sequence string, req *dto.ResyncSequenceRequest, metadata *ClientMetadata) (*dto.ResyncSequenceResponse, error) {
	if sequence == "" {
		return nil, NewBusinessError("SEQUENCE_NAME_REQUIRED", "Sequence name is required", ErrSequenceNameRequired)
	}
	if req.Value < 0 {
		return nil, NewBusinessError("RESYNC_VALUE_NEGATIVE", "Resync value cannot be negative", ErrResyncValueNegative)
	}

	previous, err := s.identifierSvc.CurrentValue(ctx, sequence)
	if err != nil {
		return nil, NewBusinessError("SEQUENCE_READ_FAILED", "Failed to read sequence", err)
	}

	if err := s.identifierSvc.Resync(ctx, sequence, req.Value); err != nil {
		errMsg := fmt.Sprintf("Resync of %q to %d failed: %s", sequence, req.Value, err.Error())
		_ = s.createAuditLog(ctx, models.AuditActionSequenceResynced, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("SEQUENCE_RESYNC_FAILED", "Failed to resync sequence", err)
	}

	msg := fmt.Sprintf("Sequence %q resynced from %d to %d", sequence, previous, req.Value)
	_ = s.createAuditLog(ctx, models.AuditActionSequenceResynced, msg, true, nil, metadata)

	return &dto.ResyncSequenceResponse{
		Message:       "Sequence resynced",
		Sequence:      sequence,
		PreviousValue: previous,
		LastValue:     req.Value,
	}, nil
}

// ReconcileTeamSequence aligns the team counter with the teams actually
// persisted. Runs at startup; it only ever moves the counter forward, so a
// counter that is already ahead (issued numbers whose registrations failed)
// keeps its gaps instead of re-issuing identifiers.
func (s *SequenceAdminFlowImpl) ReconcileTeamSequence(ctx context.Context) error {
	current, err := s.identifierSvc.CurrentValue(ctx, models.SequenceTeam)
	if err != nil {
		return fmt.Errorf("failed to read team sequence: %w", err)
	}

	count, err := s.teamRepo.Count(ctx, models.TeamFilter{})
	if err != nil {
		return fmt.Errorf("failed to count teams: %w", err)
	}

	maxSuffix, err := s.teamRepo.MaxDisplaySuffix(ctx, s.teamPrefix)
	if err != nil {
		return fmt.Errorf("failed to read max display suffix: %w", err)
	}

	observed := count
	if maxSuffix > observed {
		observed = maxSuffix
	}

	if observed <= current {
		return nil
	}

	log.Printf("team sequence behind persisted teams (counter=%d, observed=%d), resyncing", current, observed)
	if err := s.identifierSvc.Resync(ctx, models.SequenceTeam, observed); err != nil {
		return fmt.Errorf("failed to reconcile team sequence: %w", err)
	}

	msg := fmt.Sprintf("Team sequence reconciled from %d to %d at startup", current, observed)
	_ = s.createAuditLog(ctx, models.AuditActionSequenceReconciled, msg, true, nil, nil)
	return nil
}

func (s *SequenceAdminFlowImpl) createAuditLog(ctx context.Context, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
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
