package models

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	TeamID       *uint           `gorm:"index:idx_audit_team_id" json:"team_id,omitempty"`
	Team         *Team           `gorm:"foreignKey:TeamID;references:ID" json:"team,omitempty"`
	Action       string          `gorm:"size:64;not null;index:idx_audit_action" json:"action"`
	Actor        *string         `gorm:"size:255;index:idx_audit_actor" json:"actor,omitempty"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string         `gorm:"type:inet;index:idx_audit_ip_address" json:"ip_address,omitempty"`
	UserAgent    *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb;index:idx_audit_metadata,type:gin" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionRegistrationSubmitted = "registration_submitted"
	AuditActionRegistrationFailed    = "registration_failed"
	AuditActionTeamApproved          = "team_approved"
	AuditActionTeamRejected          = "team_rejected"
	AuditActionTeamExported          = "team_exported"
	AuditActionSequenceResynced      = "sequence_resynced"
	AuditActionSequenceReconciled    = "sequence_reconciled"
	AuditActionMatchScheduled        = "match_scheduled"
	AuditActionMatchUpdated          = "match_updated"
	AuditActionMatchCancelled        = "match_cancelled"
	AuditActionReminderSent          = "reminder_sent"
	AuditActionDocumentDownloaded    = "document_downloaded"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	TeamID        *uint
	Action        *string
	Actor         *string
	Success       *bool
	IPAddress     *string
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}

func (a *AuditLog) IsAdminEvent() bool {
	adminActions := map[string]bool{
		AuditActionTeamApproved:       true,
		AuditActionTeamRejected:       true,
		AuditActionTeamExported:       true,
		AuditActionSequenceResynced:   true,
		AuditActionMatchScheduled:     true,
		AuditActionMatchUpdated:       true,
		AuditActionMatchCancelled:     true,
		AuditActionDocumentDownloaded: true,
	}
	return adminActions[a.Action]
}
