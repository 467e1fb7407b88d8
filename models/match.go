package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/icct-platform/registration-backend/utils"
)

// Match statuses
const (
	MatchStatusScheduled = "scheduled"
	MatchStatusCompleted = "completed"
	MatchStatusCancelled = "cancelled"
)

// Match represents a scheduled fixture between two registered teams.
type Match struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	Round        string    `gorm:"size:64;not null;index" json:"round"`
	HomeTeamID   uint      `gorm:"not null;index" json:"home_team_id"`
	AwayTeamID   uint      `gorm:"not null;index" json:"away_team_id"`
	Venue        string    `gorm:"size:255;not null" json:"venue"`
	ScheduledAt  time.Time `gorm:"not null;index" json:"scheduled_at"`
	Status       string    `gorm:"size:20;not null;default:'scheduled';index" json:"status"`
	HomeScore    *int      `json:"home_score,omitempty"`
	AwayScore    *int      `json:"away_score,omitempty"`
	WinnerTeamID *uint     `json:"winner_team_id,omitempty"`
	ReminderSent *bool     `gorm:"default:false;index" json:"reminder_sent,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	HomeTeam *Team `gorm:"foreignKey:HomeTeamID;references:ID" json:"home_team,omitempty"`
	AwayTeam *Team `gorm:"foreignKey:AwayTeamID;references:ID" json:"away_team,omitempty"`
}

func (Match) TableName() string { return "matches" }

// BeforeCreate ensures UUID and timestamps are set
func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == uuid.Nil {
		m.UUID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = utils.UTCNow()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// MatchFilter represents filter criteria for match queries
type MatchFilter struct {
	ID              *uint      `json:"id,omitempty"`
	UUID            *uuid.UUID `json:"uuid,omitempty"`
	Round           *string    `json:"round,omitempty"`
	TeamID          *uint      `json:"team_id,omitempty"`
	Status          *string    `json:"status,omitempty"`
	ReminderSent    *bool      `json:"reminder_sent,omitempty"`
	ScheduledAfter  *time.Time `json:"scheduled_after,omitempty"`
	ScheduledBefore *time.Time `json:"scheduled_before,omitempty"`
}
