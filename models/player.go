package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/icct-platform/registration-backend/utils"
)

// Player roles
const (
	PlayerRoleBatter       = "batter"
	PlayerRoleBowler       = "bowler"
	PlayerRoleAllRounder   = "all_rounder"
	PlayerRoleWicketKeeper = "wicket_keeper"
)

// Player represents a roster entry under a team.
// DisplayID is derived from the team's display ID and the 1-based roster
// position (e.g. ICCT-042-P03); it is not allocated from a global sequence.
type Player struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	TeamID       uint      `gorm:"not null;index;uniqueIndex:idx_players_team_position,priority:1" json:"team_id"`
	DisplayID    string    `gorm:"size:32;uniqueIndex;not null" json:"display_id"`
	Position     int       `gorm:"not null;uniqueIndex:idx_players_team_position,priority:2" json:"position"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	Role         string    `gorm:"size:20;not null" json:"role"`
	JerseyNumber int       `gorm:"not null" json:"jersey_number"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Team *Team `gorm:"foreignKey:TeamID;references:ID;constraint:OnDelete:CASCADE" json:"team,omitempty"`
}

func (Player) TableName() string { return "players" }

// BeforeCreate ensures UUID and timestamps are set
func (p *Player) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// PlayerFilter represents filter criteria for player queries
type PlayerFilter struct {
	ID        *uint      `json:"id,omitempty"`
	UUID      *uuid.UUID `json:"uuid,omitempty"`
	TeamID    *uint      `json:"team_id,omitempty"`
	DisplayID *string    `json:"display_id,omitempty"`
	Role      *string    `json:"role,omitempty"`
}
