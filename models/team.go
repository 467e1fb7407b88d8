// Package models contains domain entities and business models for the tournament registration system
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/icct-platform/registration-backend/utils"
)

// Team statuses
const (
	TeamStatusPending  = "pending"
	TeamStatusApproved = "approved"
	TeamStatusRejected = "rejected"
)

// Team represents a registered tournament team.
// DisplayID is the human-readable identifier (e.g. ICCT-042) issued by the
// sequence allocator; it is unique and never reused.
type Team struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	DisplayID     string    `gorm:"size:32;uniqueIndex;not null" json:"display_id"`
	Name          string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Institution   string    `gorm:"size:255;not null" json:"institution"`
	CaptainName   string    `gorm:"size:255;not null" json:"captain_name"`
	CaptainEmail  string    `gorm:"size:255;not null;index" json:"captain_email"`
	CaptainMobile string    `gorm:"size:20;not null" json:"captain_mobile"`
	Status        string    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReviewedBy    *string   `gorm:"size:255" json:"reviewed_by,omitempty"`
	ReviewNote    *string   `gorm:"type:text" json:"review_note,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Players   []Player        `gorm:"foreignKey:TeamID;references:ID;constraint:OnDelete:CASCADE" json:"players,omitempty"`
	Documents []DocumentAsset `gorm:"foreignKey:TeamID;references:ID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

func (Team) TableName() string { return "teams" }

// BeforeCreate ensures UUID and timestamps are set
func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = utils.UTCNow()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = utils.UTCNow()
	}
	return nil
}

func (t *Team) IsPending() bool { return t.Status == TeamStatusPending }

// TeamFilter represents filter criteria for team queries
type TeamFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	DisplayID     *string    `json:"display_id,omitempty"`
	Name          *string    `json:"name,omitempty"`
	Institution   *string    `json:"institution,omitempty"`
	CaptainEmail  *string    `json:"captain_email,omitempty"`
	Status        *string    `json:"status,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
