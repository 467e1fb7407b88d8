package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/icct-platform/registration-backend/utils"
)

// Document kinds
const (
	DocumentKindPaymentProof = "payment_proof"
	DocumentKindPlayerPhoto  = "player_photo"
	DocumentKindIDProof      = "id_proof"
)

// DocumentAsset represents a file uploaded during registration and stored in
// the object store. StorageKey addresses the object; PublicURL is what the
// store returned at upload time.
type DocumentAsset struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID             uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	TeamID           uint      `gorm:"not null;index" json:"team_id"`
	PlayerID         *uint     `gorm:"index" json:"player_id,omitempty"`
	Kind             string    `gorm:"size:32;not null;index" json:"kind"`
	OriginalFilename string    `gorm:"size:255;not null" json:"original_filename"`
	StorageKey       string    `gorm:"size:512;uniqueIndex;not null" json:"storage_key"`
	PublicURL        string    `gorm:"size:1024;not null" json:"public_url"`
	MimeType         string    `gorm:"size:100;not null" json:"mime_type"`
	SizeBytes        int64     `gorm:"not null" json:"size_bytes"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Team   *Team   `gorm:"foreignKey:TeamID;references:ID;constraint:OnDelete:CASCADE" json:"team,omitempty"`
	Player *Player `gorm:"foreignKey:PlayerID;references:ID;constraint:OnDelete:SET NULL" json:"player,omitempty"`
}

func (DocumentAsset) TableName() string { return "document_assets" }

// BeforeCreate ensures UUID and timestamps are set
func (d *DocumentAsset) BeforeCreate(tx *gorm.DB) error {
	if d.UUID == uuid.Nil {
		d.UUID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = utils.UTCNow()
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// DocumentAssetFilter represents filter criteria for document queries
type DocumentAssetFilter struct {
	ID       *uint      `json:"id,omitempty"`
	UUID     *uuid.UUID `json:"uuid,omitempty"`
	TeamID   *uint      `json:"team_id,omitempty"`
	PlayerID *uint      `json:"player_id,omitempty"`
	Kind     *string    `json:"kind,omitempty"`
}
