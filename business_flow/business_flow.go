// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/icct-platform/registration-backend/app/dto"
	"github.com/icct-platform/registration-backend/models"
)

// ClientMetadata holds all client-related information for audit logging
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToTeamDTO converts a team model to TeamDTO for API responses
func ToTeamDTO(team models.Team) dto.TeamDTO {
	d := dto.TeamDTO{
		UUID:          team.UUID.String(),
		DisplayID:     team.DisplayID,
		Name:          team.Name,
		Institution:   team.Institution,
		CaptainName:   team.CaptainName,
		CaptainEmail:  team.CaptainEmail,
		CaptainMobile: team.CaptainMobile,
		Status:        team.Status,
		ReviewedBy:    team.ReviewedBy,
		ReviewNote:    team.ReviewNote,
		CreatedAt:     team.CreatedAt.Format(time.RFC3339),
	}

	for _, p := range team.Players {
		d.Players = append(d.Players, ToPlayerDTO(p))
	}
	for _, doc := range team.Documents {
		d.Documents = append(d.Documents, ToDocumentDTO(doc))
	}

	return d
}

// ToPlayerDTO converts a player model to PlayerDTO
func ToPlayerDTO(player models.Player) dto.PlayerDTO {
	d := dto.PlayerDTO{
		UUID:         player.UUID.String(),
		DisplayID:    player.DisplayID,
		Position:     player.Position,
		FullName:     player.FullName,
		Role:         player.Role,
		JerseyNumber: player.JerseyNumber,
	}
	if player.DateOfBirth != nil {
		d.DateOfBirth = player.DateOfBirth.Format("2006-01-02")
	}
	return d
}

// ToDocumentDTO converts a document model to DocumentDTO
func ToDocumentDTO(doc models.DocumentAsset) dto.DocumentDTO {
	return dto.DocumentDTO{
		UUID:             doc.UUID.String(),
		Kind:             doc.Kind,
		OriginalFilename: doc.OriginalFilename,
		URL:              doc.PublicURL,
		MimeType:         doc.MimeType,
		SizeBytes:        doc.SizeBytes,
		CreatedAt:        doc.CreatedAt.Format(time.RFC3339),
	}
}

// ToMatchDTO converts a match model to MatchDTO
func ToMatchDTO(match models.Match) dto.MatchDTO {
	d := dto.MatchDTO{
		UUID:         match.UUID.String(),
		Round:        match.Round,
		Venue:        match.Venue,
		ScheduledAt:  match.ScheduledAt.Format(time.RFC3339),
		Status:       match.Status,
		HomeScore:    match.HomeScore,
		AwayScore:    match.AwayScore,
		WinnerTeamID: match.WinnerTeamID,
	}
	if match.HomeTeam != nil {
		d.HomeTeam = dto.MatchTeamDTO{
			DisplayID: match.HomeTeam.DisplayID,
			Name:      match.HomeTeam.Name,
		}
	}
	if match.AwayTeam != nil {
		d.AwayTeam = dto.MatchTeamDTO{
			DisplayID: match.AwayTeam.DisplayID,
			Name:      match.AwayTeam.Name,
		}
	}
	return d
}
