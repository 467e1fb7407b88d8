// Package dto contains Data Transfer Objects for API request and response structures
package dto

// RegistrationRequest represents the team registration form data
type RegistrationRequest struct {
	TeamName      string `json:"team_name" validate:"required,min=3,max=100"`
	Institution   string `json:"institution" validate:"required,max=255"`
	CaptainName   string `json:"captain_name" validate:"required,max=255,alpha_space"`
	CaptainEmail  string `json:"captain_email" validate:"required,email,max=255"`
	CaptainMobile string `json:"captain_mobile" validate:"required,mobile_format"`

	// Roster; size limits are enforced by the flow, not the validator,
	// so violations map to stable business error codes
	Players []RegistrationPlayer `json:"players" validate:"required,dive"`

	// Uploaded documents, base64-encoded
	Documents []RegistrationDocument `json:"documents" validate:"omitempty,dive"`
}

// RegistrationPlayer represents one roster entry in the registration form
type RegistrationPlayer struct {
	FullName     string `json:"full_name" validate:"required,max=255,alpha_space"`
	Role         string `json:"role" validate:"required,oneof=batter bowler all_rounder wicket_keeper"`
	JerseyNumber int    `json:"jersey_number" validate:"required,min=1,max=99"`
	DateOfBirth  string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// RegistrationDocument represents one uploaded file in the registration form
type RegistrationDocument struct {
	Kind           string `json:"kind" validate:"required,oneof=payment_proof player_photo id_proof"`
	Filename       string `json:"filename" validate:"required,max=255"`
	ContentBase64  string `json:"content_base64" validate:"required"`
	PlayerPosition *int   `json:"player_position,omitempty" validate:"omitempty,min=1"`
}

// RegistrationResponse represents the response after successful registration
type RegistrationResponse struct {
	Message   string  `json:"message"`
	Team      TeamDTO `json:"team"`
	EmailSent bool    `json:"email_sent"`
}

// TeamDTO represents team data for API responses
type TeamDTO struct {
	UUID          string        `json:"uuid"`
	DisplayID     string        `json:"display_id"`
	Name          string        `json:"name"`
	Institution   string        `json:"institution"`
	CaptainName   string        `json:"captain_name"`
	CaptainEmail  string        `json:"captain_email"`
	CaptainMobile string        `json:"captain_mobile"`
	Status        string        `json:"status"`
	ReviewedBy    *string       `json:"reviewed_by,omitempty"`
	ReviewNote    *string       `json:"review_note,omitempty"`
	CreatedAt     string        `json:"created_at"`
	Players       []PlayerDTO   `json:"players,omitempty"`
	Documents     []DocumentDTO `json:"documents,omitempty"`
}

// PlayerDTO represents player data for API responses
type PlayerDTO struct {
	UUID         string `json:"uuid"`
	DisplayID    string `json:"display_id"`
	Position     int    `json:"position"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	JerseyNumber int    `json:"jersey_number"`
	DateOfBirth  string `json:"date_of_birth,omitempty"`
}
