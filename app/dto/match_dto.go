// Package dto contains Data Transfer Objects for API request and response structures
package dto

// CreateMatchRequest represents a fixture scheduling request
type CreateMatchRequest struct {
	Round             string `json:"round" validate:"required,max=64"`
	HomeTeamDisplayID string `json:"home_team_display_id" validate:"required,max=32"`
	AwayTeamDisplayID string `json:"away_team_display_id" validate:"required,max=32"`
	Venue             string `json:"venue" validate:"required,max=255"`
	ScheduledAt       string `json:"scheduled_at" validate:"required"`
}

// UpdateMatchRequest represents a fixture update (reschedule, result, cancel)
type UpdateMatchRequest struct {
	Round       *string `json:"round,omitempty" validate:"omitempty,max=64"`
	Venue       *string `json:"venue,omitempty" validate:"omitempty,max=255"`
	ScheduledAt *string `json:"scheduled_at,omitempty"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=scheduled completed cancelled"`
	HomeScore   *int    `json:"home_score,omitempty" validate:"omitempty,min=0"`
	AwayScore   *int    `json:"away_score,omitempty" validate:"omitempty,min=0"`
}

// MatchDTO represents match data for API responses
type MatchDTO struct {
	UUID         string       `json:"uuid"`
	Round        string       `json:"round"`
	HomeTeam     MatchTeamDTO `json:"home_team"`
	AwayTeam     MatchTeamDTO `json:"away_team"`
	Venue        string       `json:"venue"`
	ScheduledAt  string       `json:"scheduled_at"`
	Status       string       `json:"status"`
	HomeScore    *int         `json:"home_score,omitempty"`
	AwayScore    *int         `json:"away_score,omitempty"`
	WinnerTeamID *uint        `json:"winner_team_id,omitempty"`
}

// MatchTeamDTO is the team summary embedded in match responses
type MatchTeamDTO struct {
	DisplayID string `json:"display_id"`
	Name      string `json:"name"`
}

// ListMatchesResponse represents the public schedule
type ListMatchesResponse struct {
	Matches []MatchDTO `json:"matches"`
	Total   int64      `json:"total"`
}
