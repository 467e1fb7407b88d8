// Package dto contains Data Transfer Objects for API request and response structures
package dto

// ListTeamsRequest represents admin team listing filters
type ListTeamsRequest struct {
	Status   string `json:"status" query:"status" validate:"omitempty,oneof=pending approved rejected"`
	Page     int    `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize int    `json:"page_size" query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListTeamsResponse represents the paginated team listing
type ListTeamsResponse struct {
	Teams    []TeamDTO `json:"teams"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// ReviewTeamRequest represents an approve/reject decision
type ReviewTeamRequest struct {
	ReviewedBy string `json:"reviewed_by" validate:"required,max=255"`
	ReviewNote string `json:"review_note,omitempty" validate:"omitempty,max=2000"`
}

// ReviewTeamResponse represents the response after a review decision
type ReviewTeamResponse struct {
	Message string  `json:"message"`
	Team    TeamDTO `json:"team"`
}
