// Package dto contains Data Transfer Objects for API request and response structures
package dto

// SequenceStateResponse reports a counter's last issued value
type SequenceStateResponse struct {
	Sequence      string `json:"sequence"`
	LastValue     int64  `json:"last_value"`
	LastDisplayID string `json:"last_display_id,omitempty"`
}

// ResyncSequenceRequest forces a counter to a new value
type ResyncSequenceRequest struct {
	Value int64 `json:"value" validate:"min=0"`
}

// ResyncSequenceResponse reports the counter state after a resync
type ResyncSequenceResponse struct {
	Message       string `json:"message"`
	Sequence      string `json:"sequence"`
	PreviousValue int64  `json:"previous_value"`
	LastValue     int64  `json:"last_value"`
}
