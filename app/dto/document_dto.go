// Package dto contains Data Transfer Objects for API request and response structures
package dto

// DocumentDTO represents document metadata for API responses
type DocumentDTO struct {
	UUID             string `json:"uuid"`
	Kind             string `json:"kind"`
	OriginalFilename string `json:"original_filename"`
	URL              string `json:"url"`
	MimeType         string `json:"mime_type"`
	SizeBytes        int64  `json:"size_bytes"`
	CreatedAt        string `json:"created_at"`
}
