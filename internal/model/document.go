package model

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	StatusPending  DocumentStatus = "pending"
	StatusAnalyzed DocumentStatus = "analyzed"
	StatusFailed   DocumentStatus = "failed"
)

// Document is a named body of text queued for analysis. Documents added by
// URL are fetched by the worker before they are analyzed.
type Document struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	URL          string         `json:"url,omitempty"`
	Title        string         `json:"title"`
	Excerpt      string         `json:"excerpt"`
	Status       DocumentStatus `json:"status"`
	TokenCount   int            `json:"token_count"`
	LastToken    string         `json:"last_token,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	AnalyzedAt   *time.Time     `json:"analyzed_at,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// NewDocument creates a pending document stored under name.
func NewDocument(name string) Document {
	return Document{
		ID:        uuid.New(),
		Name:      name,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
}

// NewURLDocument creates a pending document whose body will be fetched
// from rawURL. Its name is derived from the generated ID.
func NewURLDocument(rawURL string) Document {
	d := NewDocument("")
	d.Name = "url/" + d.ID.String()
	d.URL = rawURL
	return d
}
