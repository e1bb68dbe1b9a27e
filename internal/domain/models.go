package domain

import (
	"encoding/json"
	"time"
)

// Domain contains core models and interfaces.

// RateLimit mirrors the API rate-limit headers of the response a record came from.
type RateLimit struct {
	Limit     string `json:"limit,omitempty"`
	Remaining string `json:"remaining,omitempty"`
	Reset     string `json:"reset,omitempty"`
	Type      string `json:"type,omitempty"`
}

// Record is one fetched API resource.
type Record struct {
	ID          string          `json:"id"`
	JobID       string          `json:"job_id"`
	Kind        string          `json:"kind"`
	Target      string          `json:"target,omitempty"`
	Key         string          `json:"key"`
	ContentType string          `json:"content_type,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Image       []byte          `json:"-"`
	ImageFile   string          `json:"image_file,omitempty"`
	RateLimit   RateLimit       `json:"rate_limit"`
	FetchedAt   time.Time       `json:"fetched_at"`

	// Meta holds headline fields of the payload: name, title, year, page counts.
	Meta map[string]string `json:"meta,omitempty"`
	// PreviousID is the fingerprint last published for the same job.
	PreviousID string `json:"previous_id,omitempty"`
}

// IsImage reports whether the record carries image bytes instead of JSON.
func (r Record) IsImage() bool {
	return r.Image != nil
}
