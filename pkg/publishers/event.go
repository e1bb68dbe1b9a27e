package publishers

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/discogs-harvester/internal/domain"
)

// Event is the payload published downstream for every new record.
type Event struct {
	ID               string            `json:"id"`
	JobID            string            `json:"job_id"`
	Kind             string            `json:"kind"`
	Target           string            `json:"target,omitempty"`
	RecordID         string            `json:"record_id"`
	PreviousRecordID string            `json:"previous_record_id,omitempty"`
	Key              string            `json:"key"`
	ContentType      string            `json:"content_type,omitempty"`
	Meta             map[string]string `json:"meta,omitempty"`
	Payload          json.RawMessage   `json:"payload,omitempty"`
	ImageFile        string            `json:"image_file,omitempty"`
	RateLimit        domain.RateLimit  `json:"rate_limit"`
	FetchedAt        time.Time         `json:"fetched_at"`
	CollectedAt      time.Time         `json:"collected_at"`
}

// Change values carried in the "change" attribute.
const (
	ChangeNew     = "new"
	ChangeUpdated = "updated"
)

// NewEvent constructs an Event for a fetched record. Image bytes are not
// embedded; consumers read ImageFile instead.
func NewEvent(rec domain.Record) Event {
	return Event{
		ID:               uuid.NewString(),
		JobID:            rec.JobID,
		Kind:             rec.Kind,
		Target:           rec.Target,
		RecordID:         rec.ID,
		PreviousRecordID: rec.PreviousID,
		Key:              rec.Key,
		ContentType:      rec.ContentType,
		Meta:             rec.Meta,
		Payload:          rec.Payload,
		ImageFile:        rec.ImageFile,
		RateLimit:        rec.RateLimit,
		FetchedAt:        rec.FetchedAt,
		CollectedAt:      time.Now().UTC(),
	}
}

// Change reports whether the job published a record before this one.
func (e Event) Change() string {
	if e.PreviousRecordID == "" {
		return ChangeNew
	}
	return ChangeUpdated
}

// attributes are the routing attributes attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_id": e.ID,
		"job_id":   e.JobID,
		"kind":     e.Kind,
		"change":   e.Change(),
	}
}
