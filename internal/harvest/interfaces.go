package harvest

import (
	"context"

	"github.com/samvad-hq/discogs-harvester/internal/domain"
	"github.com/samvad-hq/discogs-harvester/pkg/publishers"
)

// EventPublisher publishes records downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper remembers fingerprints of records already published.
type Deduper interface {
	SeenRecord(id string) (bool, error)
	MarkRecord(jobID, id string) error
	LastRecord(jobID string) (string, bool, error)
}

// ImageSink persists image bytes and returns where they were written.
type ImageSink interface {
	Save(ctx context.Context, rec domain.Record) (string, error)
}
