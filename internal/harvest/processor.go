package harvest

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/discogs-harvester/internal/logger"
	"github.com/samvad-hq/discogs-harvester/pkg/discogs"
	"github.com/samvad-hq/discogs-harvester/pkg/jobs"
	"github.com/samvad-hq/discogs-harvester/pkg/publishers"
)

// Outcome is what happened to a single job.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomePublished
	OutcomeUnchanged
)

func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return "published"
	case OutcomeUnchanged:
		return "unchanged"
	default:
		return "failed"
	}
}

// JobProcessor fetches one job, stores images, dedupes and publishes.
type JobProcessor struct {
	registry  jobs.FetcherRegistry
	images    ImageSink
	publisher EventPublisher
	log       logger.Logger
	deduper   Deduper
}

// NewJobProcessor wires a processor. images, publisher and deduper may be nil.
func NewJobProcessor(reg jobs.FetcherRegistry, images ImageSink, pub EventPublisher, log logger.Logger, deduper Deduper) *JobProcessor {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &JobProcessor{
		registry:  reg,
		images:    images,
		publisher: pub,
		log:       log,
		deduper:   deduper,
	}
}

// Process runs one job end to end.
func (p *JobProcessor) Process(ctx context.Context, job jobs.Job) (Outcome, error) {
	fetcher, err := p.registry.FetcherFor(job)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("resolve fetcher for job %s: %w", job.ID, err)
	}

	rec, err := fetcher.Fetch(ctx, job)
	if err != nil {
		p.logFetchError(job, err)
		return OutcomeFailed, fmt.Errorf("fetch job %s: %w", job.ID, err)
	}

	p.log.DebugObj("job fetched", "job_fetch", map[string]any{
		"job_id":     job.ID,
		"key":        rec.Key,
		"record_id":  rec.ID,
		"rate_limit": rec.RateLimit,
	})

	if p.seen(job, rec.ID) {
		return OutcomeUnchanged, nil
	}
	rec.PreviousID = p.previous(job)
	if rec.PreviousID != "" {
		p.log.InfoObj("record changed since last harvest", "job_change", map[string]any{
			"job_id":      job.ID,
			"key":         rec.Key,
			"previous_id": rec.PreviousID,
			"record_id":   rec.ID,
		})
	}

	if rec.IsImage() {
		if p.images == nil {
			return OutcomeFailed, fmt.Errorf("job %s fetched an image but no image sink is configured", job.ID)
		}
		path, err := p.images.Save(ctx, rec)
		if err != nil {
			return OutcomeFailed, fmt.Errorf("save image for job %s: %w", job.ID, err)
		}
		rec.ImageFile = path
	}

	if p.publisher != nil {
		count, err := p.publisher.Publish(ctx, publishers.NewEvent(rec))
		if err != nil {
			if count == 0 {
				return OutcomeFailed, fmt.Errorf("publish job %s: %w", job.ID, err)
			}
			p.log.WarnObj("record partially published", "publish_partial", map[string]any{
				"job_id":    job.ID,
				"record_id": rec.ID,
				"delivered": count,
				"error":     err.Error(),
			})
		}
	}

	if p.deduper != nil {
		if err := p.deduper.MarkRecord(job.ID, rec.ID); err != nil {
			p.log.ErrorObj("record dedupe mark failed", "dedupe_error", map[string]any{
				"job_id":    job.ID,
				"record_id": rec.ID,
				"error":     err.Error(),
			})
		}
	}
	return OutcomePublished, nil
}

// seen treats lookup errors as unseen so a broken store never drops records.
func (p *JobProcessor) seen(job jobs.Job, id string) bool {
	if p.deduper == nil {
		return false
	}
	seen, err := p.deduper.SeenRecord(id)
	if err != nil {
		p.log.ErrorObj("record dedupe lookup failed", "dedupe_error", map[string]any{
			"job_id":    job.ID,
			"record_id": id,
			"error":     err.Error(),
		})
		return false
	}
	return seen
}

// previous returns the fingerprint last published for the job, empty when
// the job never published or the store cannot tell.
func (p *JobProcessor) previous(job jobs.Job) string {
	if p.deduper == nil {
		return ""
	}
	id, ok, err := p.deduper.LastRecord(job.ID)
	if err != nil {
		p.log.ErrorObj("record history lookup failed", "dedupe_error", map[string]any{
			"job_id": job.ID,
			"error":  err.Error(),
		})
		return ""
	}
	if !ok {
		return ""
	}
	return id
}

func (p *JobProcessor) logFetchError(job jobs.Job, err error) {
	fields := map[string]any{
		"job_id": job.ID,
		"kind":   job.Kind,
		"target": string(job.Target),
		"error":  err.Error(),
	}
	var apiErr *discogs.Error
	if errors.As(err, &apiErr) {
		fields["status_code"] = apiErr.StatusCode
		if len(apiErr.Fields) > 0 {
			fields["fields"] = apiErr.Fields
		}
	}
	p.log.WarnObj("job fetch failed", "job_fetch_error", fields)
}
