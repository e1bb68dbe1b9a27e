package harvest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/samvad-hq/discogs-harvester/internal/logger"
	"github.com/samvad-hq/discogs-harvester/pkg/jobs"
)

// Summary counts job outcomes of one pass.
type Summary struct {
	Jobs      int `json:"jobs"`
	Published int `json:"published"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Service runs every job of a pass through the processor, pacing requests.
type Service struct {
	processor *JobProcessor
	limiter   *rate.Limiter
	log       logger.Logger
	wait      func(ctx context.Context, d time.Duration) error
}

// NewService wires a harvest service. requestsPerMinute bounds the overall
// request rate; a non-positive value disables the limiter.
func NewService(processor *JobProcessor, requestsPerMinute int, log logger.Logger) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return &Service{
		processor: processor,
		limiter:   limiter,
		log:       log,
		wait:      sleep,
	}
}

// Run executes a harvest pass for all given jobs.
func (s *Service) Run(ctx context.Context, list []jobs.Job) (Summary, error) {
	if s == nil || s.processor == nil {
		return Summary{}, fmt.Errorf("harvest service is not initialized")
	}
	if len(list) == 0 {
		return Summary{}, fmt.Errorf("no jobs configured for harvesting")
	}

	summary, errs := s.runAll(ctx, list)
	if len(errs) > 0 {
		return summary, errors.Join(errs...)
	}
	return summary, nil
}

func (s *Service) runAll(ctx context.Context, list []jobs.Job) (Summary, []error) {
	var (
		summary Summary
		errs    []error
	)

	for i, job := range list {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			if err := s.wait(ctx, job.RequestDelay()); err != nil {
				break
			}
		}
		if err := s.limiter.Wait(ctx); err != nil {
			break
		}

		summary.Jobs++
		outcome, err := s.processor.Process(ctx, job)
		switch outcome {
		case OutcomePublished:
			summary.Published++
		case OutcomeUnchanged:
			summary.Unchanged++
		default:
			summary.Failed++
		}
		if err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("job harvest failed", "job_error", map[string]any{
				"job_id": job.ID,
				"error":  err.Error(),
			})
			continue
		}

		s.log.InfoObj("job harvest completed", "job_result", map[string]any{
			"job_id":  job.ID,
			"kind":    job.Kind,
			"outcome": outcome.String(),
		})
	}

	return summary, errs
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
