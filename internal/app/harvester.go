package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/discogs-harvester/internal/config"
	"github.com/samvad-hq/discogs-harvester/internal/harvest"
	"github.com/samvad-hq/discogs-harvester/internal/logger"
	"github.com/samvad-hq/discogs-harvester/internal/storage"
	"github.com/samvad-hq/discogs-harvester/pkg/httpclient"
	"github.com/samvad-hq/discogs-harvester/pkg/jobs"
	"github.com/samvad-hq/discogs-harvester/pkg/publishers"
)

// Harvester is the long-running runtime: it loads jobs and publishers, runs a
// harvest pass on every tick and owns the storage and publisher lifecycles.
type Harvester struct {
	cfg             *config.Config
	jobReg          *jobs.Registry
	fanout          *publishers.Fanout
	service         *harvest.Service
	harvestInterval time.Duration
	log             logger.Logger
	store           storage.Store
}

// HarvesterOption customizes NewHarvester.
type HarvesterOption func(*harvesterDeps)

type harvesterDeps struct {
	http       httpclient.Client
	publishers []publishers.Publisher
}

// WithTransport replaces the Discogs HTTP transport.
func WithTransport(hc httpclient.Client) HarvesterOption {
	return func(d *harvesterDeps) { d.http = hc }
}

// WithPublishers skips the publishers file and uses pubs instead.
func WithPublishers(pubs ...publishers.Publisher) HarvesterOption {
	return func(d *harvesterDeps) { d.publishers = pubs }
}

// NewHarvester builds a harvester runtime from config files.
func NewHarvester(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...HarvesterOption) (*Harvester, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var deps harvesterDeps
	for _, opt := range opts {
		opt(&deps)
	}

	jobReg, err := jobs.LoadRegistry(cfg.JobsFile)
	if err != nil {
		return nil, fmt.Errorf("load jobs registry: %w", err)
	}
	jobList := jobReg.Enabled()
	jobIDs := make([]string, 0, len(jobList))
	for _, j := range jobList {
		jobIDs = append(jobIDs, j.ID)
	}
	log.InfoObj("jobs registry loaded", "jobs_meta", map[string]any{
		"count": len(jobIDs),
		"ids":   jobIDs,
	})

	pubClients := deps.publishers
	if pubClients == nil {
		pubClients, err = buildPublishers(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
	}
	fanout := publishers.NewFanout(pubClients)

	storeOpts := storage.Options{
		RecordTTL:       cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.StoragePath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.StoragePath,
		"record_ttl_seconds":       int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	client := NewDiscogsClient(cfg, deps.http, log)
	processor := harvest.NewJobProcessor(
		jobs.DefaultFetcherRegistry(client),
		harvest.NewDirImageSink(cfg.ImagesDir),
		fanout,
		log,
		store,
	)

	return &Harvester{
		cfg:             cfg,
		jobReg:          jobReg,
		fanout:          fanout,
		service:         harvest.NewService(processor, cfg.RequestsPerMinute, log),
		harvestInterval: cfg.HarvestInterval,
		log:             log,
		store:           store,
	}, nil
}

func buildPublishers(ctx context.Context, cfg *config.Config, log logger.Logger) ([]publishers.Publisher, error) {
	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return pubClients, nil
}

// Run starts the harvest loop until the context is cancelled.
func (h *Harvester) Run(ctx context.Context) error {
	if h == nil || h.service == nil {
		return fmt.Errorf("harvester is not initialized")
	}
	defer h.close()

	list := h.jobReg.Enabled()
	if len(list) == 0 {
		h.log.WarnObj("no enabled jobs; harvester idle", "jobs_file", h.cfg.JobsFile)
		<-ctx.Done()
		return ctx.Err()
	}

	h.log.InfoObj("harvester loop starting", "harvester_state", map[string]any{
		"jobs_count":       len(list),
		"publishers_count": h.fanout.Size(),
		"harvest_interval": h.harvestInterval.String(),
	})

	if _, err := h.RunOnce(ctx); err != nil {
		h.log.ErrorObj("initial harvest failed", "error", err.Error())
	}

	ticker := time.NewTicker(h.harvestInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.InfoObj("harvester loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if _, err := h.RunOnce(ctx); err != nil {
				h.log.ErrorObj("scheduled harvest failed", "error", err.Error())
			}
		}
	}
}

// RunOnce performs a single harvest pass across all enabled jobs.
func (h *Harvester) RunOnce(ctx context.Context) (harvest.Summary, error) {
	list := h.jobReg.Enabled()
	start := time.Now()
	h.log.InfoObj("harvest started", "harvest_meta", map[string]any{
		"jobs_count": len(list),
		"started_at": start.UTC(),
	})
	summary, err := h.service.Run(ctx, list)
	h.log.InfoObj("harvest completed", "harvest_meta", map[string]any{
		"summary":    summary,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return summary, err
}

// Close releases storage and publishers. Run calls it on exit.
func (h *Harvester) Close() { h.close() }

func (h *Harvester) close() {
	if h == nil {
		return
	}
	if h.fanout != nil {
		if err := h.fanout.Close(); err != nil {
			h.log.ErrorObj("publisher close failed", "error", err.Error())
		}
		h.fanout = nil
	}
	if h.store != nil {
		if err := h.store.Close(); err != nil {
			h.log.ErrorObj("storage close failed", "error", err.Error())
		}
		h.store = nil
	}
}
