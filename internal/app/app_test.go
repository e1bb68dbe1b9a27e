package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/discogs-harvester/internal/config"
	"github.com/samvad-hq/discogs-harvester/internal/harvest"
	"github.com/samvad-hq/discogs-harvester/pkg/discogs"
	"github.com/samvad-hq/discogs-harvester/pkg/jobs"
	"github.com/samvad-hq/discogs-harvester/pkg/publishers"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishers.Event
}

func (r *recordingPublisher) ID() string   { return "recorder" }
func (r *recordingPublisher) Type() string { return "memory" }
func (r *recordingPublisher) Publish(_ context.Context, evt publishers.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func discogsServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "k" || r.URL.Query().Get("secret") != "s" {
			t.Errorf("missing credentials on %s", r.URL.String())
		}
		w.Header().Set("X-Ratelimit-Limit", "60")
		w.Header().Set("X-Ratelimit-Remaining", "59")
		switch r.URL.Path {
		case "/artists/45":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":45,"name":"Aphex Twin"}`))
		case "/image/R-1.jpeg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte{0xff, 0xd8, 0xff})
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Release not found."}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, srv *httptest.Server, jobsYAML string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	jobsFile := filepath.Join(dir, "jobs.yaml")
	if err := os.WriteFile(jobsFile, []byte(jobsYAML), 0o644); err != nil {
		t.Fatalf("write jobs file: %v", err)
	}
	return &config.Config{
		JobsFile:               jobsFile,
		ImagesDir:              filepath.Join(dir, "images"),
		HarvestInterval:        time.Hour,
		RequestsPerMinute:      6000,
		StorageType:            "bbolt",
		StoragePath:            filepath.Join(dir, "records.db"),
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
		Discogs: config.DiscogsConfig{
			Scheme:      "http",
			Host:        strings.TrimPrefix(srv.URL, "http://"),
			BasePath:    "/",
			Key:         "k",
			Secret:      "s",
			HTTPTimeout: 5 * time.Second,
		},
	}
}

func TestHarvesterRunOncePublishesThenSkipsUnchanged(t *testing.T) {
	srv := discogsServer(t)
	cfg := testConfig(t, srv, `
jobs:
  - id: afx
    kind: artist
    target: 45
    request_delay_ms: 1
  - id: cover
    kind: image
    target: R-1.jpeg
    request_delay_ms: 1
  - id: off
    kind: release
    target: 1
    enabled: false
`)

	pub := &recordingPublisher{}
	h, err := NewHarvester(context.Background(), cfg, nil, WithPublishers(pub))
	if err != nil {
		t.Fatalf("NewHarvester: %v", err)
	}
	defer h.Close()

	summary, err := h.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if summary != (harvest.Summary{Jobs: 2, Published: 2}) {
		t.Fatalf("first pass summary = %+v", summary)
	}
	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}
	if pub.events[0].RateLimit.Remaining != "59" || string(pub.events[0].Payload) != `{"id":45,"name":"Aphex Twin"}` {
		t.Fatalf("unexpected artist event %#v", pub.events[0])
	}
	if pub.events[0].Meta["name"] != "Aphex Twin" || pub.events[0].Change() != publishers.ChangeNew {
		t.Fatalf("artist event should carry meta and be new, got %#v", pub.events[0])
	}
	img := pub.events[1].ImageFile
	if data, err := os.ReadFile(img); err != nil || len(data) != 3 {
		t.Fatalf("image not stored at %q: %v", img, err)
	}

	summary, err = h.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if summary != (harvest.Summary{Jobs: 2, Unchanged: 2}) {
		t.Fatalf("second pass summary = %+v", summary)
	}
	if len(pub.events) != 2 {
		t.Fatalf("unchanged records must not be republished")
	}
}

func TestHarvesterReportsAPIErrors(t *testing.T) {
	srv := discogsServer(t)
	cfg := testConfig(t, srv, `
jobs:
  - id: missing
    kind: release
    target: 999
`)
	cfg.StorageType = "none"

	h, err := NewHarvester(context.Background(), cfg, nil, WithPublishers(&recordingPublisher{}))
	if err != nil {
		t.Fatalf("NewHarvester: %v", err)
	}
	defer h.Close()

	summary, err := h.RunOnce(context.Background())
	if err == nil || summary.Failed != 1 {
		t.Fatalf("expected failure, got %+v %v", summary, err)
	}
	if !strings.Contains(err.Error(), "The resource you requested doesn’t exist") {
		t.Fatalf("expected fixed 404 message, got %v", err)
	}
}

func TestNewHarvesterRequiresConfig(t *testing.T) {
	if _, err := NewHarvester(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestLookupAndWriteRecord(t *testing.T) {
	srv := discogsServer(t)
	cfg := testConfig(t, srv, "jobs: []")
	client := NewDiscogsClient(cfg, nil, nil)

	rec, err := Lookup(context.Background(), client, jobs.Job{Kind: "artist", Target: "45"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	var out bytes.Buffer
	if err := WriteRecord(&out, rec, ""); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if !strings.Contains(out.String(), "\"name\": \"Aphex Twin\"") {
		t.Fatalf("expected indented json, got %q", out.String())
	}

	img, err := Lookup(context.Background(), client, jobs.Job{Kind: "image", Target: "R-1.jpeg"})
	if err != nil {
		t.Fatalf("Lookup image: %v", err)
	}
	if err := WriteRecord(&out, img, ""); err == nil {
		t.Fatalf("expected error writing image without --out")
	}
	dest := filepath.Join(t.TempDir(), "cover.jpeg")
	if err := WriteRecord(&out, img, dest); err != nil {
		t.Fatalf("WriteRecord image: %v", err)
	}
	if data, _ := os.ReadFile(dest); len(data) != 3 {
		t.Fatalf("image not written")
	}
}

func TestLookupRejectsInvalidJob(t *testing.T) {
	client := discogs.New(discogs.Config{})
	if _, err := Lookup(context.Background(), client, jobs.Job{Kind: "collection", Target: "1"}); err == nil {
		t.Fatalf("expected validation error")
	}
}
