// Package jobs describes which Discogs resources to harvest, loaded from
// YAML or JSON job files.
package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/discogs-harvester/pkg/discogs"
)

// Supported job kinds, one per client resource.
const (
	KindArtist         = "artist"
	KindArtistReleases = "artist_releases"
	KindRelease        = "release"
	KindMaster         = "master"
	KindMasterVersions = "master_versions"
	KindLabel          = "label"
	KindLabelReleases  = "label_releases"
	KindImage          = "image"
	KindSearch         = "search"
)

// Kinds lists every supported job kind.
func Kinds() []string {
	return []string{
		KindArtist, KindArtistReleases, KindRelease, KindMaster, KindMasterVersions,
		KindLabel, KindLabelReleases, KindImage, KindSearch,
	}
}

// Target is a resource id or image filename. Numbers in job files are kept
// verbatim, so "007" stays "007".
type Target string

func (t *Target) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Target(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("target must be a string or number: %w", err)
	}
	*t = Target(s)
	return nil
}

func (t *Target) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("target must be a scalar at line %d", node.Line)
	}
	*t = Target(node.Value)
	return nil
}

// Job is a single harvest entry.
type Job struct {
	ID             string                `json:"id" yaml:"id" validate:"required"`
	Kind           string                `json:"kind" yaml:"kind" validate:"required,oneof=artist artist_releases release master master_versions label label_releases image search"`
	Target         Target                `json:"target" yaml:"target" validate:"required_unless=Kind search"`
	Pagination     *discogs.Pagination   `json:"pagination" yaml:"pagination"`
	Query          []discogs.SearchParam `json:"query" yaml:"query" validate:"dive"`
	RequestDelayMs int                   `json:"request_delay_ms" yaml:"request_delay_ms" validate:"gte=0"`
	Enabled        *bool                 `json:"enabled" yaml:"enabled"`
}

type file struct {
	Jobs []Job `json:"jobs" yaml:"jobs"`
}

var (
	defaultRequestDelayMs = 1000
	validate              = validator.New(validator.WithRequiredStructEnabled())
)

// Registry holds the jobs loaded from a file.
type Registry struct {
	mu   sync.RWMutex
	jobs []Job
	idx  map[string]Job
}

// LoadRegistry loads jobs from a YAML or JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("jobs file path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open jobs file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read jobs file: %w", err)
	}

	parsed, err := parseFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewRegistry(parsed.Jobs)
}

// NewRegistry sanitizes and validates jobs.
func NewRegistry(jobs []Job) (*Registry, error) {
	if len(jobs) == 0 {
		return nil, errors.New("jobs file contains no jobs entries")
	}

	reg := &Registry{
		jobs: make([]Job, len(jobs)),
		idx:  make(map[string]Job, len(jobs)),
	}
	for i := range jobs {
		j := sanitizeJob(jobs[i])
		if err := validateJob(j); err != nil {
			return nil, fmt.Errorf("jobs[%d]: %w", i, err)
		}
		if _, exists := reg.idx[j.ID]; exists {
			return nil, fmt.Errorf("duplicate job id %q", j.ID)
		}
		reg.jobs[i] = j
		reg.idx[j.ID] = j
	}
	return reg, nil
}

func parseFile(data []byte, ext string) (file, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if f, err := unmarshalFile(d.name, data, d.fn); err == nil {
			return f, nil
		}
	}

	return file{}, errors.New("jobs file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func unmarshalFile(name string, data []byte, fn unmarshalFn) (file, error) {
	var f file
	if err := fn(data, &f); err != nil {
		return file{}, fmt.Errorf("decode %s jobs: %w", name, err)
	}
	return f, nil
}

func sanitizeJob(j Job) Job {
	j.ID = strings.TrimSpace(j.ID)
	j.Kind = strings.ToLower(strings.TrimSpace(j.Kind))
	j.Target = Target(strings.TrimSpace(string(j.Target)))

	if j.Enabled == nil {
		def := true
		j.Enabled = &def
	}
	if j.RequestDelayMs == 0 {
		j.RequestDelayMs = defaultRequestDelayMs
	}
	return j
}

func validateJob(j Job) error {
	if err := validate.Struct(j); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("job %q: field %s failed %q", j.ID, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("job %q: %w", j.ID, err)
	}
	if j.Kind != KindSearch && len(j.Query) > 0 {
		return fmt.Errorf("job %q: query is only valid for kind %q", j.ID, KindSearch)
	}
	if j.Pagination != nil && !Paginated(j.Kind) {
		return fmt.Errorf("job %q: kind %q does not accept pagination", j.ID, j.Kind)
	}
	return nil
}

// Paginated reports whether a kind accepts page/per_page.
func Paginated(kind string) bool {
	switch kind {
	case KindArtistReleases, KindMasterVersions, KindLabelReleases:
		return true
	}
	return false
}

// All returns every loaded job.
func (r *Registry) All() []Job {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Job, len(r.jobs))
	copy(out, r.jobs)
	return out
}

// Enabled returns the jobs that are enabled.
func (r *Registry) Enabled() []Job {
	all := r.All()
	out := make([]Job, 0, len(all))
	for _, j := range all {
		if j.EnabledValue() {
			out = append(out, j)
		}
	}
	return out
}

// ByID returns the job with the given id.
func (r *Registry) ByID(id string) (Job, bool) {
	if r == nil {
		return Job{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Job{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.idx[id]
	return j, ok
}

// EnabledValue returns the enabled flag defaulting to true.
func (j Job) EnabledValue() bool {
	if j.Enabled == nil {
		return true
	}
	return *j.Enabled
}

// RequestDelay returns the pause to keep before the job's request.
func (j Job) RequestDelay() time.Duration {
	if j.RequestDelayMs < 0 {
		return 0
	}
	if j.RequestDelayMs == 0 {
		return time.Duration(defaultRequestDelayMs) * time.Millisecond
	}
	return time.Duration(j.RequestDelayMs) * time.Millisecond
}

// SearchQuery returns the job's query parameters in file order.
func (j Job) SearchQuery() discogs.SearchQuery {
	return discogs.NewSearchQuery(j.Query...)
}
