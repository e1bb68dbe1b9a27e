package jobs

import (
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic fingerprint
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/discogs-harvester/internal/domain"
	"github.com/samvad-hq/discogs-harvester/pkg/discogs"
)

// Resources is the part of discogs.Client the fetchers call.
type Resources interface {
	Artist(ctx context.Context, id string) (*discogs.Result, error)
	ArtistReleases(ctx context.Context, id string, p *discogs.Pagination) (*discogs.Result, error)
	Release(ctx context.Context, id string) (*discogs.Result, error)
	Master(ctx context.Context, id string) (*discogs.Result, error)
	MasterVersions(ctx context.Context, id string, p *discogs.Pagination) (*discogs.Result, error)
	Label(ctx context.Context, id string) (*discogs.Result, error)
	LabelReleases(ctx context.Context, id string, p *discogs.Pagination) (*discogs.Result, error)
	Image(ctx context.Context, filename string) (*discogs.Result, error)
	Search(ctx context.Context, q discogs.SearchQuery) (*discogs.Result, error)
}

var _ Resources = (*discogs.Client)(nil)

// Fetcher retrieves the resource a job points at.
type Fetcher interface {
	Kind() string
	Fetch(ctx context.Context, job Job) (domain.Record, error)
}

// FetcherRegistry resolves the fetcher for a job.
type FetcherRegistry interface {
	FetcherFor(job Job) (Fetcher, error)
}

type fetcherRegistry struct {
	mu     sync.RWMutex
	byKind map[string]Fetcher
}

// NewFetcherRegistry builds a registry keyed by each fetcher's kind.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	reg := &fetcherRegistry{byKind: make(map[string]Fetcher, len(fetchers))}
	for _, f := range fetchers {
		reg.register(f)
	}
	return reg
}

func (r *fetcherRegistry) register(f Fetcher) {
	if f == nil {
		return
	}
	key := strings.ToLower(strings.TrimSpace(f.Kind()))
	if key == "" {
		return
	}

	r.mu.Lock()
	r.byKind[key] = f
	r.mu.Unlock()
}

// FetcherFor selects the fetcher for the job's kind.
func (r *fetcherRegistry) FetcherFor(job Job) (Fetcher, error) {
	if r == nil {
		return nil, fmt.Errorf("fetcher registry is nil")
	}
	if strings.TrimSpace(job.ID) == "" {
		return nil, fmt.Errorf("job id is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, ok := r.byKind[strings.ToLower(strings.TrimSpace(job.Kind))]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("no fetcher registered for job %q (kind %q)", job.ID, job.Kind)
}

// DefaultFetcherRegistry wires one fetcher per supported kind.
func DefaultFetcherRegistry(res Resources) FetcherRegistry {
	single := func(call func(context.Context, string) (*discogs.Result, error)) CallFunc {
		return func(ctx context.Context, j Job) (*discogs.Result, error) {
			return call(ctx, string(j.Target))
		}
	}
	paged := func(call func(context.Context, string, *discogs.Pagination) (*discogs.Result, error)) CallFunc {
		return func(ctx context.Context, j Job) (*discogs.Result, error) {
			return call(ctx, string(j.Target), j.Pagination)
		}
	}

	return NewFetcherRegistry(
		NewResourceFetcher(KindArtist, single(res.Artist)),
		NewResourceFetcher(KindArtistReleases, paged(res.ArtistReleases)),
		NewResourceFetcher(KindRelease, single(res.Release)),
		NewResourceFetcher(KindMaster, single(res.Master)),
		NewResourceFetcher(KindMasterVersions, paged(res.MasterVersions)),
		NewResourceFetcher(KindLabel, single(res.Label)),
		NewResourceFetcher(KindLabelReleases, paged(res.LabelReleases)),
		NewResourceFetcher(KindImage, single(res.Image)),
		NewResourceFetcher(KindSearch, func(ctx context.Context, j Job) (*discogs.Result, error) {
			return res.Search(ctx, j.SearchQuery())
		}),
	)
}

// CallFunc performs the client call for a job.
type CallFunc func(ctx context.Context, job Job) (*discogs.Result, error)

// resourceFetcher turns one client call into a Record.
type resourceFetcher struct {
	kind string
	call CallFunc
	now  func() time.Time
}

// NewResourceFetcher returns a Fetcher for kind backed by call.
func NewResourceFetcher(kind string, call CallFunc) Fetcher {
	return &resourceFetcher{kind: kind, call: call, now: time.Now}
}

func (f *resourceFetcher) Kind() string { return f.kind }

func (f *resourceFetcher) Fetch(ctx context.Context, job Job) (domain.Record, error) {
	if !strings.EqualFold(job.Kind, f.kind) {
		return domain.Record{}, fmt.Errorf("%s fetcher received incompatible job kind %q", f.kind, job.Kind)
	}

	res, err := f.call(ctx, job)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%s %s: %w", f.kind, job.Key(), err)
	}
	return buildRecord(job, res, f.now().UTC()), nil
}

func buildRecord(job Job, res *discogs.Result, fetchedAt time.Time) domain.Record {
	rec := domain.Record{
		JobID:       job.ID,
		Kind:        job.Kind,
		Target:      string(job.Target),
		Key:         job.Key(),
		ContentType: res.ContentType,
		RateLimit: domain.RateLimit{
			Limit:     res.RateLimit.Limit,
			Remaining: res.RateLimit.Remaining,
			Reset:     res.RateLimit.Reset,
			Type:      res.RateLimit.Type,
		},
		FetchedAt: fetchedAt,
	}

	var body []byte
	if res.IsImage() {
		rec.Image = res.Image
		body = res.Image
	} else {
		rec.Payload = res.JSON
		rec.Meta = describe(job.Kind, res)
		body = res.JSON
	}
	rec.ID = fingerprint(rec.Key, body)
	return rec
}

// Key identifies what the job requests, independent of its id.
func (j Job) Key() string {
	var b strings.Builder
	b.WriteString(j.Kind)
	b.WriteByte(':')
	b.WriteString(string(j.Target))
	if j.Pagination != nil {
		b.WriteString("?page=")
		b.WriteString(strconv.Itoa(j.Pagination.Page))
		b.WriteString("&per_page=")
		b.WriteString(strconv.Itoa(j.Pagination.PerPage))
	}
	for i, p := range j.Query {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

func fingerprint(key string, body []byte) string {
	h := sha1.New() //nolint:gosec // non-cryptographic fingerprint
	h.Write([]byte(key))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
