package discogs

import (
	"context"
	"strings"
	"time"

	"github.com/samvad-hq/discogs-harvester/pkg/httpclient"
)

const defaultTimeout = 30 * time.Second

// Client is a read-only Discogs database client. It is safe for concurrent
// use: the configuration is fixed at construction and every call owns its
// request and response.
type Client struct {
	cfg  Config
	http httpclient.Client
	log  Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport used to send requests.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger enables debug tracing of dispatched requests.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New builds a Client from cfg. Empty settings use the package defaults.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg: normalizeConfig(cfg),
		log: noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(defaultTimeout)
	}
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Artist fetches an artist.
func (c *Client) Artist(ctx context.Context, id string) (*Result, error) {
	return c.get(ctx, c.DatabasePath([]string{segArtists}, id, nil))
}

// ArtistReleases lists the releases and masters of an artist. A nil p sends
// no pagination parameters.
func (c *Client) ArtistReleases(ctx context.Context, id string, p *Pagination) (*Result, error) {
	return c.get(ctx, c.DatabasePath([]string{segArtists, segReleases}, id, p))
}

// Release fetches a release.
func (c *Client) Release(ctx context.Context, id string) (*Result, error) {
	return c.get(ctx, c.DatabasePath([]string{segReleases}, id, nil))
}

// Master fetches a master release.
func (c *Client) Master(ctx context.Context, id string) (*Result, error) {
	return c.get(ctx, c.DatabasePath([]string{segMasters}, id, nil))
}

// MasterVersions lists the releases that are versions of a master.
func (c *Client) MasterVersions(ctx context.Context, id string, p *Pagination) (*Result, error) {
	return c.get(ctx, c.DatabasePath([]string{segMasters, segVersions}, id, p))
}

// Label fetches a label.
func (c *Client) Label(ctx context.Context, id string) (*Result, error) {
	return c.get(ctx, c.DatabasePath([]string{segLabels}, id, nil))
}

// LabelReleases lists the releases of a label.
func (c *Client) LabelReleases(ctx context.Context, id string, p *Pagination) (*Result, error) {
	return c.get(ctx, c.DatabasePath([]string{segLabels, segReleases}, id, p))
}

// Image fetches an image file. The result carries the raw bytes.
func (c *Client) Image(ctx context.Context, filename string) (*Result, error) {
	return c.get(ctx, c.ImagePath(filename))
}

// Search queries the database.
func (c *Client) Search(ctx context.Context, q SearchQuery) (*Result, error) {
	return c.get(ctx, c.SearchPath(q))
}

// URL returns the absolute URL for a built path. A literal '#' would start a
// fragment and drop the rest of the query, so it is sent as %23.
func (c *Client) URL(path string) string {
	return c.cfg.Scheme + "://" + c.cfg.Host + strings.ReplaceAll(path, "#", "%23")
}

// get sends one GET for path and normalizes the response.
func (c *Client) get(ctx context.Context, path string) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	c.log.DebugObj("discogs request", "discogs_request", map[string]any{
		"host": c.cfg.Host,
		"path": c.redactPath(path),
	})

	resp, err := c.http.Get(ctx, c.URL(path), map[string]string{
		"User-Agent": c.cfg.UserAgent,
	})
	if err != nil {
		return nil, transportError(err)
	}
	return normalize(resp)
}
