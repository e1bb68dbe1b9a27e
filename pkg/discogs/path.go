package discogs

import (
	"fmt"
	"strconv"
	"strings"
)

// Resource path segments.
const (
	segArtists  = "artists"
	segReleases = "releases"
	segMasters  = "masters"
	segVersions = "versions"
	segLabels   = "labels"
	segImage    = "image"
	segSearch   = "database/search"
)

// Pagination selects a page of a list resource. Zero fields fall back to
// page 1 and the client's default per_page.
type Pagination struct {
	Page    int `json:"page" yaml:"page"`
	PerPage int `json:"per_page" yaml:"per_page"`
}

func (p Pagination) resolve(defaultPerPage int) (page, perPage string) {
	page, perPage = "1", strconv.Itoa(defaultPerPage)
	if p.Page > 0 {
		page = strconv.Itoa(p.Page)
	}
	if p.PerPage > 0 {
		perPage = strconv.Itoa(p.PerPage)
	}
	return page, perPage
}

// Identifier is any value the API accepts as a resource id.
type Identifier interface {
	~string | ~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64
}

// FormatID renders id verbatim: no padding, no leading-zero normalization.
func FormatID[T Identifier](id T) string {
	return fmt.Sprint(id)
}

// DatabasePath builds the path for a database resource. segments holds the
// main resource and an optional sub-resource, e.g. {"artists", "releases"}.
// A nil p adds no pagination parameters.
func (c *Client) DatabasePath(segments []string, id string, p *Pagination) string {
	var b strings.Builder
	b.WriteString(c.cfg.BasePath)
	if len(segments) > 0 {
		b.WriteString(segments[0])
	}
	b.WriteByte('/')
	b.WriteString(id)
	if len(segments) > 1 && segments[1] != "" {
		b.WriteByte('/')
		b.WriteString(segments[1])
	}

	hasQuery := false
	if p != nil {
		page, perPage := p.resolve(c.cfg.DefaultPerPage)
		b.WriteString("?page=")
		b.WriteString(page)
		b.WriteString("&per_page=")
		b.WriteString(perPage)
		hasQuery = true
	}

	c.writeAuth(&b, hasQuery)
	return b.String()
}

// ImagePath builds the path for an image file. Credentials are appended like
// on every other resource.
func (c *Client) ImagePath(filename string) string {
	var b strings.Builder
	b.WriteString(c.cfg.BasePath)
	b.WriteString(segImage)
	b.WriteByte('/')
	b.WriteString(filename)
	c.writeAuth(&b, false)
	return b.String()
}

// writeAuth terminates a path with the key/secret pair.
func (c *Client) writeAuth(b *strings.Builder, hasQuery bool) {
	if hasQuery {
		b.WriteByte('&')
	} else {
		b.WriteByte('?')
	}
	b.WriteString("key=")
	b.WriteString(c.cfg.AccessKey)
	b.WriteString("&secret=")
	b.WriteString(c.cfg.AccessSecret)
}

// redactPath hides the access secret so paths can be logged.
func (c *Client) redactPath(path string) string {
	if c.cfg.AccessSecret == "" {
		return path
	}
	return strings.Replace(path, "secret="+c.cfg.AccessSecret, "secret=REDACTED", 1)
}
