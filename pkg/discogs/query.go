package discogs

import (
	"net/url"
	"strings"
	"unicode"
)

const (
	paramQuery   = "q"
	paramPage    = "page"
	paramPerPage = "per_page"
)

// SearchParam is a single search key/value pair.
type SearchParam struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// SearchQuery is an insertion-ordered set of search parameters. The "q" key
// carries the free-text query; "page" and "per_page" select the result page.
type SearchQuery struct {
	params []SearchParam
}

// NewSearchQuery builds a query from params, in order.
func NewSearchQuery(params ...SearchParam) SearchQuery {
	var q SearchQuery
	for _, p := range params {
		q.Set(p.Key, p.Value)
	}
	return q
}

// Set assigns value to key. An existing key keeps its original position.
func (q *SearchQuery) Set(key, value string) *SearchQuery {
	for i := range q.params {
		if q.params[i].Key == key {
			q.params[i].Value = value
			return q
		}
	}
	q.params = append(q.params, SearchParam{Key: key, Value: value})
	return q
}

// Get returns the value stored for key.
func (q SearchQuery) Get(key string) (string, bool) {
	for _, p := range q.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Del removes key from the query.
func (q *SearchQuery) Del(key string) {
	for i := range q.params {
		if q.params[i].Key == key {
			q.params = append(q.params[:i:i], q.params[i+1:]...)
			return
		}
	}
}

// Params returns a copy of the parameters in insertion order.
func (q SearchQuery) Params() []SearchParam {
	out := make([]SearchParam, len(q.params))
	copy(out, q.params)
	return out
}

// Len reports the number of parameters.
func (q SearchQuery) Len() int { return len(q.params) }

// SearchPath builds the database search path. Parameters other than page and
// per_page are emitted in insertion order, then page and per_page, then the
// credentials. The query is not modified.
func (c *Client) SearchPath(q SearchQuery) string {
	page, perPage := Pagination{}.resolve(c.cfg.DefaultPerPage)
	if v, ok := q.Get(paramPage); ok {
		page = v
	}
	if v, ok := q.Get(paramPerPage); ok {
		perPage = v
	}

	var b strings.Builder
	b.WriteString(c.cfg.BasePath)
	b.WriteString(segSearch)
	b.WriteByte('?')

	for _, p := range q.params {
		if p.Key == paramPage || p.Key == paramPerPage {
			continue
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		if p.Key == paramQuery {
			b.WriteString(EscapeSearchText(p.Value))
		} else {
			b.WriteString(EncodeComponent(p.Value))
		}
		b.WriteByte('&')
	}

	b.WriteString("page=")
	b.WriteString(page)
	b.WriteString("&per_page=")
	b.WriteString(perPage)

	c.writeAuth(&b, true)
	return b.String()
}

// EscapeSearchText replaces every whitespace character with %20 and leaves
// everything else untouched. Whitespace is the ECMAScript set: U+FEFF counts,
// U+0085 does not. The search grammar uses characters such as
// ':', '?' and '-' as operators, so they must reach the API unescaped.
func EscapeSearchText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isSearchSpace(r) {
			b.WriteString("%20")
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EncodeComponent percent-encodes a search value. Only letters, digits and
// "-_.~" pass through; "!", "'", "(", ")" and "*" are escaped and a space
// becomes "+".
func EncodeComponent(s string) string {
	return url.QueryEscape(s)
}

func isSearchSpace(r rune) bool {
	switch r {
	case '\u0085':
		return false
	case '\ufeff':
		return true
	}
	return unicode.IsSpace(r)
}
