package discogs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/samvad-hq/discogs-harvester/pkg/httpclient"
)

type mockResponse struct {
	body       []byte
	statusCode int
	header     http.Header
}

func (r mockResponse) Body() []byte        { return r.body }
func (r mockResponse) StatusCode() int     { return r.statusCode }
func (r mockResponse) Header() http.Header { return r.header }

// mockHTTPClient records requests and replies with a fixed response.
type mockHTTPClient struct {
	mu      sync.Mutex
	urls    []string
	headers []map[string]string

	resp mockResponse
	err  error
}

func (m *mockHTTPClient) Get(_ context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	m.mu.Lock()
	m.urls = append(m.urls, url)
	m.headers = append(m.headers, headers)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	resp := m.resp
	if resp.statusCode == 0 {
		resp.statusCode = http.StatusOK
	}
	return resp, nil
}

func (m *mockHTTPClient) lastURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.urls) == 0 {
		return ""
	}
	return m.urls[len(m.urls)-1]
}

func jsonResponse(status int, body string) mockResponse {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return mockResponse{statusCode: status, body: []byte(body), header: h}
}

func TestClientResourceURLs(t *testing.T) {
	mock := &mockHTTPClient{resp: jsonResponse(http.StatusOK, `{}`)}
	c := New(Config{AccessKey: "k", AccessSecret: "s"}, WithHTTPClient(mock))
	ctx := context.Background()

	testCases := []struct {
		name string
		call func() (*Result, error)
		want string
	}{
		{"artist", func() (*Result, error) { return c.Artist(ctx, "87016") }, "/artists/87016?key=k&secret=s"},
		{"artist releases", func() (*Result, error) {
			return c.ArtistReleases(ctx, "87016", &Pagination{Page: 2, PerPage: 30})
		}, "/artists/87016/releases?page=2&per_page=30&key=k&secret=s"},
		{"release", func() (*Result, error) { return c.Release(ctx, "1659014") }, "/releases/1659014?key=k&secret=s"},
		{"master", func() (*Result, error) { return c.Master(ctx, "8471") }, "/masters/8471?key=k&secret=s"},
		{"master versions", func() (*Result, error) { return c.MasterVersions(ctx, "8471", nil) }, "/masters/8471/versions?key=k&secret=s"},
		{"label", func() (*Result, error) { return c.Label(ctx, "1") }, "/labels/1?key=k&secret=s"},
		{"label releases", func() (*Result, error) {
			return c.LabelReleases(ctx, "1", &Pagination{Page: 3})
		}, "/labels/1/releases?page=3&per_page=50&key=k&secret=s"},
		{"search", func() (*Result, error) {
			return c.Search(ctx, NewSearchQuery(SearchParam{Key: "q", Value: "nirvana"}))
		}, "/database/search?q=nirvana&page=1&per_page=50&key=k&secret=s"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.call(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := "https://api.discogs.com" + tc.want
			if got := mock.lastURL(); got != want {
				t.Errorf("exp url %q; got %q", want, got)
			}
		})
	}
}

func TestClientSendsUserAgent(t *testing.T) {
	mock := &mockHTTPClient{resp: jsonResponse(http.StatusOK, `{}`)}
	c := New(Config{UserAgent: "my-app/0.0.1"}, WithHTTPClient(mock))

	if _, err := c.Release(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mock.headers[0]["User-Agent"]; got != "my-app/0.0.1" {
		t.Fatalf("exp User-Agent %q; got %q", "my-app/0.0.1", got)
	}
}

func TestClientWellKnownStatuses(t *testing.T) {
	for _, code := range []int{401, 403, 404, 405, 422, 500} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			mock := &mockHTTPClient{resp: jsonResponse(code, `{"message":"ignored"}`)}
			c := New(Config{}, WithHTTPClient(mock))

			res, err := c.Artist(context.Background(), "1")
			if res != nil {
				t.Fatalf("expected no result alongside error")
			}
			if !errors.Is(err, ErrStatus) {
				t.Fatalf("exp ErrStatus; got %v", err)
			}

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			want, _ := StatusMessage(code)
			if apiErr.Message != want {
				t.Errorf("exp message %q; got %q", want, apiErr.Message)
			}
			if apiErr.StatusCode != code {
				t.Errorf("exp status %d; got %d", code, apiErr.StatusCode)
			}
			if apiErr.Fields != nil {
				t.Errorf("body must not be read for status %d", code)
			}
		})
	}
}

func TestClientValidationError(t *testing.T) {
	mock := &mockHTTPClient{resp: jsonResponse(http.StatusBadRequest, `{"message":"bad id"}`)}
	c := New(Config{}, WithHTTPClient(mock))

	_, err := c.Release(context.Background(), "x")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("exp ErrValidation; got %v", err)
	}
	var apiErr *Error
	errors.As(err, &apiErr)

	want := map[string]any{"message": "bad id", "statusCode": 400}
	if diff := cmp.Diff(want, apiErr.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if apiErr.Message != "bad id" || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestClientValidationErrorUnparseable(t *testing.T) {
	mock := &mockHTTPClient{resp: jsonResponse(http.StatusBadRequest, `<html>nope</html>`)}
	c := New(Config{}, WithHTTPClient(mock))

	_, err := c.Release(context.Background(), "x")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("exp ErrDecode; got %v", err)
	}
	var apiErr *Error
	errors.As(err, &apiErr)
	if apiErr.Message != "could not parse response as JSON" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestClientUnexpectedStatus(t *testing.T) {
	for _, code := range []int{204, 302, 418, 429, 502, 503} {
		mock := &mockHTTPClient{resp: jsonResponse(code, `{}`)}
		c := New(Config{}, WithHTTPClient(mock))

		_, err := c.Label(context.Background(), "1")
		if !errors.Is(err, ErrUnexpectedStatus) {
			t.Fatalf("status %d: exp ErrUnexpectedStatus; got %v", code, err)
		}
		var apiErr *Error
		errors.As(err, &apiErr)
		if apiErr.Message != "request failed" || apiErr.StatusCode != code {
			t.Fatalf("status %d: unexpected error %+v", code, apiErr)
		}
	}
}

func TestClientJSONSuccess(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusCreated} {
		mock := &mockHTTPClient{resp: jsonResponse(code, `{"id":1}`)}
		c := New(Config{}, WithHTTPClient(mock))

		res, err := c.Artist(context.Background(), "1")
		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", code, err)
		}
		want := map[string]any{"id": json.Number("1")}
		if diff := cmp.Diff(want, res.Data); diff != "" {
			t.Fatalf("data mismatch (-want +got):\n%s", diff)
		}
		if res.IsImage() {
			t.Fatalf("json result reported as image")
		}

		var artist Artist
		if err := res.Decode(&artist); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if artist.ID != 1 {
			t.Fatalf("exp artist id 1; got %d", artist.ID)
		}
	}
}

func TestClientJSONWithoutContentType(t *testing.T) {
	mock := &mockHTTPClient{resp: mockResponse{statusCode: http.StatusOK, body: []byte(`[1,2]`)}}
	c := New(Config{}, WithHTTPClient(mock))

	res, err := c.Master(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items, ok := res.Data.([]any); !ok || len(items) != 2 {
		t.Fatalf("unexpected data %#v", res.Data)
	}

	mock.resp.body = []byte(`not json`)
	_, err = c.Master(context.Background(), "1")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("exp ErrDecode; got %v", err)
	}
}

func TestClientImagePassthrough(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "image/jpeg")
	h.Set("x-ratelimit-limit", "1000")
	h.Set("x-ratelimit-remaining", "999")
	h.Set("x-ratelimit-reset", "86400")
	h.Set("x-ratelimit-type", "image")
	raw := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}
	mock := &mockHTTPClient{resp: mockResponse{statusCode: http.StatusOK, body: raw, header: h}}
	c := New(Config{AccessKey: "k", AccessSecret: "s"}, WithHTTPClient(mock))

	res, err := c.Image(context.Background(), "R-1.jpeg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsImage() {
		t.Fatalf("expected image result")
	}
	if diff := cmp.Diff(raw, res.Image); diff != "" {
		t.Fatalf("image bytes mismatch (-want +got):\n%s", diff)
	}
	if res.ContentType != "image/jpeg" {
		t.Errorf("content type = %q", res.ContentType)
	}
	wantRL := RateLimit{Limit: "1000", Remaining: "999", Reset: "86400", Type: "image"}
	if diff := cmp.Diff(wantRL, res.RateLimit); diff != "" {
		t.Errorf("rate limit mismatch (-want +got):\n%s", diff)
	}
	if res.JSON != nil || res.Data != nil {
		t.Errorf("image result must not carry JSON")
	}
	if got := mock.lastURL(); got != "https://api.discogs.com/image/R-1.jpeg?key=k&secret=s" {
		t.Errorf("unexpected url %q", got)
	}
}

func TestClientUnknownContentType(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "text/html; charset=utf-8")
	mock := &mockHTTPClient{resp: mockResponse{statusCode: http.StatusOK, body: []byte("<html/>"), header: h}}
	c := New(Config{}, WithHTTPClient(mock))

	_, err := c.Artist(context.Background(), "1")
	if !errors.Is(err, ErrUnknownContentType) {
		t.Fatalf("exp ErrUnknownContentType; got %v", err)
	}
}

func TestClientTransportFailure(t *testing.T) {
	cause := errors.New("dial tcp: no such host")
	mock := &mockHTTPClient{err: cause}
	c := New(Config{}, WithHTTPClient(mock))

	res, err := c.Artist(context.Background(), "1")
	if res != nil {
		t.Fatalf("expected nil result")
	}
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("exp ErrTransport; got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	testCases := map[string]bodyKind{
		"":                                bodyJSON,
		"application/json":                bodyJSON,
		"application/json; charset=utf-8": bodyJSON,
		"application/vnd.discogs.v2.discogs+json": bodyJSON,
		"image/jpeg":  bodyImage,
		"IMAGE/PNG":   bodyImage,
		"text/plain":  bodyUnknown,
		"text/html;;": bodyUnknown,
	}
	for in, want := range testCases {
		if got := classify(in); got != want {
			t.Errorf("classify(%q) exp %d; got %d", in, want, got)
		}
	}
}

func TestClientConcurrentCalls(t *testing.T) {
	mock := &mockHTTPClient{resp: jsonResponse(http.StatusOK, `{"id":1}`)}
	c := New(Config{}, WithHTTPClient(mock))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := c.Release(context.Background(), FormatID(id)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
	if len(mock.urls) != 20 {
		t.Fatalf("expected 20 requests, got %d", len(mock.urls))
	}
}

func TestClientAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent/1.0" {
			t.Errorf("exp User-Agent test-agent/1.0; got %q", got)
		}
		if r.URL.Query().Get("key") != "k" || r.URL.Query().Get("secret") != "s" {
			t.Errorf("missing credentials in %q", r.URL.RawQuery)
		}
		w.Header().Set("x-ratelimit-remaining", "59")
		switch r.URL.Path {
		case "/artists/87016/releases":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"pagination":{"page":2,"pages":9,"per_page":30,"items":260},"releases":[{"id":1,"title":"Selected Ambient Works"}]}`))
		case "/image/R-1.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("\x89PNG"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	c := New(Config{
		Scheme:       u.Scheme,
		Host:         u.Host,
		UserAgent:    "test-agent/1.0",
		AccessKey:    "k",
		AccessSecret: "s",
	}, WithHTTPClient(httpclient.NewRestyClient(5*time.Second)))

	ctx := context.Background()
	res, err := c.ArtistReleases(ctx, "87016", &Pagination{Page: 2, PerPage: 30})
	if err != nil {
		t.Fatalf("ArtistReleases: %v", err)
	}
	var page ReleasesPage
	if err := res.Decode(&page); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if page.Pagination.Page != 2 || len(page.Items()) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
	if res.RateLimit.Remaining != "59" {
		t.Errorf("exp remaining 59; got %q", res.RateLimit.Remaining)
	}

	img, err := c.Image(ctx, "R-1.png")
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if string(img.Image) != "\x89PNG" {
		t.Errorf("unexpected image bytes %q", img.Image)
	}

	_, err = c.Label(ctx, "404")
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("exp ErrStatus; got %v", err)
	}
}

func TestClientSearchWithHashKeepsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		want := map[string]string{
			"q":        "catno:#1 hits",
			"page":     "1",
			"per_page": "50",
			"key":      "k",
			"secret":   "s",
		}
		for k, v := range want {
			if got := q.Get(k); got != v {
				t.Errorf("exp %s=%q; got %q (raw %q)", k, v, got, r.URL.RawQuery)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pagination":{"page":1},"results":[]}`))
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	c := New(Config{Scheme: u.Scheme, Host: u.Host, AccessKey: "k", AccessSecret: "s"},
		WithHTTPClient(httpclient.NewRestyClient(5*time.Second)))

	q := NewSearchQuery(SearchParam{Key: "q", Value: "catno:#1 hits"})
	if _, err := c.Search(context.Background(), q); err != nil {
		t.Fatalf("Search: %v", err)
	}
}

func TestClientURLEscapesHash(t *testing.T) {
	c := New(Config{AccessKey: "k", AccessSecret: "s"})
	path := c.SearchPath(NewSearchQuery(SearchParam{Key: "q", Value: "#1"}))
	if path != "/database/search?q=#1&page=1&per_page=50&key=k&secret=s" {
		t.Fatalf("path must keep the raw text, got %q", path)
	}
	want := "https://api.discogs.com/database/search?q=%231&page=1&per_page=50&key=k&secret=s"
	if got := c.URL(path); got != want {
		t.Fatalf("exp %q; got %q", want, got)
	}
}

func TestClientRejectsTrailingJSON(t *testing.T) {
	for _, body := range []string{`{"id":1}}`, `[1]]`, `{"id":1} {"id":2}`, `{"id":1} x`, ``} {
		mock := &mockHTTPClient{resp: jsonResponse(http.StatusOK, body)}
		c := New(Config{}, WithHTTPClient(mock))

		res, err := c.Artist(context.Background(), "1")
		if res != nil || !errors.Is(err, ErrDecode) {
			t.Errorf("body %q: exp ErrDecode; got res=%v err=%v", body, res, err)
		}
	}
}

func TestClientValidationErrorNotObject(t *testing.T) {
	for _, body := range []string{`[]`, `"bad"`, `null`} {
		mock := &mockHTTPClient{resp: jsonResponse(http.StatusBadRequest, body)}
		c := New(Config{}, WithHTTPClient(mock))

		_, err := c.Release(context.Background(), "x")
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("body %q: exp ErrValidation; got %v", body, err)
		}
		var apiErr *Error
		errors.As(err, &apiErr)
		if apiErr.Message != "validation response body is not a JSON object" || apiErr.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %q: unexpected error %+v", body, apiErr)
		}
		if apiErr.Fields != nil {
			t.Fatalf("body %q: no fields expected", body)
		}
	}
}

func TestStatusMessagesMatchAPIText(t *testing.T) {
	testCases := map[int]string{
		401: "You’re attempting to access a resource that first requires authentication",
		403: "You’re not allowed to access this resource. Even if you authenticated, or already have, you simply don’t have permission.",
		404: "The resource you requested doesn’t exist",
		405: "You’re trying to use an HTTP verb that isn’t supported by the resource.",
		422: "Your request was well-formed, but there’s something semantically wrong with the body of the request.",
		500: "Server side issue",
	}
	for code, want := range testCases {
		if got, ok := StatusMessage(code); !ok || got != want {
			t.Errorf("status %d: exp %q; got %q", code, want, got)
		}
	}
}
