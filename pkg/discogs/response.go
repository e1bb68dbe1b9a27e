package discogs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/samvad-hq/discogs-harvester/pkg/httpclient"
)

// Rate-limit response headers.
const (
	HeaderRateLimit          = "x-ratelimit-limit"
	HeaderRateLimitRemaining = "x-ratelimit-remaining"
	HeaderRateLimitReset     = "x-ratelimit-reset"
	HeaderRateLimitType      = "x-ratelimit-type"
)

// RateLimit carries the rate-limit headers verbatim.
type RateLimit struct {
	Limit     string `json:"limit"`
	Remaining string `json:"remaining"`
	Reset     string `json:"reset"`
	Type      string `json:"type"`
}

func rateLimitFrom(h http.Header) RateLimit {
	return RateLimit{
		Limit:     h.Get(HeaderRateLimit),
		Remaining: h.Get(HeaderRateLimitRemaining),
		Reset:     h.Get(HeaderRateLimitReset),
		Type:      h.Get(HeaderRateLimitType),
	}
}

// Result is a successful response. Exactly one of JSON or Image is set.
type Result struct {
	StatusCode  int
	ContentType string
	RateLimit   RateLimit

	// JSON is the raw body of a JSON response and Data its decoded form
	// (map[string]any or []any, numbers as json.Number).
	JSON json.RawMessage
	Data any

	// Image is the raw body of an image response.
	Image []byte
}

// IsImage reports whether the result carries image bytes.
func (r *Result) IsImage() bool {
	return r != nil && r.Image != nil
}

// Decode unmarshals a JSON result into v.
func (r *Result) Decode(v any) error {
	if r == nil || r.JSON == nil {
		return errors.New("discogs: result has no JSON body")
	}
	if err := json.Unmarshal(r.JSON, v); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

type bodyKind int

const (
	bodyJSON bodyKind = iota
	bodyImage
	bodyUnknown
)

// classify sniffs the content type. A missing header is treated as JSON.
func classify(contentType string) bodyKind {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return bodyJSON
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return bodyImage
	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
		return bodyJSON
	default:
		return bodyUnknown
	}
}

// normalize maps one HTTP response onto the result/error contract.
func normalize(resp httpclient.Response) (*Result, error) {
	code := resp.StatusCode()

	if msg, ok := statusMessages[code]; ok {
		return nil, &Error{Message: msg, StatusCode: code, Err: ErrStatus}
	}

	if code == http.StatusBadRequest {
		return nil, validationError(resp.Body())
	}

	if code != http.StatusOK && code != http.StatusCreated {
		return nil, &Error{Message: msgRequestFailed, StatusCode: code, Err: ErrUnexpectedStatus}
	}

	header := resp.Header()
	if header == nil {
		header = http.Header{}
	}
	contentType := header.Get("Content-Type")
	res := &Result{
		StatusCode:  code,
		ContentType: contentType,
		RateLimit:   rateLimitFrom(header),
	}

	switch classify(contentType) {
	case bodyImage:
		body := resp.Body()
		if body == nil {
			body = []byte{}
		}
		res.Image = body
		return res, nil
	case bodyJSON:
		data, err := decodeJSON(resp.Body())
		if err != nil {
			return nil, decodeError(err)
		}
		res.JSON = json.RawMessage(resp.Body())
		res.Data = data
		return res, nil
	default:
		return nil, &Error{Message: msgUnknownContentType, StatusCode: code, Err: ErrUnknownContentType}
	}
}

// validationError turns a 400 body into an error carrying the decoded fields.
func validationError(body []byte) error {
	data, err := decodeJSON(body)
	if err != nil {
		return decodeError(err)
	}
	fields, ok := data.(map[string]any)
	if !ok {
		return &Error{Message: msgNotObject, StatusCode: http.StatusBadRequest, Err: ErrValidation}
	}
	fields["statusCode"] = http.StatusBadRequest

	msg, _ := fields["message"].(string)
	if msg == "" {
		msg = msgRequestFailed
	}
	return &Error{Message: msg, StatusCode: http.StatusBadRequest, Fields: fields, Err: ErrValidation}
}

func decodeJSON(body []byte) (any, error) {
	// Unmarshal checks the whole body, trailing bytes included.
	if err := json.Unmarshal(body, new(json.RawMessage)); err != nil {
		return nil, err
	}
	d := json.NewDecoder(bytes.NewReader(body))
	d.UseNumber()

	var v any
	if err := d.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
