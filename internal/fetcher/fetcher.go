// Package fetcher downloads web pages and reduces them to visible text.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"github.com/MikeSquared-Agency/joey/internal/extractor"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxBytes = 10 << 20
)

// ErrUnreachable is returned when the target could not be contacted.
var ErrUnreachable = errors.New("url unreachable")

// StatusError is returned for a non-2xx upstream response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.StatusCode)
}

// InvalidURLError is returned when the URL cannot be used even after
// normalisation.
type InvalidURLError struct {
	URL    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url %q: %s", e.URL, e.Reason)
}

// NormalizeURL trims raw and prepends https:// when it carries no
// http:// or https:// scheme.
func NormalizeURL(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	if u == "" {
		return "", &InvalidURLError{URL: raw, Reason: "empty"}
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return "", &InvalidURLError{URL: raw, Reason: err.Error()}
	}
	if parsed.Host == "" {
		return "", &InvalidURLError{URL: raw, Reason: "missing host"}
	}
	return u, nil
}

type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: DefaultMaxBytes,
	}
}

// Fetch downloads target, which must already be normalised, and returns its
// visible text.
func (f *Fetcher) Fetch(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", &InvalidURLError{URL: target, Reason: err.Error()}
	}
	req.Header.Set("User-Agent", "joey/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	body, err = decodeBody(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	text, err := extractor.Extract(extractor.HTML, body)
	if err != nil {
		return "", err
	}
	return text, nil
}

// decodeBody converts body to UTF-8. A charset in the Content-Type header
// wins; otherwise valid UTF-8 is kept as is and anything else is decoded
// from the charset sniffed from the document.
func decodeBody(body []byte, contentType string) ([]byte, error) {
	if len(body) == 0 {
		return body, nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if (err != nil || params["charset"] == "") && utf8.Valid(body) {
		return body, nil
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
