// Package fetch retrieves the registry listing.
//
// A Source issues one GET per call and returns the decoded document. There
// are no retries: a failure is returned to the caller, which shows it.
// Requests pass through a rate limiter so repeated refreshes stay polite.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/abelbrown/marketplace/internal/catalog"
	"github.com/abelbrown/marketplace/internal/events"
	"github.com/abelbrown/marketplace/internal/logging"
	"github.com/abelbrown/marketplace/internal/tracing"
)

// UserAgent identifies the browser to the registry CDN.
const UserAgent = "marketplace/0.1 (+https://github.com/abelbrown/marketplace)"

// maxBodySize caps the listing we are willing to read.
const maxBodySize = 32 << 20

// ErrHTTPStatus is wrapped by StatusError for non-2xx responses.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// StatusError carries the status of a rejected response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %s", e.Status)
}

func (e *StatusError) Unwrap() error { return ErrHTTPStatus }

// Source produces the registry document.
type Source interface {
	Name() string
	URL() string
	Fetch(ctx context.Context) (catalog.Document, error)
}

// Options tune a Source. Zero values mean: 30s timeout, no rate limit.
type Options struct {
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	Client        *http.Client
	Recorder      *events.Recorder
}

// httpGetter holds what the JSON and feed sources share: a client, a
// limiter and instrumentation.
type httpGetter struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	rec     *events.Recorder
}

func newHTTPGetter(url string, opts Options) httpGetter {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return httpGetter{
		url:     url,
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		rec:     opts.Recorder,
	}
}

// get performs the limited GET and hands the body to decode.
func (g httpGetter) get(ctx context.Context, comp, accept string, decode func(io.Reader) (catalog.Document, error)) (catalog.Document, error) {
	ctx, span := tracing.Tracer("marketplace/fetch").Start(ctx, "catalog.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", g.url), attribute.String("source", comp))

	start := time.Now()
	g.rec.Emit(events.Event{Kind: events.KindFetchStart, Level: events.LevelInfo, Comp: comp, Source: g.url})

	doc, err := g.do(ctx, accept, decode)
	dur := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.rec.Error(events.KindFetchError, comp, err)
		logging.Warn("catalog fetch failed", "url", g.url, "dur", dur, "err", err)
		return catalog.Document{}, err
	}

	span.SetAttributes(attribute.Int("packages", len(doc.Packages)))
	g.rec.Emit(events.Event{Kind: events.KindFetchComplete, Level: events.LevelInfo, Comp: comp, Source: g.url, Dur: dur, Count: len(doc.Packages)})
	logging.Debug("catalog fetched", "url", g.url, "packages", len(doc.Packages), "dur", dur)
	return doc, nil
}

func (g httpGetter) do(ctx context.Context, accept string, decode func(io.Reader) (catalog.Document, error)) (catalog.Document, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return catalog.Document{}, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return catalog.Document{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", accept)

	resp, err := g.client.Do(req)
	if err != nil {
		return catalog.Document{}, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return catalog.Document{}, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	return decode(io.LimitReader(resp.Body, maxBodySize))
}

// JSONSource reads the registry's `{"packages": [...]}` document.
type JSONSource struct {
	httpGetter
}

// NewJSONSource creates a JSONSource for url.
func NewJSONSource(url string, opts Options) *JSONSource {
	return &JSONSource{httpGetter: newHTTPGetter(url, opts)}
}

// Name identifies the source in events and the UI.
func (s *JSONSource) Name() string { return "json" }

// URL returns the listing location.
func (s *JSONSource) URL() string { return s.url }

// Fetch performs one GET and decodes the body as JSON.
func (s *JSONSource) Fetch(ctx context.Context) (catalog.Document, error) {
	return s.get(ctx, "fetch", "application/json", decodeJSON)
}

func decodeJSON(r io.Reader) (catalog.Document, error) {
	var doc catalog.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return catalog.Document{}, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return doc, nil
}
