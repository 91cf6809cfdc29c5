package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
	"github.com/mohammed-shakir/vakuf-map/internal/core/observability"
)

// Fetcher reads the full record set from the system of record.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Record, error)
}

// Remote reads the records of one collection from the document store's
// HTTP API: GET {base}/collections/{collection}/documents returning a JSON
// array.
type Remote struct {
	logger     *slog.Logger
	client     *http.Client
	url        *url.URL
	collection string
	now        func() time.Time // for tests
}

func NewRemote(logger *slog.Logger, client *http.Client, baseURL, collection string) (*Remote, error) {
	if collection == "" {
		return nil, fmt.Errorf("document store collection is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse docstore url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("docstore url %q must be absolute", baseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{
		logger:     logger,
		client:     client,
		url:        u.JoinPath("collections", collection, "documents"),
		collection: collection,
		now:        time.Now,
	}, nil
}

func (r *Remote) Fetch(ctx context.Context) ([]model.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := r.now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	dur := time.Since(start)
	observability.ObserveUpstreamLatency("docstore", dur.Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(b))
	}

	var recs []model.Record
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	r.logger.Debug("docstore fetch done",
		"collection", r.collection,
		"records", len(recs),
		"duration", dur.String())
	return recs, nil
}
