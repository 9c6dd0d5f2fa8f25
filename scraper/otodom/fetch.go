package otodom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"otodom-scraper/utils"
)

var (
	// ErrNotFound signals a 404 for a catalog path; the orchestrator retries
	// once with the municipal-gmina URL form before giving up.
	ErrNotFound = errors.New("page not found")
	// ErrRateLimited signals a 403 that persisted through the backoff retry.
	ErrRateLimited = errors.New("rate limited by target site")
)

// browserHeaders is the fixed header set sent with every request. The
// catalog serves a captcha page to clients without a plausible browser
// fingerprint.
var browserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language":           "pl,en-US;q=0.7,en;q=0.3",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// Fetcher issues GETs with the fixed header set and classifies responses.
// A 403 blocks the calling goroutine for the backoff interval and retries
// exactly once; all other failures are returned to the caller as-is.
type Fetcher struct {
	client  *http.Client
	logger  *utils.Logger
	backoff time.Duration

	sleep func(time.Duration)
}

// NewFetcher creates a Fetcher. A nil client gets a default with a 30s
// timeout.
func NewFetcher(client *http.Client, backoff time.Duration, logger *utils.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		client:  client,
		logger:  logger,
		backoff: backoff,
		sleep:   time.Sleep,
	}
}

// Get fetches rawURL with the given query parameters and returns the page
// markup. Status mapping: 200 → body, 404 → ErrNotFound, 403 → one backoff
// then one retry, then ErrRateLimited.
func (f *Fetcher) Get(ctx context.Context, rawURL string, params url.Values) (string, error) {
	body, status, err := f.do(ctx, rawURL, params)
	if err != nil {
		return "", err
	}

	switch status {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	case http.StatusForbidden:
		f.logger.Warn("[fetch] 403 from %s — backing off %v before one retry", rawURL, f.backoff)
		f.sleep(f.backoff)

		body, status, err = f.do(ctx, rawURL, params)
		if err != nil {
			return "", err
		}
		if status == http.StatusOK {
			return body, nil
		}
		return "", fmt.Errorf("%w: HTTP %d after backoff", ErrRateLimited, status)
	default:
		return "", fmt.Errorf("unexpected status %d from %s", status, rawURL)
	}
}

func (f *Fetcher) do(ctx context.Context, rawURL string, params url.Values) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("build request %s: %w", rawURL, err)
	}
	if params != nil {
		req.URL.RawQuery = params.Encode()
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	f.logger.Info("[fetch] GET %s → %d", resp.Request.URL, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("read body from %s: %w", rawURL, err)
	}
	return string(body), resp.StatusCode, nil
}
