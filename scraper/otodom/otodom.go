package otodom

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"

	"otodom-scraper/models"
	"otodom-scraper/storage"
	"otodom-scraper/utils"
)

const (
	// pageSize is the catalog's fixed page length.
	pageSize = 72
	// poolWidth bounds in-flight requests against the site. Detail fetches
	// run sequentially inside their page task, so this is the worst-case
	// concurrent request count.
	poolWidth = 10

	catalogPathFormat = "%s/pl/wyniki/sprzedaz/mieszkanie/%s/%s/%s/%s"
)

// Request describes one crawl run: the resolved catalog location and the
// surface filter. Owned by the Scraper for the duration of the run.
type Request struct {
	Region  models.Region
	MinArea int
	MaxArea int
}

// Scraper drives the listing acquisition pipeline: pagination probe,
// bounded fan-out of catalog pages, per-listing rent enrichment, and
// persistence.
type Scraper struct {
	baseURL string
	logger  *utils.Logger
	fetcher *Fetcher
	store   storage.FlatStore
	req     Request

	pool *utils.WorkerPool
	seen *utils.URLSet

	useGminaPath atomic.Bool

	mu           sync.Mutex
	flats        []*models.Flat
	pagesFetched int64
}

// New creates a ready-to-use Scraper.
func New(baseURL string, req Request, fetcher *Fetcher, store storage.FlatStore, logger *utils.Logger) *Scraper {
	return &Scraper{
		baseURL: baseURL,
		logger:  logger,
		fetcher: fetcher,
		store:   store,
		req:     req,
		pool:    utils.NewWorkerPool(poolWidth, 0),
		seen:    utils.NewURLSet(),
	}
}

// Run executes one crawl and returns the number of flats persisted.
// Pagination-resolution failure and storage unavailability are the only
// run-fatal conditions; everything else degrades to fewer records.
func (s *Scraper) Run(ctx context.Context) (int, error) {
	firstPage, err := s.probe(ctx)
	if err != nil {
		return 0, fmt.Errorf("initial catalog fetch: %w", err)
	}

	totalPages, err := resolveTotalPages(firstPage, pageSize)
	if err != nil {
		return 0, fmt.Errorf("resolve pagination: %w", err)
	}
	if totalPages == 0 {
		s.logger.Warn("[otodom] no listings match the filters for %s", s.req.Region.City)
		return 0, nil
	}
	s.logger.Info("[otodom] crawling %d catalog pages for %s", totalPages, s.req.Region.City)

	for page := 1; page <= totalPages; page++ {
		p := page
		s.pool.Submit(func() { s.processPage(ctx, p, totalPages) })
	}
	s.pool.Wait()

	s.logger.Info("[otodom] fan-in complete — %d/%d pages fetched, %d flats extracted",
		atomic.LoadInt64(&s.pagesFetched), totalPages, len(s.flats))

	if len(s.flats) == 0 {
		s.logger.Warn("[otodom] nothing to persist")
		return 0, nil
	}

	if err := s.store.EnsureSchema(); err != nil {
		return 0, fmt.Errorf("ensure storage schema: %w", err)
	}
	scrapeID, err := s.store.BeginScrape(s.req.Region.City)
	if err != nil {
		return 0, fmt.Errorf("begin scrape: %w", err)
	}
	persisted, err := s.store.Upsert(scrapeID, s.flats)
	if err != nil {
		return 0, fmt.Errorf("persist flats: %w", err)
	}

	return persisted, nil
}

// probe fetches page 1, falling back once to the municipal-gmina URL form
// on 404. The form that answers is kept for the rest of the run.
func (s *Scraper) probe(ctx context.Context) (string, error) {
	html, err := s.fetcher.Get(ctx, s.catalogURL(), s.catalogParams(1))
	if err == nil {
		return html, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	s.logger.Warn("[otodom] catalog path not found — retrying with gmina path for %s", s.req.Region.City)
	s.useGminaPath.Store(true)
	return s.fetcher.Get(ctx, s.catalogURL(), s.catalogParams(1))
}

// processPage is one fan-out task: fetch the catalog page, extract its
// listings, enrich each with its detail-page rent, and append to the
// collector. Failures contribute zero records and never escalate.
func (s *Scraper) processPage(ctx context.Context, page, totalPages int) {
	s.logger.Info("[otodom] processing page %d/%d", page, totalPages)

	html, err := s.fetcher.Get(ctx, s.catalogURL(), s.catalogParams(page))
	if err != nil {
		s.logger.Error("[otodom] page %d fetch failed: %v — skipping", page, err)
		return
	}
	atomic.AddInt64(&s.pagesFetched, 1)

	flats, err := extractListings(html, s.baseURL, s.logger)
	if err != nil {
		s.logger.Error("[otodom] page %d extraction failed: %v — skipping", page, err)
		return
	}

	kept := make([]*models.Flat, 0, len(flats))
	for _, flat := range flats {
		if !s.seen.Add(flat.Link) {
			s.logger.Debug("[otodom] duplicate link skipped: %s", flat.Link)
			continue
		}
		// Sequential on purpose: detail fetches share the page task's
		// slot in the pool, keeping in-flight requests bounded.
		flat.RentPrice = s.fetchRentPrice(ctx, flat.Link)
		kept = append(kept, flat)
	}

	s.mu.Lock()
	s.flats = append(s.flats, kept...)
	s.mu.Unlock()
}

// fetchRentPrice fetches a listing's detail page for its rent field.
// Any failure yields 0, not a dropped record.
func (s *Scraper) fetchRentPrice(ctx context.Context, link string) float64 {
	html, err := s.fetcher.Get(ctx, link, nil)
	if err != nil {
		s.logger.Warn("[otodom] detail fetch failed for %s: %v — rent set to 0", link, err)
		return 0
	}
	return extractRentPrice(html)
}

func (s *Scraper) catalogURL() string {
	r := s.req.Region
	cityPath := r.City
	if s.useGminaPath.Load() {
		cityPath = "gmina-miejska--" + r.City
	}
	return fmt.Sprintf(catalogPathFormat, s.baseURL, r.Province, r.District, cityPath, r.City)
}

func (s *Scraper) catalogParams(page int) url.Values {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(pageSize))
	v.Set("ownerTypeSingleSelect", "ALL")
	v.Set("areaMin", strconv.Itoa(s.req.MinArea))
	v.Set("areaMax", strconv.Itoa(s.req.MaxArea))
	v.Set("isPromoted", "false")
	v.Set("by", "LATEST")
	v.Set("direction", "DESC")
	v.Set("viewType", "listing")
	v.Set("page", strconv.Itoa(page))
	return v
}
