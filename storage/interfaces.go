package storage

import "otodom-scraper/models"

// FlatStore is the interface the crawl pipeline persists through.
type FlatStore interface {
	// EnsureSchema creates the storage schema if absent. Idempotent.
	EnsureSchema() error
	// BeginScrape registers a new scrape run for the city and returns its id.
	// The city row is created on first use and never deleted.
	BeginScrape(city string) (int64, error)
	// Upsert inserts the flats under the given scrape; a flat whose link
	// already exists is silently skipped. Returns the number of flats
	// persisted (inserted or already present).
	Upsert(scrapeID int64, flats []*models.Flat) (int, error)
	// Count returns the number of flats ever stored for the city.
	Count(city string) (int, error)
	Close() error
}

// FlatExporter writes stored flats to an external format.
type FlatExporter interface {
	Write(flats []*models.Flat) error
	Close() error
}
