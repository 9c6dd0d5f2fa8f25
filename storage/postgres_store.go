package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"otodom-scraper/models"
	"otodom-scraper/utils"
)

// PostgresStore persists scraped flats to PostgreSQL. Each run appends one
// row to scrapes; flats dedupe on their link across all runs.
type PostgresStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresStore opens a connection to PostgreSQL, ensures the schema,
// and returns a ready-to-use store.
func NewPostgresStore(dsn string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres-ping", db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	store := &PostgresStore{db: db, logger: logger}
	if err := store.EnsureSchema(); err != nil {
		return nil, fmt.Errorf("postgres: ensure schema: %w", err)
	}

	return store, nil
}

// EnsureSchema creates the cities/scrapes/flats tables if absent.
// Safe to call every run.
func (s *PostgresStore) EnsureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS cities (
			id   SERIAL PRIMARY KEY,
			name TEXT UNIQUE NOT NULL
		);

		CREATE TABLE IF NOT EXISTS scrapes (
			id          SERIAL PRIMARY KEY,
			city_id     INTEGER NOT NULL REFERENCES cities(id),
			scrape_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS flats (
			id              SERIAL PRIMARY KEY,
			scrape_id       INTEGER NOT NULL REFERENCES scrapes(id),
			title           TEXT NOT NULL,
			address         TEXT NOT NULL DEFAULT '',
			link            TEXT UNIQUE NOT NULL,
			rooms           TEXT NOT NULL DEFAULT '',
			surface         NUMERIC(8,2)  NOT NULL DEFAULT 0,
			price_per_meter NUMERIC(12,2) NOT NULL DEFAULT 0,
			total_price     NUMERIC(14,2) NOT NULL DEFAULT 0,
			rent_price      NUMERIC(12,2) NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_flats_scrape ON flats(scrape_id);
		CREATE INDEX IF NOT EXISTS idx_scrapes_city ON scrapes(city_id);
	`)
	return err
}

// BeginScrape creates the city row if needed and opens a new scrape run.
func (s *PostgresStore) BeginScrape(city string) (int64, error) {
	var cityID int64
	err := s.db.QueryRow(`
		INSERT INTO cities (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, city).Scan(&cityID)
	if err != nil {
		return 0, fmt.Errorf("postgres: ensure city %q: %w", city, err)
	}

	var scrapeID int64
	err = s.db.QueryRow(`
		INSERT INTO scrapes (city_id) VALUES ($1) RETURNING id
	`, cityID).Scan(&scrapeID)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin scrape for %q: %w", city, err)
	}

	return scrapeID, nil
}

// Upsert inserts flats row by row so one bad record cannot poison the batch.
// A link collision is first-write-wins and counts as persisted.
func (s *PostgresStore) Upsert(scrapeID int64, flats []*models.Flat) (int, error) {
	persisted := 0
	for _, f := range flats {
		result, err := s.db.Exec(`
			INSERT INTO flats (scrape_id, title, address, link, rooms, surface, price_per_meter, total_price, rent_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (link) DO NOTHING
		`, scrapeID, f.Title, f.Address, f.Link, f.Rooms, f.Surface, f.PricePerMeter, f.TotalPrice, f.RentPrice)
		if err != nil {
			s.logger.Error("[postgres] insert failed for %s: %v — continuing", f.Link, err)
			continue
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			s.logger.Debug("[postgres] duplicate link skipped: %s", f.Link)
		}
		persisted++
	}
	return persisted, nil
}

// Count returns the number of flats ever stored for the city, across runs.
func (s *PostgresStore) Count(city string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM flats f
		JOIN scrapes sc ON sc.id = f.scrape_id
		JOIN cities  c  ON c.id  = sc.city_id
		WHERE c.name = $1
	`, city).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count flats for %q: %w", city, err)
	}
	return count, nil
}

// FetchAll retrieves every stored flat for the city — used by the CSV
// export and the stats service.
func (s *PostgresStore) FetchAll(city string) ([]*models.Flat, error) {
	rows, err := s.db.Query(`
		SELECT f.id, f.title, f.address, f.link, f.rooms, f.surface, f.price_per_meter, f.total_price, f.rent_price
		FROM flats f
		JOIN scrapes sc ON sc.id = f.scrape_id
		JOIN cities  c  ON c.id  = sc.city_id
		WHERE c.name = $1
		ORDER BY f.id
	`, city)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch flats for %q: %w", city, err)
	}
	defer rows.Close()

	var flats []*models.Flat
	for rows.Next() {
		f := &models.Flat{}
		if err := rows.Scan(
			&f.ID, &f.Title, &f.Address, &f.Link, &f.Rooms,
			&f.Surface, &f.PricePerMeter, &f.TotalPrice, &f.RentPrice,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		flats = append(flats, f)
	}
	return flats, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
