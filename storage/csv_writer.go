package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"otodom-scraper/models"
)

// CSVWriter exports stored flats to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"title", "address", "link", "rooms", "surface", "price_per_meter", "total_price", "rent_price",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends the given flats to the CSV file.
func (c *CSVWriter) Write(flats []*models.Flat) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range flats {
		row := []string{
			f.Title,
			f.Address,
			f.Link,
			f.Rooms,
			strconv.FormatFloat(f.Surface, 'f', -1, 64),
			strconv.FormatFloat(f.PricePerMeter, 'f', -1, 64),
			strconv.FormatFloat(f.TotalPrice, 'f', -1, 64),
			strconv.FormatFloat(f.RentPrice, 'f', -1, 64),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
