package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"otodom-scraper/models"
)

func TestCSVWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flats.csv")

	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	flats := []*models.Flat{
		{Title: "Flat A", Address: "Gdańsk, Wrzeszcz", Link: "https://www.otodom.pl/pl/oferta/a", Rooms: "2 pokoje", Surface: 45.5, PricePerMeter: 11000, TotalPrice: 500500, RentPrice: 450},
		{Title: "Flat B", Address: "Gdańsk, Oliwa", Link: "https://www.otodom.pl/pl/oferta/b", Rooms: "3 pokoje", Surface: 60, PricePerMeter: 12000, TotalPrice: 720000, RentPrice: 0},
	}
	if err := w.Write(flats); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	if len(rows) != 3 { // header + 2 records
		t.Fatalf("row count: got %d, want 3", len(rows))
	}
	if rows[0][0] != "title" {
		t.Errorf("header: got %q, want %q", rows[0][0], "title")
	}
	if rows[1][2] != "https://www.otodom.pl/pl/oferta/a" {
		t.Errorf("link column: got %q", rows[1][2])
	}
	if rows[2][4] != "60" {
		t.Errorf("surface column: got %q, want \"60\"", rows[2][4])
	}
}
