package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"otodom-scraper/utils"
)

func TestResolveReturnsASCIITriple(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("countrycodes"); got != "pl" {
			t.Errorf("countrycodes: got %q, want %q", got, "pl")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"display_name": "Gdańsk, województwo pomorskie, Polska",
			"address": {
				"city": "Gdańsk",
				"state": "województwo pomorskie"
			}
		}]`))
	}))
	defer srv.Close()

	r := NewNominatimResolver(srv.Client(), srv.URL, utils.NewLogger())
	region := r.Resolve(context.Background(), "Gdańsk")

	if region.City != "gdansk" {
		t.Errorf("City: got %q, want %q", region.City, "gdansk")
	}
	if region.District != "gdansk" {
		t.Errorf("District: got %q, want %q (fallback to city)", region.District, "gdansk")
	}
	if region.Province != "pomorskie" {
		t.Errorf("Province: got %q, want %q", region.Province, "pomorskie")
	}
}

func TestResolveUsesCountyAsDistrict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"display_name": "Wejherowo, powiat wejherowski, województwo pomorskie, Polska",
			"address": {
				"town": "Wejherowo",
				"county": "powiat wejherowski",
				"state": "województwo pomorskie"
			}
		}]`))
	}))
	defer srv.Close()

	r := NewNominatimResolver(srv.Client(), srv.URL, utils.NewLogger())
	region := r.Resolve(context.Background(), "wejherowo")

	if region.City != "wejherowo" {
		t.Errorf("City: got %q", region.City)
	}
	if region.District != "wejherowski" {
		t.Errorf("District: got %q, want %q", region.District, "wejherowski")
	}
}

func TestResolveFallbackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewNominatimResolver(srv.Client(), srv.URL, utils.NewLogger())
	region := r.Resolve(context.Background(), "Łódź")

	if region.City != "lodz" || region.District != "lodz" {
		t.Errorf("fallback triple: got (%q, %q), want (lodz, lodz)", region.City, region.District)
	}
	if region.Province != "unknown" {
		t.Errorf("Province: got %q, want %q", region.Province, "unknown")
	}
}

func TestResolveFallbackOnEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	r := NewNominatimResolver(srv.Client(), srv.URL, utils.NewLogger())
	region := r.Resolve(context.Background(), "atlantis")

	if region.City != "atlantis" || region.Province != "unknown" {
		t.Errorf("fallback: got %+v", region)
	}
}
