package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"otodom-scraper/models"
	"otodom-scraper/services"
	"otodom-scraper/utils"
)

// Resolver maps a free-text city name to the canonical catalog location.
type Resolver interface {
	Resolve(ctx context.Context, city string) models.Region
}

// NominatimResolver resolves city names against the Nominatim geocoding API.
// Resolution failure is never fatal: the fallback triple is
// (city, city, "unknown").
type NominatimResolver struct {
	client  *http.Client
	baseURL string
	logger  *utils.Logger
}

func NewNominatimResolver(client *http.Client, baseURL string, logger *utils.Logger) *NominatimResolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &NominatimResolver{client: client, baseURL: baseURL, logger: logger}
}

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		County  string `json:"county"`
		State   string `json:"state"`
	} `json:"address"`
}

// Resolve looks the city up and returns its ASCII (city, district, province)
// triple. District falls back to the city itself when Nominatim reports no
// county; province falls back to "unknown".
func (r *NominatimResolver) Resolve(ctx context.Context, city string) models.Region {
	place, err := r.lookup(ctx, city)
	if err != nil {
		r.logger.Warn("[geo] could not resolve %q: %v — using fallback", city, err)
		key := services.ToASCIIKey(city)
		return models.Region{City: key, District: key, Province: "unknown"}
	}

	r.logger.Info("[geo] resolved %q → %s", city, place.DisplayName)

	name := firstNonEmpty(place.Address.City, place.Address.Town, place.Address.Village, city)
	district := strings.TrimPrefix(place.Address.County, "powiat ")
	if district == "" {
		district = name
	}
	province := strings.TrimPrefix(place.Address.State, "województwo ")
	if province == "" {
		province = "unknown"
	}

	return models.Region{
		City:     services.ToASCIIKey(name),
		District: services.ToASCIIKey(district),
		Province: services.ToASCIIKey(province),
	}
}

func (r *NominatimResolver) lookup(ctx context.Context, city string) (*nominatimPlace, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("countrycodes", "pl")
	params.Set("accept-language", "pl")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/search", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", "otodom-scraper/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("no results for %q", city)
	}
	return &places[0], nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
