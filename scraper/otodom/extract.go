package otodom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"otodom-scraper/models"
	"otodom-scraper/services"
	"otodom-scraper/utils"
)

// ErrNoPagination means the results counter is missing from the first page,
// so the fan-out cannot be bounded. Fatal for the whole run.
var ErrNoPagination = errors.New("results counter not found")

const (
	listingBlockSelector = `article[data-cy="listing-item"]`
	itemsCounterSelector = `span[data-sentry-component="ItemsCounter"]`
	rentCellSelector     = `div[data-sentry-element="ItemGridContainer"][data-sentry-source-file="AdDetailItem.tsx"]`

	// rentCellIndex is how far to walk through the detail grid before
	// reaching the rent cell.
	rentCellIndex = 4
)

// locator pinpoints one field inside a listing block. When From is set, the
// search walks forward through following siblings of the From element
// instead of descending from the block root, mirroring the catalog's
// dt/dd definition lists. Markup drift is handled by editing this table,
// not the extraction code.
type locator struct {
	Selector string
	From     string
	Attr     string
}

var catalogLocators = map[string]locator{
	"price":   {Selector: `span[data-sentry-component="Price"]`},
	"link":    {Selector: `a[data-cy="listing-item-link"]`, Attr: "href"},
	"title":   {Selector: `p[data-cy="listing-item-title"]`},
	"address": {Selector: `p[data-sentry-component="Address"]`},
	"rooms":   {Selector: `dd[data-sentry-component="RoomsDefinition"]`},
	"surface": {Selector: "dd", From: `dd[data-sentry-component="RoomsDefinition"]`},
	"ppm":     {Selector: `dd[data-sentry-component="PricePerMeterDefinition"]`},
}

// requiredFields must all resolve for a listing block to survive extraction.
var requiredFields = []string{"price", "link", "title", "address", "rooms", "surface", "ppm"}

func (l locator) resolve(block *goquery.Selection) (string, bool) {
	var sel *goquery.Selection
	if l.From != "" {
		anchor := block.Find(l.From).First()
		if anchor.Length() == 0 {
			return "", false
		}
		sel = anchor.NextAllFiltered(l.Selector).First()
	} else {
		sel = block.Find(l.Selector).First()
	}
	if sel.Length() == 0 {
		return "", false
	}

	if l.Attr != "" {
		return sel.Attr(l.Attr)
	}
	return strings.TrimSpace(sel.Text()), true
}

// extractListings pulls candidate flats out of one catalog page. Blocks
// missing a required field are dropped and logged; markup drift on a subset
// of listings never aborts the page.
func extractListings(html, baseURL string, logger *utils.Logger) ([]*models.Flat, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse catalog page: %w", err)
	}

	var flats []*models.Flat
	doc.Find(listingBlockSelector).Each(func(i int, block *goquery.Selection) {
		flat, err := extractBlock(block, baseURL)
		if err != nil {
			logger.Warn("[extract] dropping listing block %d: %v", i, err)
			return
		}
		flats = append(flats, flat)
	})
	return flats, nil
}

func extractBlock(block *goquery.Selection, baseURL string) (*models.Flat, error) {
	raw := make(map[string]string, len(catalogLocators))
	for _, field := range requiredFields {
		text, ok := catalogLocators[field].resolve(block)
		if !ok || text == "" {
			return nil, fmt.Errorf("field %q not found", field)
		}
		raw[field] = text
	}

	totalPrice, ok := services.CleanNumber(raw["price"])
	if !ok {
		return nil, fmt.Errorf("unparseable price %q", raw["price"])
	}
	surface, ok := services.CleanNumber(raw["surface"])
	if !ok {
		return nil, fmt.Errorf("unparseable surface %q", raw["surface"])
	}
	ppm, ok := services.CleanNumber(raw["ppm"])
	if !ok {
		return nil, fmt.Errorf("unparseable price per meter %q", raw["ppm"])
	}
	if totalPrice < 0 || surface < 0 || ppm < 0 {
		return nil, fmt.Errorf("negative numeric field (price=%v surface=%v ppm=%v)", totalPrice, surface, ppm)
	}

	link := raw["link"]
	if !strings.HasPrefix(link, "http") {
		link = baseURL + link
	}

	return &models.Flat{
		Title:         raw["title"],
		Address:       raw["address"],
		Link:          link,
		Rooms:         raw["rooms"],
		Surface:       surface,
		PricePerMeter: ppm,
		TotalPrice:    totalPrice,
	}, nil
}

// extractRentPrice reads the rent value from a listing's detail page by
// walking to the fifth detail-grid cell and splitting its label from its
// value on the colon. Listings without a rent field (private-sale ads)
// yield 0 — expected, not an error.
func extractRentPrice(html string) float64 {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}

	cell := doc.Find(rentCellSelector).Eq(rentCellIndex)
	if cell.Length() == 0 {
		return 0
	}

	parts := strings.SplitN(cell.Text(), ":", 2)
	if len(parts) < 2 {
		return 0
	}

	rent, ok := services.CleanNumber(parts[1])
	if !ok || rent < 0 {
		return 0
	}
	return rent
}

// resolveTotalPages reads the results counter from the first catalog page
// and computes the page count for the fan-out. The counter's last
// whitespace-delimited token is the total listing count.
func resolveTotalPages(html string, pageSize int) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, fmt.Errorf("parse first page: %w", err)
	}

	text := strings.TrimSpace(doc.Find(itemsCounterSelector).First().Text())
	if text == "" {
		return 0, ErrNoPagination
	}

	fields := strings.Fields(text)
	count, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, fmt.Errorf("%w: counter text %q", ErrNoPagination, text)
	}

	return (count + pageSize - 1) / pageSize, nil
}
