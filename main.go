package main

import (
	"context"
	"net/http"
	"os"

	"github.com/alecthomas/kong"

	"otodom-scraper/config"
	"otodom-scraper/geo"
	"otodom-scraper/scraper/otodom"
	"otodom-scraper/services"
	"otodom-scraper/storage"
	"otodom-scraper/utils"
)

var cli struct {
	City    string `arg:"" help:"City name to scrape data for."`
	Scrape  bool   `help:"Run the web scraper to collect data from Otodom."`
	MinArea int    `default:"0" help:"Minimum area in meters for filtering properties."`
	MaxArea int    `default:"1000" help:"Maximum area in meters for filtering properties."`
	Save    bool   `help:"Export the stored flats to a CSV file."`
	Stats   bool   `help:"Print aggregate statistics for the stored flats."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("otodom-scraper"),
		kong.Description("Collects Otodom property listings for a city and stores them in PostgreSQL."))

	cfg := config.Load()

	logger, err := utils.NewFileLogger(cfg.LogDir)
	if err != nil {
		logger = utils.NewLogger()
		logger.Warn("Log file unavailable (%v) — logging to console only", err)
	}
	defer logger.Close()

	logger.Info("=== Otodom Scraping System starting ===")
	logger.Info("Config — concurrency: %d | backoff: %v | area: %d–%d m²",
		cfg.MaxConcurrency, cfg.RateLimitBackoff(), cli.MinArea, cli.MaxArea)

	store, err := storage.NewPostgresStore(cfg.DSN(), logger)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout()}

	resolver := geo.NewNominatimResolver(httpClient, cfg.NominatimURL, logger)
	region := resolver.Resolve(ctx, cli.City)
	logger.Info("Location for %q — city: %s | district: %s | province: %s",
		cli.City, region.City, region.District, region.Province)

	if cli.Scrape {
		fetcher := otodom.NewFetcher(httpClient, cfg.RateLimitBackoff(), logger)
		scraper := otodom.New(cfg.BaseURL, otodom.Request{
			Region:  region,
			MinArea: cli.MinArea,
			MaxArea: cli.MaxArea,
		}, fetcher, store, logger)

		count, err := scraper.Run(ctx)
		if err != nil {
			logger.Error("Scraping failed: %v", err)
			os.Exit(1)
		}
		logger.Info("Scraping completed successfully. Flats persisted this run: %d", count)

		if total, err := store.Count(region.City); err == nil {
			logger.Info("Total flats in database for %s: %d", region.City, total)
		}
	}

	if cli.Save {
		flats, err := store.FetchAll(region.City)
		if err != nil {
			logger.Error("Failed to fetch flats for CSV export: %v", err)
			os.Exit(1)
		}
		csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			logger.Error("Failed to create CSV writer: %v", err)
			os.Exit(1)
		}
		defer csvWriter.Close()

		if err := csvWriter.Write(flats); err != nil {
			logger.Error("CSV export failed: %v", err)
		} else {
			logger.Info("Exported %d flats to %s", len(flats), cfg.CSVOutputPath)
		}
	}

	if cli.Stats {
		flats, err := store.FetchAll(region.City)
		if err != nil {
			logger.Error("Failed to fetch flats for stats: %v", err)
			os.Exit(1)
		}
		statsSvc := services.NewStatsService(logger)
		statsSvc.Print(region.City, statsSvc.Generate(flats))
	}
}
