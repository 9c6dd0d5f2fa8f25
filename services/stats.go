package services

import (
	"fmt"
	"sort"
	"strings"

	"otodom-scraper/models"
	"otodom-scraper/utils"
)

type StatsService struct {
	logger *utils.Logger
}

func NewStatsService(logger *utils.Logger) *StatsService {
	return &StatsService{logger: logger}
}

// Generate computes aggregates over a city's stored flats.
func (s *StatsService) Generate(flats []*models.Flat) *models.StatsReport {
	report := &models.StatsReport{
		FlatsByRooms: make(map[string]int),
	}

	if len(flats) == 0 {
		return report
	}

	report.TotalFlats = len(flats)
	report.MinTotalPrice = flats[0].TotalPrice
	report.MaxTotalPrice = flats[0].TotalPrice

	var priceSum, ppmSum, surfaceSum float64
	for _, f := range flats {
		priceSum += f.TotalPrice
		ppmSum += f.PricePerMeter
		surfaceSum += f.Surface

		if f.TotalPrice < report.MinTotalPrice {
			report.MinTotalPrice = f.TotalPrice
		}
		if f.TotalPrice >= report.MaxTotalPrice {
			report.MaxTotalPrice = f.TotalPrice
			report.MostExpensive = f
		}
		if f.Rooms != "" {
			report.FlatsByRooms[f.Rooms]++
		}
	}

	n := float64(len(flats))
	report.AvgTotalPrice = round2(priceSum / n)
	report.AvgPricePerMeter = round2(ppmSum / n)
	report.AvgSurface = round2(surfaceSum / n)

	return report
}

// Print renders the report to stdout.
func (s *StatsService) Print(city string, r *models.StatsReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n%s\n", sep)
	fmt.Printf("  FLAT MARKET STATS — %s\n", strings.ToUpper(city))
	fmt.Printf("%s\n\n", sep)

	fmt.Printf("  Overview\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Stored flats : %d\n", r.TotalFlats)
	fmt.Println()

	fmt.Printf("  Total Price (zł)\n")
	fmt.Printf("  %s\n", thin)
	if r.TotalFlats > 0 {
		fmt.Printf("  Average : %.2f\n", r.AvgTotalPrice)
		fmt.Printf("  Minimum : %.2f\n", r.MinTotalPrice)
		fmt.Printf("  Maximum : %.2f\n", r.MaxTotalPrice)
		fmt.Printf("  Avg zł/m² : %.2f\n", r.AvgPricePerMeter)
		fmt.Printf("  Avg surface : %.2f m²\n", r.AvgSurface)
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	if r.MostExpensive != nil {
		fmt.Printf("  Most Expensive Flat\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostExpensive.Title, 50))
		fmt.Printf("  Address : %s\n", truncate(r.MostExpensive.Address, 50))
		fmt.Printf("  Price   : %.0f zł\n", r.MostExpensive.TotalPrice)
		fmt.Println()
	}

	fmt.Printf("  Flats by Room Count\n")
	fmt.Printf("  %s\n", thin)
	if len(r.FlatsByRooms) == 0 {
		fmt.Printf("  No room data\n")
	} else {
		type roomCount struct {
			rooms string
			count int
		}
		var rooms []roomCount
		for k, v := range r.FlatsByRooms {
			rooms = append(rooms, roomCount{k, v})
		}
		sort.Slice(rooms, func(i, j int) bool {
			return rooms[i].count > rooms[j].count
		})
		for _, rc := range rooms {
			bar := strings.Repeat("█", rc.count)
			fmt.Printf("  %-20s %s (%d)\n", truncate(rc.rooms, 18), bar, rc.count)
		}
	}

	fmt.Printf("\n%s\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
