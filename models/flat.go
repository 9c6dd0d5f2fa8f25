package models

// Flat is one scraped property listing, ready for storage. Link is the
// natural key — a flat is stored at most once per distinct link.
type Flat struct {
	ID            int64
	Title         string
	Address       string
	Link          string
	Rooms         string
	Surface       float64
	PricePerMeter float64
	TotalPrice    float64
	RentPrice     float64
}

// Region is the canonical (city, district, province) triple used to build
// the catalog URL. All three are lower-cased ASCII keys.
type Region struct {
	City     string
	District string
	Province string
}

// StatsReport holds the computed aggregates over a city's stored flats.
type StatsReport struct {
	TotalFlats       int
	AvgTotalPrice    float64
	MinTotalPrice    float64
	MaxTotalPrice    float64
	AvgPricePerMeter float64
	AvgSurface       float64
	FlatsByRooms     map[string]int
	MostExpensive    *Flat
}
