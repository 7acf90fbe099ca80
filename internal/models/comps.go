package models

import "time"

// CompSource tags where a comp candidate came from, so consumers can filter
// or weight by provenance without string matching on free text.
type CompSource string

const (
	SourceDeepResearch     CompSource = "deep_research"
	SourceValuationHistory CompSource = "valuation_history"
	SourcePortfolio        CompSource = "portfolio"
)

// Subject is the property being valued, rebuilt fresh on every request from
// the persisted property and its latest valuation enrichment.
type Subject struct {
	PropertyID     int64    `json:"property_id"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	ListPrice      *float64 `json:"list_price"`
	Bedrooms       *int     `json:"bedrooms"`
	Bathrooms      *float64 `json:"bathrooms"`
	LivingArea     *float64 `json:"living_area"`
	PropertyType   string   `json:"property_type"`
	EstimatedValue *float64 `json:"estimated_value"`
	RentEstimate   *float64 `json:"rent_estimate"`
}

// CompSale is one comparable sale candidate, normalized across sources.
type CompSale struct {
	Address         string     `json:"address"`
	SalePrice       *float64   `json:"sale_price"`
	SaleDate        *time.Time `json:"sale_date"`
	DistanceMiles   *float64   `json:"distance_miles"`
	LivingArea      *float64   `json:"living_area"`
	Bedrooms        *int       `json:"bedrooms"`
	Bathrooms       *float64   `json:"bathrooms"`
	YearBuilt       *int       `json:"year_built"`
	SimilarityScore float64    `json:"similarity_score"`
	Source          CompSource `json:"source"`
	SourceRef       *string    `json:"source_ref"`
}

// CompRental is one comparable rental candidate.
type CompRental struct {
	Address         string     `json:"address"`
	MonthlyRent     *float64   `json:"monthly_rent"`
	ListingDate     *time.Time `json:"listing_date"`
	DistanceMiles   *float64   `json:"distance_miles"`
	LivingArea      *float64   `json:"living_area"`
	Bedrooms        *int       `json:"bedrooms"`
	Bathrooms       *float64   `json:"bathrooms"`
	YearBuilt       *int       `json:"year_built"`
	SimilarityScore float64    `json:"similarity_score"`
	Source          CompSource `json:"source"`
	SourceRef       *string    `json:"source_ref"`
}

// Trend and market-position labels.
const (
	TrendAppreciating     = "appreciating"
	TrendDepreciating     = "depreciating"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"

	PositionAboveMarket = "above_market"
	PositionAtMarket    = "at_market"
	PositionBelowMarket = "below_market"
)

// MarketMetrics is the ephemeral aggregate over one sale-comp set. Every
// derived figure is a pointer: nil means its inputs were missing or its
// denominator would have been zero, never that the value was zero.
type MarketMetrics struct {
	CompCount          int      `json:"comp_count"`
	AvgPrice           *float64 `json:"avg_price"`
	MedianPrice        *float64 `json:"median_price"`
	AvgPricePerSqft    *float64 `json:"avg_price_per_sqft"`
	MedianPricePerSqft *float64 `json:"median_price_per_sqft"`
	PriceMin           *float64 `json:"price_min"`
	PriceMax           *float64 `json:"price_max"`
	TrendLabel         string   `json:"trend_label"`
	TrendPct           *float64 `json:"trend_pct"`
	PositionLabel      *string  `json:"position_label"`
	PositionPct        *float64 `json:"position_pct"`
	ModelDivergence    *float64 `json:"model_divergence"`
	ModelDivergencePct *float64 `json:"model_divergence_pct"`
}

// RentalMetrics is the central-tendency aggregate over one rental-comp set.
// Trend and market position do not apply to an active-listing rent snapshot.
type RentalMetrics struct {
	CompCount         int      `json:"comp_count"`
	AvgRent           *float64 `json:"avg_rent"`
	MedianRent        *float64 `json:"median_rent"`
	AvgRentPerSqft    *float64 `json:"avg_rent_per_sqft"`
	MedianRentPerSqft *float64 `json:"median_rent_per_sqft"`
	RentMin           *float64 `json:"rent_min"`
	RentMax           *float64 `json:"rent_max"`
}

// SourceCounts reports how many candidates each source contributed.
type SourceCounts struct {
	DeepResearch     int `json:"deep_research"`
	ValuationHistory int `json:"valuation_history"`
	Portfolio        int `json:"portfolio"`
}

// CompsReport is the full dashboard payload.
type CompsReport struct {
	Subject        *Subject      `json:"subject"`
	SaleComps      []CompSale    `json:"sale_comps"`
	RentalComps    []CompRental  `json:"rental_comps"`
	PortfolioComps []CompSale    `json:"portfolio_comps"`
	SaleMetrics    MarketMetrics `json:"sale_metrics"`
	RentalMetrics  RentalMetrics `json:"rental_metrics"`
	SourceCounts   SourceCounts  `json:"source_counts"`
	Recommendation string        `json:"recommendation"`
	VoiceSummary   string        `json:"voice_summary"`
}

// SalesReport is the sales-only payload.
type SalesReport struct {
	SaleComps      []CompSale    `json:"sale_comps"`
	SaleMetrics    MarketMetrics `json:"sale_metrics"`
	Recommendation string        `json:"recommendation"`
	VoiceSummary   string        `json:"voice_summary"`
}

// RentalsReport is the rentals-only payload.
type RentalsReport struct {
	RentalComps   []CompRental  `json:"rental_comps"`
	RentalMetrics RentalMetrics `json:"rental_metrics"`
	VoiceSummary  string        `json:"voice_summary"`
}
