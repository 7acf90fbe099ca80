package comps

import (
	"math"
	"sort"
	"time"

	"compsengine/server/config"
	"compsengine/server/internal/models"
)

type datedPrice struct {
	date  time.Time
	price float64
}

// ComputeSaleMetrics aggregates a sale-comp set into a market snapshot.
// Every derived field is produced by a small pure function behind a nil
// guard: a figure is either computed from complete inputs or stays nil.
func ComputeSaleMetrics(saleComps []models.CompSale, listPrice, modelEstimate *float64, cfg *config.Config) models.MarketMetrics {
	m := models.MarketMetrics{
		CompCount:  len(saleComps),
		TrendLabel: models.TrendInsufficientData,
	}

	var prices, perSqft []float64
	var dated []datedPrice
	for _, c := range saleComps {
		if c.SalePrice == nil || *c.SalePrice <= 0 {
			continue
		}
		price := *c.SalePrice
		prices = append(prices, price)
		if c.LivingArea != nil && *c.LivingArea > 0 {
			perSqft = append(perSqft, price / *c.LivingArea)
		}
		if c.SaleDate != nil {
			dated = append(dated, datedPrice{date: *c.SaleDate, price: price})
		}
	}
	if len(prices) == 0 {
		return m
	}

	m.AvgPrice = ptr(mean(prices))
	m.MedianPrice = ptr(median(prices))
	lo, hi := minMax(prices)
	m.PriceMin = ptr(lo)
	m.PriceMax = ptr(hi)
	if len(perSqft) > 0 {
		m.AvgPricePerSqft = ptr(mean(perSqft))
		m.MedianPricePerSqft = ptr(median(perSqft))
	}

	m.TrendLabel, m.TrendPct = classifyTrend(dated, cfg.Comps.TrendBandPct, cfg.Comps.MinTrendSamples)
	m.PositionLabel, m.PositionPct = classifyPosition(listPrice, m.MedianPrice, cfg.Comps.PositionBandPct)
	m.ModelDivergence, m.ModelDivergencePct = modelDivergence(modelEstimate, m.AvgPrice)

	return m
}

// ComputeRentalMetrics aggregates a rental-comp set. Only central tendency
// applies; an active-listing rent snapshot has no trend or market position.
func ComputeRentalMetrics(rentalComps []models.CompRental) models.RentalMetrics {
	m := models.RentalMetrics{CompCount: len(rentalComps)}

	var rents, perSqft []float64
	for _, c := range rentalComps {
		if c.MonthlyRent == nil || *c.MonthlyRent <= 0 {
			continue
		}
		rent := *c.MonthlyRent
		rents = append(rents, rent)
		if c.LivingArea != nil && *c.LivingArea > 0 {
			perSqft = append(perSqft, rent / *c.LivingArea)
		}
	}
	if len(rents) == 0 {
		return m
	}

	m.AvgRent = ptr(mean(rents))
	m.MedianRent = ptr(median(rents))
	lo, hi := minMax(rents)
	m.RentMin = ptr(lo)
	m.RentMax = ptr(hi)
	if len(perSqft) > 0 {
		m.AvgRentPerSqft = ptr(mean(perSqft))
		m.MedianRentPerSqft = ptr(median(perSqft))
	}

	return m
}

// classifyTrend compares the mean price of the older half of the dated comps
// against the newer half. On odd counts the newer half gets the extra comp.
// A change of exactly the band percentage is still stable; only crossing it
// flips the label.
func classifyTrend(dated []datedPrice, bandPct float64, minSamples int) (string, *float64) {
	if len(dated) < minSamples {
		return models.TrendInsufficientData, nil
	}

	sorted := make([]datedPrice, len(dated))
	copy(sorted, dated)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].date.Before(sorted[j].date)
	})

	half := len(sorted) / 2
	olderMean := meanPrices(sorted[:half])
	newerMean := meanPrices(sorted[half:])
	if olderMean == 0 {
		return models.TrendInsufficientData, nil
	}

	change := (newerMean - olderMean) / olderMean * 100
	switch {
	case change > bandPct:
		return models.TrendAppreciating, &change
	case change < -bandPct:
		return models.TrendDepreciating, &change
	default:
		return models.TrendStable, &change
	}
}

// classifyPosition places the subject's list price relative to the comp
// median. Exactly on the band edge counts as at-market.
func classifyPosition(listPrice, medianPrice *float64, bandPct float64) (*string, *float64) {
	if listPrice == nil || medianPrice == nil || *medianPrice == 0 {
		return nil, nil
	}

	pct := (*listPrice - *medianPrice) / *medianPrice * 100
	label := models.PositionAtMarket
	switch {
	case pct > bandPct:
		label = models.PositionAboveMarket
	case pct < -bandPct:
		label = models.PositionBelowMarket
	}
	return &label, &pct
}

// modelDivergence reports how far the valuation-model estimate sits from the
// comp average, as absolute dollars and signed percent.
func modelDivergence(estimate, avgPrice *float64) (*float64, *float64) {
	if estimate == nil || avgPrice == nil || *avgPrice == 0 {
		return nil, nil
	}

	diff := *estimate - *avgPrice
	abs := math.Abs(diff)
	pct := diff / *avgPrice * 100
	return &abs, &pct
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func meanPrices(entries []datedPrice) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.price
	}
	return sum / float64(len(entries))
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func ptr(v float64) *float64 {
	return &v
}
