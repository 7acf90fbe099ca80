package comps

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"compsengine/server/internal/models"
)

// Comps below this count get the limited-sample wording.
const confidentSampleSize = 5

// BuildRecommendation composes the pricing recommendation from strictly
// ordered clauses. A clause is appended only when its inputs are present, so
// thin data yields a shorter text instead of a sentence with holes.
func BuildRecommendation(subject *models.Subject, m models.MarketMetrics) string {
	var parts []string

	switch {
	case m.CompCount == 0:
		parts = append(parts, "No comparable sales data is available for this property.")
		if subject.EstimatedValue != nil {
			parts = append(parts, fmt.Sprintf(
				"The valuation model estimates its value at %s, which can serve as a fallback reference point.",
				formatDollars(*subject.EstimatedValue)))
		}
	case m.CompCount < confidentSampleSize:
		parts = append(parts, fmt.Sprintf(
			"Only %d comparable sales were found, so confidence in this estimate is limited and deeper market research is recommended.",
			m.CompCount))
		if m.MedianPrice != nil {
			parts = append(parts, fmt.Sprintf(
				"The median comparable sale price is %s.", formatDollars(*m.MedianPrice)))
		}
	default:
		if m.MedianPrice != nil {
			parts = append(parts, fmt.Sprintf(
				"Based on %d comparable sales, the estimated market value is %s.",
				m.CompCount, formatDollars(*m.MedianPrice)))
		}
	}

	if m.PositionLabel != nil && m.PositionPct != nil && subject.ListPrice != nil {
		listPrice := formatDollars(*subject.ListPrice)
		switch *m.PositionLabel {
		case models.PositionAtMarket:
			parts = append(parts, fmt.Sprintf("The list price of %s is in line with the market.", listPrice))
		case models.PositionAboveMarket:
			parts = append(parts, fmt.Sprintf("The list price of %s is %s%% above market.",
				listPrice, formatPct(math.Abs(*m.PositionPct))))
		case models.PositionBelowMarket:
			parts = append(parts, fmt.Sprintf("The list price of %s is %s%% below market.",
				listPrice, formatPct(math.Abs(*m.PositionPct))))
		}
	}

	if m.ModelDivergencePct != nil && subject.EstimatedValue != nil {
		direction := "above"
		if *m.ModelDivergencePct < 0 {
			direction = "below"
		}
		parts = append(parts, fmt.Sprintf(
			"The valuation model estimate of %s is %s%% %s the comparable sales average.",
			formatDollars(*subject.EstimatedValue),
			formatPct(math.Abs(*m.ModelDivergencePct)), direction))
	}

	return strings.Join(parts, " ")
}

// BuildVoiceSummary produces the text-to-speech variant: a handful of short
// clauses with spoken units and no nested punctuation. Either metrics block
// may be nil when the caller's view does not cover it.
func BuildVoiceSummary(sale *models.MarketMetrics, rental *models.RentalMetrics) string {
	var parts []string

	if sale != nil {
		if sale.CompCount == 0 {
			parts = append(parts, "No comparable sales were found for this property.")
		} else {
			clause := fmt.Sprintf("Found %d comparable sales", sale.CompCount)
			if sale.MedianPrice != nil {
				clause += fmt.Sprintf(" with a median price of %s", speakDollars(*sale.MedianPrice))
			}
			parts = append(parts, clause+".")

			if sale.PositionLabel != nil && sale.PositionPct != nil && *sale.PositionLabel != models.PositionAtMarket {
				direction := "above"
				if *sale.PositionLabel == models.PositionBelowMarket {
					direction = "below"
				}
				parts = append(parts, fmt.Sprintf("The list price is %s percent %s market.",
					formatPct(math.Abs(*sale.PositionPct)), direction))
			}

			if sale.TrendPct != nil &&
				(sale.TrendLabel == models.TrendAppreciating || sale.TrendLabel == models.TrendDepreciating) {
				direction := "up"
				if sale.TrendLabel == models.TrendDepreciating {
					direction = "down"
				}
				parts = append(parts, fmt.Sprintf("Prices are trending %s %s percent.",
					direction, formatPct(math.Abs(*sale.TrendPct))))
			}
		}
	}

	if rental != nil && rental.CompCount > 0 {
		clause := fmt.Sprintf("Found %d comparable rentals", rental.CompCount)
		if rental.MedianRent != nil {
			clause += fmt.Sprintf(" with a median rent of %s a month", speakDollars(*rental.MedianRent))
		}
		parts = append(parts, clause+".")
	}

	if len(parts) == 0 {
		return "No comparable market data was found for this property."
	}
	return strings.Join(parts, " ")
}

// formatDollars renders a dollar amount with thousands separators, for the
// written recommendation.
func formatDollars(v float64) string {
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return "$" + sign + b.String()
}

// speakDollars renders a dollar amount the way a person would say it, so the
// voice line carries no digit-group punctuation.
func speakDollars(v float64) string {
	switch {
	case v >= 1e6:
		return trimZeros(v/1e6, 1) + " million dollars"
	case v >= 1e5:
		return trimZeros(v/1e3, 0) + " thousand dollars"
	default:
		return strconv.FormatFloat(math.Round(v), 'f', -1, 64) + " dollars"
	}
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func trimZeros(v float64, decimals int) string {
	scale := math.Pow(10, float64(decimals))
	return strconv.FormatFloat(math.Round(v*scale)/scale, 'f', -1, 64)
}
