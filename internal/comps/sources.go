package comps

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"compsengine/server/internal/geo"
	"compsengine/server/internal/models"
)

// loadResearch pulls the ranked comp sales and rentals from the deep-research
// record matching the subject's address. No matching record is a normal
// outcome and yields empty lists.
func (e *Engine) loadResearch(subject *models.Subject) ([]models.CompSale, []models.CompRental, error) {
	sales := []models.CompSale{}
	rentals := []models.CompRental{}

	record, err := e.db.FindResearchByAddress(subject.Address)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return sales, rentals, nil
	}

	rawSales, err := e.db.GetResearchCompSales(record.ID, e.cfg.Comps.MaxResearchComps)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range rawSales {
		price := r.SalePrice
		sales = append(sales, models.CompSale{
			Address:         r.Address,
			SalePrice:       &price,
			SaleDate:        parseDay(r.SaleDate),
			DistanceMiles:   r.DistanceMiles,
			LivingArea:      r.LivingArea,
			Bedrooms:        r.Bedrooms,
			Bathrooms:       r.Bathrooms,
			YearBuilt:       r.YearBuilt,
			SimilarityScore: r.SimilarityScore,
			Source:          models.SourceDeepResearch,
			SourceRef:       r.SourceRef,
		})
	}

	rawRentals, err := e.db.GetResearchCompRentals(record.ID, e.cfg.Comps.MaxResearchComps)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range rawRentals {
		rent := r.MonthlyRent
		rentals = append(rentals, models.CompRental{
			Address:         r.Address,
			MonthlyRent:     &rent,
			ListingDate:     parseDay(r.ListingDate),
			DistanceMiles:   r.DistanceMiles,
			LivingArea:      r.LivingArea,
			Bedrooms:        r.Bedrooms,
			Bathrooms:       r.Bathrooms,
			YearBuilt:       r.YearBuilt,
			SimilarityScore: r.SimilarityScore,
			Source:          models.SourceDeepResearch,
			SourceRef:       r.SourceRef,
		})
	}

	return sales, rentals, nil
}

// historyComps turns the subject's own past sales from the valuation
// timeline into low-confidence comp candidates. The timeline is provider
// JSON of unknown quality; anything malformed yields an empty list.
func historyComps(subject *models.Subject, enrichment *models.ValuationEnrichment, score float64, logger *logrus.Logger) []models.CompSale {
	comps := []models.CompSale{}
	if enrichment == nil || enrichment.PriceHistory == "" {
		return comps
	}

	var events []models.PriceEvent
	if err := json.Unmarshal([]byte(enrichment.PriceHistory), &events); err != nil {
		logger.WithError(err).WithField("property_id", subject.PropertyID).
			Warn("Skipping malformed price history")
		return comps
	}

	zero := 0.0
	for _, ev := range events {
		if !strings.Contains(strings.ToLower(ev.Event), "sold") {
			continue
		}
		if ev.Price == nil || *ev.Price <= 0 {
			continue
		}
		price := *ev.Price
		comps = append(comps, models.CompSale{
			Address:         subject.Address,
			SalePrice:       &price,
			SaleDate:        parseDay(&ev.Date),
			DistanceMiles:   &zero,
			LivingArea:      ev.Area,
			Bedrooms:        ev.Beds,
			Bathrooms:       ev.Baths,
			SimilarityScore: score,
			Source:          models.SourceValuationHistory,
		})
	}
	return comps
}

// loadPortfolio scores same-market active siblings against the subject and
// keeps the best ones above the similarity floor.
func (e *Engine) loadPortfolio(prop *models.Property) ([]models.CompSale, error) {
	siblings, err := e.db.GetActiveSiblings(prop.City, prop.State, prop.ID, e.cfg.Comps.MaxSiblingCandidates)
	if err != nil {
		return nil, err
	}

	subjectFeatures := propertyFeatures(prop)
	comps := []models.CompSale{}
	for _, sib := range siblings {
		score := Similarity(subjectFeatures, propertyFeatures(&sib))
		if score < e.cfg.Comps.SiblingFloor {
			continue
		}

		var distance *float64
		if prop.Latitude != nil && prop.Longitude != nil && sib.Latitude != nil && sib.Longitude != nil {
			d := geo.MilesBetween(*prop.Latitude, *prop.Longitude, *sib.Latitude, *sib.Longitude)
			distance = &d
		}

		comps = append(comps, models.CompSale{
			Address:         sib.Address,
			SalePrice:       sib.ListPrice,
			DistanceMiles:   distance,
			LivingArea:      sib.LivingArea,
			Bedrooms:        sib.Bedrooms,
			Bathrooms:       sib.Bathrooms,
			YearBuilt:       sib.YearBuilt,
			SimilarityScore: score,
			Source:          models.SourcePortfolio,
		})
	}

	sort.SliceStable(comps, func(i, j int) bool {
		return comps[i].SimilarityScore > comps[j].SimilarityScore
	})
	if len(comps) > e.cfg.Comps.MaxSiblings {
		comps = comps[:e.cfg.Comps.MaxSiblings]
	}
	return comps, nil
}

// mergeSales combines research comps and self-history comps into one list
// capped at limit, best match first. The stable sort keeps source order on
// score ties so repeated runs produce identical output.
func mergeSales(research, history []models.CompSale, limit int) []models.CompSale {
	merged := make([]models.CompSale, 0, len(research)+len(history))
	merged = append(merged, research...)
	merged = append(merged, history...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].SimilarityScore > merged[j].SimilarityScore
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func propertyFeatures(p *models.Property) Features {
	return Features{
		Price:      p.ListPrice,
		Bedrooms:   p.Bedrooms,
		Bathrooms:  p.Bathrooms,
		LivingArea: p.LivingArea,
	}
}

// parseDay parses a provider YYYY-MM-DD date, tolerating absence and junk.
func parseDay(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}
