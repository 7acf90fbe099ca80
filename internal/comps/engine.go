package comps

import (
	"database/sql"
	"errors"
	"os"

	"github.com/sirupsen/logrus"

	"compsengine/server/config"
	"compsengine/server/internal/database"
	"compsengine/server/internal/models"
)

// ErrPropertyNotFound is the engine's only fatal condition: the subject
// property id does not resolve. Everything else degrades to partial output.
var ErrPropertyNotFound = errors.New("property not found")

// Engine builds comparable-market reports. It is stateless: every call loads
// fresh records, computes in memory, and writes nothing back, so concurrent
// calls need no coordination.
type Engine struct {
	db     *database.Database
	cfg    *config.Config
	logger *logrus.Logger
}

func NewEngine(db *database.Database, cfg *config.Config, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Engine{
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

// resolveSubject loads the property record and its latest valuation
// enrichment. The enrichment may be nil; the property may not.
func (e *Engine) resolveSubject(propertyID int64) (*models.Property, *models.Subject, *models.ValuationEnrichment, error) {
	prop, err := e.db.GetProperty(propertyID)
	if err == sql.ErrNoRows {
		return nil, nil, nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, nil, nil, err
	}

	enrichment, err := e.db.GetLatestEnrichment(propertyID)
	if err != nil {
		return nil, nil, nil, err
	}

	subject := &models.Subject{
		PropertyID:   prop.ID,
		Address:      prop.Address,
		City:         prop.City,
		State:        prop.State,
		ListPrice:    prop.ListPrice,
		Bedrooms:     prop.Bedrooms,
		Bathrooms:    prop.Bathrooms,
		LivingArea:   prop.LivingArea,
		PropertyType: prop.PropertyType,
	}
	if enrichment != nil {
		subject.EstimatedValue = enrichment.EstimatedValue
		subject.RentEstimate = enrichment.RentEstimate
	}

	return prop, subject, enrichment, nil
}

// BuildReport produces the full comps dashboard for a property.
func (e *Engine) BuildReport(propertyID int64) (*models.CompsReport, error) {
	prop, subject, enrichment, err := e.resolveSubject(propertyID)
	if err != nil {
		return nil, err
	}

	researchSales, researchRentals, err := e.loadResearch(subject)
	if err != nil {
		return nil, err
	}
	history := historyComps(subject, enrichment, e.cfg.Comps.SelfHistoryScore, e.logger)
	portfolio, err := e.loadPortfolio(prop)
	if err != nil {
		return nil, err
	}

	merged := mergeSales(researchSales, history, e.cfg.Comps.MaxResearchComps)
	saleMetrics := ComputeSaleMetrics(merged, subject.ListPrice, subject.EstimatedValue, e.cfg)
	rentalMetrics := ComputeRentalMetrics(researchRentals)

	return &models.CompsReport{
		Subject:        subject,
		SaleComps:      merged,
		RentalComps:    researchRentals,
		PortfolioComps: portfolio,
		SaleMetrics:    saleMetrics,
		RentalMetrics:  rentalMetrics,
		SourceCounts: models.SourceCounts{
			DeepResearch:     len(researchSales),
			ValuationHistory: len(history),
			Portfolio:        len(portfolio),
		},
		Recommendation: BuildRecommendation(subject, saleMetrics),
		VoiceSummary:   BuildVoiceSummary(&saleMetrics, &rentalMetrics),
	}, nil
}

// BuildSalesReport produces the sales-only view.
func (e *Engine) BuildSalesReport(propertyID int64) (*models.SalesReport, error) {
	_, subject, enrichment, err := e.resolveSubject(propertyID)
	if err != nil {
		return nil, err
	}

	researchSales, _, err := e.loadResearch(subject)
	if err != nil {
		return nil, err
	}
	history := historyComps(subject, enrichment, e.cfg.Comps.SelfHistoryScore, e.logger)

	merged := mergeSales(researchSales, history, e.cfg.Comps.MaxResearchComps)
	saleMetrics := ComputeSaleMetrics(merged, subject.ListPrice, subject.EstimatedValue, e.cfg)

	return &models.SalesReport{
		SaleComps:      merged,
		SaleMetrics:    saleMetrics,
		Recommendation: BuildRecommendation(subject, saleMetrics),
		VoiceSummary:   BuildVoiceSummary(&saleMetrics, nil),
	}, nil
}

// BuildRentalsReport produces the rentals-only view.
func (e *Engine) BuildRentalsReport(propertyID int64) (*models.RentalsReport, error) {
	_, subject, _, err := e.resolveSubject(propertyID)
	if err != nil {
		return nil, err
	}

	_, researchRentals, err := e.loadResearch(subject)
	if err != nil {
		return nil, err
	}
	rentalMetrics := ComputeRentalMetrics(researchRentals)

	return &models.RentalsReport{
		RentalComps:   researchRentals,
		RentalMetrics: rentalMetrics,
		VoiceSummary:  BuildVoiceSummary(nil, &rentalMetrics),
	}, nil
}
