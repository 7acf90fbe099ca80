package comps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"compsengine/server/config"
	"compsengine/server/internal/models"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Comps.SelfHistoryScore = 0.5
	cfg.Comps.SiblingFloor = 0.3
	cfg.Comps.TrendBandPct = 2
	cfg.Comps.PositionBandPct = 5
	cfg.Comps.MinTrendSamples = 3
	cfg.Comps.MaxResearchComps = 20
	cfg.Comps.MaxSiblingCandidates = 50
	cfg.Comps.MaxSiblings = 10
	return cfg
}

func saleComp(price float64, day string) models.CompSale {
	c := models.CompSale{
		SalePrice:       &price,
		SimilarityScore: 0.8,
		Source:          models.SourceDeepResearch,
	}
	if day != "" {
		d, _ := time.Parse("2006-01-02", day)
		c.SaleDate = &d
	}
	return c
}

func TestComputeSaleMetrics_EmptySet(t *testing.T) {
	m := ComputeSaleMetrics(nil, fptr(850000), fptr(900000), testConfig())

	assert.Equal(t, 0, m.CompCount)
	assert.Nil(t, m.AvgPrice)
	assert.Nil(t, m.MedianPrice)
	assert.Nil(t, m.AvgPricePerSqft)
	assert.Nil(t, m.MedianPricePerSqft)
	assert.Nil(t, m.PriceMin)
	assert.Nil(t, m.PriceMax)
	assert.Equal(t, models.TrendInsufficientData, m.TrendLabel)
	assert.Nil(t, m.TrendPct)
	assert.Nil(t, m.PositionLabel)
	assert.Nil(t, m.PositionPct)
	assert.Nil(t, m.ModelDivergence)
	assert.Nil(t, m.ModelDivergencePct)
}

func TestComputeSaleMetrics_CentralTendency(t *testing.T) {
	saleComps := []models.CompSale{
		saleComp(400000, ""),
		saleComp(500000, ""),
		saleComp(600000, ""),
	}
	m := ComputeSaleMetrics(saleComps, nil, nil, testConfig())

	assert.Equal(t, 3, m.CompCount)
	assert.InDelta(t, 500000, *m.AvgPrice, 1e-6)
	assert.InDelta(t, 500000, *m.MedianPrice, 1e-6)
	assert.InDelta(t, 400000, *m.PriceMin, 1e-6)
	assert.InDelta(t, 600000, *m.PriceMax, 1e-6)

	// No areas, so per-sqft stays nil
	assert.Nil(t, m.AvgPricePerSqft)
	assert.Nil(t, m.MedianPricePerSqft)
}

func TestComputeSaleMetrics_MedianEvenCount(t *testing.T) {
	saleComps := []models.CompSale{
		saleComp(400000, ""),
		saleComp(500000, ""),
		saleComp(600000, ""),
		saleComp(900000, ""),
	}
	m := ComputeSaleMetrics(saleComps, nil, nil, testConfig())
	assert.InDelta(t, 550000, *m.MedianPrice, 1e-6)
}

func TestComputeSaleMetrics_PricePerSqftOnlyOverCompleteComps(t *testing.T) {
	withArea := saleComp(500000, "")
	withArea.LivingArea = fptr(1000)
	zeroArea := saleComp(300000, "")
	zeroArea.LivingArea = fptr(0)
	saleComps := []models.CompSale{withArea, zeroArea, saleComp(700000, "")}

	m := ComputeSaleMetrics(saleComps, nil, nil, testConfig())
	assert.InDelta(t, 500, *m.AvgPricePerSqft, 1e-6)
	assert.InDelta(t, 500, *m.MedianPricePerSqft, 1e-6)
}

func TestClassifyTrend_InsufficientData(t *testing.T) {
	saleComps := []models.CompSale{
		saleComp(500000, "2024-01-01"),
		saleComp(510000, "2024-06-01"),
		saleComp(520000, ""), // undated, does not count toward the minimum
	}
	m := ComputeSaleMetrics(saleComps, nil, nil, testConfig())
	assert.Equal(t, models.TrendInsufficientData, m.TrendLabel)
	assert.Nil(t, m.TrendPct)
}

func TestClassifyTrend_ExactBandBoundaryIsStable(t *testing.T) {
	saleComps := []models.CompSale{
		saleComp(100000, "2024-01-01"),
		saleComp(100000, "2024-02-01"),
		saleComp(102000, "2024-07-01"),
		saleComp(102000, "2024-08-01"),
	}
	m := ComputeSaleMetrics(saleComps, nil, nil, testConfig())
	assert.Equal(t, models.TrendStable, m.TrendLabel)
	assert.InDelta(t, 2.0, *m.TrendPct, 1e-9)
}

func TestClassifyTrend_AboveBandAppreciates(t *testing.T) {
	saleComps := []models.CompSale{
		saleComp(100000, "2024-01-01"),
		saleComp(100000, "2024-02-01"),
		saleComp(103000, "2024-07-01"),
		saleComp(103000, "2024-08-01"),
	}
	m := ComputeSaleMetrics(saleComps, nil, nil, testConfig())
	assert.Equal(t, models.TrendAppreciating, m.TrendLabel)
	assert.InDelta(t, 3.0, *m.TrendPct, 1e-9)
}

func TestClassifyTrend_BelowBandDepreciates(t *testing.T) {
	saleComps := []models.CompSale{
		saleComp(100000, "2024-01-01"),
		saleComp(100000, "2024-02-01"),
		saleComp(97000, "2024-07-01"),
		saleComp(97000, "2024-08-01"),
	}
	m := ComputeSaleMetrics(saleComps, nil, nil, testConfig())
	assert.Equal(t, models.TrendDepreciating, m.TrendLabel)
	assert.InDelta(t, -3.0, *m.TrendPct, 1e-9)

	// Exactly -2% is still stable
	saleComps = []models.CompSale{
		saleComp(100000, "2024-01-01"),
		saleComp(100000, "2024-02-01"),
		saleComp(98000, "2024-07-01"),
		saleComp(98000, "2024-08-01"),
	}
	m = ComputeSaleMetrics(saleComps, nil, nil, testConfig())
	assert.Equal(t, models.TrendStable, m.TrendLabel)
	assert.InDelta(t, -2.0, *m.TrendPct, 1e-9)
}

func TestClassifyTrend_TenCompsSplitFiveFive(t *testing.T) {
	var saleComps []models.CompSale
	olderDays := []string{"2023-01-10", "2023-02-10", "2023-03-10", "2023-04-10", "2023-05-10"}
	newerDays := []string{"2023-08-10", "2023-09-10", "2023-10-10", "2023-11-10", "2023-12-10"}
	for _, day := range olderDays {
		saleComps = append(saleComps, saleComp(100000, day))
	}
	for _, day := range newerDays {
		saleComps = append(saleComps, saleComp(103600, day))
	}

	m := ComputeSaleMetrics(saleComps, nil, nil, testConfig())
	assert.Equal(t, models.TrendAppreciating, m.TrendLabel)
	assert.InDelta(t, 3.6, *m.TrendPct, 0.01)
}

func TestClassifyTrend_OddCountNewerHalfLarger(t *testing.T) {
	// 5 comps: older half is 2, newer half is 3
	saleComps := []models.CompSale{
		saleComp(100000, "2024-01-01"),
		saleComp(100000, "2024-02-01"),
		saleComp(110000, "2024-06-01"),
		saleComp(110000, "2024-07-01"),
		saleComp(110000, "2024-08-01"),
	}
	m := ComputeSaleMetrics(saleComps, nil, nil, testConfig())
	assert.Equal(t, models.TrendAppreciating, m.TrendLabel)
	assert.InDelta(t, 10.0, *m.TrendPct, 1e-9)
}

func TestClassifyPosition_AtMarketWhenEqual(t *testing.T) {
	saleComps := []models.CompSale{
		saleComp(800000, ""),
		saleComp(850000, ""),
		saleComp(900000, ""),
	}
	m := ComputeSaleMetrics(saleComps, fptr(850000), nil, testConfig())
	assert.Equal(t, models.PositionAtMarket, *m.PositionLabel)
	assert.InDelta(t, 0.0, *m.PositionPct, 1e-9)
}

func TestClassifyPosition_ExactBandBoundaryIsAtMarket(t *testing.T) {
	saleComps := []models.CompSale{
		saleComp(800000, ""),
		saleComp(800000, ""),
		saleComp(800000, ""),
	}

	m := ComputeSaleMetrics(saleComps, fptr(840000), nil, testConfig())
	assert.Equal(t, models.PositionAtMarket, *m.PositionLabel)
	assert.InDelta(t, 5.0, *m.PositionPct, 1e-9)

	m = ComputeSaleMetrics(saleComps, fptr(840001), nil, testConfig())
	assert.Equal(t, models.PositionAboveMarket, *m.PositionLabel)

	m = ComputeSaleMetrics(saleComps, fptr(760000), nil, testConfig())
	assert.Equal(t, models.PositionAtMarket, *m.PositionLabel)
	assert.InDelta(t, -5.0, *m.PositionPct, 1e-9)

	m = ComputeSaleMetrics(saleComps, fptr(759999), nil, testConfig())
	assert.Equal(t, models.PositionBelowMarket, *m.PositionLabel)
}

func TestClassifyPosition_MissingListPrice(t *testing.T) {
	saleComps := []models.CompSale{saleComp(800000, "")}
	m := ComputeSaleMetrics(saleComps, nil, nil, testConfig())
	assert.Nil(t, m.PositionLabel)
	assert.Nil(t, m.PositionPct)
}

func TestModelDivergence(t *testing.T) {
	saleComps := []models.CompSale{
		saleComp(800000, ""),
		saleComp(900000, ""),
	}

	m := ComputeSaleMetrics(saleComps, nil, fptr(900000), testConfig())
	assert.InDelta(t, 50000, *m.ModelDivergence, 1e-6)
	assert.InDelta(t, 5.882, *m.ModelDivergencePct, 0.001)

	// Estimate below the comp mean keeps the dollar figure absolute
	m = ComputeSaleMetrics(saleComps, nil, fptr(800000), testConfig())
	assert.InDelta(t, 50000, *m.ModelDivergence, 1e-6)
	assert.InDelta(t, -5.882, *m.ModelDivergencePct, 0.001)

	// No estimate, no divergence
	m = ComputeSaleMetrics(saleComps, nil, nil, testConfig())
	assert.Nil(t, m.ModelDivergence)
	assert.Nil(t, m.ModelDivergencePct)
}

func TestComputeRentalMetrics(t *testing.T) {
	rent1, rent2, rent3 := 2200.0, 2400.0, 2900.0
	area := 1000.0
	rentals := []models.CompRental{
		{MonthlyRent: &rent1, LivingArea: &area},
		{MonthlyRent: &rent2},
		{MonthlyRent: &rent3},
	}

	m := ComputeRentalMetrics(rentals)
	assert.Equal(t, 3, m.CompCount)
	assert.InDelta(t, 2500, *m.AvgRent, 1e-6)
	assert.InDelta(t, 2400, *m.MedianRent, 1e-6)
	assert.InDelta(t, 2200, *m.RentMin, 1e-6)
	assert.InDelta(t, 2900, *m.RentMax, 1e-6)
	assert.InDelta(t, 2.2, *m.AvgRentPerSqft, 1e-6)
}

func TestComputeRentalMetrics_Empty(t *testing.T) {
	m := ComputeRentalMetrics(nil)
	assert.Equal(t, 0, m.CompCount)
	assert.Nil(t, m.AvgRent)
	assert.Nil(t, m.MedianRent)
	assert.Nil(t, m.RentMin)
	assert.Nil(t, m.RentMax)
}
