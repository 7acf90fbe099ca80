package comps

import "math"

// Factor weights. These must stay in lockstep with the research pipeline,
// which precomputes scores for its own candidates with the same weights;
// portfolio siblings scored here have to be comparable to those.
const (
	weightPrice      = 0.4
	weightBedrooms   = 0.2
	weightBathrooms  = 0.1
	weightLivingArea = 0.3

	// Bed/bath differences of this many units or more score zero.
	countSpan = 3.0
)

// Features is the property feature vector the similarity score is computed
// over. Any field may be nil; missing fields drop out of the score instead
// of being assumed equal.
type Features struct {
	Price      *float64
	Bedrooms   *int
	Bathrooms  *float64
	LivingArea *float64
}

// Similarity returns a weighted similarity score in [0,1] between two
// feature vectors. Each factor contributes only when both sides carry it,
// and the weighted sum is normalized by the weight of the factors actually
// present. When no factor is computable the score is 0.
func Similarity(a, b Features) float64 {
	var sum, total float64

	if a.Price != nil && b.Price != nil && *a.Price > 0 && *b.Price > 0 {
		sum += ratioFactor(*a.Price, *b.Price) * weightPrice
		total += weightPrice
	}
	if a.Bedrooms != nil && b.Bedrooms != nil {
		sum += countFactor(float64(*a.Bedrooms), float64(*b.Bedrooms)) * weightBedrooms
		total += weightBedrooms
	}
	if a.Bathrooms != nil && b.Bathrooms != nil {
		sum += countFactor(*a.Bathrooms, *b.Bathrooms) * weightBathrooms
		total += weightBathrooms
	}
	if a.LivingArea != nil && b.LivingArea != nil && *a.LivingArea > 0 && *b.LivingArea > 0 {
		sum += ratioFactor(*a.LivingArea, *b.LivingArea) * weightLivingArea
		total += weightLivingArea
	}

	if total == 0 {
		return 0
	}
	return sum / total
}

// ratioFactor maps two positive magnitudes to [0,1]: 1 when equal, falling
// toward 0 as they diverge.
func ratioFactor(x, y float64) float64 {
	return math.Min(x, y) / math.Max(x, y)
}

// countFactor maps a room-count difference to [0,1], hitting 0 at countSpan.
func countFactor(x, y float64) float64 {
	return math.Max(0, 1-math.Abs(x-y)/countSpan)
}
