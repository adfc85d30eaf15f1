package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
)

// MinStatisticsSample is the smallest window the sample standard deviation is defined for.
const MinStatisticsSample = 2

// CalculatePriceStatistics returns the mean and the unbiased (n-1) sample standard
// deviation of closes. symbol is only used for error context.
func CalculatePriceStatistics(symbol string, closes []float64) (types.PriceStatistics, error) {
	if len(closes) < MinStatisticsSample {
		return types.PriceStatistics{}, errors.NewInsufficientSampleError(MinStatisticsSample, len(closes), symbol)
	}

	var sum float64

	for i, c := range closes {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return types.PriceStatistics{}, errors.Newf(errors.ErrCodeInvalidParameter,
				"non-finite close at index %d for %s", i, symbol)
		}

		sum += c
	}

	mean := sum / float64(len(closes))

	var squaredDiffSum float64

	for _, c := range closes {
		diff := c - mean
		squaredDiffSum += diff * diff
	}

	return types.PriceStatistics{
		Mean:   mean,
		StdDev: math.Sqrt(squaredDiffSum / float64(len(closes)-1)),
	}, nil
}
