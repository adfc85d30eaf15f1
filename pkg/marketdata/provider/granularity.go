package provider

import (
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
)

// Granularity is the candle width a feed reads closes from.
type Granularity string

const (
	GranularityOneMinute      Granularity = "1m"
	GranularityFiveMinutes    Granularity = "5m"
	GranularityFifteenMinutes Granularity = "15m"
	GranularityOneHour        Granularity = "1h"
	GranularitySixHours       Granularity = "6h"
	GranularityOneDay         Granularity = "1d"
)

// DefaultGranularity matches the venue's one-minute candles.
const DefaultGranularity = GranularityOneMinute

// Duration returns the candle width.
func (g Granularity) Duration() time.Duration {
	switch g {
	case GranularityOneMinute:
		return time.Minute
	case GranularityFiveMinutes:
		return 5 * time.Minute
	case GranularityFifteenMinutes:
		return 15 * time.Minute
	case GranularityOneHour:
		return time.Hour
	case GranularitySixHours:
		return 6 * time.Hour
	case GranularityOneDay:
		return 24 * time.Hour
	default:
		return 0
	}
}

// Seconds returns the width in seconds, the unit Coinbase expects.
func (g Granularity) Seconds() int {
	return int(g.Duration() / time.Second)
}

// BinanceInterval returns the kline interval string. The names already match.
func (g Granularity) BinanceInterval() string {
	return string(g)
}

// Multiplier returns the polygon aggregate multiplier.
func (g Granularity) Multiplier() int {
	switch g {
	case GranularityFiveMinutes:
		return 5
	case GranularityFifteenMinutes:
		return 15
	case GranularitySixHours:
		return 6
	default:
		return 1
	}
}

// Timespan returns the polygon aggregate timespan.
func (g Granularity) Timespan() models.Timespan {
	switch g {
	case GranularityOneMinute, GranularityFiveMinutes, GranularityFifteenMinutes:
		return models.Minute
	case GranularityOneHour, GranularitySixHours:
		return models.Hour
	default:
		return models.Day
	}
}

// Validate rejects granularities no feed supports.
func (g Granularity) Validate() error {
	if g.Duration() == 0 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported granularity: %q", string(g))
	}

	return nil
}

// orDefault returns DefaultGranularity for an empty value.
func (g Granularity) orDefault() Granularity {
	if g == "" {
		return DefaultGranularity
	}

	return g
}
