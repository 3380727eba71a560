package formulas

import (
	"github.com/markcheno/go-talib"
)

// RSI calculates the current Relative Strength Index over the given
// period (typically 14). Returns nil when there is not enough data.
func RSI(closes []float64, length int) *float64 {
	if len(closes) < length+1 {
		return nil
	}

	series := talib.Rsi(closes, length)
	if len(series) == 0 {
		return nil
	}

	last := series[len(series)-1]
	if isNaN(last) {
		return nil
	}
	return &last
}

// SMA calculates the current simple moving average over the given period.
// Returns nil when there is not enough data.
func SMA(closes []float64, length int) *float64 {
	if len(closes) < length {
		return nil
	}

	series := talib.Sma(closes, length)
	if len(series) == 0 {
		return nil
	}

	last := series[len(series)-1]
	if isNaN(last) {
		return nil
	}
	return &last
}

func isNaN(f float64) bool {
	return f != f
}
