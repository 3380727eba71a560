// Package formulas implements the statistical calculations behind the
// performance analytics: period returns, volatility, Sharpe ratio,
// drawdowns and technical indicators.
package formulas

import "math"

// TradingDaysPerYear is the annualization base for daily series.
const TradingDaysPerYear = 252

// SimpleReturn calculates the fractional return between two prices.
// Returns 0 when the initial price is 0 (guard, not an error).
func SimpleReturn(p0, p1 float64) float64 {
	if p0 == 0 {
		return 0
	}
	return (p1 - p0) / p0
}

// AnnualizedReturn extrapolates a total return over n daily
// observations to a full trading year:
//
//	(1+total)^(252/n) - 1
//
// Short windows produce wildly extrapolated values; callers present the
// number as-is. Returns 0 when n is 0 or the total return would take
// the base below zero.
func AnnualizedReturn(totalReturn float64, n int) float64 {
	if n <= 0 || totalReturn <= -1 {
		return 0
	}
	return math.Pow(1+totalReturn, TradingDaysPerYear/float64(n)) - 1
}

// CompoundReturns converts a price series into period-over-period returns.
//
//	Returns[i-1] = Price[i]/Price[i-1] - 1
//
// The result has length len(prices)-1 and is empty for fewer than two
// prices. An element whose preceding price is 0 is left at 0.
func CompoundReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = prices[i]/prices[i-1] - 1
		}
	}

	return returns
}
