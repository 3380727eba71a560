package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation (n-1 denominator)
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Volatility calculates the standard deviation of a return series.
// With annualize set, the daily figure is scaled by sqrt(252).
// Fewer than two returns yield 0.
func Volatility(returns []float64, annualize bool) float64 {
	if len(returns) < 2 {
		return 0
	}

	vol := StdDev(returns)
	if annualize {
		vol *= math.Sqrt(TradingDaysPerYear)
	}

	return vol
}

// SharpeRatio calculates the annualized Sharpe ratio of a daily return
// series. riskFreeRate is the annualized risk-free rate as a fraction
// (0.05 = 5%). Returns 0 when the series is too short or has zero
// volatility.
func SharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	annualizedReturn := Mean(returns) * TradingDaysPerYear
	vol := Volatility(returns, true)
	if vol == 0 {
		return 0
	}

	return (annualizedReturn - riskFreeRate) / vol
}
