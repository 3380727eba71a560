package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleReturn(t *testing.T) {
	assert.InDelta(t, 0.21, SimpleReturn(100, 121), 1e-12)
	assert.InDelta(t, -0.5, SimpleReturn(200, 100), 1e-12)

	// Same price in and out is a zero return
	assert.Equal(t, 0.0, SimpleReturn(42.5, 42.5))

	// Division-by-zero guard
	assert.Equal(t, 0.0, SimpleReturn(0, 123))
}

func TestAnnualizedReturn(t *testing.T) {
	assert.Equal(t, 0.0, AnnualizedReturn(0.10, 0))
	assert.Equal(t, 0.0, AnnualizedReturn(-1.0, 10))

	// A full trading year annualizes to itself
	assert.InDelta(t, 0.10, AnnualizedReturn(0.10, 252), 1e-12)

	// Short windows extrapolate aggressively: 21% over four observations
	assert.InDelta(t, math.Pow(1.21, 63)-1, AnnualizedReturn(0.21, 4), 1e-6)
}

func TestCompoundReturns(t *testing.T) {
	assert.Empty(t, CompoundReturns(nil))
	assert.Empty(t, CompoundReturns([]float64{100}))

	returns := CompoundReturns([]float64{100, 110, 99, 121})
	require.Len(t, returns, 3)
	assert.InDelta(t, 0.10, returns[0], 1e-12)
	assert.InDelta(t, -0.10, returns[1], 1e-12)
	assert.InDelta(t, 22.0/99.0, returns[2], 1e-12)
}

func TestCompoundReturnsZeroPriceGuard(t *testing.T) {
	returns := CompoundReturns([]float64{100, 0, 50})
	require.Len(t, returns, 2)
	assert.InDelta(t, -1.0, returns[0], 1e-12)
	// Element after a zero price is left at 0 instead of +Inf
	assert.Equal(t, 0.0, returns[1])
}

func TestVolatility(t *testing.T) {
	assert.Equal(t, 0.0, Volatility(nil, true))
	assert.Equal(t, 0.0, Volatility([]float64{0.05}, true))

	returns := []float64{0.10, -0.10, 22.0 / 99.0}
	daily := Volatility(returns, false)
	assert.InDelta(t, 0.162668, daily, 1e-5)
	assert.InDelta(t, daily*math.Sqrt(252), Volatility(returns, true), 1e-12)

	// Volatility is never negative
	assert.GreaterOrEqual(t, Volatility([]float64{-0.5, -0.1, -0.9}, true), 0.0)
}

func TestSharpeRatio(t *testing.T) {
	assert.Equal(t, 0.0, SharpeRatio(nil, 0.05))
	assert.Equal(t, 0.0, SharpeRatio([]float64{0.01}, 0.05))

	// Constant returns have zero volatility, so Sharpe is 0 by definition here
	assert.Equal(t, 0.0, SharpeRatio([]float64{0.01, 0.01, 0.01}, 0.05))

	returns := []float64{0.10, -0.10, 22.0 / 99.0}
	expected := (Mean(returns)*252 - 0.10) / Volatility(returns, true)
	assert.InDelta(t, expected, SharpeRatio(returns, 0.10), 1e-12)
	assert.InDelta(t, 7.1900, SharpeRatio(returns, 0.10), 1e-3)
}

func TestDrawdowns(t *testing.T) {
	series, max := Drawdowns(nil)
	assert.Empty(t, series)
	assert.Equal(t, 0.0, max)

	series, max = Drawdowns([]float64{100})
	assert.Empty(t, series)
	assert.Equal(t, 0.0, max)

	series, max = Drawdowns([]float64{100, 110, 99, 121})
	require.Len(t, series, 4)
	assert.Equal(t, 0.0, series[0])
	assert.Equal(t, 0.0, series[1])
	assert.InDelta(t, -0.1, series[2], 1e-12)
	assert.Equal(t, 0.0, series[3])
	assert.InDelta(t, -0.1, max, 1e-12)
}

func TestDrawdownsStrictlyIncreasing(t *testing.T) {
	series, max := Drawdowns([]float64{10, 20, 30, 40})
	assert.Equal(t, 0.0, max)
	for _, dd := range series {
		assert.Equal(t, 0.0, dd)
	}
}

func TestDrawdownsNeverPositive(t *testing.T) {
	_, max := Drawdowns([]float64{50, 80, 40, 90, 30, 100})
	assert.LessOrEqual(t, max, 0.0)
	assert.InDelta(t, -0.625, max, 1e-12) // 80 -> 30
}

func TestRSI(t *testing.T) {
	assert.Nil(t, RSI([]float64{100, 101}, 14))

	// Strictly rising series pushes RSI toward 100
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi := RSI(closes, 14)
	require.NotNil(t, rsi)
	assert.InDelta(t, 100.0, *rsi, 1e-6)
}

func TestSMA(t *testing.T) {
	assert.Nil(t, SMA([]float64{1, 2, 3}, 20))

	sma := SMA([]float64{1, 2, 3, 4, 5}, 5)
	require.NotNil(t, sma)
	assert.InDelta(t, 3.0, *sma, 1e-12)
}
