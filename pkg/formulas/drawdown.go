package formulas

// Drawdowns calculates the drawdown series of a price sequence along with
// the maximum drawdown.
//
//	peak[i]     = max(prices[0..i])
//	drawdown[i] = (prices[i] - peak[i]) / peak[i]
//
// Each drawdown is <= 0 and the maximum drawdown is the minimum of the
// series (so -0.25 means a 25% decline from the running peak). Fewer than
// two prices yield an empty series and 0.
func Drawdowns(prices []float64) ([]float64, float64) {
	if len(prices) < 2 {
		return []float64{}, 0
	}

	drawdowns := make([]float64, len(prices))
	maxDrawdown := 0.0
	peak := prices[0]

	for i, price := range prices {
		if price > peak {
			peak = price
		}

		if peak > 0 {
			drawdowns[i] = (price - peak) / peak
		}
		if drawdowns[i] < maxDrawdown {
			maxDrawdown = drawdowns[i]
		}
	}

	return drawdowns, maxDrawdown
}
