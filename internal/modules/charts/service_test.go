package charts

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ativotrack/internal/modules/analytics"
	"ativotrack/internal/modules/assets"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func TestRenderPriceSeries(t *testing.T) {
	service := NewService(zerolog.Nop())

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	quotes := make([]assets.Quote, 30)
	for i := range quotes {
		quotes[i] = assets.Quote{Timestamp: start.AddDate(0, 0, i), Close: 100 + float64(i)}
	}

	report := &analytics.PerformanceReport{
		Ticker:      "PETR4",
		TotalReturn: 0.29,
		SharpeRatio: 1.5,
		Volatility:  0.12,
		MaxDrawdown: -0.02,
	}

	img, err := service.RenderPriceSeries(report, quotes)
	require.NoError(t, err)
	require.NotEmpty(t, img)
	assert.Equal(t, pngMagic, img[:4])
}

func TestRenderPriceSeriesNeedsTwoQuotes(t *testing.T) {
	service := NewService(zerolog.Nop())

	_, err := service.RenderPriceSeries(&analytics.PerformanceReport{Ticker: "PETR4"}, []assets.Quote{{Close: 100}})
	assert.Error(t, err)
}

func TestRenderWalletDistribution(t *testing.T) {
	service := NewService(zerolog.Nop())

	report := &analytics.WalletReport{
		WalletName:   "Main",
		TotalCurrent: 1500,
		Holdings: []analytics.HoldingPerformance{
			{Ticker: "PETR4", CurrentValue: 500, WeightPct: 33.33},
			{Ticker: "HGLG11", CurrentValue: 1000, WeightPct: 66.67},
		},
	}

	img, err := service.RenderWalletDistribution(report)
	require.NoError(t, err)
	require.NotEmpty(t, img)
	assert.Equal(t, pngMagic, img[:4])
}

func TestRenderWalletDistributionEmpty(t *testing.T) {
	service := NewService(zerolog.Nop())

	_, err := service.RenderWalletDistribution(&analytics.WalletReport{WalletName: "Empty"})
	assert.Error(t, err)

	// Holdings without value cannot be drawn either
	_, err = service.RenderWalletDistribution(&analytics.WalletReport{
		Holdings: []analytics.HoldingPerformance{{Ticker: "PETR4", CurrentValue: 0}},
	})
	assert.Error(t, err)
}
