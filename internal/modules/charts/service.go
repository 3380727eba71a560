// Package charts renders PNG visualizations of analytics output.
package charts

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vicanso/go-charts/v2"

	"ativotrack/internal/modules/analytics"
	"ativotrack/internal/modules/assets"
)

// Service renders analytics data as PNG images
type Service struct {
	log zerolog.Logger
}

// NewService creates a new chart service
func NewService(log zerolog.Logger) *Service {
	return &Service{log: log.With().Str("service", "charts").Logger()}
}

// RenderPriceSeries draws an asset's closing prices as a line chart
// with the report's headline figures in the title. Quotes must be in
// chronological order.
func (s *Service) RenderPriceSeries(report *analytics.PerformanceReport, quotes []assets.Quote) ([]byte, error) {
	if len(quotes) < 2 {
		return nil, fmt.Errorf("need at least two quotes to render a chart")
	}

	labels := make([]string, len(quotes))
	values := make([]float64, len(quotes))
	for i, q := range quotes {
		labels[i] = q.Timestamp.Format("Jan 02")
		values[i] = q.Close
	}

	yMin, yMax := values[0], values[0]
	for _, v := range values[1:] {
		if v < yMin {
			yMin = v
		}
		if v > yMax {
			yMax = v
		}
	}
	padding := (yMax - yMin) * 0.05
	if padding == 0 {
		padding = yMax * 0.05
	}
	yMin -= padding
	if yMin < 0 {
		yMin = 0
	}
	yMax += padding

	splitNumber := 6
	if len(labels) <= 30 {
		splitNumber = len(labels) / 3
		if splitNumber < 3 {
			splitNumber = 3
		}
	}

	title := fmt.Sprintf("%s\nReturn: %.2f%% | Sharpe: %.2f | Vol: %.2f%% | MaxDD: %.2f%%",
		report.Ticker,
		report.TotalReturn*100,
		report.SharpeRatio,
		report.Volatility*100,
		report.MaxDrawdown*100,
	)

	painter, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: splitNumber,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(800),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render price chart: %w", err)
	}

	return painter.Bytes()
}

// RenderWalletDistribution draws a wallet's position weights as a pie
// chart.
func (s *Service) RenderWalletDistribution(report *analytics.WalletReport) ([]byte, error) {
	if len(report.Holdings) == 0 {
		return nil, fmt.Errorf("wallet has no holdings to render")
	}

	values := make([]float64, 0, len(report.Holdings))
	labels := make([]string, 0, len(report.Holdings))
	for _, h := range report.Holdings {
		if h.CurrentValue <= 0 {
			continue
		}
		values = append(values, h.CurrentValue)
		labels = append(labels, fmt.Sprintf("%s (%.1f%%)", h.Ticker, h.WeightPct))
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("wallet has no valued holdings to render")
	}

	painter, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc(fmt.Sprintf("%s - R$ %.2f", report.WalletName, report.TotalCurrent)),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: labels,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(800),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render distribution chart: %w", err)
	}

	return painter.Bytes()
}
