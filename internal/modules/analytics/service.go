package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ativotrack/internal/domain"
	"ativotrack/internal/modules/assets"
	"ativotrack/internal/modules/wallet"
	"ativotrack/pkg/formulas"
)

// DefaultWindowDays is the lookback used when a request gives none.
const DefaultWindowDays = 252

// Service computes performance reports from stored quotes and holdings
type Service struct {
	assetRepo    *assets.AssetRepository
	quoteRepo    *assets.QuoteRepository
	dividendRepo *assets.DividendRepository
	walletRepo   *wallet.WalletRepository
	holdingRepo  *wallet.HoldingRepository
	riskFreeRate float64
	log          zerolog.Logger
}

// NewService creates a new analytics service. riskFreeRate is the
// annual rate used in Sharpe ratios, e.g. 0.10 for 10%.
func NewService(
	assetRepo *assets.AssetRepository,
	quoteRepo *assets.QuoteRepository,
	dividendRepo *assets.DividendRepository,
	walletRepo *wallet.WalletRepository,
	holdingRepo *wallet.HoldingRepository,
	riskFreeRate float64,
	log zerolog.Logger,
) *Service {
	return &Service{
		assetRepo:    assetRepo,
		quoteRepo:    quoteRepo,
		dividendRepo: dividendRepo,
		walletRepo:   walletRepo,
		holdingRepo:  holdingRepo,
		riskFreeRate: riskFreeRate,
		log:          log.With().Str("service", "analytics").Logger(),
	}
}

// AnalyzeAsset builds the performance report of one asset from the
// quotes observed in the last windowDays calendar days. Needs at least
// two observations inside the window.
func (s *Service) AnalyzeAsset(ticker string, windowDays int) (*PerformanceReport, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	asset, err := s.assetRepo.GetByTicker(ticker)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, fmt.Errorf("asset %s: %w", ticker, domain.ErrNotFound)
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -windowDays)

	quotes, err := s.quoteRepo.GetRange(asset.ID, from, now)
	if err != nil {
		return nil, err
	}
	if len(quotes) < 2 {
		return nil, fmt.Errorf("asset %s has %d observations in the last %d days: %w",
			ticker, len(quotes), windowDays, domain.ErrInsufficientData)
	}

	prices := make([]float64, len(quotes))
	for i, q := range quotes {
		prices[i] = q.Close
	}

	// Dividends over the same calendar window as the quotes
	dividends, err := s.dividendRepo.GetRange(asset.ID, from, now)
	if err != nil {
		return nil, err
	}

	report := s.buildReport(asset.Ticker, windowDays, prices, quotes, dividends)

	s.log.Debug().
		Str("ticker", asset.Ticker).
		Int("observations", report.ObservationCount).
		Float64("sharpe", report.SharpeRatio).
		Msg("Asset analyzed")

	return report, nil
}

func (s *Service) buildReport(ticker string, windowDays int, prices []float64, quotes []assets.Quote, dividends []assets.Dividend) *PerformanceReport {
	n := len(prices)
	first, last := prices[0], prices[n-1]

	totalReturn := formulas.SimpleReturn(first, last)
	annualized := formulas.AnnualizedReturn(totalReturn, n)

	returns := formulas.CompoundReturns(prices)
	volatility := formulas.Volatility(returns, true)
	sharpe := formulas.SharpeRatio(returns, s.riskFreeRate)
	_, maxDrawdown := formulas.Drawdowns(prices)

	minPrice, maxPrice := prices[0], prices[0]
	for _, p := range prices[1:] {
		if p < minPrice {
			minPrice = p
		}
		if p > maxPrice {
			maxPrice = p
		}
	}

	var volumeSum float64
	var volumeCount int
	for _, q := range quotes {
		if q.Volume != nil {
			volumeSum += float64(*q.Volume)
			volumeCount++
		}
	}
	averageVolume := 0.0
	if volumeCount > 0 {
		averageVolume = volumeSum / float64(volumeCount)
	}

	dividendYield := 0.0
	if last > 0 {
		var total float64
		for _, d := range dividends {
			total += d.Amount
		}
		dividendYield = total / last
	}

	return &PerformanceReport{
		Ticker:           ticker,
		WindowDays:       windowDays,
		ObservationCount: n,
		DividendCount:    len(dividends),
		CurrentPrice:     last,
		MinPrice:         minPrice,
		MaxPrice:         maxPrice,
		TotalReturn:      totalReturn,
		AnnualizedReturn: annualized,
		Volatility:       volatility,
		SharpeRatio:      sharpe,
		MaxDrawdown:      maxDrawdown,
		DividendYield:    dividendYield,
		AverageVolume:    averageVolume,
		Indicators: Indicators{
			RSI14: formulas.RSI(prices, 14),
			SMA20: formulas.SMA(prices, 20),
		},
	}
}

// AnalyzeWallet aggregates a wallet's positions. It reads the stored
// values only; callers wanting fresh numbers run
// wallet.Service.RefreshValuations first.
func (s *Service) AnalyzeWallet(walletID int64) (*WalletReport, error) {
	w, err := s.walletRepo.GetByID(walletID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("wallet %d: %w", walletID, domain.ErrNotFound)
	}

	holdings, err := s.holdingRepo.GetByWallet(walletID)
	if err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return nil, fmt.Errorf("wallet %d: %w", walletID, domain.ErrEmptyWallet)
	}

	report := &WalletReport{
		WalletID:       w.ID,
		WalletName:     w.Name,
		HoldingCount:   len(holdings),
		SectorExposure: map[string]float64{},
		Holdings:       make([]HoldingPerformance, 0, len(holdings)),
	}

	for _, h := range holdings {
		gain := h.CurrentValue - h.InvestedValue
		gainPct := 0.0
		if h.InvestedValue > 0 {
			gainPct = gain / h.InvestedValue * 100
		}

		sector := "Unclassified"
		if h.Sector != nil && *h.Sector != "" {
			sector = *h.Sector
		}

		report.Holdings = append(report.Holdings, HoldingPerformance{
			Ticker:        h.Ticker,
			ShortName:     h.ShortName,
			Sector:        sector,
			Quantity:      h.Quantity,
			AvgPrice:      h.AvgPrice,
			InvestedValue: h.InvestedValue,
			CurrentValue:  h.CurrentValue,
			Gain:          gain,
			GainPct:       gainPct,
			WeightPct:     h.WeightPct,
		})

		report.TotalInvested += h.InvestedValue
		report.TotalCurrent += h.CurrentValue
		report.SectorExposure[sector] += h.WeightPct
		if h.WeightPct > report.MaxConcentration {
			report.MaxConcentration = h.WeightPct
		}
	}

	report.TotalGain = report.TotalCurrent - report.TotalInvested
	if report.TotalInvested > 0 {
		report.TotalGainPct = report.TotalGain / report.TotalInvested * 100
	}

	return report, nil
}

// CompareAssets analyzes each ticker and ranks the results by Sharpe
// ratio, best first. Tickers that cannot be analyzed are skipped; the
// call fails only when none succeed.
func (s *Service) CompareAssets(tickers []string, windowDays int) (*ComparisonResult, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	result := &ComparisonResult{
		WindowDays: windowDays,
		Requested:  len(tickers),
	}

	for _, ticker := range tickers {
		report, err := s.AnalyzeAsset(ticker, windowDays)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("Skipping ticker in comparison")
			result.Skipped = append(result.Skipped, strings.ToUpper(strings.TrimSpace(ticker)))
			continue
		}
		result.Ranking = append(result.Ranking, *report)
	}

	if len(result.Ranking) == 0 {
		return nil, fmt.Errorf("%d tickers requested: %w", len(tickers), domain.ErrNoComparableAssets)
	}
	result.Analyzed = len(result.Ranking)

	// Stable: tickers with equal Sharpe keep their request order.
	sort.SliceStable(result.Ranking, func(i, j int) bool {
		return result.Ranking[i].SharpeRatio > result.Ranking[j].SharpeRatio
	})

	return result, nil
}
