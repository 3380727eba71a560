package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ativotrack/internal/database"
	"ativotrack/internal/domain"
	"ativotrack/internal/modules/assets"
	"ativotrack/internal/modules/wallet"
)

type analyticsTestEnv struct {
	db           *database.DB
	service      *Service
	assetRepo    *assets.AssetRepository
	quoteRepo    *assets.QuoteRepository
	dividendRepo *assets.DividendRepository
	walletRepo   *wallet.WalletRepository
	holdingRepo  *wallet.HoldingRepository
}

func newAnalyticsTestEnv(t *testing.T) *analyticsTestEnv {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	log := zerolog.Nop()
	assetRepo := assets.NewAssetRepository(db.Conn(), log)
	quoteRepo := assets.NewQuoteRepository(db.Conn(), log)
	dividendRepo := assets.NewDividendRepository(db.Conn(), log)
	walletRepo := wallet.NewWalletRepository(db.Conn(), log)
	holdingRepo := wallet.NewHoldingRepository(db.Conn(), log)

	return &analyticsTestEnv{
		db:           db,
		service:      NewService(assetRepo, quoteRepo, dividendRepo, walletRepo, holdingRepo, 0.10, log),
		assetRepo:    assetRepo,
		quoteRepo:    quoteRepo,
		dividendRepo: dividendRepo,
		walletRepo:   walletRepo,
		holdingRepo:  holdingRepo,
	}
}

// createAssetWithPrices stores one close per day, the last one dated
// now, so every quote falls inside the default analysis window.
func (e *analyticsTestEnv) createAssetWithPrices(t *testing.T, ticker string, closes []float64) *assets.Asset {
	t.Helper()
	return e.createAssetWithPricesEndingAt(t, ticker, closes, time.Now().UTC())
}

func (e *analyticsTestEnv) createAssetWithPricesEndingAt(t *testing.T, ticker string, closes []float64, end time.Time) *assets.Asset {
	t.Helper()

	asset, err := e.assetRepo.Create(assets.Asset{
		Ticker:    ticker,
		ShortName: ticker,
		Kind:      assets.KindStock,
	})
	require.NoError(t, err)

	start := end.AddDate(0, 0, -(len(closes) - 1))
	quotes := make([]assets.Quote, len(closes))
	for i, c := range closes {
		quotes[i] = assets.Quote{
			AssetID:   asset.ID,
			Timestamp: start.AddDate(0, 0, i),
			Close:     c,
		}
	}
	require.NoError(t, e.quoteRepo.UpsertBulk(asset.ID, quotes))

	return asset
}

// Four daily closes 100, 110, 99, 121: 21% total return, extrapolated
// annualized return (1.21)^63 - 1 ≈ 1.6424e5, max drawdown -10%.
func TestAnalyzeAssetFourObservations(t *testing.T) {
	env := newAnalyticsTestEnv(t)
	env.createAssetWithPrices(t, "PETR4", []float64{100, 110, 99, 121})

	report, err := env.service.AnalyzeAsset("petr4", 0)
	require.NoError(t, err)

	assert.Equal(t, "PETR4", report.Ticker)
	assert.Equal(t, DefaultWindowDays, report.WindowDays)
	assert.Equal(t, 4, report.ObservationCount)
	assert.Equal(t, 121.0, report.CurrentPrice)
	assert.Equal(t, 99.0, report.MinPrice)
	assert.Equal(t, 121.0, report.MaxPrice)

	assert.InDelta(t, 0.21, report.TotalReturn, 1e-12)
	assert.InDelta(t, math.Pow(1.21, 63)-1, report.AnnualizedReturn, 1e-3)
	assert.InDelta(t, 0.162668*math.Sqrt(252), report.Volatility, 1e-3)
	assert.InDelta(t, 7.1900, report.SharpeRatio, 1e-3)
	assert.InDelta(t, -0.1, report.MaxDrawdown, 1e-12)

	// Too few observations for the indicators
	assert.Nil(t, report.Indicators.RSI14)
	assert.Nil(t, report.Indicators.SMA20)
}

func TestAnalyzeAssetDividendYield(t *testing.T) {
	env := newAnalyticsTestEnv(t)
	asset := env.createAssetWithPrices(t, "HGLG11", []float64{100, 100, 100, 100})

	now := time.Now().UTC()
	require.NoError(t, env.dividendRepo.UpsertBulk(asset.ID, []assets.Dividend{
		{AssetID: asset.ID, Kind: assets.DividendCash, Amount: 1.10, ExDate: now.AddDate(0, 0, -2)},
		{AssetID: asset.ID, Kind: assets.DividendCash, Amount: 0.90, ExDate: now.AddDate(0, 0, -1)},
	}))

	report, err := env.service.AnalyzeAsset("HGLG11", 0)
	require.NoError(t, err)

	assert.Equal(t, 2, report.DividendCount)
	assert.InDelta(t, 0.02, report.DividendYield, 1e-12) // (1.10+0.90)/100
}

func TestAnalyzeAssetNotFound(t *testing.T) {
	env := newAnalyticsTestEnv(t)

	_, err := env.service.AnalyzeAsset("NOPE3", 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalyzeAssetInsufficientData(t *testing.T) {
	env := newAnalyticsTestEnv(t)
	env.createAssetWithPrices(t, "NEW4", []float64{100})

	_, err := env.service.AnalyzeAsset("NEW4", 0)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestAnalyzeAssetWindowLimitsObservations(t *testing.T) {
	env := newAnalyticsTestEnv(t)
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	env.createAssetWithPrices(t, "VALE3", closes)

	report, err := env.service.AnalyzeAsset("VALE3", 10)
	require.NoError(t, err)

	// The cutoff is a timestamp, not a row count: only quotes dated
	// within the last 10 days qualify, here closes 130..139
	assert.Equal(t, 10, report.ObservationCount)
	assert.Equal(t, 139.0, report.CurrentPrice)
	assert.Equal(t, 130.0, report.MinPrice)
	// Monotonically rising prices never draw down
	assert.Equal(t, 0.0, report.MaxDrawdown)
}

// Quotes older than the window never produce a report, no matter how
// many of them are stored.
func TestAnalyzeAssetStaleQuotesAreInsufficient(t *testing.T) {
	env := newAnalyticsTestEnv(t)
	stale := time.Now().UTC().AddDate(-2, 0, 0)
	env.createAssetWithPricesEndingAt(t, "OLD3", []float64{100, 110, 99, 121}, stale)

	_, err := env.service.AnalyzeAsset("OLD3", 30)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	// Still analyzable when the window is wide enough to reach them
	report, err := env.service.AnalyzeAsset("OLD3", 3*365)
	require.NoError(t, err)
	assert.Equal(t, 4, report.ObservationCount)
}

func TestAnalyzeWallet(t *testing.T) {
	env := newAnalyticsTestEnv(t)
	a := env.createAssetWithPrices(t, "PETR4", []float64{45, 50})
	b := env.createAssetWithPrices(t, "HGLG11", []float64{190, 200})

	w, err := env.walletRepo.Create("Main", nil)
	require.NoError(t, err)

	_, err = env.holdingRepo.Create(w.ID, a.ID, 10, 40, 400)
	require.NoError(t, err)
	_, err = env.holdingRepo.Create(w.ID, b.ID, 5, 180, 900)
	require.NoError(t, err)

	// Valuations are persisted by the wallet service; mimic a refresh.
	holdings, err := env.holdingRepo.GetByWallet(w.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	for _, h := range holdings {
		var value, weight float64
		switch h.Ticker {
		case "PETR4":
			value, weight = 500, 500.0/1500*100
		case "HGLG11":
			value, weight = 1000, 1000.0/1500*100
		}
		require.NoError(t, env.holdingRepo.SaveValuations([]wallet.Valuation{
			{HoldingID: h.ID, CurrentValue: value, WeightPct: weight},
		}))
	}

	report, err := env.service.AnalyzeWallet(w.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, report.HoldingCount)
	assert.InDelta(t, 1300.0, report.TotalInvested, 1e-9)
	assert.InDelta(t, 1500.0, report.TotalCurrent, 1e-9)
	assert.InDelta(t, 200.0, report.TotalGain, 1e-9)
	assert.InDelta(t, 15.3846, report.TotalGainPct, 1e-3)
	assert.InDelta(t, 66.6667, report.MaxConcentration, 1e-3)

	// No sector recorded on either asset
	assert.InDelta(t, 100.0, report.SectorExposure["Unclassified"], 1e-3)

	for _, h := range report.Holdings {
		if h.Ticker == "HGLG11" {
			assert.InDelta(t, 100.0, h.Gain, 1e-9)
			assert.InDelta(t, 100.0/900*100, h.GainPct, 1e-3)
		}
	}
}

func TestAnalyzeWalletEmpty(t *testing.T) {
	env := newAnalyticsTestEnv(t)

	w, err := env.walletRepo.Create("Empty", nil)
	require.NoError(t, err)

	_, err = env.service.AnalyzeWallet(w.ID)
	assert.ErrorIs(t, err, domain.ErrEmptyWallet)

	_, err = env.service.AnalyzeWallet(999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// A fails with NotFound, B succeeds: the comparison keeps B alone.
func TestCompareAssetsSkipsFailures(t *testing.T) {
	env := newAnalyticsTestEnv(t)
	env.createAssetWithPrices(t, "GOOD3", []float64{100, 110, 99, 121})

	result, err := env.service.CompareAssets([]string{"MISSING3", "GOOD3"}, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Requested)
	assert.Equal(t, 1, result.Analyzed)
	assert.Equal(t, []string{"MISSING3"}, result.Skipped)
	require.Len(t, result.Ranking, 1)
	assert.Equal(t, "GOOD3", result.Ranking[0].Ticker)
}

func TestCompareAssetsAllFail(t *testing.T) {
	env := newAnalyticsTestEnv(t)

	_, err := env.service.CompareAssets([]string{"A1", "B2"}, 0)
	assert.ErrorIs(t, err, domain.ErrNoComparableAssets)
}

func TestCompareAssetsRanksBySharpe(t *testing.T) {
	env := newAnalyticsTestEnv(t)
	// Steady climber: low volatility, positive return
	env.createAssetWithPrices(t, "UP4", []float64{100, 101, 102, 103, 104})
	// Steady decliner: negative Sharpe
	env.createAssetWithPrices(t, "DOWN4", []float64{104, 103, 102, 101, 100})

	result, err := env.service.CompareAssets([]string{"DOWN4", "UP4"}, 0)
	require.NoError(t, err)

	require.Len(t, result.Ranking, 2)
	assert.Equal(t, "UP4", result.Ranking[0].Ticker)
	assert.Equal(t, "DOWN4", result.Ranking[1].Ticker)
	assert.Greater(t, result.Ranking[0].SharpeRatio, result.Ranking[1].SharpeRatio)
}
