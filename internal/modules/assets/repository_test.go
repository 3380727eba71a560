package assets

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ativotrack/internal/database"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	return db
}

func TestAssetRepositoryCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssetRepository(db.Conn(), zerolog.Nop())

	sector := "Energy"
	created, err := repo.Create(Asset{
		Ticker:    "petr4",
		ShortName: "PETROBRAS PN",
		Kind:      KindStock,
		Sector:    &sector,
	})
	require.NoError(t, err)
	assert.Equal(t, "PETR4", created.Ticker) // normalized to uppercase
	assert.Equal(t, "BRL", created.Currency) // default currency
	assert.True(t, created.Active)

	// lookup is case-insensitive
	found, err := repo.GetByTicker("petr4")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	require.NotNil(t, found.Sector)
	assert.Equal(t, "Energy", *found.Sector)

	missing, err := repo.GetByTicker("NOPE3")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAssetRepositoryListFiltersByKind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssetRepository(db.Conn(), zerolog.Nop())

	_, err := repo.Create(Asset{Ticker: "PETR4", ShortName: "Petrobras", Kind: KindStock})
	require.NoError(t, err)
	fii, err := repo.Create(Asset{Ticker: "HGLG11", ShortName: "CSHG Log", Kind: KindFII})
	require.NoError(t, err)

	all, err := repo.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	fiis, err := repo.List(KindFII)
	require.NoError(t, err)
	require.Len(t, fiis, 1)
	assert.Equal(t, "HGLG11", fiis[0].Ticker)

	// Deactivated assets drop out of the listing
	require.NoError(t, repo.Deactivate(fii.ID))
	all, err = repo.List("")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestQuoteRepositoryUpsertIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	assetRepo := NewAssetRepository(db.Conn(), zerolog.Nop())
	quoteRepo := NewQuoteRepository(db.Conn(), zerolog.Nop())

	asset, err := assetRepo.Create(Asset{Ticker: "VALE3", ShortName: "Vale", Kind: KindStock})
	require.NoError(t, err)

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	volume := int64(1000)
	quotes := []Quote{
		{AssetID: asset.ID, Timestamp: day, Close: 60, Volume: &volume},
		{AssetID: asset.ID, Timestamp: day.AddDate(0, 0, 1), Close: 62},
	}
	require.NoError(t, quoteRepo.UpsertBulk(asset.ID, quotes))

	// Re-syncing the same window with a revised close replaces, not duplicates
	quotes[1].Close = 63
	require.NoError(t, quoteRepo.UpsertBulk(asset.ID, quotes))

	recent, err := quoteRepo.GetRecent(asset.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 63.0, recent[0].Close) // newest first
	require.NotNil(t, recent[1].Volume)
	assert.Equal(t, int64(1000), *recent[1].Volume)

	latest, err := quoteRepo.GetLatest(asset.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 63.0, latest.Close)
}

func TestQuoteRepositoryGetRange(t *testing.T) {
	db := setupTestDB(t)
	assetRepo := NewAssetRepository(db.Conn(), zerolog.Nop())
	quoteRepo := NewQuoteRepository(db.Conn(), zerolog.Nop())

	asset, err := assetRepo.Create(Asset{Ticker: "ITUB4", ShortName: "Itau", Kind: KindStock})
	require.NoError(t, err)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	var quotes []Quote
	for i := 0; i < 10; i++ {
		quotes = append(quotes, Quote{AssetID: asset.ID, Timestamp: start.AddDate(0, 0, i), Close: 30 + float64(i)})
	}
	require.NoError(t, quoteRepo.UpsertBulk(asset.ID, quotes))

	window, err := quoteRepo.GetRange(asset.ID, start.AddDate(0, 0, 2), start.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Len(t, window, 4)
	// ascending order
	assert.Equal(t, 32.0, window[0].Close)
	assert.Equal(t, 35.0, window[3].Close)

	latest, err := quoteRepo.GetLatest(999)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestDividendRepositoryUpsertAndRange(t *testing.T) {
	db := setupTestDB(t)
	assetRepo := NewAssetRepository(db.Conn(), zerolog.Nop())
	dividendRepo := NewDividendRepository(db.Conn(), zerolog.Nop())

	asset, err := assetRepo.Create(Asset{Ticker: "HGLG11", ShortName: "CSHG Log", Kind: KindFII})
	require.NoError(t, err)

	exDate := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	dividends := []Dividend{
		{AssetID: asset.ID, Kind: DividendCash, Amount: 1.10, ExDate: exDate},
		{AssetID: asset.ID, Kind: DividendCash, Amount: 1.15, ExDate: exDate.AddDate(0, 1, 0)},
	}
	require.NoError(t, dividendRepo.UpsertBulk(asset.ID, dividends))

	// Same (asset, ex_date, kind) with a corrected amount replaces the row
	dividends[0].Amount = 1.12
	require.NoError(t, dividendRepo.UpsertBulk(asset.ID, dividends[:1]))

	window, err := dividendRepo.GetRange(asset.ID, exDate.AddDate(0, 0, -1), exDate.AddDate(0, 2, 0))
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, 1.12, window[0].Amount)
	assert.Equal(t, 1.15, window[1].Amount)

	recent, err := dividendRepo.GetRecent(asset.ID, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, 1.15, recent[0].Amount) // newest ex-date first
}
