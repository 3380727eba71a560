package assets

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ativotrack/internal/clients/brapi"
	"ativotrack/internal/domain"
)

// Service coordinates the asset registry with the quote provider
type Service struct {
	assetRepo    *AssetRepository
	quoteRepo    *QuoteRepository
	dividendRepo *DividendRepository
	client       *brapi.Client
	log          zerolog.Logger
}

// NewService creates a new assets service
func NewService(
	assetRepo *AssetRepository,
	quoteRepo *QuoteRepository,
	dividendRepo *DividendRepository,
	client *brapi.Client,
	log zerolog.Logger,
) *Service {
	return &Service{
		assetRepo:    assetRepo,
		quoteRepo:    quoteRepo,
		dividendRepo: dividendRepo,
		client:       client,
		log:          log.With().Str("service", "assets").Logger(),
	}
}

// Sync fetches one year of daily history plus the dividend listing for a
// ticker from the provider and stores both. Also refreshes the asset's
// display metadata when the provider supplies it.
func (s *Service) Sync(ticker string) (*SyncResult, error) {
	asset, err := s.assetRepo.GetByTicker(ticker)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, fmt.Errorf("asset %s: %w", strings.ToUpper(ticker), domain.ErrNotFound)
	}

	resp, err := s.client.GetQuote([]string{asset.Ticker}, brapi.QuoteOptions{
		Range:     "1y",
		Interval:  "1d",
		Dividends: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: provider returned no data for %s", domain.ErrUpstream, asset.Ticker)
	}

	result := resp.Results[0]

	quotes := mapHistoricalPrices(asset.ID, result)
	if err := s.quoteRepo.UpsertBulk(asset.ID, quotes); err != nil {
		return nil, err
	}

	dividends := mapDividends(asset.ID, result)
	if err := s.dividendRepo.UpsertBulk(asset.ID, dividends); err != nil {
		return nil, err
	}

	if result.ShortName != "" {
		var longName, logoURL *string
		if result.LongName != "" {
			longName = &result.LongName
		}
		if result.LogoURL != "" {
			logoURL = &result.LogoURL
		}
		if err := s.assetRepo.UpdateMetadata(asset.ID, result.ShortName, longName, logoURL); err != nil {
			s.log.Warn().Err(err).Str("ticker", asset.Ticker).Msg("Failed to refresh asset metadata")
		}
	}

	s.log.Info().
		Str("ticker", asset.Ticker).
		Int("quotes", len(quotes)).
		Int("dividends", len(dividends)).
		Msg("Asset synced")

	return &SyncResult{
		Ticker:    asset.Ticker,
		Quotes:    len(quotes),
		Dividends: len(dividends),
	}, nil
}

// mapHistoricalPrices converts provider bars to quote rows. Falls back
// to the regular market price as a single observation when no history
// came back.
func mapHistoricalPrices(assetID int64, result brapi.QuoteResult) []Quote {
	if len(result.HistoricalDataPrice) == 0 {
		if result.RegularMarketPrice <= 0 {
			return nil
		}
		return []Quote{{
			AssetID:   assetID,
			Timestamp: time.Now().UTC().Truncate(time.Minute),
			Close:     result.RegularMarketPrice,
		}}
	}

	quotes := make([]Quote, 0, len(result.HistoricalDataPrice))
	for _, bar := range result.HistoricalDataPrice {
		if bar.Close <= 0 {
			continue
		}

		open, high, low := bar.Open, bar.High, bar.Low
		volume := bar.Volume
		quotes = append(quotes, Quote{
			AssetID:   assetID,
			Timestamp: time.Unix(bar.Date, 0).UTC(),
			Open:      &open,
			High:      &high,
			Low:       &low,
			Close:     bar.Close,
			Volume:    &volume,
		})
	}

	return quotes
}

// mapDividends converts provider dividend listings to dividend rows
func mapDividends(assetID int64, result brapi.QuoteResult) []Dividend {
	if result.DividendsData == nil {
		return nil
	}

	dividends := make([]Dividend, 0, len(result.DividendsData.CashDividends))
	for _, cd := range result.DividendsData.CashDividends {
		exDate, err := time.Parse("2006-01-02", cd.ExDate)
		if err != nil || cd.Rate <= 0 {
			continue
		}

		d := Dividend{
			AssetID: assetID,
			Kind:    dividendKindFromLabel(cd.Label),
			Amount:  cd.Rate,
			ExDate:  exDate,
		}
		if t, err := time.Parse("2006-01-02", cd.Date); err == nil {
			d.RecordDate = &t
		}
		if t, err := time.Parse("2006-01-02", cd.PaymentDate); err == nil {
			d.PaymentDate = &t
		}

		dividends = append(dividends, d)
	}

	return dividends
}

// dividendKindFromLabel maps the provider's Portuguese labels to our kinds
func dividendKindFromLabel(label string) string {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "JCP", "JUROS SOBRE CAPITAL PROPRIO", "JUROS SOBRE CAPITAL PRÓPRIO":
		return DividendInterestOnCapital
	case "BONIFICACAO", "BONIFICAÇÃO":
		return DividendStockBonus
	default:
		return DividendCash
	}
}
