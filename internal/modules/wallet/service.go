package wallet

import (
	"fmt"

	"github.com/rs/zerolog"

	"ativotrack/internal/domain"
	"ativotrack/internal/modules/assets"
)

// Service coordinates wallets, their holdings and trade records
type Service struct {
	walletRepo      *WalletRepository
	holdingRepo     *HoldingRepository
	transactionRepo *TransactionRepository
	assetRepo       *assets.AssetRepository
	quoteRepo       *assets.QuoteRepository
	log             zerolog.Logger
}

// NewService creates a new wallet service
func NewService(
	walletRepo *WalletRepository,
	holdingRepo *HoldingRepository,
	transactionRepo *TransactionRepository,
	assetRepo *assets.AssetRepository,
	quoteRepo *assets.QuoteRepository,
	log zerolog.Logger,
) *Service {
	return &Service{
		walletRepo:      walletRepo,
		holdingRepo:     holdingRepo,
		transactionRepo: transactionRepo,
		assetRepo:       assetRepo,
		quoteRepo:       quoteRepo,
		log:             log.With().Str("service", "wallet").Logger(),
	}
}

// RefreshValuations recomputes every holding's current value and weight
// from the latest stored quotes and persists them together with the
// wallet's total. Holdings of assets without any stored quote keep a
// zero current value.
func (s *Service) RefreshValuations(walletID int64) (*Wallet, error) {
	wallet, err := s.walletRepo.GetByID(walletID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet %d: %w", walletID, domain.ErrNotFound)
	}

	holdings, err := s.holdingRepo.GetByWallet(walletID)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(holdings))
	total := 0.0
	for i, h := range holdings {
		latest, err := s.quoteRepo.GetLatest(h.AssetID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			values[i] = h.Quantity * latest.Close
		}
		total += values[i]
	}

	valuations := make([]Valuation, len(holdings))
	for i, h := range holdings {
		weight := 0.0
		if total > 0 {
			weight = values[i] / total * 100
		}
		valuations[i] = Valuation{
			HoldingID:    h.ID,
			CurrentValue: values[i],
			WeightPct:    weight,
		}
	}

	if err := s.holdingRepo.SaveValuations(valuations); err != nil {
		return nil, err
	}
	if err := s.walletRepo.UpdateTotalValue(walletID, total); err != nil {
		return nil, err
	}

	s.log.Debug().
		Int64("wallet_id", walletID).
		Int("holdings", len(holdings)).
		Float64("total", total).
		Msg("Wallet valuations refreshed")

	wallet.TotalValue = total
	return wallet, nil
}

// AddAsset opens a position in a wallet. The asset must already be
// registered and not yet held by the wallet.
func (s *Service) AddAsset(walletID int64, ticker string, quantity, avgPrice float64) (*Holding, error) {
	wallet, err := s.walletRepo.GetByID(walletID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet %d: %w", walletID, domain.ErrNotFound)
	}

	asset, err := s.assetRepo.GetByTicker(ticker)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, fmt.Errorf("asset %s: %w", ticker, domain.ErrNotFound)
	}

	existing, err := s.holdingRepo.GetByWalletAndAsset(walletID, asset.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("asset %s in wallet %d: %w", asset.Ticker, walletID, domain.ErrConflict)
	}

	return s.holdingRepo.Create(walletID, asset.ID, quantity, avgPrice, quantity*avgPrice)
}

// ApplyTransaction records a buy or sell and folds it into the wallet's
// position for the asset. A buy on an asset the wallet does not hold
// opens the position; a sell that would go below zero shares is
// rejected.
func (s *Service) ApplyTransaction(walletID int64, tx Transaction) (*Transaction, error) {
	wallet, err := s.walletRepo.GetByID(walletID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet %d: %w", walletID, domain.ErrNotFound)
	}

	asset, err := s.assetRepo.GetByID(tx.AssetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, fmt.Errorf("asset %d: %w", tx.AssetID, domain.ErrNotFound)
	}

	holding, err := s.holdingRepo.GetByWalletAndAsset(walletID, tx.AssetID)
	if err != nil {
		return nil, err
	}

	tx.WalletID = walletID
	tx.TotalValue = tx.Quantity * tx.Price

	switch tx.Kind {
	case TransactionBuy:
		if holding == nil {
			if _, err := s.holdingRepo.Create(walletID, tx.AssetID, tx.Quantity, tx.Price, tx.TotalValue+tx.Fee); err != nil {
				return nil, err
			}
		} else {
			newQuantity := holding.Quantity + tx.Quantity
			newInvested := holding.InvestedValue + tx.TotalValue + tx.Fee
			newAvgPrice := holding.AvgPrice
			if newQuantity > 0 {
				newAvgPrice = newInvested / newQuantity
			}
			if err := s.holdingRepo.UpdatePosition(holding.ID, newQuantity, newAvgPrice, newInvested); err != nil {
				return nil, err
			}
		}

	case TransactionSell:
		if holding == nil || holding.Quantity < tx.Quantity {
			return nil, fmt.Errorf("sell exceeds position for %s: %w", asset.Ticker, domain.ErrInvalidInput)
		}

		newQuantity := holding.Quantity - tx.Quantity
		// Release cost basis proportionally to the shares sold, keeping
		// the average price of the remainder unchanged.
		newInvested := holding.InvestedValue * newQuantity / holding.Quantity
		if err := s.holdingRepo.UpdatePosition(holding.ID, newQuantity, holding.AvgPrice, newInvested); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown transaction kind %q: %w", tx.Kind, domain.ErrInvalidInput)
	}

	recorded, err := s.transactionRepo.Create(tx)
	if err != nil {
		return nil, err
	}

	if _, err := s.RefreshValuations(walletID); err != nil {
		s.log.Warn().Err(err).Int64("wallet_id", walletID).Msg("Failed to refresh valuations after transaction")
	}

	return recorded, nil
}
