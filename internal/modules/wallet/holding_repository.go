package wallet

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// HoldingRepository handles wallet position database operations
type HoldingRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *sql.DB, log zerolog.Logger) *HoldingRepository {
	return &HoldingRepository{
		db:  db,
		log: log.With().Str("repo", "holdings").Logger(),
	}
}

// GetByWallet returns a wallet's holdings joined with asset display
// fields, ordered by ticker
func (r *HoldingRepository) GetByWallet(walletID int64) ([]HoldingWithAsset, error) {
	rows, err := r.db.Query(`
		SELECT wa.id, wa.wallet_id, wa.asset_id, wa.quantity, wa.avg_price,
		       wa.invested_value, wa.current_value, wa.weight_pct,
		       wa.added_at, wa.updated_at,
		       a.ticker, a.short_name, a.sector
		FROM wallet_assets wa
		JOIN assets a ON a.id = wa.asset_id
		WHERE wa.wallet_id = ?
		ORDER BY a.ticker
	`, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var result []HoldingWithAsset
	for rows.Next() {
		var h HoldingWithAsset
		var sector sql.NullString

		err := rows.Scan(
			&h.ID, &h.WalletID, &h.AssetID, &h.Quantity, &h.AvgPrice,
			&h.InvestedValue, &h.CurrentValue, &h.WeightPct,
			&h.AddedAt, &h.UpdatedAt,
			&h.Ticker, &h.ShortName, &sector,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}

		if sector.Valid {
			h.Sector = &sector.String
		}
		result = append(result, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return result, nil
}

// GetByWalletAndAsset returns one holding, or nil when absent
func (r *HoldingRepository) GetByWalletAndAsset(walletID, assetID int64) (*Holding, error) {
	row := r.db.QueryRow(`
		SELECT id, wallet_id, asset_id, quantity, avg_price, invested_value,
		       current_value, weight_pct, added_at, updated_at
		FROM wallet_assets
		WHERE wallet_id = ? AND asset_id = ?
	`, walletID, assetID)

	var h Holding
	err := row.Scan(
		&h.ID, &h.WalletID, &h.AssetID, &h.Quantity, &h.AvgPrice,
		&h.InvestedValue, &h.CurrentValue, &h.WeightPct, &h.AddedAt, &h.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query holding: %w", err)
	}

	return &h, nil
}

// Create inserts a new holding
func (r *HoldingRepository) Create(walletID, assetID int64, quantity, avgPrice, investedValue float64) (*Holding, error) {
	now := time.Now().Format(time.RFC3339)

	result, err := r.db.Exec(`
		INSERT INTO wallet_assets (wallet_id, asset_id, quantity, avg_price, invested_value, current_value, weight_pct, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?)
	`, walletID, assetID, quantity, avgPrice, investedValue, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert holding: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get holding id: %w", err)
	}

	r.log.Info().
		Int64("wallet_id", walletID).
		Int64("asset_id", assetID).
		Float64("quantity", quantity).
		Msg("Holding created")

	return &Holding{
		ID:            id,
		WalletID:      walletID,
		AssetID:       assetID,
		Quantity:      quantity,
		AvgPrice:      avgPrice,
		InvestedValue: investedValue,
		AddedAt:       now,
		UpdatedAt:     now,
	}, nil
}

// UpdatePosition rewrites the quantity/cost fields after a transaction
func (r *HoldingRepository) UpdatePosition(id int64, quantity, avgPrice, investedValue float64) error {
	now := time.Now().Format(time.RFC3339)

	_, err := r.db.Exec(`
		UPDATE wallet_assets
		SET quantity = ?, avg_price = ?, invested_value = ?, updated_at = ?
		WHERE id = ?
	`, quantity, avgPrice, investedValue, now, id)
	if err != nil {
		return fmt.Errorf("failed to update holding position: %w", err)
	}

	return nil
}

// Delete removes a holding. Returns false when it did not exist.
func (r *HoldingRepository) Delete(id int64) (bool, error) {
	result, err := r.db.Exec("DELETE FROM wallet_assets WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete holding: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return rows > 0, nil
}

// Valuation is one holding's recomputed value and weight
type Valuation struct {
	HoldingID    int64
	CurrentValue float64
	WeightPct    float64
}

// SaveValuations persists recomputed values and weights for a wallet's
// holdings in one transaction so readers never observe a half-updated
// wallet.
func (r *HoldingRepository) SaveValuations(valuations []Valuation) error {
	if len(valuations) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		UPDATE wallet_assets
		SET current_value = ?, weight_pct = ?, updated_at = ?
		WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Format(time.RFC3339)
	for _, v := range valuations {
		if _, err := stmt.Exec(v.CurrentValue, v.WeightPct, now, v.HoldingID); err != nil {
			return fmt.Errorf("failed to update valuation for holding %d: %w", v.HoldingID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
