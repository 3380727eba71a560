package wallet

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

func unixUTC(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}

// TransactionRepository handles trade record database operations
type TransactionRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sql.DB, log zerolog.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:  db,
		log: log.With().Str("repo", "transactions").Logger(),
	}
}

// List returns a wallet's transactions, most recent first
func (r *TransactionRepository) List(walletID int64, limit int) ([]Transaction, error) {
	rows, err := r.db.Query(`
		SELECT id, wallet_id, asset_id, kind, quantity, price, total_value, fee, executed_at, notes
		FROM transactions
		WHERE wallet_id = ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ?
	`, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var result []Transaction
	for rows.Next() {
		var t Transaction
		var executedAt int64
		var notes sql.NullString

		err := rows.Scan(
			&t.ID, &t.WalletID, &t.AssetID, &t.Kind, &t.Quantity,
			&t.Price, &t.TotalValue, &t.Fee, &executedAt, &notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		t.ExecutedAt = unixUTC(executedAt)
		if notes.Valid {
			t.Notes = &notes.String
		}
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return result, nil
}

// Create records a trade
func (r *TransactionRepository) Create(t Transaction) (*Transaction, error) {
	result, err := r.db.Exec(`
		INSERT INTO transactions (wallet_id, asset_id, kind, quantity, price, total_value, fee, executed_at, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.WalletID, t.AssetID, t.Kind, t.Quantity, t.Price, t.TotalValue, t.Fee, t.ExecutedAt.Unix(), t.Notes,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction id: %w", err)
	}
	t.ID = id

	r.log.Info().
		Int64("wallet_id", t.WalletID).
		Int64("asset_id", t.AssetID).
		Str("kind", t.Kind).
		Float64("quantity", t.Quantity).
		Msg("Transaction recorded")

	return &t, nil
}
