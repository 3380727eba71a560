package assets

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DividendRepository handles dividend event database operations
type DividendRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewDividendRepository creates a new dividend repository
func NewDividendRepository(db *sql.DB, log zerolog.Logger) *DividendRepository {
	return &DividendRepository{
		db:  db,
		log: log.With().Str("repo", "dividends").Logger(),
	}
}

// GetRange returns dividends whose ex-date falls within [from, to],
// ordered ascending by ex-date
func (r *DividendRepository) GetRange(assetID int64, from, to time.Time) ([]Dividend, error) {
	rows, err := r.db.Query(`
		SELECT id, asset_id, kind, amount, record_date, ex_date, payment_date
		FROM dividends
		WHERE asset_id = ? AND ex_date >= ? AND ex_date <= ?
		ORDER BY ex_date ASC
	`, assetID, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend range: %w", err)
	}
	defer rows.Close()

	return collectDividends(rows)
}

// GetRecent returns the most recent dividends, ordered descending by ex-date
func (r *DividendRepository) GetRecent(assetID int64, limit int) ([]Dividend, error) {
	rows, err := r.db.Query(`
		SELECT id, asset_id, kind, amount, record_date, ex_date, payment_date
		FROM dividends
		WHERE asset_id = ?
		ORDER BY ex_date DESC
		LIMIT ?
	`, assetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent dividends: %w", err)
	}
	defer rows.Close()

	return collectDividends(rows)
}

// UpsertBulk inserts or replaces dividends in a single transaction.
// (asset_id, ex_date, kind) is the conflict key.
func (r *DividendRepository) UpsertBulk(assetID int64, dividends []Dividend) error {
	if len(dividends) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO dividends (asset_id, kind, amount, record_date, ex_date, payment_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Format(time.RFC3339)
	for _, d := range dividends {
		_, err := stmt.Exec(
			assetID, d.Kind, d.Amount,
			nullTime(d.RecordDate), d.ExDate.Unix(), nullTime(d.PaymentDate),
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert dividend at %s: %w", d.ExDate, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.log.Debug().Int64("asset_id", assetID).Int("count", len(dividends)).Msg("Dividends upserted")
	return nil
}

func collectDividends(rows *sql.Rows) ([]Dividend, error) {
	var result []Dividend
	for rows.Next() {
		var d Dividend
		var recordDate, paymentDate sql.NullInt64
		var exDate int64

		err := rows.Scan(&d.ID, &d.AssetID, &d.Kind, &d.Amount, &recordDate, &exDate, &paymentDate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dividend: %w", err)
		}

		d.ExDate = time.Unix(exDate, 0).UTC()
		if recordDate.Valid {
			t := time.Unix(recordDate.Int64, 0).UTC()
			d.RecordDate = &t
		}
		if paymentDate.Valid {
			t := time.Unix(paymentDate.Int64, 0).UTC()
			d.PaymentDate = &t
		}

		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividends: %w", err)
	}

	return result, nil
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
