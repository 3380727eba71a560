package assets

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// QuoteRepository handles price observation database operations
type QuoteRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *sql.DB, log zerolog.Logger) *QuoteRepository {
	return &QuoteRepository{
		db:  db,
		log: log.With().Str("repo", "quotes").Logger(),
	}
}

// GetRange returns quotes within [from, to], ordered ascending by timestamp
func (r *QuoteRepository) GetRange(assetID int64, from, to time.Time) ([]Quote, error) {
	rows, err := r.db.Query(`
		SELECT id, asset_id, ts, open, high, low, close, volume
		FROM quotes
		WHERE asset_id = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC
	`, assetID, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query quote range: %w", err)
	}
	defer rows.Close()

	return collectQuotes(rows)
}

// GetRecent returns the most recent quotes, ordered descending by timestamp
func (r *QuoteRepository) GetRecent(assetID int64, limit int) ([]Quote, error) {
	rows, err := r.db.Query(`
		SELECT id, asset_id, ts, open, high, low, close, volume
		FROM quotes
		WHERE asset_id = ?
		ORDER BY ts DESC
		LIMIT ?
	`, assetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent quotes: %w", err)
	}
	defer rows.Close()

	return collectQuotes(rows)
}

// GetLatest returns the most recent quote, or nil when the asset has none
func (r *QuoteRepository) GetLatest(assetID int64) (*Quote, error) {
	row := r.db.QueryRow(`
		SELECT id, asset_id, ts, open, high, low, close, volume
		FROM quotes
		WHERE asset_id = ?
		ORDER BY ts DESC
		LIMIT 1
	`, assetID)

	quote, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest quote: %w", err)
	}

	return quote, nil
}

// UpsertBulk inserts or replaces quotes in a single transaction.
// (asset_id, ts) is the conflict key, so re-syncing a window is
// idempotent.
func (r *QuoteRepository) UpsertBulk(assetID int64, quotes []Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO quotes (asset_id, ts, open, high, low, close, volume, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Format(time.RFC3339)
	for _, q := range quotes {
		_, err := stmt.Exec(
			assetID, q.Timestamp.Unix(),
			nullFloat(q.Open), nullFloat(q.High), nullFloat(q.Low),
			q.Close, nullInt(q.Volume), now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert quote at %s: %w", q.Timestamp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.log.Debug().Int64("asset_id", assetID).Int("count", len(quotes)).Msg("Quotes upserted")
	return nil
}

func collectQuotes(rows *sql.Rows) ([]Quote, error) {
	var result []Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		result = append(result, *quote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quotes: %w", err)
	}

	return result, nil
}

func scanQuote(s scanner) (*Quote, error) {
	var q Quote
	var ts int64
	var open, high, low sql.NullFloat64
	var volume sql.NullInt64

	err := s.Scan(&q.ID, &q.AssetID, &ts, &open, &high, &low, &q.Close, &volume)
	if err != nil {
		return nil, err
	}

	q.Timestamp = time.Unix(ts, 0).UTC()
	if open.Valid {
		q.Open = &open.Float64
	}
	if high.Valid {
		q.High = &high.Float64
	}
	if low.Valid {
		q.Low = &low.Float64
	}
	if volume.Valid {
		q.Volume = &volume.Int64
	}

	return &q, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
