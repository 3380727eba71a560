package assets

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// AssetRepository handles asset database operations
type AssetRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *sql.DB, log zerolog.Logger) *AssetRepository {
	return &AssetRepository{
		db:  db,
		log: log.With().Str("repo", "assets").Logger(),
	}
}

const assetColumns = "id, ticker, short_name, long_name, kind, sector, subsector, currency, logo_url, active, created_at, updated_at"

// GetByTicker returns the asset with the given ticker, or nil when absent.
// Tickers are matched case-insensitively via uppercase normalization.
func (r *AssetRepository) GetByTicker(ticker string) (*Asset, error) {
	row := r.db.QueryRow(
		"SELECT "+assetColumns+" FROM assets WHERE ticker = ?",
		strings.ToUpper(ticker),
	)

	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query asset by ticker: %w", err)
	}

	return asset, nil
}

// GetByID returns the asset with the given id, or nil when absent
func (r *AssetRepository) GetByID(id int64) (*Asset, error) {
	row := r.db.QueryRow("SELECT "+assetColumns+" FROM assets WHERE id = ?", id)

	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query asset by id: %w", err)
	}

	return asset, nil
}

// List returns active assets, optionally filtered by kind
func (r *AssetRepository) List(kind string) ([]Asset, error) {
	query := "SELECT " + assetColumns + " FROM assets WHERE active = 1"
	args := []interface{}{}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY ticker"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var result []Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		result = append(result, *asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	return result, nil
}

// Create inserts a new asset and returns it with its assigned id.
// The ticker is normalized to uppercase.
func (r *AssetRepository) Create(asset Asset) (*Asset, error) {
	now := time.Now().Format(time.RFC3339)
	asset.Ticker = strings.ToUpper(asset.Ticker)
	if asset.Currency == "" {
		asset.Currency = "BRL"
	}

	result, err := r.db.Exec(`
		INSERT INTO assets (ticker, short_name, long_name, kind, sector, subsector, currency, logo_url, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	`,
		asset.Ticker, asset.ShortName, asset.LongName, asset.Kind,
		asset.Sector, asset.Subsector, asset.Currency, asset.LogoURL,
		now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert asset: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get asset id: %w", err)
	}

	asset.ID = id
	asset.Active = true
	asset.CreatedAt = now
	asset.UpdatedAt = now

	r.log.Info().Str("ticker", asset.Ticker).Int64("id", id).Msg("Asset created")
	return &asset, nil
}

// UpdateMetadata refreshes the name/logo fields from provider data
func (r *AssetRepository) UpdateMetadata(id int64, shortName string, longName, logoURL *string) error {
	now := time.Now().Format(time.RFC3339)

	_, err := r.db.Exec(`
		UPDATE assets
		SET short_name = ?, long_name = ?, logo_url = ?, updated_at = ?
		WHERE id = ?
	`, shortName, longName, logoURL, now, id)
	if err != nil {
		return fmt.Errorf("failed to update asset metadata: %w", err)
	}

	return nil
}

// Deactivate soft-deletes an asset
func (r *AssetRepository) Deactivate(id int64) error {
	now := time.Now().Format(time.RFC3339)

	_, err := r.db.Exec("UPDATE assets SET active = 0, updated_at = ? WHERE id = ?", now, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate asset: %w", err)
	}

	return nil
}

// scanner abstracts *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAsset(s scanner) (*Asset, error) {
	var a Asset
	var longName, sector, subsector, logoURL sql.NullString
	var active int

	err := s.Scan(
		&a.ID, &a.Ticker, &a.ShortName, &longName, &a.Kind,
		&sector, &subsector, &a.Currency, &logoURL, &active,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Active = active != 0
	if longName.Valid {
		a.LongName = &longName.String
	}
	if sector.Valid {
		a.Sector = &sector.String
	}
	if subsector.Valid {
		a.Subsector = &subsector.String
	}
	if logoURL.Valid {
		a.LogoURL = &logoURL.String
	}

	return &a, nil
}
