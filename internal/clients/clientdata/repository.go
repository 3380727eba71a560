// Package clientdata persists external API responses so repeated calls
// within a TTL are served locally and provider outages can fall back to
// stale data.
package clientdata

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache TTLs per provider concern.
const (
	TTLQuote      = 15 * time.Minute
	TTLHistorical = 6 * time.Hour
	TTLDividends  = 24 * time.Hour
)

// Repository stores msgpack-encoded payloads in the client_cache table.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new client cache repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "clientdata").Logger(),
	}
}

// Store encodes v with msgpack and upserts it under (provider, key).
func (r *Repository) Store(provider, key string, v interface{}, ttl time.Duration) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache payload: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()

	_, err = r.db.Exec(`
		INSERT OR REPLACE INTO client_cache (provider, cache_key, payload, expires_at)
		VALUES (?, ?, ?, ?)
	`, provider, key, payload, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return nil
}

// GetIfFresh decodes the entry into v when it exists and has not
// expired. Returns false on a miss.
func (r *Repository) GetIfFresh(provider, key string, v interface{}) (bool, error) {
	return r.get(provider, key, v, false)
}

// GetStale decodes the entry into v regardless of expiry. Used as a
// fallback when the provider is unreachable - stale data beats no data.
func (r *Repository) GetStale(provider, key string, v interface{}) (bool, error) {
	return r.get(provider, key, v, true)
}

func (r *Repository) get(provider, key string, v interface{}, allowStale bool) (bool, error) {
	var payload []byte
	var expiresAt int64

	err := r.db.QueryRow(`
		SELECT payload, expires_at FROM client_cache
		WHERE provider = ? AND cache_key = ?
	`, provider, key).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if !allowStale && time.Now().Unix() > expiresAt {
		return false, nil
	}

	if err := msgpack.Unmarshal(payload, v); err != nil {
		// Corrupt entry, treat as a miss
		r.log.Warn().Err(err).Str("provider", provider).Str("key", key).Msg("Dropping undecodable cache entry")
		return false, nil
	}

	return true, nil
}

// DeleteExpired removes entries past their expiry. Called by cleanup.
func (r *Repository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec("DELETE FROM client_cache WHERE expires_at < ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}
