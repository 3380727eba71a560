package wallet

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// WalletRepository handles wallet database operations
type WalletRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *sql.DB, log zerolog.Logger) *WalletRepository {
	return &WalletRepository{
		db:  db,
		log: log.With().Str("repo", "wallets").Logger(),
	}
}

const walletColumns = "id, name, description, total_value, active, created_at, updated_at"

// GetByID returns the wallet with the given id, or nil when absent
func (r *WalletRepository) GetByID(id int64) (*Wallet, error) {
	row := r.db.QueryRow("SELECT "+walletColumns+" FROM wallets WHERE id = ?", id)

	wallet, err := scanWallet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet: %w", err)
	}

	return wallet, nil
}

// List returns all active wallets
func (r *WalletRepository) List() ([]Wallet, error) {
	rows, err := r.db.Query("SELECT " + walletColumns + " FROM wallets WHERE active = 1 ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer rows.Close()

	var result []Wallet
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		result = append(result, *wallet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallets: %w", err)
	}

	return result, nil
}

// Create inserts a new wallet
func (r *WalletRepository) Create(name string, description *string) (*Wallet, error) {
	now := time.Now().Format(time.RFC3339)

	result, err := r.db.Exec(`
		INSERT INTO wallets (name, description, total_value, active, created_at, updated_at)
		VALUES (?, ?, 0, 1, ?, ?)
	`, name, description, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert wallet: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet id: %w", err)
	}

	r.log.Info().Str("name", name).Int64("id", id).Msg("Wallet created")

	return &Wallet{
		ID:          id,
		Name:        name,
		Description: description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateTotalValue persists the wallet's recomputed total value
func (r *WalletRepository) UpdateTotalValue(id int64, totalValue float64) error {
	now := time.Now().Format(time.RFC3339)

	_, err := r.db.Exec("UPDATE wallets SET total_value = ?, updated_at = ? WHERE id = ?", totalValue, now, id)
	if err != nil {
		return fmt.Errorf("failed to update wallet total: %w", err)
	}

	return nil
}

// Deactivate soft-deletes a wallet
func (r *WalletRepository) Deactivate(id int64) error {
	now := time.Now().Format(time.RFC3339)

	_, err := r.db.Exec("UPDATE wallets SET active = 0, updated_at = ? WHERE id = ?", now, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate wallet: %w", err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanWallet(s scanner) (*Wallet, error) {
	var w Wallet
	var description sql.NullString
	var active int

	err := s.Scan(&w.ID, &w.Name, &description, &w.TotalValue, &active, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}

	w.Active = active != 0
	if description.Valid {
		w.Description = &description.String
	}

	return &w, nil
}
