package wallet

import "time"

// Transaction kinds
const (
	TransactionBuy  = "BUY"
	TransactionSell = "SELL"
)

// Wallet represents an investment portfolio
type Wallet struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	TotalValue  float64 `json:"total_value"`
	Active      bool    `json:"active"`
	CreatedAt   string  `json:"created_at"` // RFC3339
	UpdatedAt   string  `json:"updated_at"` // RFC3339
}

// Holding is a position in one asset within a wallet. CurrentValue and
// WeightPct are recomputed from the latest stored quote by
// Service.RefreshValuations.
type Holding struct {
	ID            int64   `json:"id"`
	WalletID      int64   `json:"wallet_id"`
	AssetID       int64   `json:"asset_id"`
	Quantity      float64 `json:"quantity"`
	AvgPrice      float64 `json:"avg_price"`
	InvestedValue float64 `json:"invested_value"`
	CurrentValue  float64 `json:"current_value"`
	WeightPct     float64 `json:"weight_pct"`
	AddedAt       string  `json:"added_at"`   // RFC3339
	UpdatedAt     string  `json:"updated_at"` // RFC3339
}

// HoldingWithAsset joins a holding with display fields of its asset
type HoldingWithAsset struct {
	Holding
	Ticker    string  `json:"ticker"`
	ShortName string  `json:"short_name"`
	Sector    *string `json:"sector,omitempty"`
}

// Transaction records a buy or sell in a wallet
type Transaction struct {
	ID         int64     `json:"id"`
	WalletID   int64     `json:"wallet_id"`
	AssetID    int64     `json:"asset_id"`
	Kind       string    `json:"kind"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	TotalValue float64   `json:"total_value"`
	Fee        float64   `json:"fee"`
	ExecutedAt time.Time `json:"executed_at"`
	Notes      *string   `json:"notes,omitempty"`
}
