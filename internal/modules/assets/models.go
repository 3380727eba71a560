package assets

import "time"

// Asset kinds
const (
	KindStock = "STOCK"
	KindFII   = "FII"
	KindETF   = "ETF"
	KindBDR   = "BDR"
	KindIndex = "INDEX"
)

// Dividend kinds
const (
	DividendCash              = "CASH_DIVIDEND"
	DividendInterestOnCapital = "INTEREST_ON_CAPITAL"
	DividendStockBonus        = "STOCK_BONUS"
)

// Asset represents a tradable financial instrument
type Asset struct {
	ID        int64   `json:"id"`
	Ticker    string  `json:"ticker"`
	ShortName string  `json:"short_name"`
	LongName  *string `json:"long_name,omitempty"`
	Kind      string  `json:"kind"`
	Sector    *string `json:"sector,omitempty"`
	Subsector *string `json:"subsector,omitempty"`
	Currency  string  `json:"currency"`
	LogoURL   *string `json:"logo_url,omitempty"`
	Active    bool    `json:"active"`
	CreatedAt string  `json:"created_at"` // RFC3339
	UpdatedAt string  `json:"updated_at"` // RFC3339
}

// Quote is one price observation. Immutable once recorded; a series is
// ordered ascending by timestamp.
type Quote struct {
	ID        int64     `json:"id"`
	AssetID   int64     `json:"asset_id"`
	Timestamp time.Time `json:"timestamp"`
	Open      *float64  `json:"open,omitempty"`
	High      *float64  `json:"high,omitempty"`
	Low       *float64  `json:"low,omitempty"`
	Close     float64   `json:"close"`
	Volume    *int64    `json:"volume,omitempty"`
}

// Dividend is one dividend event of an asset
type Dividend struct {
	ID          int64      `json:"id"`
	AssetID     int64      `json:"asset_id"`
	Kind        string     `json:"kind"`
	Amount      float64    `json:"amount"`
	RecordDate  *time.Time `json:"record_date,omitempty"`
	ExDate      time.Time  `json:"ex_date"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
}

// SyncResult summarizes one sync of an asset against the quote provider
type SyncResult struct {
	Ticker    string `json:"ticker"`
	Quotes    int    `json:"quotes_synced"`
	Dividends int    `json:"dividends_synced"`
}
