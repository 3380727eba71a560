package analytics

// Indicators carries technical indicator values. A nil field means the
// window did not hold enough observations to compute it.
type Indicators struct {
	RSI14 *float64 `json:"rsi_14"`
	SMA20 *float64 `json:"sma_20"`
}

// PerformanceReport is the full risk/return picture of one asset over a
// lookback window.
type PerformanceReport struct {
	Ticker           string     `json:"ticker"`
	WindowDays       int        `json:"window_days"`
	ObservationCount int        `json:"observation_count"`
	DividendCount    int        `json:"dividend_count"`
	CurrentPrice     float64    `json:"current_price"`
	MinPrice         float64    `json:"min_price"`
	MaxPrice         float64    `json:"max_price"`
	TotalReturn      float64    `json:"total_return"`
	AnnualizedReturn float64    `json:"annualized_return"`
	Volatility       float64    `json:"volatility"`
	SharpeRatio      float64    `json:"sharpe_ratio"`
	MaxDrawdown      float64    `json:"max_drawdown"`
	DividendYield    float64    `json:"dividend_yield"`
	AverageVolume    float64    `json:"average_volume"`
	Indicators       Indicators `json:"indicators"`
}

// HoldingPerformance is one wallet position's contribution
type HoldingPerformance struct {
	Ticker        string  `json:"ticker"`
	ShortName     string  `json:"short_name"`
	Sector        string  `json:"sector"`
	Quantity      float64 `json:"quantity"`
	AvgPrice      float64 `json:"avg_price"`
	InvestedValue float64 `json:"invested_value"`
	CurrentValue  float64 `json:"current_value"`
	Gain          float64 `json:"gain"`
	GainPct       float64 `json:"gain_pct"`
	WeightPct     float64 `json:"weight_pct"`
}

// WalletReport aggregates a wallet's positions
type WalletReport struct {
	WalletID         int64                `json:"wallet_id"`
	WalletName       string               `json:"wallet_name"`
	HoldingCount     int                  `json:"holding_count"`
	TotalInvested    float64              `json:"total_invested"`
	TotalCurrent     float64              `json:"total_current"`
	TotalGain        float64              `json:"total_gain"`
	TotalGainPct     float64              `json:"total_gain_pct"`
	MaxConcentration float64              `json:"max_concentration"`
	SectorExposure   map[string]float64   `json:"sector_exposure"`
	Holdings         []HoldingPerformance `json:"holdings"`
}

// ComparisonResult ranks asset reports by Sharpe ratio
type ComparisonResult struct {
	WindowDays int                 `json:"window_days"`
	Requested  int                 `json:"requested"`
	Analyzed   int                 `json:"analyzed"`
	Skipped    []string            `json:"skipped,omitempty"`
	Ranking    []PerformanceReport `json:"ranking"`
}
