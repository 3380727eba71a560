package brapi

// QuoteResponse is the top-level response of /api/quote/{tickers}
type QuoteResponse struct {
	Results []QuoteResult `json:"results"`
}

// QuoteResult holds one instrument's quote, optionally with historical
// prices and dividend events depending on the request options.
type QuoteResult struct {
	Symbol                     string            `json:"symbol"`
	ShortName                  string            `json:"shortName"`
	LongName                   string            `json:"longName"`
	Currency                   string            `json:"currency"`
	LogoURL                    string            `json:"logourl"`
	RegularMarketPrice         float64           `json:"regularMarketPrice"`
	RegularMarketPreviousClose float64           `json:"regularMarketPreviousClose"`
	RegularMarketDayHigh       float64           `json:"regularMarketDayHigh"`
	RegularMarketDayLow        float64           `json:"regularMarketDayLow"`
	RegularMarketVolume        int64             `json:"regularMarketVolume"`
	RegularMarketTime          string            `json:"regularMarketTime"`
	RegularMarketChange        float64           `json:"regularMarketChange"`
	RegularMarketChangePercent float64           `json:"regularMarketChangePercent"`
	MarketCap                  float64           `json:"marketCap"`
	HistoricalDataPrice        []HistoricalPrice `json:"historicalDataPrice,omitempty"`
	DividendsData              *DividendsData    `json:"dividendsData,omitempty"`
}

// HistoricalPrice is one OHLCV bar, date as a Unix timestamp.
type HistoricalPrice struct {
	Date   int64   `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// DividendsData wraps the provider's dividend listings
type DividendsData struct {
	CashDividends []CashDividend `json:"cashDividends"`
}

// CashDividend is one dividend event. Dates are YYYY-MM-DD strings.
type CashDividend struct {
	Label       string  `json:"label"` // DIVIDENDO, JCP, ...
	Rate        float64 `json:"rate"`
	Date        string  `json:"date"` // record ("com") date
	ExDate      string  `json:"exDate"`
	PaymentDate string  `json:"paymentDate"`
}
