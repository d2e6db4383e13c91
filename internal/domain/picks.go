package domain

// AlphaSignals is the body of GET /api/alpha-signals
type AlphaSignals struct {
	Signals      []ThemeSignal `json:"signals"`
	Locked       bool          `json:"locked"`
	UnlockAction *UnlockAction `json:"unlock_action,omitempty"`
	IsFallback   bool          `json:"is_fallback"`
	UpdatedAt    string        `json:"updated_at"`
}

// VVIPPick is one card of the VVIP picks board. Prices are display strings.
type VVIPPick struct {
	Ticker     string `json:"ticker"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Target     string `json:"target"`
	Stop       string `json:"stop"`
	Reason     string `json:"reason"`
	Impact     string `json:"impact,omitempty"`
	Signal     string `json:"signal"`
	Confidence int    `json:"confidence"`
	Source     string `json:"source"`
}

// Sources of a VVIP pick
const (
	PickSourceNews      = "news"
	PickSourceWatchlist = "watchlist"
)

// VVIPPicks is the body of GET /api/vvip-picks
type VVIPPicks struct {
	Success      bool          `json:"success"`
	Data         []VVIPPick    `json:"data"`
	Locked       bool          `json:"locked"`
	UnlockAction *UnlockAction `json:"unlock_action,omitempty"`
	IsFallback   bool          `json:"is_fallback"`
	UpdatedAt    string        `json:"updated_at"`
}

// ExchangeRate is the body of GET /api/exchange-rate
type ExchangeRate struct {
	Base       string  `json:"base"`
	Quote      string  `json:"quote"`
	Rate       float64 `json:"rate"`
	IsFallback bool    `json:"is_fallback"`
}
