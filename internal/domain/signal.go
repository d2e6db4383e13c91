package domain

// SignalStatus is the severity band of a reading
type SignalStatus string

const (
	StatusSafe     SignalStatus = "SAFE"
	StatusCaution  SignalStatus = "CAUTION"
	StatusCritical SignalStatus = "CRITICAL"
)

// Direction is the expected market direction given a reading
type Direction string

const (
	DirectionUp      Direction = "UP"
	DirectionDown    Direction = "DOWN"
	DirectionNeutral Direction = "NEUTRAL"
)

// MetricID names a classified macro metric
type MetricID string

const (
	MetricExchangeRate MetricID = "exchange-rate"
	MetricUSYield      MetricID = "us-yield"
	MetricOilPrice     MetricID = "oil-price"
	MetricGold         MetricID = "gold"
)

// SignalReading is a classified macro metric
type SignalReading struct {
	ID          MetricID     `json:"id"`
	Name        string       `json:"name"`
	Value       string       `json:"value"`
	RawValue    float64      `json:"raw_value"`
	Threshold   string       `json:"threshold"`
	Status      SignalStatus `json:"status"`
	Probability int          `json:"probability"`
	Direction   Direction    `json:"direction"`
	Description string       `json:"description"`
	Change      float64      `json:"change"`
}

// ThemeSignal is one ticker of a theme with its demo analysis
type ThemeSignal struct {
	ID          string    `json:"id"`
	Ticker      string    `json:"ticker"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	ChangePct   float64   `json:"change_pct"`
	Sentiment   Sentiment `json:"sentiment"`
	ImpactScore int       `json:"impact_score"`
	WhaleActive bool      `json:"whale_active"`
	TargetPrice float64   `json:"target_price"`
	StopLoss    float64   `json:"stop_loss"`
	AIReason    string    `json:"ai_reason"`
	UpdatedAt   string    `json:"updated_at"`
	IsFallback  bool      `json:"is_fallback,omitempty"`
}

// MacroIndicator is one cell of the VVIP macro dashboard
type MacroIndicator struct {
	Value  string `json:"value"`
	Change string `json:"change,omitempty"`
	Label  string `json:"label,omitempty"`
}

// SignalHistoryEntry is a past signal shown on the VVIP dashboard
type SignalHistoryEntry struct {
	Date    string `json:"date"`
	Name    string `json:"name"`
	Impact  string `json:"impact"`
	Success bool   `json:"success"`
}

// MacroDashboard is the VVIP block of the market signal feed
type MacroDashboard struct {
	CrashRisk   string                    `json:"crash_risk"`
	RallyChance string                    `json:"rally_chance"`
	Indicators  map[string]MacroIndicator `json:"indicators"`
	History     []SignalHistoryEntry      `json:"history"`
}

// Verdict is the price-action call of the stock analysis endpoint
type Verdict struct {
	Label     string  `json:"verdict"`
	Score     float64 `json:"score"`
	Macro     string  `json:"macro"`
	Technical string  `json:"technical"`
}

// MarketSignals is the body of GET /api/market-signals
type MarketSignals struct {
	Signals   []SignalReading `json:"signals"`
	VVIP      *MacroDashboard `json:"vvip,omitempty"`
	Timestamp string          `json:"timestamp"`
}

// ThemeSignals is the body of GET /api/theme-signals
type ThemeSignals struct {
	ThemeName string        `json:"theme_name"`
	Signals   []ThemeSignal `json:"signals"`
}

// StockAnalysis is the body of GET /api/stock-analysis
type StockAnalysis struct {
	Ticker      string  `json:"ticker"`
	Price       string  `json:"price"`
	Change      string  `json:"change"`
	Currency    string  `json:"currency"`
	Verdict     string  `json:"verdict"`
	Score       float64 `json:"score"`
	Macro       string  `json:"macro"`
	Fundamental string  `json:"fundamental"`
	Technical   string  `json:"technical"`
	Risk        string  `json:"risk"`
}
