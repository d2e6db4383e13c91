package domain

// Quote is a market quote as returned to clients
type Quote struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName,omitempty"`
	RegularMarketPrice         float64  `json:"regularMarketPrice"`
	RegularMarketChangePercent float64  `json:"regularMarketChangePercent"`
	RegularMarketVolume        int64    `json:"regularMarketVolume,omitempty"`
	MarketCap                  int64    `json:"marketCap,omitempty"`
	TrailingPE                 *float64 `json:"trailingPE,omitempty"`
	Currency                   string   `json:"currency,omitempty"`
	IsSimulated                bool     `json:"isSimulated,omitempty"`
}

// Theme is a named basket of tickers
type Theme struct {
	ID            string   `json:"id" yaml:"id"`
	NameKO        string   `json:"name_ko" yaml:"name_ko"`
	NameEN        string   `json:"name_en" yaml:"name_en"`
	DescriptionKO string   `json:"description_ko" yaml:"description_ko"`
	DescriptionEN string   `json:"description_en" yaml:"description_en"`
	Tickers       []string `json:"tickers" yaml:"tickers"`
}

// Name returns the localized theme name
func (t Theme) Name(lang string) string {
	if lang == "en" {
		return t.NameEN
	}
	return t.NameKO
}
