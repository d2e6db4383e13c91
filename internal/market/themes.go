package market

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stock-empire/internal/domain"
)

// DefaultThemes is the built-in catalogue
var DefaultThemes = []domain.Theme{
	{
		ID:            "ai-revolution",
		NameKO:        "AI 혁명",
		NameEN:        "AI Revolution",
		DescriptionKO: "인공지능 칩, 소프트웨어 및 인프라 선도 기업",
		DescriptionEN: "Leading AI chip, software, and infrastructure companies",
		Tickers:       []string{"NVDA", "MSFT", "GOOGL", "AMD", "PLTR", "AVGO", "SMCI"},
	},
	{
		ID:            "ev-energy",
		NameKO:        "전기차 & 에너지",
		NameEN:        "EV & Clean Energy",
		DescriptionKO: "테슬라 및 차세대 에너지 혁신 기업",
		DescriptionEN: "Tesla and next-gen energy innovators",
		Tickers:       []string{"TSLA", "RIVN", "LI", "ENPH", "FSLR", "CHPT"},
	},
	{
		ID:            "semiconductors",
		NameKO:        "반도체 거인",
		NameEN:        "Semiconductor Giants",
		DescriptionKO: "글로벌 공급망의 핵심 반도체 제조 및 설계",
		DescriptionEN: "Core semiconductor manufacturing and design",
		Tickers:       []string{"TSM", "ASML", "INTC", "MU", "LRCX", "AMAT"},
	},
	{
		ID:            "fintech-crypto",
		NameKO:        "핀테크 & 크립토",
		NameEN:        "Fintech & Crypto",
		DescriptionKO: "디지털 결제 및 가상자산 생태계",
		DescriptionEN: "Digital payments and crypto ecosystem",
		Tickers:       []string{"PYPL", "SQ", "COIN", "MSTR", "V", "MA"},
	},
	{
		ID:            "big-tech",
		NameKO:        "빅테크 랠리",
		NameEN:        "Big Tech Rally",
		DescriptionKO: "시장 지배력이 강력한 초대형 기술주",
		DescriptionEN: "Mega-cap tech stocks with dominant market power",
		Tickers:       []string{"AAPL", "AMZN", "META", "NFLX", "MSFT"},
	},
}

// Catalogue is an ordered, id-indexed set of themes
type Catalogue struct {
	themes []domain.Theme
	byID   map[string]int
}

// NewCatalogue indexes themes. Duplicate ids keep the first entry.
func NewCatalogue(themes []domain.Theme) *Catalogue {
	c := &Catalogue{byID: make(map[string]int, len(themes))}
	for _, t := range themes {
		if _, dup := c.byID[t.ID]; dup || t.ID == "" {
			continue
		}
		c.byID[t.ID] = len(c.themes)
		c.themes = append(c.themes, t)
	}
	return c
}

// LoadCatalogue reads themes from a YAML file, or returns the built-in
// catalogue when path is empty.
func LoadCatalogue(path string) (*Catalogue, error) {
	if path == "" {
		return NewCatalogue(DefaultThemes), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read themes file: %w", err)
	}

	var doc struct {
		Themes []domain.Theme `yaml:"themes"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse themes file: %w", err)
	}
	if len(doc.Themes) == 0 {
		return nil, fmt.Errorf("themes file %s defines no themes", path)
	}

	return NewCatalogue(doc.Themes), nil
}

// Find returns the theme with id
func (c *Catalogue) Find(id string) (domain.Theme, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Theme{}, false
	}
	return c.themes[i], true
}

// All returns the themes in catalogue order
func (c *Catalogue) All() []domain.Theme {
	out := make([]domain.Theme, len(c.themes))
	copy(out, c.themes)
	return out
}
