package catalog

import (
	"fmt"

	"github.com/tickergrid/screener/internal/domain"
)

// PresetFilter is one predicate of a preset, in tool-input form.
type PresetFilter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Preset is a named, pre-built screening strategy.
type Preset struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Filters     []PresetFilter `json:"filters"`
	Markets     []string       `json:"markets,omitempty"`
	SortBy      string         `json:"sort_by,omitempty"`
	SortOrder   string         `json:"sort_order,omitempty"`
}

// presetOrder fixes the listing order.
var presetOrder = []string{
	"quality_stocks",
	"value_stocks",
	"dividend_stocks",
	"momentum_stocks",
	"growth_stocks",
}

var presets = map[string]Preset{
	"quality_stocks": {
		Name: "Quality Stocks (Conservative)",
		Description: "High-quality, low-volatility stocks with strong fundamentals and uptrends. " +
			"Based on Avanza conservative screening strategy.",
		Filters: []PresetFilter{
			{Field: "return_on_equity", Operator: "greater", Value: 12},
			{Field: "market_cap_basic", Operator: "greater", Value: 200000000},
			{Field: "price_earnings_ttm", Operator: "less", Value: 40},
			{Field: "price_sales_ratio", Operator: "less", Value: 8},
			{Field: "debt_to_equity", Operator: "less", Value: 0.7},
			{Field: "after_tax_margin", Operator: "greater", Value: 10},
			{Field: "RSI", Operator: "in_range", Value: []any{45, 65}},
			{Field: "Volatility.M", Operator: "less_or_equal", Value: 3},
			{Field: "SMA50", Operator: "greater", Value: "SMA200"},
		},
		Markets:   []string{"america"},
		SortBy:    "market_cap_basic",
		SortOrder: "desc",
	},

	"value_stocks": {
		Name:        "Value Stocks",
		Description: "Undervalued stocks with low P/E and P/B ratios",
		Filters: []PresetFilter{
			{Field: "price_earnings_ttm", Operator: "less", Value: 15},
			{Field: "price_book_fq", Operator: "less", Value: 1.5},
			{Field: "market_cap_basic", Operator: "greater", Value: 1000000000},
			{Field: "return_on_equity", Operator: "greater", Value: 10},
		},
		Markets:   []string{"america"},
		SortBy:    "price_earnings_ttm",
		SortOrder: "asc",
	},

	"dividend_stocks": {
		Name:        "Dividend Stocks",
		Description: "High dividend yield with consistent payout",
		Filters: []PresetFilter{
			{Field: "dividend_yield_recent", Operator: "greater", Value: 3},
			{Field: "market_cap_basic", Operator: "greater", Value: 5000000000},
			{Field: "debt_to_equity", Operator: "less", Value: 1.0},
		},
		Markets:   []string{"america"},
		SortBy:    "dividend_yield_recent",
		SortOrder: "desc",
	},

	"momentum_stocks": {
		Name:        "Momentum Stocks",
		Description: "Stocks with strong recent performance and technical momentum",
		Filters: []PresetFilter{
			{Field: "RSI", Operator: "in_range", Value: []any{50, 70}},
			{Field: "SMA50", Operator: "greater", Value: "SMA200"},
			{Field: "Perf.1M", Operator: "greater", Value: 5},
			{Field: "volume", Operator: "greater", Value: 1000000},
		},
		Markets:   []string{"america"},
		SortBy:    "Perf.1M",
		SortOrder: "desc",
	},

	"growth_stocks": {
		Name:        "Growth Stocks",
		Description: "High-growth companies with strong revenue and earnings expansion",
		Filters: []PresetFilter{
			{Field: "return_on_equity", Operator: "greater", Value: 20},
			{Field: "operating_margin", Operator: "greater", Value: 15},
			{Field: "market_cap_basic", Operator: "greater", Value: 1000000000},
		},
		Markets:   []string{"america"},
		SortBy:    "return_on_equity",
		SortOrder: "desc",
	},
}

// PresetSummary is one entry of a preset listing.
type PresetSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GetPreset returns the preset with the given key.
func GetPreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", domain.ErrPresetNotFound, name)
	}
	return p, nil
}

// ListPresets returns all preset keys with descriptions, in a fixed order.
func ListPresets() []PresetSummary {
	out := make([]PresetSummary, 0, len(presetOrder))
	for _, key := range presetOrder {
		out = append(out, PresetSummary{Name: key, Description: presets[key].Description})
	}
	return out
}
