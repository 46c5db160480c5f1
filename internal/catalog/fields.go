// Package catalog holds the static field metadata and preset screening
// strategies. Pure read-only data: nothing here touches the cache, the rate
// limiter, or the upstream scanner.
package catalog

import "fmt"

// Category classifies a screening field.
type Category string

// Field categories.
const (
	Fundamental Category = "fundamental"
	Technical   Category = "technical"
	Performance Category = "performance"
)

// Field describes one screenable field.
type Field struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Category    Category `json:"category"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
}

// StockFields is the static metadata catalog for equity screening fields.
var StockFields = []Field{
	// Fundamental
	{Name: "market_cap_basic", Label: "Market Capitalization", Category: Fundamental, Type: "currency",
		Description: "Total market value of company"},
	{Name: "return_on_equity", Label: "Return on Equity (TTM)", Category: Fundamental, Type: "percent",
		Description: "Profitability relative to shareholder equity"},
	{Name: "price_earnings_ttm", Label: "P/E Ratio (TTM)", Category: Fundamental, Type: "number",
		Description: "Price to earnings ratio"},
	{Name: "price_book_fq", Label: "P/B Ratio", Category: Fundamental, Type: "number",
		Description: "Price to book value ratio"},
	{Name: "price_sales_ratio", Label: "P/S Ratio", Category: Fundamental, Type: "number",
		Description: "Price to sales ratio"},
	{Name: "debt_to_equity", Label: "Debt/Equity Ratio", Category: Fundamental, Type: "number",
		Description: "Total debt relative to shareholder equity"},
	{Name: "net_margin_ttm", Label: "Net Margin (TTM)", Category: Fundamental, Type: "percent",
		Description: "Net income as percentage of revenue"},
	{Name: "after_tax_margin", Label: "After-Tax Margin", Category: Fundamental, Type: "percent",
		Description: "Profit margin after taxes"},
	{Name: "operating_margin", Label: "Operating Margin", Category: Fundamental, Type: "percent",
		Description: "Operating income as percentage of revenue"},
	{Name: "dividend_yield_recent", Label: "Dividend Yield", Category: Fundamental, Type: "percent",
		Description: "Annual dividend as percentage of price"},
	{Name: "earnings_per_share_diluted_ttm", Label: "EPS (Diluted, TTM)", Category: Fundamental, Type: "currency",
		Description: "Earnings per share"},
	{Name: "total_revenue", Label: "Total Revenue", Category: Fundamental, Type: "currency",
		Description: "Total company revenue"},
	{Name: "net_income", Label: "Net Income", Category: Fundamental, Type: "currency",
		Description: "Total net profit"},

	// Technical
	{Name: "RSI", Label: "RSI (14)", Category: Technical, Type: "number",
		Description: "Relative Strength Index momentum oscillator"},
	{Name: "SMA50", Label: "SMA 50", Category: Technical, Type: "number",
		Description: "50-day Simple Moving Average"},
	{Name: "SMA200", Label: "SMA 200", Category: Technical, Type: "number",
		Description: "200-day Simple Moving Average"},
	{Name: "EMA10", Label: "EMA 10", Category: Technical, Type: "number",
		Description: "10-day Exponential Moving Average"},
	{Name: "Volatility.M", Label: "Volatility (Monthly)", Category: Technical, Type: "percent",
		Description: "1-month price volatility"},
	{Name: "ATR", Label: "Average True Range", Category: Technical, Type: "number",
		Description: "Measure of volatility"},
	{Name: "ADX", Label: "ADX", Category: Technical, Type: "number",
		Description: "Average Directional Index"},

	// Performance
	{Name: "close", Label: "Current Price", Category: Performance, Type: "currency",
		Description: "Current stock price"},
	{Name: "change", Label: "Change %", Category: Performance, Type: "percent",
		Description: "Daily price change percentage"},
	{Name: "volume", Label: "Volume", Category: Performance, Type: "number",
		Description: "Trading volume"},
	{Name: "Perf.W", Label: "Weekly Performance", Category: Performance, Type: "percent",
		Description: "1-week price change"},
	{Name: "Perf.1M", Label: "Monthly Performance", Category: Performance, Type: "percent",
		Description: "1-month price change"},
	{Name: "Perf.3M", Label: "3-Month Performance", Category: Performance, Type: "percent",
		Description: "3-month price change"},
	{Name: "Perf.Y", Label: "Yearly Performance", Category: Performance, Type: "percent",
		Description: "1-year price change"},
	{Name: "Perf.YTD", Label: "YTD Performance", Category: Performance, Type: "percent",
		Description: "Year-to-date price change"},
}

// FieldList is the result of a field listing.
type FieldList struct {
	AssetType  string  `json:"asset_type"`
	Category   string  `json:"category,omitempty"`
	Message    string  `json:"message,omitempty"`
	FieldCount int     `json:"field_count"`
	Fields     []Field `json:"fields"`
}

// ListFields returns field metadata for the asset type, optionally narrowed
// to one category. Only stock fields are catalogued so far.
func ListFields(assetType string, category Category) FieldList {
	if assetType == "" {
		assetType = "stock"
	}
	if assetType != "stock" {
		return FieldList{
			AssetType: assetType,
			Message:   fmt.Sprintf("Fields for %s will be available in future versions", assetType),
			Fields:    []Field{},
		}
	}

	fields := StockFields
	cat := "all"
	if category != "" {
		cat = string(category)
		filtered := make([]Field, 0, len(fields))
		for _, f := range fields {
			if f.Category == category {
				filtered = append(filtered, f)
			}
		}
		fields = filtered
	}

	return FieldList{
		AssetType:  assetType,
		Category:   cat,
		FieldCount: len(fields),
		Fields:     fields,
	}
}
