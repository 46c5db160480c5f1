package scanner

// Predicate is one filter clause in scanner wire format.
type Predicate struct {
	Left      string `json:"left"`
	Operation string `json:"operation"`
	Right     any    `json:"right"`
}

// Sort specifies result ordering.
type Sort struct {
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

// Options carries scan options.
type Options struct {
	Lang string `json:"lang"`
}

// SymbolQuery scopes a scan to instrument types.
type SymbolQuery struct {
	Types []string `json:"types"`
}

// Symbols selects explicit tickers instead of filter-driven scanning.
type Symbols struct {
	Query   SymbolQuery `json:"query"`
	Tickers []string    `json:"tickers"`
}

// Query is the scan request payload.
type Query struct {
	Filter  []Predicate `json:"filter"`
	Columns []string    `json:"columns"`
	Sort    Sort        `json:"sort"`
	Range   [2]int      `json:"range"`
	Options Options     `json:"options"`
	Symbols Symbols     `json:"symbols"`
	Markets []string    `json:"markets,omitempty"`
}

// Row is one scan result: instrument id plus values positional to the
// requested columns.
type Row struct {
	Symbol string `json:"s"`
	Values []any  `json:"d"`
}

// Response is the scan response payload.
type Response struct {
	TotalCount int   `json:"totalCount"`
	Data       []Row `json:"data"`
}
