package screen

import "encoding/json"

// keyPayload is the canonical cache-key form of a request: every parameter
// that affects the scanner query, plus the asset-domain tag. Struct field
// order is fixed and map keys marshal sorted, so the same logical request
// always serializes to the same key.
type keyPayload struct {
	Domain    string   `json:"domain"`
	Filters   []any    `json:"filters,omitempty"`
	Markets   []string `json:"markets,omitempty"`
	SortBy    string   `json:"sort_by,omitempty"`
	SortOrder string   `json:"sort_order,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Columns   []string `json:"columns,omitempty"`
	Tickers   []string `json:"tickers,omitempty"`
}

func requestKey(p keyPayload) string {
	b, err := json.Marshal(p)
	if err != nil {
		// Decoded JSON input always re-marshals; an error here means a
		// programming bug, and an unshareable key only costs a cache miss.
		return ""
	}
	return string(b)
}
