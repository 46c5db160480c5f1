package screen

import (
	"github.com/tickergrid/screener/internal/domain/screen/filter"
	"github.com/tickergrid/screener/internal/scanner"
)

// deriveColumns builds the column projection: base columns first in their
// given order, then every filter field not already present. Filtered fields
// are therefore always retrievable in the response even when not requested.
func deriveColumns(base []string, filters []filter.Filter) []string {
	seen := make(map[string]struct{}, len(base)+len(filters))
	out := make([]string, 0, len(base)+len(filters))

	for _, col := range base {
		if _, dup := seen[col]; dup {
			continue
		}
		seen[col] = struct{}{}
		out = append(out, col)
	}
	for _, f := range filters {
		if _, dup := seen[f.Field()]; dup {
			continue
		}
		seen[f.Field()] = struct{}{}
		out = append(out, f.Field())
	}
	return out
}

// translate converts validated filters to scanner predicates. One filter
// maps to exactly one predicate; values pass through unchanged.
func translate(filters []filter.Filter) []scanner.Predicate {
	preds := make([]scanner.Predicate, len(filters))
	for i, f := range filters {
		preds[i] = scanner.Predicate{
			Left:      f.Field(),
			Operation: f.Operator().Code(),
			Right:     f.Value().Raw(),
		}
	}
	return preds
}

// projectRows decodes positional row values into keyed rows. The column
// list order matches the order sent to the scanner by construction. Null
// values pass through unchanged; trailing columns absent from a short row
// are omitted.
func projectRows(rows []scanner.Row, columns []string) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		row := Row{"symbol": r.Symbol}
		for j, col := range columns {
			if j < len(r.Values) {
				row[col] = r.Values[j]
			}
		}
		out[i] = row
	}
	return out
}
