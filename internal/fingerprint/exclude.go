package fingerprint

import "github.com/proycon/ssam/internal/errs"

// Exclude drops rows whose unit matches the reference index of its column.
//
// refs[i] is the index for columns[i]. Each column is checked only against
// its own reference, but a row that matches in any column is removed from
// every column so that dependent columns stay row-aligned. The returned
// columns are fresh slices; removed lists the dropped row positions in
// ascending order.
func Exclude(columns [][]string, refs []*Index) (kept [][]string, removed []int, err error) {
	if len(refs) != len(columns) {
		return nil, nil, errs.Config("exclude",
			"%d exclude references given for %d input columns; exactly one per column is required",
			len(refs), len(columns))
	}
	if len(columns) == 0 {
		return columns, nil, nil
	}

	rows := len(columns[0])
	drop := make([]bool, rows)
	for c, col := range columns {
		if len(col) != rows {
			return nil, nil, errs.Consistency("exclude",
				"column %d has %d units, column 1 has %d", c+1, len(col), rows)
		}
		ref := refs[c]
		if ref.Len() == 0 {
			continue
		}
		for i, u := range col {
			if !drop[i] && ref.ContainsUnit(u) {
				drop[i] = true
			}
		}
	}

	for i, d := range drop {
		if d {
			removed = append(removed, i)
		}
	}

	kept = make([][]string, len(columns))
	for c, col := range columns {
		out := make([]string, 0, rows-len(removed))
		for i, u := range col {
			if !drop[i] {
				out = append(out, u)
			}
		}
		kept[c] = out
	}
	return kept, removed, nil
}
