package emit

import (
	"github.com/proycon/ssam/internal/errs"
	"github.com/proycon/ssam/internal/sampler"
)

// Write emits every assigned unit of every column.
//
// Rows are visited in order; a row drawn several times (replacement
// sampling) is written once per draw. Each unit is followed by a newline.
// When delim is non-nil, delim and a newline are written between consecutive
// units of the same destination, mirroring segment.Segment. The returned
// slice holds the number of units written to each sink.
func Write(d *Destinations, columns [][]string, a sampler.Assignment, order []int, delim *string) ([]int, error) {
	counts := make([]int, d.Len())
	for c, col := range columns {
		if len(col) != len(a) {
			return counts, errs.Invariant("emit", "column %d has %d units but %d are assigned", c+1, len(col), len(a))
		}
		for _, row := range order {
			for _, set := range a[row] {
				slot, err := d.Slot(c, set)
				if err != nil {
					return counts, err
				}
				if err := d.writeUnit(slot, col[row], counts[slot] > 0, delim); err != nil {
					return counts, err
				}
				counts[slot]++
			}
		}
	}
	return counts, nil
}

func (d *Destinations) writeUnit(slot int, unit string, written bool, delim *string) error {
	s := d.sinks[slot]
	if delim != nil && written {
		if _, err := s.w.WriteString(*delim); err != nil {
			return errs.IO("write "+s.name, err)
		}
		if err := s.w.WriteByte('\n'); err != nil {
			return errs.IO("write "+s.name, err)
		}
	}
	if _, err := s.w.WriteString(unit); err != nil {
		return errs.IO("write "+s.name, err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return errs.IO("write "+s.name, err)
	}
	return nil
}
