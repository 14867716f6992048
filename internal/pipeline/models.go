package pipeline

import (
	"github.com/dvloznov/nutrition-ranker/internal/domain"
)

// Rejection describes one input line the parser could not turn into a record.
type Rejection struct {
	Line   int    // 1-based line number in the source, header included
	Reason string // parser error message
}

// Dataset is the result of loading one source.
// It is returned by Load instead of being kept in package state.
type Dataset struct {
	Records    []domain.Record // accepted records, in input order
	Lines      int             // data lines seen, header excluded
	Rejected   int             // lines dropped by the parser
	Rejections []Rejection     // first MaxRejectionDetails rejections

	// Empty is set when the source had no header line at all.
	Empty bool
}

// Loaded returns the number of accepted records.
func (d *Dataset) Loaded() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
