// Package docnum computes human-readable document numbers of the form
// <PREFIX>-<PERIOD>-<SEQ>, where SEQ is scoped to the PREFIX+PERIOD
// combination. The allocator is stateless: it derives the next sequence from
// the document numbers already persisted and relies on the table's unique
// constraint plus a bounded retry in the caller to resolve races.
package docnum

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxRetries is how many times a creation re-scans and re-allocates after
// the insert hits the unique constraint, before giving up.
const MaxRetries = 3

// PeriodStyle selects how the period token is derived from wall-clock time.
type PeriodStyle int

const (
	// PeriodYear2 uses the last two digits of the year, e.g. "25".
	PeriodYear2 PeriodStyle = iota
	// PeriodMonthName uses the uppercase month name, e.g. "MAY".
	PeriodMonthName
)

// Rule is a per-variant document numbering convention.
type Rule struct {
	Prefix string
	Period PeriodStyle
	Width  int // zero-pad width of the sequence part
}

// Numbering conventions per report variant.
var (
	CoatingInspection  = Rule{Prefix: "AGI-FAIRC", Period: PeriodYear2, Width: 2}
	PrintingInspection = Rule{Prefix: "AGI-FAIRP", Period: PeriodYear2, Width: 2}
	IncomingQuality    = Rule{Prefix: "AGI-IQC", Period: PeriodYear2, Width: 2}
	LineClearance      = Rule{Prefix: "AGI-LCR", Period: PeriodMonthName, Width: 3}
)

// PeriodToken returns the period part of a document number for time t.
func (r Rule) PeriodToken(t time.Time) string {
	switch r.Period {
	case PeriodMonthName:
		return strings.ToUpper(t.Month().String())
	default:
		return fmt.Sprintf("%02d", t.Year()%100)
	}
}

// ScanPrefix returns the "<PREFIX>-<PERIOD>-" string used to scan existing
// document numbers for time t.
func (r Rule) ScanPrefix(t time.Time) string {
	return r.Prefix + "-" + r.PeriodToken(t) + "-"
}

// Format renders a full document number for time t and sequence seq.
func (r Rule) Format(t time.Time, seq int) string {
	return fmt.Sprintf("%s%0*d", r.ScanPrefix(t), r.Width, seq)
}

// Next computes the next document number for time t given the numbers
// already allocated under the same scan prefix. Numbers whose trailing
// segment does not parse as an integer are ignored, not treated as errors.
// An empty slice yields sequence 1.
func (r Rule) Next(existing []string, t time.Time) string {
	return r.Format(t, MaxSequence(existing)+1)
}

// MaxSequence returns the highest trailing sequence among the given document
// numbers, or 0 when none parse.
func MaxSequence(existing []string) int {
	max := 0
	for _, docNo := range existing {
		idx := strings.LastIndex(docNo, "-")
		if idx < 0 || idx == len(docNo)-1 {
			continue
		}
		seq, err := strconv.Atoi(docNo[idx+1:])
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max
}
