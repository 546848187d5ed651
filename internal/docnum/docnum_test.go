package docnum

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var may2025 = time.Date(2025, time.May, 14, 10, 30, 0, 0, time.UTC)

func TestPeriodToken(t *testing.T) {
	assert.Equal(t, "25", CoatingInspection.PeriodToken(may2025))
	assert.Equal(t, "25", IncomingQuality.PeriodToken(may2025))
	assert.Equal(t, "MAY", LineClearance.PeriodToken(may2025))

	jan := time.Date(2031, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "31", PrintingInspection.PeriodToken(jan))
	assert.Equal(t, "JANUARY", LineClearance.PeriodToken(jan))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "AGI-FAIRC-25-01", CoatingInspection.Format(may2025, 1))
	assert.Equal(t, "AGI-FAIRP-25-07", PrintingInspection.Format(may2025, 7))
	assert.Equal(t, "AGI-IQC-25-12", IncomingQuality.Format(may2025, 12))
	assert.Equal(t, "AGI-LCR-MAY-001", LineClearance.Format(may2025, 1))

	// sequences wider than the pad are not truncated
	assert.Equal(t, "AGI-FAIRC-25-120", CoatingInspection.Format(may2025, 120))
	assert.Equal(t, "AGI-LCR-MAY-1200", LineClearance.Format(may2025, 1200))
}

func TestNext(t *testing.T) {
	existing := []string{"AGI-LCR-MAY-001", "AGI-LCR-MAY-002", "AGI-LCR-MAY-003"}
	assert.Equal(t, "AGI-LCR-MAY-004", LineClearance.Next(existing, may2025))
}

func TestNextEmpty(t *testing.T) {
	assert.Equal(t, "AGI-LCR-MAY-001", LineClearance.Next(nil, may2025))
	assert.Equal(t, "AGI-IQC-25-01", IncomingQuality.Next([]string{}, may2025))
}

func TestNextIgnoresMalformedSuffixes(t *testing.T) {
	existing := []string{
		"AGI-LCR-MAY-002",
		"AGI-LCR-MAY-DRAFT", // trailing segment is not a number
		"AGI-LCR-MAY-",      // empty trailing segment
		"bogus",             // no dash at all
	}
	assert.Equal(t, "AGI-LCR-MAY-003", LineClearance.Next(existing, may2025))
}

func TestNextUsesMaxNotCount(t *testing.T) {
	// A gap from a deleted draft must not produce a duplicate
	existing := []string{"AGI-IQC-25-01", "AGI-IQC-25-05"}
	assert.Equal(t, "AGI-IQC-25-06", IncomingQuality.Next(existing, may2025))
}

func TestMaxSequence(t *testing.T) {
	assert.Equal(t, 0, MaxSequence(nil))
	assert.Equal(t, 9, MaxSequence([]string{"AGI-FAIRC-25-09", "AGI-FAIRC-25-03"}))
	// zero-padded and unpadded forms compare numerically
	assert.Equal(t, 10, MaxSequence([]string{"AGI-FAIRC-25-09", "AGI-FAIRC-25-10"}))
}

func TestScanPrefix(t *testing.T) {
	assert.Equal(t, "AGI-FAIRC-25-", CoatingInspection.ScanPrefix(may2025))
	assert.Equal(t, "AGI-LCR-MAY-", LineClearance.ScanPrefix(may2025))
}
