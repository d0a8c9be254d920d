package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriodMonth(t *testing.T) {
	p, err := ParsePeriod("2026-01")
	assert.NoError(t, err)

	assert.Equal(t, "2026-01", p.Label)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), p.End)
	assert.False(t, p.Quarterly)
}

func TestParsePeriodQuarter(t *testing.T) {
	p, err := ParsePeriod("2026-Q3")
	assert.NoError(t, err)

	assert.Equal(t, "2026-Q3", p.Label)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), p.End)
	assert.True(t, p.Quarterly)
}

func TestParsePeriodLowercaseQuarter(t *testing.T) {
	p, err := ParsePeriod("2026-q1")
	assert.NoError(t, err)
	assert.Equal(t, "2026-Q1", p.Label)
}

func TestParsePeriodTrimsWhitespace(t *testing.T) {
	p, err := ParsePeriod("  2026-02 ")
	assert.NoError(t, err)
	assert.Equal(t, "2026-02", p.Label)
}

func TestParsePeriodRejectsGarbage(t *testing.T) {
	for _, input := range []string{
		"", "2026", "2026-13", "2026-00", "2026-Q5", "2026-Q0",
		"26-01", "banana", "2026-QQ", "10000-01",
	} {
		_, err := ParsePeriod(input)
		var invalid *InvalidPeriodError
		if assert.ErrorAs(t, err, &invalid, "input %q", input) {
			assert.Equal(t, "invalid_period", invalid.ErrorCode())
			assert.NotEmpty(t, invalid.Suggestion())
		}
	}
}

func TestPreviousMonthAcrossYear(t *testing.T) {
	p, err := ParsePeriod("2026-01")
	assert.NoError(t, err)

	prev := p.Previous()
	assert.Equal(t, "2025-12", prev.Label)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), prev.Start)
	assert.Equal(t, p.Start, prev.End)
}

func TestPreviousQuarterAcrossYear(t *testing.T) {
	p, err := ParsePeriod("2026-Q1")
	assert.NoError(t, err)

	prev := p.Previous()
	assert.Equal(t, "2025-Q4", prev.Label)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), prev.Start)
	assert.True(t, prev.Quarterly)
}

func TestPeriodForMonthly(t *testing.T) {
	p := PeriodFor(time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC))

	assert.Equal(t, "2026-08", p.Label)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), p.End)
}
