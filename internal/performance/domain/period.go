package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is one reporting interval, monthly ("2026-01") or quarterly
// ("2026-Q1"). End is exclusive.
type Period struct {
	Label     string
	Start     time.Time
	End       time.Time
	Quarterly bool
}

// InvalidPeriodError reports a period label that is neither YYYY-MM nor
// YYYY-Qn.
type InvalidPeriodError struct {
	Input string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period %q", e.Input)
}

func (e *InvalidPeriodError) ErrorCode() string { return "invalid_period" }

func (e *InvalidPeriodError) Suggestion() string {
	return `use a month like "2026-01" or a quarter like "2026-Q1"`
}

// ParsePeriod parses a period label. Months and quarters are anchored to
// UTC calendar boundaries.
func ParsePeriod(label string) (Period, error) {
	parts := strings.SplitN(strings.TrimSpace(label), "-", 2)
	if len(parts) != 2 {
		return Period{}, &InvalidPeriodError{Input: label}
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1970 || year > 9999 {
		return Period{}, &InvalidPeriodError{Input: label}
	}

	rest := strings.ToUpper(parts[1])
	if strings.HasPrefix(rest, "Q") {
		quarter, err := strconv.Atoi(rest[1:])
		if err != nil || quarter < 1 || quarter > 4 {
			return Period{}, &InvalidPeriodError{Input: label}
		}
		start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return Period{
			Label:     fmt.Sprintf("%04d-Q%d", year, quarter),
			Start:     start,
			End:       start.AddDate(0, 3, 0),
			Quarterly: true,
		}, nil
	}

	month, err := strconv.Atoi(rest)
	if err != nil || month < 1 || month > 12 {
		return Period{}, &InvalidPeriodError{Input: label}
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Label: fmt.Sprintf("%04d-%02d", year, month),
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}, nil
}

// Previous returns the immediately preceding period of the same kind.
func (p Period) Previous() Period {
	if p.Quarterly {
		start := p.Start.AddDate(0, -3, 0)
		quarter := (int(start.Month())-1)/3 + 1
		return Period{
			Label:     fmt.Sprintf("%04d-Q%d", start.Year(), quarter),
			Start:     start,
			End:       p.Start,
			Quarterly: true,
		}
	}
	start := p.Start.AddDate(0, -1, 0)
	return Period{
		Label: fmt.Sprintf("%04d-%02d", start.Year(), int(start.Month())),
		Start: start,
		End:   p.Start,
	}
}

// PeriodFor returns the monthly period containing t.
func PeriodFor(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Label: fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())),
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}
}
