package domain

import (
	"context"
	"fmt"
	"strings"
)

type Service interface {
	List(ctx context.Context) ([]Response, error)
	GetByCode(ctx context.Context, code string) (*Response, error)
}

type Response struct {
	ID                   string  `json:"id"`
	Code                 string  `json:"code"`
	Name                 string  `json:"name"`
	Unit                 string  `json:"unit"`
	ConversionFactor     float64 `json:"conversion_factor"`
	TemperatureSensitive bool    `json:"temperature_sensitive"`
}

// NotFoundError reports an unknown energy source together with the valid
// alternatives, so an automated caller can self-correct.
type NotFoundError struct {
	Code      string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown energy source %q, available: %s", e.Code, strings.Join(e.Available, ", "))
}

func (e *NotFoundError) ErrorCode() string { return "energy_source_not_found" }

func (e *NotFoundError) Suggestion() string {
	if len(e.Available) == 0 {
		return "no energy sources are configured yet"
	}
	return "valid energy sources: " + strings.Join(e.Available, ", ")
}
