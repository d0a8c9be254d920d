package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	// Resolve looks up an SEU by code or display name for a given energy
	// source; unknown combinations return *NotFoundError with alternatives.
	Resolve(ctx context.Context, name, energySource string) (*Response, error)
}

type CreateRequest struct {
	Name         string   `json:"name"`
	EnergySource string   `json:"energy_source"`
	EquipmentIDs []string `json:"equipment_ids"`
}

type Response struct {
	ID               string    `json:"id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	EnergySource     string    `json:"energy_source"`
	EnergySourceID   string    `json:"energy_source_id"`
	EnergySourceUnit string    `json:"energy_source_unit"`
	EquipmentIDs     []string  `json:"equipment_ids"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
}

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrEmptyEquipment   = errors.New("empty_equipment_list")
	ErrDuplicateSEU     = errors.New("duplicate_seu")
	ErrInvalidEquipment = errors.New("invalid_equipment_id")
)

// NotFoundError reports an unknown (SEU, energy source) combination and
// lists the registered combinations so the caller can retry.
type NotFoundError struct {
	Name         string
	EnergySource string
	Available    []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no SEU %q for energy source %q", e.Name, e.EnergySource)
}

func (e *NotFoundError) ErrorCode() string { return "seu_not_found" }

func (e *NotFoundError) Suggestion() string {
	if len(e.Available) == 0 {
		return "no SEUs are registered yet; create one first"
	}
	return "registered SEUs: " + strings.Join(e.Available, ", ")
}
