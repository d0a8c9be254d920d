// Package client implements the aggregation-service boundary over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	aggregatedomain "github.com/voltgrid/enbase/internal/aggregate/domain"
	"github.com/voltgrid/enbase/internal/config"
	"go.uber.org/zap"
)

type Client struct {
	baseURL string
	token   string
	minDays func() int
	log     *zap.Logger
	client  *http.Client
}

func New(cfg config.Config, holder *config.EngineConfigHolder, log *zap.Logger) aggregatedomain.Provider {
	return &Client{
		baseURL: strings.TrimRight(cfg.AggregatorBaseURL, "/"),
		token:   cfg.AggregatorToken,
		minDays: func() int { return holder.Current().MinTrainingDays },
		log:     log.Named("aggregate.client"),
		client:  &http.Client{Timeout: 12 * time.Second},
	}
}

type aggregateRow struct {
	Date         string             `json:"date"`
	EnergyTotal  float64            `json:"energy_total"`
	Drivers      map[string]float64 `json:"drivers"`
	ReadingCount int                `json:"reading_count"`
}

type aggregatesResponse struct {
	Rows []aggregateRow `json:"rows"`
}

type driversResponse struct {
	Drivers []aggregatedomain.DriverInfo `json:"drivers"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) DailyAggregates(ctx context.Context, req aggregatedomain.Request) ([]aggregatedomain.DailyRow, error) {
	values := url.Values{}
	values.Set("equipment_ids", strings.Join(req.EquipmentIDs, ","))
	values.Set("energy_source", req.EnergySource)
	values.Set("start_date", req.Start.Format("2006-01-02"))
	values.Set("end_date", req.End.Format("2006-01-02"))
	// Daily is the single aggregation unit of the whole engine.
	values.Set("granularity", "daily")

	var payload aggregatesResponse
	if err := c.doRequest(ctx, "/v1/aggregates", values, &payload); err != nil {
		return nil, err
	}

	rows := make([]aggregatedomain.DailyRow, 0, len(payload.Rows))
	for _, raw := range payload.Rows {
		date, err := time.Parse("2006-01-02", raw.Date)
		if err != nil {
			return nil, fmt.Errorf("aggregation service returned malformed date %q: %w", raw.Date, err)
		}
		if raw.ReadingCount <= 0 {
			continue
		}
		drivers := raw.Drivers
		if drivers == nil {
			drivers = map[string]float64{}
		}
		rows = append(rows, aggregatedomain.DailyRow{
			Date:         date,
			EnergyTotal:  raw.EnergyTotal,
			Drivers:      drivers,
			ReadingCount: raw.ReadingCount,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	if minimum := c.minDays(); len(rows) < minimum {
		return nil, &aggregatedomain.InsufficientDataError{Days: len(rows), Minimum: minimum}
	}
	return rows, nil
}

func (c *Client) ListDrivers(ctx context.Context, energySource string) ([]aggregatedomain.DriverInfo, error) {
	values := url.Values{}
	values.Set("energy_source", energySource)

	var payload driversResponse
	if err := c.doRequest(ctx, "/v1/drivers", values, &payload); err != nil {
		return nil, err
	}
	return payload.Drivers, nil
}

func (c *Client) doRequest(ctx context.Context, path string, values url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("aggregation service unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var payload errorResponse
		if jsonErr := json.Unmarshal(body, &payload); jsonErr == nil && payload.Error.Message != "" {
			return fmt.Errorf("aggregation service %s: %s", resp.Status, payload.Error.Message)
		}
		return fmt.Errorf("aggregation service returned %s", resp.Status)
	}

	return json.Unmarshal(body, out)
}
