package market

import (
	"context"
	"encoding/json"
)

//go:generate mockgen -destination=provider_mock_test.go -package=market_test stock-insight/internal/market Provider

type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	DayHigh       float64 `json:"day_high"`
	DayLow        float64 `json:"day_low"`
	Volume        int64   `json:"volume"`
	PreviousClose float64 `json:"previous_close"`
}

type Fundamentals struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Sector        string  `json:"sector"`
	Industry      string  `json:"industry"`
	MarketCap     int64   `json:"market_cap"`
	PERatio       float64 `json:"pe_ratio"`
	DividendYield float64 `json:"dividend_yield"`
	Week52High    float64 `json:"week52_high"`
	Week52Low     float64 `json:"week52_low"`
}

type PricePoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// TimeSeries is ordered oldest first.
type TimeSeries []PricePoint

// Function is the provider's endpoint selector.
type Function string

const (
	FunctionGlobalQuote     Function = "GLOBAL_QUOTE"
	FunctionOverview        Function = "OVERVIEW"
	FunctionTimeSeriesDaily Function = "TIME_SERIES_DAILY"
)

// Payload is one decoded provider response, keyed by its top-level fields.
type Payload map[string]json.RawMessage

type Provider interface {
	Query(ctx context.Context, function Function, symbol string) (Payload, error)
}

// Kind identifies which endpoint a fetch targets.
type Kind string

const (
	KindQuote      Kind = "quote"
	KindOverview   Kind = "overview"
	KindTimeSeries Kind = "time-series"
)

func (k Kind) Function() Function {
	switch k {
	case KindOverview:
		return FunctionOverview
	case KindTimeSeries:
		return FunctionTimeSeriesDaily
	default:
		return FunctionGlobalQuote
	}
}

// DataKey is the top-level field that carries the endpoint's data block.
func (k Kind) DataKey() string {
	switch k {
	case KindOverview:
		return "Name"
	case KindTimeSeries:
		return "Time Series (Daily)"
	default:
		return "Global Quote"
	}
}

// Attempt records what happened to one variant during a fetch.
type Attempt struct {
	Variant string  `json:"variant"`
	Outcome Outcome `json:"outcome"`
	Err     error   `json:"-"`
}

// Resolution describes how a fetch was satisfied.
type Resolution struct {
	Kind     Kind      `json:"kind"`
	Symbol   string    `json:"symbol"`
	Variant  string    `json:"variant"`
	Attempts []Attempt `json:"attempts"`
}
