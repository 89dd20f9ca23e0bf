package market

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"stock-insight/internal/store"
)

// Config holds the parse-failure policy per record type.
type Config struct {
	QuotePolicy        ParsePolicy
	FundamentalsPolicy ParsePolicy
	SeriesPolicy       ParsePolicy
}

func DefaultConfig() Config {
	return Config{
		QuotePolicy:        PolicyNaN,
		FundamentalsPolicy: PolicyZero,
		SeriesPolicy:       PolicyNaN,
	}
}

type Service struct {
	provider Provider
	cfg      Config
	store    *store.Store
	now      func() time.Time
}

func NewService(provider Provider, cfg Config, st *store.Store) *Service {
	def := DefaultConfig()
	if cfg.QuotePolicy == "" {
		cfg.QuotePolicy = def.QuotePolicy
	}
	if cfg.FundamentalsPolicy == "" {
		cfg.FundamentalsPolicy = def.FundamentalsPolicy
	}
	if cfg.SeriesPolicy == "" {
		cfg.SeriesPolicy = def.SeriesPolicy
	}
	return &Service{
		provider: provider,
		cfg:      cfg,
		store:    st,
		now:      time.Now,
	}
}

func (s *Service) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	sym := normalizeSymbol(symbol)
	if sym == "" {
		return Quote{}, ErrEmptySymbol
	}
	start := s.now()
	q, res, err := probe(ctx, s.provider, KindQuote, sym, func(p Payload) (Quote, error) {
		return extractQuote(p, s.cfg.QuotePolicy)
	})
	s.record(res, start, err)
	return q, err
}

func (s *Service) GetFundamentals(ctx context.Context, symbol string) (Fundamentals, error) {
	sym := normalizeSymbol(symbol)
	if sym == "" {
		return Fundamentals{}, ErrEmptySymbol
	}
	start := s.now()
	f, res, err := probe(ctx, s.provider, KindOverview, sym, func(p Payload) (Fundamentals, error) {
		return extractFundamentals(p, s.cfg.FundamentalsPolicy)
	})
	s.record(res, start, err)
	return f, err
}

// GetTimeSeries returns the daily series for the timeframe window, oldest
// first.
func (s *Service) GetTimeSeries(ctx context.Context, symbol string, timeframe string) (TimeSeries, error) {
	sym := normalizeSymbol(symbol)
	if sym == "" {
		return nil, ErrEmptySymbol
	}
	window := WindowSize(timeframe)
	start := s.now()
	ts, res, err := probe(ctx, s.provider, KindTimeSeries, sym, func(p Payload) (TimeSeries, error) {
		return extractSeries(p, window, s.cfg.SeriesPolicy)
	})
	s.record(res, start, err)
	return ts, err
}

func (s *Service) record(res Resolution, start time.Time, err error) {
	latency := s.now().Sub(start)
	rec := store.LookupRecord{
		TS:        start.Unix(),
		Symbol:    res.Symbol,
		Kind:      string(res.Kind),
		Variant:   res.Variant,
		Outcome:   store.OutcomeResolved,
		Attempts:  len(res.Attempts),
		LatencyMs: latency.Milliseconds(),
	}
	switch {
	case err == nil:
		hlog.Debugf("market: %s %s resolved via %s (%s) after %d attempt(s)", res.Kind, res.Symbol, res.Variant, MarketOf(res.Variant), len(res.Attempts))
	case errors.Is(err, ErrNotFound):
		rec.Outcome = store.OutcomeNotFound
		rec.Error = err.Error()
		hlog.Infof("market: %v", err)
	default:
		rec.Outcome = store.OutcomeError
		rec.Error = err.Error()
		hlog.Warnf("market: %s %s: %v", res.Kind, res.Symbol, err)
	}
	if err := s.store.InsertLookup(rec); err != nil {
		hlog.Errorf("market: insert lookup: %v", err)
	}
}
