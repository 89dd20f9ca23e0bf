package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/sync/errgroup"

	"stock-insight/internal/market"
)

var (
	ErrNoActiveQuote = errors.New("no active quote: search for a symbol first")
	// ErrSuperseded is returned to a caller whose request was overtaken by a
	// newer search or timeframe change before its results landed.
	ErrSuperseded = errors.New("request superseded by a newer one")
)

// Fetcher is the resolution layer a session drives.
type Fetcher interface {
	GetQuote(ctx context.Context, symbol string) (market.Quote, error)
	GetFundamentals(ctx context.Context, symbol string) (market.Fundamentals, error)
	GetTimeSeries(ctx context.Context, symbol string, timeframe string) (market.TimeSeries, error)
}

type Panel struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// State is what one page shows: the active search, its three records and
// the per-panel status.
type State struct {
	Symbol            string
	Timeframe         string
	Quote             *market.Quote
	Fundamentals      *market.Fundamentals
	Series            market.TimeSeries
	QuotePanel        Panel
	FundamentalsPanel Panel
	SeriesPanel       Panel
	UpdatedAt         time.Time
}

type Session struct {
	id      string
	fetcher Fetcher

	mu sync.Mutex
	// gen counts searches; seriesGen also counts timeframe changes.
	gen       uint64
	seriesGen uint64
	state     State
}

func New(id string, fetcher Fetcher, timeframe string) *Session {
	if timeframe == "" {
		timeframe = market.DefaultTimeframe
	}
	return &Session{
		id:      id,
		fetcher: fetcher,
		state:   State{Timeframe: timeframe, UpdatedAt: time.Now()},
	}
}

func (s *Session) ID() string {
	return s.id
}

// Search replaces the page with a fresh lookup of symbol. Quote,
// fundamentals and series are fetched concurrently; only a quote failure
// fails the search.
func (s *Session) Search(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return market.ErrEmptySymbol
	}

	s.mu.Lock()
	s.gen++
	s.seriesGen++
	gen, seriesGen := s.gen, s.seriesGen
	timeframe := s.state.Timeframe
	s.state = State{
		Symbol:            symbol,
		Timeframe:         timeframe,
		QuotePanel:        Panel{Loading: true},
		FundamentalsPanel: Panel{Loading: true},
		SeriesPanel:       Panel{Loading: true},
		UpdatedAt:         time.Now(),
	}
	s.mu.Unlock()

	var (
		g        errgroup.Group
		quoteErr error
	)
	g.Go(func() error {
		q, err := s.fetcher.GetQuote(ctx, symbol)
		quoteErr = err
		s.apply(gen, 0, "quote", func(st *State) {
			st.QuotePanel = panelFor(err)
			if err == nil {
				st.Quote = &q
			}
		})
		return nil
	})
	g.Go(func() error {
		f, err := s.fetcher.GetFundamentals(ctx, symbol)
		s.apply(gen, 0, "fundamentals", func(st *State) {
			st.FundamentalsPanel = panelFor(err)
			if err == nil {
				st.Fundamentals = &f
			}
		})
		return nil
	})
	g.Go(func() error {
		ts, err := s.fetcher.GetTimeSeries(ctx, symbol, timeframe)
		s.apply(gen, seriesGen, "series", func(st *State) {
			st.SeriesPanel = panelFor(err)
			if err == nil {
				st.Series = ts
			}
		})
		return nil
	})
	_ = g.Wait()

	if quoteErr != nil {
		// Without a quote the page shows only the failure.
		s.apply(gen, 0, "search", func(st *State) {
			st.Fundamentals = nil
			st.Series = nil
		})
		return fmt.Errorf("search %s: %w", symbol, quoteErr)
	}
	if !s.current(gen, 0) {
		return ErrSuperseded
	}
	return nil
}

// ChangeTimeframe re-fetches only the series for the already resolved quote
// symbol. On failure the previous series stays in place.
func (s *Session) ChangeTimeframe(ctx context.Context, timeframe string) error {
	s.mu.Lock()
	if s.state.Quote == nil {
		s.mu.Unlock()
		return ErrNoActiveQuote
	}
	s.seriesGen++
	gen, seriesGen := s.gen, s.seriesGen
	symbol := s.state.Quote.Symbol
	if strings.TrimSpace(symbol) == "" {
		symbol = s.state.Symbol
	}
	s.state.Timeframe = timeframe
	s.state.SeriesPanel = Panel{Loading: true}
	s.state.UpdatedAt = time.Now()
	s.mu.Unlock()

	ts, err := s.fetcher.GetTimeSeries(ctx, symbol, timeframe)
	landed := s.apply(gen, seriesGen, "series", func(st *State) {
		st.SeriesPanel = panelFor(err)
		if err == nil {
			st.Series = ts
		}
	})
	if err != nil {
		return fmt.Errorf("timeframe %s for %s: %w", timeframe, symbol, err)
	}
	if !landed {
		return ErrSuperseded
	}
	return nil
}

// Snapshot returns a copy of the current page state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.state
	if s.state.Quote != nil {
		q := *s.state.Quote
		out.Quote = &q
	}
	if s.state.Fundamentals != nil {
		f := *s.state.Fundamentals
		out.Fundamentals = &f
	}
	if s.state.Series != nil {
		out.Series = append(market.TimeSeries(nil), s.state.Series...)
	}
	return out
}

// apply runs fn against the state only if the result still belongs to the
// current request. seriesGen 0 skips the series check.
func (s *Session) apply(gen, seriesGen uint64, panel string, fn func(*State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(gen, seriesGen) {
		hlog.Debugf("session %s: dropped stale %s result (gen %d, current %d)", s.id, panel, gen, s.gen)
		return false
	}
	fn(&s.state)
	s.state.UpdatedAt = time.Now()
	return true
}

func (s *Session) current(gen, seriesGen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked(gen, seriesGen)
}

func (s *Session) currentLocked(gen, seriesGen uint64) bool {
	if gen != s.gen {
		return false
	}
	return seriesGen == 0 || seriesGen == s.seriesGen
}

func panelFor(err error) Panel {
	if err == nil {
		return Panel{}
	}
	return Panel{Error: err.Error()}
}
