package api

import (
	"math"

	"stock-insight/internal/market"
	"stock-insight/internal/session"
)

// JSON has no NaN or Inf, so unparsed provider numbers go out as null.

type quoteView struct {
	Symbol        string   `json:"symbol"`
	Price         *float64 `json:"price"`
	Change        *float64 `json:"change"`
	ChangePercent *float64 `json:"change_percent"`
	DayHigh       *float64 `json:"day_high"`
	DayLow        *float64 `json:"day_low"`
	Volume        int64    `json:"volume"`
	PreviousClose *float64 `json:"previous_close"`
}

type fundamentalsView struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Sector        string   `json:"sector"`
	Industry      string   `json:"industry"`
	MarketCap     int64    `json:"market_cap"`
	PERatio       *float64 `json:"pe_ratio"`
	DividendYield *float64 `json:"dividend_yield"`
	Week52High    *float64 `json:"week52_high"`
	Week52Low     *float64 `json:"week52_low"`
}

type pointView struct {
	Date   string   `json:"date"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume int64    `json:"volume"`
}

type sessionView struct {
	ID           string                   `json:"id"`
	Symbol       string                   `json:"symbol"`
	Timeframe    string                   `json:"timeframe"`
	Quote        *quoteView               `json:"quote"`
	Fundamentals *fundamentalsView        `json:"fundamentals"`
	Series       []pointView              `json:"series"`
	Panels       map[string]session.Panel `json:"panels"`
	UpdatedAt    int64                    `json:"updated_at"`
}

func num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func newQuoteView(q market.Quote) quoteView {
	return quoteView{
		Symbol:        q.Symbol,
		Price:         num(q.Price),
		Change:        num(q.Change),
		ChangePercent: num(q.ChangePercent),
		DayHigh:       num(q.DayHigh),
		DayLow:        num(q.DayLow),
		Volume:        q.Volume,
		PreviousClose: num(q.PreviousClose),
	}
}

func newFundamentalsView(f market.Fundamentals) fundamentalsView {
	return fundamentalsView{
		Name:          f.Name,
		Description:   f.Description,
		Sector:        f.Sector,
		Industry:      f.Industry,
		MarketCap:     f.MarketCap,
		PERatio:       num(f.PERatio),
		DividendYield: num(f.DividendYield),
		Week52High:    num(f.Week52High),
		Week52Low:     num(f.Week52Low),
	}
}

func newSeriesView(ts market.TimeSeries) []pointView {
	out := make([]pointView, 0, len(ts))
	for _, p := range ts {
		out = append(out, pointView{
			Date:   p.Date,
			Open:   num(p.Open),
			High:   num(p.High),
			Low:    num(p.Low),
			Close:  num(p.Close),
			Volume: p.Volume,
		})
	}
	return out
}

func newSessionView(id string, st session.State) sessionView {
	v := sessionView{
		ID:        id,
		Symbol:    st.Symbol,
		Timeframe: st.Timeframe,
		Series:    newSeriesView(st.Series),
		Panels: map[string]session.Panel{
			"quote":        st.QuotePanel,
			"fundamentals": st.FundamentalsPanel,
			"series":       st.SeriesPanel,
		},
		UpdatedAt: st.UpdatedAt.Unix(),
	}
	if st.Quote != nil {
		q := newQuoteView(*st.Quote)
		v.Quote = &q
	}
	if st.Fundamentals != nil {
		f := newFundamentalsView(*st.Fundamentals)
		v.Fundamentals = &f
	}
	return v
}
