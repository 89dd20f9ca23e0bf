package market

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type fields map[string]json.RawMessage

// str returns a field as text whether the provider sent it as a JSON string
// or as a bare number. Missing and null fields are "".
func (f fields) str(key string) string {
	raw, ok := f[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	v := strings.TrimSpace(string(raw))
	if v == "null" {
		return ""
	}
	return v
}

func decodeBlock(p Payload, key string) (fields, error) {
	var out fields
	if err := json.Unmarshal(p[key], &out); err != nil {
		return nil, fmt.Errorf("decode %q: %w", key, err)
	}
	return out, nil
}

func extractQuote(p Payload, policy ParsePolicy) (Quote, error) {
	q, err := decodeBlock(p, KindQuote.DataKey())
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Symbol:        q.str("01. symbol"),
		Price:         policy.float(q.str("05. price")),
		Change:        policy.float(q.str("09. change")),
		ChangePercent: policy.percent(q.str("10. change percent")),
		DayHigh:       policy.float(q.str("03. high")),
		DayLow:        policy.float(q.str("04. low")),
		Volume:        parseCount(q.str("06. volume")),
		PreviousClose: policy.float(q.str("08. previous close")),
	}, nil
}

// extractFundamentals reads the overview payload, whose fields sit at the top
// level next to the "Name" key.
func extractFundamentals(p Payload, policy ParsePolicy) (Fundamentals, error) {
	f := fields(p)
	return Fundamentals{
		Name:          f.str("Name"),
		Description:   f.str("Description"),
		Sector:        f.str("Sector"),
		Industry:      f.str("Industry"),
		MarketCap:     parseCount(f.str("MarketCapitalization")),
		PERatio:       policy.float(f.str("PERatio")),
		DividendYield: policy.float(f.str("DividendYield")),
		Week52High:    policy.float(f.str("52WeekHigh")),
		Week52Low:     policy.float(f.str("52WeekLow")),
	}, nil
}

type datedBar struct {
	day time.Time
	key string
	bar fields
}

// extractSeries keeps the most recent window days, returned oldest first.
func extractSeries(p Payload, window int, policy ParsePolicy) (TimeSeries, error) {
	var daily map[string]fields
	key := KindTimeSeries.DataKey()
	if err := json.Unmarshal(p[key], &daily); err != nil {
		return nil, fmt.Errorf("decode %q: %w", key, err)
	}

	bars := make([]datedBar, 0, len(daily))
	for k, bar := range daily {
		day, err := time.Parse(dateLayout, strings.TrimSpace(k))
		if err != nil {
			continue
		}
		bars = append(bars, datedBar{day: day, key: day.Format(dateLayout), bar: bar})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("decode %q: no dated entries", key)
	}

	// Newest first, so the cut below keeps the latest days.
	sort.Slice(bars, func(i, j int) bool { return bars[i].day.After(bars[j].day) })
	if window > 0 && len(bars) > window {
		bars = bars[:window]
	}

	out := make(TimeSeries, len(bars))
	for i, b := range bars {
		out[len(bars)-1-i] = PricePoint{
			Date:   b.key,
			Open:   policy.float(b.bar.str("1. open")),
			High:   policy.float(b.bar.str("2. high")),
			Low:    policy.float(b.bar.str("3. low")),
			Close:  policy.float(b.bar.str("4. close")),
			Volume: parseCount(b.bar.str("5. volume")),
		}
	}
	return out, nil
}
