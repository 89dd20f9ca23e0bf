package market

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// probe tries each exchange variant in order and returns the first one the
// provider answers with usable data. Transport failures and undecodable data
// blocks count as empty for that variant only.
func probe[T any](ctx context.Context, p Provider, kind Kind, symbol string, extract func(Payload) (T, error)) (T, Resolution, error) {
	var zero T
	res := Resolution{Kind: kind, Symbol: symbol}
	if p == nil {
		return zero, res, fmt.Errorf("market provider not configured")
	}

	for _, variant := range Variants(symbol) {
		if err := ctx.Err(); err != nil {
			return zero, res, fmt.Errorf("%s %s: %w", kind, symbol, err)
		}

		payload, err := p.Query(ctx, kind.Function(), variant)
		if err != nil {
			hlog.CtxWarnf(ctx, "market: %s %s (%s) failed: %v", kind, variant, MarketOf(variant), err)
			res.Attempts = append(res.Attempts, Attempt{Variant: variant, Outcome: OutcomeEmpty, Err: err})
			continue
		}

		outcome := Classify(kind, payload)
		if outcome != OutcomeUsable {
			hlog.CtxDebugf(ctx, "market: %s %s (%s) %s", kind, variant, MarketOf(variant), outcome)
			res.Attempts = append(res.Attempts, Attempt{Variant: variant, Outcome: outcome})
			continue
		}

		v, err := extract(payload)
		if err != nil {
			hlog.CtxWarnf(ctx, "market: %s %s (%s) unreadable: %v", kind, variant, MarketOf(variant), err)
			res.Attempts = append(res.Attempts, Attempt{Variant: variant, Outcome: OutcomeEmpty, Err: err})
			continue
		}

		res.Variant = variant
		res.Attempts = append(res.Attempts, Attempt{Variant: variant, Outcome: OutcomeUsable})
		return v, res, nil
	}

	return zero, res, &NotFoundError{Kind: kind, Symbol: symbol, Attempts: res.Attempts}
}
