package market

import "strings"

const (
	suffixNSE = ".NS"
	suffixBSE = ".BSE"
)

// Variants returns the exchange-qualified symbols to try, in priority order:
// the US listing first, then NSE, then BSE.
func Variants(symbol string) []string {
	return []string{symbol, symbol + suffixNSE, symbol + suffixBSE}
}

// MarketOf names the market a variant targets.
func MarketOf(variant string) string {
	switch {
	case strings.HasSuffix(variant, suffixBSE):
		return "BSE"
	case strings.HasSuffix(variant, suffixNSE):
		return "NSE"
	default:
		return "US"
	}
}

func normalizeSymbol(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
