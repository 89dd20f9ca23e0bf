package market

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParsePolicy decides what a numeric field becomes when the provider sends
// something that does not parse.
type ParsePolicy string

const (
	PolicyNaN  ParsePolicy = "nan"
	PolicyZero ParsePolicy = "zero"
)

func ParseParsePolicy(s string) (ParsePolicy, error) {
	switch ParsePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyNaN:
		return PolicyNaN, nil
	case PolicyZero, "":
		return PolicyZero, nil
	}
	return "", fmt.Errorf("invalid parse policy: %q", s)
}

func (p ParsePolicy) failed() float64 {
	if p == PolicyNaN {
		return math.NaN()
	}
	return 0
}

func (p ParsePolicy) float(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return p.failed()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return p.failed()
	}
	if p == PolicyZero && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return 0
	}
	return v
}

func (p ParsePolicy) percent(s string) float64 {
	return p.float(strings.TrimSuffix(strings.TrimSpace(s), "%"))
}

// parseCount reads an integer field such as volume or market cap. Integers
// have no NaN, so every failure is 0.
func parseCount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return max(v, 0)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	if f > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(f)
}
