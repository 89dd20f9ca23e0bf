package market

const (
	Timeframe1M = "1M"
	Timeframe3M = "3M"
	Timeframe1Y = "1Y"
	Timeframe5Y = "5Y"

	DefaultTimeframe = Timeframe1M
)

var windowDays = map[string]int{
	Timeframe1M: 30,
	Timeframe3M: 90,
	Timeframe1Y: 252,
	Timeframe5Y: 1260,
}

// WindowSize maps a timeframe token to the number of daily points kept.
// Unknown tokens get the 1M window.
func WindowSize(token string) int {
	if n, ok := windowDays[token]; ok {
		return n
	}
	return windowDays[DefaultTimeframe]
}

func Timeframes() []string {
	return []string{Timeframe1M, Timeframe3M, Timeframe1Y, Timeframe5Y}
}
