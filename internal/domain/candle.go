package domain

// Candle represents one OHLCV bar from the exchange.
type Candle struct {
	TimestampMs int64   // bar open time, Unix milliseconds
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
}

// LatestClose returns the close of the most recent candle.
// Returns false when the sequence is empty.
func LatestClose(candles []Candle) (float64, bool) {
	if len(candles) == 0 {
		return 0, false
	}
	return candles[len(candles)-1].Close, true
}

// Balance is the free amount of one currency on the exchange account.
type Balance struct {
	Currency string
	Free     float64
}
