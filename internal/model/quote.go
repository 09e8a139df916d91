package model

import "time"

// Quote is one real-time snapshot from the quote feed. It is transient:
// only the (price, volume) pair survives a cycle, as a PriceSample.
type Quote struct {
	Name     string  `json:"name"`
	Code     string  `json:"code"`
	Price    float64 `json:"price"`
	PreClose float64 `json:"pre_close"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Volume   float64 `json:"volume"` // traded volume in lots
	Amount   float64 `json:"amount"` // traded amount in 10k CNY
	Time     string  `json:"time"`   // feed server timestamp, as sent
}

// ChangePct returns the percent change from the previous close.
// Returns 0 when the previous close is unknown.
func (q *Quote) ChangePct() float64 {
	if q.PreClose == 0 {
		return 0
	}
	return (q.Price - q.PreClose) / q.PreClose * 100
}

// PriceSample is one persisted (price, volume) observation for an
// instrument. The store retains the most recent 100 per instrument.
type PriceSample struct {
	Code      string    `json:"code"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// KLine is one daily candle from the K-line history collaborator,
// oldest-first when returned in sequence.
type KLine struct {
	Date   string  `json:"date"` // "2006-01-02"
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume float64 `json:"volume"`
}
