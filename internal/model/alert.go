package model

import "time"

// AlertKind identifies one alert rule. It keys the cooldown gate together
// with the instrument code, and tags the audit log.
type AlertKind string

const (
	AlertRSIOverbought   AlertKind = "rsi_overbought"
	AlertRSIOversold     AlertKind = "rsi_oversold"
	AlertVolatilitySpike AlertKind = "volatility_spike"
	AlertVolumeSpike     AlertKind = "volume_spike"
	AlertReversalUp      AlertKind = "reversal_up"
	AlertReversalDown    AlertKind = "reversal_down"
	AlertMRBuy           AlertKind = "mr_buy"
	AlertMRSell          AlertKind = "mr_sell"
	AlertMomentumLong    AlertKind = "momentum_long"
	AlertMomentumDip     AlertKind = "momentum_dip"
)

// Alert is one fired, cooldown-approved signal for an instrument.
type Alert struct {
	Code string    `json:"code"`
	Kind AlertKind `json:"kind"`
	Text string    `json:"text"` // human-readable line for the card body
}

// Bollinger holds one Bollinger band set.
type Bollinger struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// MACD holds the latest MACD values: DIF (fast EMA − slow EMA), DEA
// (signal EMA of DIF) and the histogram 2×(DIF−DEA).
type MACD struct {
	DIF  float64 `json:"dif"`
	DEA  float64 `json:"dea"`
	Hist float64 `json:"hist"`
}

// IndicatorSet bundles the per-evaluation indicator values. A nil field
// means the underlying window had too few samples.
type IndicatorSet struct {
	RSI         *float64   `json:"rsi,omitempty"`
	Boll        *Bollinger `json:"boll,omitempty"`
	MACD        *MACD      `json:"macd,omitempty"`
	VolumeRatio *float64   `json:"volume_ratio,omitempty"`
}

// Summary is the per-instrument cycle report, built whether or not any
// alert fired. Alert presence only selects notification severity.
type Summary struct {
	Code       string       `json:"code"`
	Name       string       `json:"name"`
	Price      float64      `json:"price"`
	ChangePct  float64      `json:"change_pct"`
	Open       float64      `json:"open"`
	High       float64      `json:"high"`
	Low        float64      `json:"low"`
	Amount     float64      `json:"amount"`
	Indicators IndicatorSet `json:"indicators"`
	Alerts     []Alert      `json:"alerts,omitempty"`
	At         time.Time    `json:"at"`
}

// Alerted reports whether any rule fired for this instrument this cycle.
func (s *Summary) Alerted() bool { return len(s.Alerts) > 0 }
