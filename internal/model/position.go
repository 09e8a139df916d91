package model

import "fmt"

// Strategy selects which alert-rule overlay applies to a held position.
// The set is closed: unknown tags are rejected at config load.
type Strategy int

const (
	StrategyNone Strategy = iota
	// StrategyMeanReversion trades intraday reversals off the Bollinger
	// channel edges, confirmed by RSI extremes.
	StrategyMeanReversion
	// StrategyMomentum rides short-horizon momentum confirmed by MACD,
	// buying dips at the lower band.
	StrategyMomentum
)

// ParseStrategy maps a position-file tag to a Strategy.
func ParseStrategy(tag string) (Strategy, error) {
	switch tag {
	case "", "none":
		return StrategyNone, nil
	case "mean-reversion-intraday":
		return StrategyMeanReversion, nil
	case "momentum-short":
		return StrategyMomentum, nil
	}
	return StrategyNone, fmt.Errorf("model: unknown strategy tag %q", tag)
}

func (s Strategy) String() string {
	switch s {
	case StrategyMeanReversion:
		return "mean-reversion-intraday"
	case StrategyMomentum:
		return "momentum-short"
	}
	return "none"
}

// Position is static holding metadata for a tracked instrument.
// Read-only during a run; it decides which rule overlay applies and
// whether unrealized profit is reported.
type Position struct {
	Code      string   `json:"code"`
	CostBasis float64  `json:"cost_basis"` // per-share cost, 0 = unknown
	Size      float64  `json:"size"`       // holdings in shares
	Strategy  Strategy `json:"-"`
}

// UnrealizedPnLPct returns the unrealized profit percentage at the given
// price. Returns 0 when the cost basis is unknown.
func (p *Position) UnrealizedPnLPct(price float64) float64 {
	if p.CostBasis == 0 {
		return 0
	}
	return (price - p.CostBasis) / p.CostBasis * 100
}
