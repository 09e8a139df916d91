// Package alert combines a quote with indicator history into zero or more
// cooldown-gated alert signals plus a per-instrument summary. The summary
// is built every cycle; alert presence only selects notification severity.
package alert

import (
	"fmt"
	"math"
	"time"

	"stockwatch/config"
	"stockwatch/internal/indicator"
	"stockwatch/internal/model"
)

// History depth gates. Below MinBasicDepth only the raw-volatility rule
// can fire; the full BOLL+RSI+MACD rule set needs MinFullDepth.
const (
	MinBasicDepth = 7
	MinFullDepth  = 30
)

// Band-touch tolerances: a price within 1% of a band counts as touching it.
const (
	bandTouchLowFactor  = 1.01
	bandTouchHighFactor = 0.99
)

// Gate approves or suppresses one candidate signal. A true result records
// the fire and starts the suppression window.
type Gate interface {
	Permit(code string, kind model.AlertKind) bool
}

// Input bundles everything one evaluation needs. Histories are
// oldest-first and include the current cycle's sample.
type Input struct {
	Quote    *model.Quote
	Prices   []float64
	Volumes  []float64
	Position *model.Position // nil when the instrument is not held
	Settings config.Settings
}

// Evaluator applies the alert rule set. Stateless across cycles except
// through the gate.
type Evaluator struct {
	gate Gate
	now  func() time.Time
}

// New creates an Evaluator backed by the given cooldown gate.
func New(gate Gate) *Evaluator {
	return &Evaluator{gate: gate, now: time.Now}
}

// Evaluate runs all rules for one instrument and returns its summary with
// the gate-approved alerts attached, in rule order.
func (e *Evaluator) Evaluate(in Input) model.Summary {
	q := in.Quote
	s := in.Settings

	sum := model.Summary{
		Code:      q.Code,
		Name:      q.Name,
		Price:     q.Price,
		ChangePct: q.ChangePct(),
		Open:      q.Open,
		High:      q.High,
		Low:       q.Low,
		Amount:    q.Amount,
		At:        e.now(),
	}
	if q.Price == 0 {
		return sum
	}

	depth := len(in.Prices)

	rsi, rsiOK := indicator.RSI(in.Prices, s.RSIPeriod)
	volRatio, vrOK := indicator.VolumeRatio(in.Volumes)
	boll, bollOK := indicator.Bollinger(in.Prices, indicator.BollPeriod, indicator.BollMultiplier)
	macd, macdOK := indicator.MACD(in.Prices, indicator.MACDFast, indicator.MACDSlow, indicator.MACDSignal)

	if rsiOK {
		sum.Indicators.RSI = &rsi
	}
	if vrOK {
		sum.Indicators.VolumeRatio = &volRatio
	}
	if bollOK {
		sum.Indicators.Boll = &boll
	}
	if macdOK {
		sum.Indicators.MACD = &macd
	}

	var candidates []model.Alert
	add := func(kind model.AlertKind, text string) {
		candidates = append(candidates, model.Alert{Code: q.Code, Kind: kind, Text: text})
	}

	if depth >= MinBasicDepth {
		if rsiOK {
			if rsi > s.Overbought {
				add(model.AlertRSIOverbought, fmt.Sprintf("⚠️ RSI(%d) = %.1f（超买）", s.RSIPeriod, rsi))
			} else if rsi < s.Oversold {
				add(model.AlertRSIOversold, fmt.Sprintf("✅ RSI(%d) = %.1f（超卖）", s.RSIPeriod, rsi))
			}
		}
		if vrOK && volRatio > s.VolumeRatioThreshold {
			add(model.AlertVolumeSpike, fmt.Sprintf("📊 量比 %.1fx（成交量放大）", volRatio))
		}
	}

	// Raw-volatility rule: independent of history depth.
	if math.Abs(sum.ChangePct) > s.ChangeThresholdPct {
		emoji := "🚀"
		if sum.ChangePct < 0 {
			emoji = "💥"
		}
		add(model.AlertVolatilitySpike, fmt.Sprintf("%s 日内波动 %+.2f%%", emoji, sum.ChangePct))
	}

	// Full rule set: all three indicators must be available.
	if depth >= MinFullDepth && rsiOK && bollOK && macdOK {
		c := conditions{
			price:      q.Price,
			rsi:        rsi,
			overbought: rsi > s.Overbought,
			oversold:   rsi < s.Oversold,
			touchLow:   q.Price <= boll.Lower*bandTouchLowFactor,
			touchHigh:  q.Price >= boll.Upper*bandTouchHighFactor,
			bullish:    macd.Hist > 0 && macd.DIF > macd.DEA,
			bearish:    macd.Hist < 0 && macd.DIF < macd.DEA,
		}

		strategic := strategyAlerts(q.Code, in.Position, c)
		if len(strategic) > 0 {
			candidates = append(candidates, strategic...)
		} else {
			// Generic reversal fallback when no strategy rule fired.
			if c.touchLow && c.oversold {
				add(model.AlertReversalUp, "🔄 触及布林下轨且超卖，关注反弹")
			} else if c.touchHigh && c.overbought {
				add(model.AlertReversalDown, "🔄 触及布林上轨且超买，谨防回落")
			}
		}
	}

	for _, a := range candidates {
		if e.gate.Permit(a.Code, a.Kind) {
			sum.Alerts = append(sum.Alerts, a)
		}
	}
	return sum
}
