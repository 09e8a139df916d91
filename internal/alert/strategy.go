package alert

import (
	"fmt"

	"stockwatch/internal/model"
)

// conditions captures the indicator facts one full-mode evaluation feeds
// into the strategy rules.
type conditions struct {
	price      float64
	rsi        float64
	overbought bool
	oversold   bool
	touchLow   bool // price within 1% of the lower Bollinger band
	touchHigh  bool
	bullish    bool // MACD histogram > 0 and DIF > DEA
	bearish    bool
}

// strategyAlerts dispatches to the rule set for the position's strategy.
// Returns nil when the instrument is not held or no variant rule fired.
func strategyAlerts(code string, pos *model.Position, c conditions) []model.Alert {
	if pos == nil {
		return nil
	}
	switch pos.Strategy {
	case model.StrategyMeanReversion:
		return meanReversionAlerts(code, pos, c)
	case model.StrategyMomentum:
		return momentumAlerts(code, c)
	}
	return nil
}

// meanReversionAlerts trades reversals off the band edges: buy the lower
// band when oversold, sell the upper band when overbought.
func meanReversionAlerts(code string, pos *model.Position, c conditions) []model.Alert {
	var out []model.Alert
	if c.touchLow && c.oversold {
		out = append(out, model.Alert{
			Code: code,
			Kind: model.AlertMRBuy,
			Text: "🟢 回归买点：触及布林下轨且超卖",
		})
	}
	if c.touchHigh && c.overbought {
		text := "🔴 回归卖点：触及布林上轨且超买"
		if pos.CostBasis > 0 && c.price > pos.CostBasis {
			text += fmt.Sprintf("（浮盈 %+.2f%%）", pos.UnrealizedPnLPct(c.price))
		}
		out = append(out, model.Alert{Code: code, Kind: model.AlertMRSell, Text: text})
	}
	return out
}

// momentumAlerts rides confirmed momentum: go long on a bullish MACD with
// RSI above the midline, add on dips at the lower band.
func momentumAlerts(code string, c conditions) []model.Alert {
	var out []model.Alert
	if c.bullish && c.rsi > 50 {
		out = append(out, model.Alert{
			Code: code,
			Kind: model.AlertMomentumLong,
			Text: fmt.Sprintf("📈 动量做多：MACD 金叉且 RSI = %.1f", c.rsi),
		})
	}
	if c.touchLow && c.oversold {
		out = append(out, model.Alert{
			Code: code,
			Kind: model.AlertMomentumDip,
			Text: "🛒 回调买入：触及布林下轨且超卖",
		})
	}
	return out
}
