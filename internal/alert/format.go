package alert

import (
	"fmt"
	"strings"

	"stockwatch/internal/model"
)

// CardTitle picks the notification title by severity.
func CardTitle(s *model.Summary) string {
	if s.Alerted() {
		return "【股票异动提醒】"
	}
	return "【行情播报】"
}

// CardColor maps the day's direction to a Feishu card template color:
// red up, green down, blue flat (A-share convention).
func CardColor(s *model.Summary) string {
	switch {
	case s.ChangePct > 0:
		return "red"
	case s.ChangePct < 0:
		return "green"
	}
	return "blue"
}

// CardBody renders the lark_md body for one instrument summary.
func CardBody(s *model.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s (%s)**\n", s.Name, s.Code)
	fmt.Fprintf(&b, "📈 当前价: **%.2f** (%+.2f%%)\n", s.Price, s.ChangePct)
	fmt.Fprintf(&b, "📊 今日: 开 %.2f | 高 %.2f | 低 %.2f\n", s.Open, s.High, s.Low)
	fmt.Fprintf(&b, "💰 成交额: %.0f万\n", s.Amount)

	if line := indicatorLine(&s.Indicators); line != "" {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if s.Alerted() {
		b.WriteString("\n⚠️ **异动信号:**\n")
		for _, a := range s.Alerts {
			fmt.Fprintf(&b, "• %s\n", a.Text)
		}
	}

	fmt.Fprintf(&b, "\n⏰ %s", s.At.Format("2006-01-02 15:04:05"))
	return b.String()
}

func indicatorLine(ind *model.IndicatorSet) string {
	var parts []string
	if ind.RSI != nil {
		parts = append(parts, fmt.Sprintf("RSI %.1f", *ind.RSI))
	}
	if ind.Boll != nil {
		parts = append(parts, fmt.Sprintf("BOLL %.2f/%.2f/%.2f", ind.Boll.Upper, ind.Boll.Middle, ind.Boll.Lower))
	}
	if ind.MACD != nil {
		parts = append(parts, fmt.Sprintf("MACD %.3f", ind.MACD.Hist))
	}
	if ind.VolumeRatio != nil {
		parts = append(parts, fmt.Sprintf("量比 %.1fx", *ind.VolumeRatio))
	}
	if len(parts) == 0 {
		return ""
	}
	return "🧮 " + strings.Join(parts, " | ")
}
