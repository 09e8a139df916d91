// Package command parses chat-bot commands and applies them to the
// watchlist and the runtime settings. Every reply is user-facing text;
// invalid input returns an error message and leaves state unchanged.
package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stockwatch/config"
	"stockwatch/internal/fetch"
	"stockwatch/internal/model"
)

// Watchlist is the subset of the store the command surface needs.
type Watchlist interface {
	AddInstrument(inst model.Instrument) error
	RemoveInstrument(code string) error
	Instruments() ([]model.Instrument, error)
}

// StatusFunc reports whether the monitor loop is currently running.
type StatusFunc func() bool

// Handler executes one command per inbound message.
type Handler struct {
	list    Watchlist
	quoter  fetch.Quoter
	runtime *config.Runtime
	running StatusFunc
}

// New creates a command handler.
func New(list Watchlist, quoter fetch.Quoter, rt *config.Runtime, running StatusFunc) *Handler {
	return &Handler{list: list, quoter: quoter, runtime: rt, running: running}
}

// Handle dispatches on the first whitespace-separated token,
// case-insensitively, and returns the reply text.
func (h *Handler) Handle(ctx context.Context, text string) string {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	if len(parts) == 0 {
		return helpText
	}

	cmd, args := parts[0], parts[1:]
	switch {
	case cmd == "add" && len(args) > 0:
		return h.handleAdd(ctx, args[0])
	case cmd == "remove" && len(args) > 0:
		return h.handleRemove(ctx, args[0])
	case cmd == "list":
		return h.handleList(ctx)
	case cmd == "status":
		return h.handleStatus(ctx)
	case cmd == "config":
		return h.handleConfig()
	case (cmd == "interval" || cmd == "改间隔" || cmd == "间隔") && len(args) > 0:
		return h.handleInterval(args[0])
	case (cmd == "overbought" || cmd == "改超买" || cmd == "超买") && len(args) > 0:
		return h.handleOverbought(args[0])
	case (cmd == "oversold" || cmd == "改超卖" || cmd == "超卖") && len(args) > 0:
		return h.handleOversold(args[0])
	case (cmd == "threshold" || cmd == "改阈值" || cmd == "阈值") && len(args) > 0:
		return h.handleThreshold(args[0])
	case cmd == "help" || cmd == "帮助" || cmd == "?":
		return helpText
	}
	return fmt.Sprintf("❓ 未知命令: %s\n\n发送 @我 help 查看帮助", cmd)
}

func (h *Handler) handleAdd(ctx context.Context, raw string) string {
	code := fetch.NormalizeCode(raw)
	q, err := h.quoter.Quote(ctx, code)
	if err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			return fmt.Sprintf("❌ 未找到股票: %s", raw)
		}
		return fmt.Sprintf("❌ 行情查询失败: %s", raw)
	}

	inst := model.Instrument{Code: code, Name: q.Name, AddedAt: time.Now()}
	if err := h.list.AddInstrument(inst); err != nil {
		return "❌ 添加失败"
	}
	return fmt.Sprintf("✅ 已添加: %s (%s)\n当前价: %.2f", q.Name, code, q.Price)
}

func (h *Handler) handleRemove(ctx context.Context, raw string) string {
	code := fetch.NormalizeCode(raw)
	if err := h.list.RemoveInstrument(code); err != nil {
		return "❌ 移除失败"
	}
	return fmt.Sprintf("✅ 已移除: %s", raw)
}

func (h *Handler) handleList(ctx context.Context) string {
	insts, err := h.list.Instruments()
	if err != nil {
		return "❌ 查询列表失败"
	}
	if len(insts) == 0 {
		return "📭 当前没有监控的股票"
	}

	var b strings.Builder
	b.WriteString("📊 **监控列表:**\n\n")
	for i, inst := range insts {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, inst.Name, inst.Code)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *Handler) handleStatus(ctx context.Context) string {
	insts, err := h.list.Instruments()
	if err != nil {
		return "❌ 查询状态失败"
	}
	status := "🔴 已停止"
	if h.running != nil && h.running() {
		status = "🟢 运行中"
	}
	return fmt.Sprintf("📊 监控状态: %s\n📈 监控股票: %d只", status, len(insts))
}

func (h *Handler) handleConfig() string {
	s := h.runtime.Snapshot()
	return fmt.Sprintf(`⚙️ **当前监控条件:**

🔄 检查间隔: %d秒
📊 RSI周期: %d
⚠️ RSI超买: >%.0f
✅ RSI超卖: <%.0f
📈 涨跌幅预警: ±%.1f%%
💹 量比预警: >%.1f倍

💡 修改方法: @我 改间隔 30`,
		int(s.Interval/time.Second), s.RSIPeriod, s.Overbought, s.Oversold,
		s.ChangeThresholdPct, s.VolumeRatioThreshold)
}

func (h *Handler) handleInterval(arg string) string {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return "❌ 请输入有效的数字"
	}
	if err := h.runtime.SetInterval(time.Duration(n) * time.Second); err != nil {
		return "❌ 间隔应在 10-600 秒之间"
	}
	return fmt.Sprintf("✅ 检查间隔已改为: %d秒", n)
}

func (h *Handler) handleOverbought(arg string) string {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return "❌ 请输入有效的数字"
	}
	if err := h.runtime.SetOverbought(v); err != nil {
		return "❌ RSI超买应在 70-90 之间"
	}
	s := h.runtime.Snapshot()
	return fmt.Sprintf("✅ RSI阈值已更新\n超买: %.0f\n超卖: %.0f", s.Overbought, s.Oversold)
}

func (h *Handler) handleOversold(arg string) string {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return "❌ 请输入有效的数字"
	}
	if err := h.runtime.SetOversold(v); err != nil {
		return "❌ RSI超卖应在 10-30 之间"
	}
	s := h.runtime.Snapshot()
	return fmt.Sprintf("✅ RSI阈值已更新\n超买: %.0f\n超卖: %.0f", s.Overbought, s.Oversold)
}

func (h *Handler) handleThreshold(arg string) string {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return "❌ 请输入有效的数字"
	}
	if err := h.runtime.SetChangeThreshold(v); err != nil {
		return "❌ 涨跌幅阈值应在 0-20% 之间"
	}
	return fmt.Sprintf("✅ 涨跌幅预警已改为: ±%.1f%%", v)
}

const helpText = `📖 **命令帮助:**

**添加/删除股票**
• @我 add 600519
• @我 remove 600519
• @我 list（查看列表）

**查看/修改配置**
• @我 config（查看当前配置）
• @我 改间隔 30（修改检查间隔）
• @我 改超买 85（修改RSI超买）
• @我 改超卖 15（修改RSI超卖）
• @我 改阈值 7（修改涨跌幅预警）

**其他**
• @我 status（查看状态）
• @我 help（查看帮助）

💡 支持的股票代码: 600519, 000001, 300750 等`
