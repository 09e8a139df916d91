package command

import (
	"context"
	"strings"
	"testing"
	"time"

	"stockwatch/config"
	"stockwatch/internal/fetch"
	"stockwatch/internal/model"
)

type fakeList struct {
	insts   []model.Instrument
	removed []string
}

func (f *fakeList) AddInstrument(inst model.Instrument) error {
	f.insts = append(f.insts, inst)
	return nil
}

func (f *fakeList) RemoveInstrument(code string) error {
	f.removed = append(f.removed, code)
	return nil
}

func (f *fakeList) Instruments() ([]model.Instrument, error) {
	return f.insts, nil
}

type fakeQuoter struct {
	quotes map[string]*model.Quote
}

func (f *fakeQuoter) Quote(ctx context.Context, code string) (*model.Quote, error) {
	q, ok := f.quotes[code]
	if !ok {
		return nil, fetch.ErrNotFound
	}
	return q, nil
}

func newHandler(t *testing.T) (*Handler, *fakeList, *config.Runtime) {
	t.Helper()
	list := &fakeList{}
	quoter := &fakeQuoter{quotes: map[string]*model.Quote{
		"sh600519": {Name: "贵州茅台", Code: "sh600519", Price: 1688.0, PreClose: 1650.0},
	}}
	rt := config.NewRuntime(config.DefaultSettings())
	return New(list, quoter, rt, func() bool { return true }), list, rt
}

func TestHandle_AddNormalizesAndStores(t *testing.T) {
	h, list, _ := newHandler(t)

	reply := h.Handle(context.Background(), "add 600519")
	if !strings.Contains(reply, "✅ 已添加") || !strings.Contains(reply, "贵州茅台") {
		t.Fatalf("unexpected reply: %s", reply)
	}
	if len(list.insts) != 1 || list.insts[0].Code != "sh600519" {
		t.Errorf("expected normalized code stored, got %+v", list.insts)
	}
}

func TestHandle_AddUnknownCode(t *testing.T) {
	h, list, _ := newHandler(t)

	reply := h.Handle(context.Background(), "add 999999")
	if !strings.Contains(reply, "未找到股票") {
		t.Fatalf("unexpected reply: %s", reply)
	}
	if len(list.insts) != 0 {
		t.Error("unknown code must not be stored")
	}
}

func TestHandle_RemoveNormalizes(t *testing.T) {
	h, list, _ := newHandler(t)

	h.Handle(context.Background(), "remove SH600519")
	if len(list.removed) != 1 || list.removed[0] != "sh600519" {
		t.Errorf("expected normalized removal, got %v", list.removed)
	}
}

func TestHandle_ListEmptyAndPopulated(t *testing.T) {
	h, list, _ := newHandler(t)

	if reply := h.Handle(context.Background(), "list"); !strings.Contains(reply, "没有监控的股票") {
		t.Errorf("unexpected empty-list reply: %s", reply)
	}

	list.insts = append(list.insts, model.Instrument{Code: "sz000001", Name: "平安银行"})
	reply := h.Handle(context.Background(), "list")
	if !strings.Contains(reply, "1. 平安银行 (sz000001)") {
		t.Errorf("unexpected list reply: %s", reply)
	}
}

func TestHandle_Status(t *testing.T) {
	h, list, _ := newHandler(t)
	list.insts = append(list.insts, model.Instrument{Code: "sh600519"})

	reply := h.Handle(context.Background(), "status")
	if !strings.Contains(reply, "🟢 运行中") || !strings.Contains(reply, "1只") {
		t.Errorf("unexpected status reply: %s", reply)
	}
}

func TestHandle_IntervalValidation(t *testing.T) {
	h, _, rt := newHandler(t)

	if reply := h.Handle(context.Background(), "interval 5"); !strings.Contains(reply, "10-600") {
		t.Errorf("expected range error, got: %s", reply)
	}
	if got := rt.Snapshot().Interval; got != 60*time.Second {
		t.Errorf("rejected command must not change state, interval = %v", got)
	}

	if reply := h.Handle(context.Background(), "改间隔 30"); !strings.Contains(reply, "30秒") {
		t.Errorf("unexpected reply: %s", reply)
	}
	if got := rt.Snapshot().Interval; got != 30*time.Second {
		t.Errorf("interval = %v, want 30s", got)
	}
}

func TestHandle_RSIThresholds(t *testing.T) {
	h, _, rt := newHandler(t)

	h.Handle(context.Background(), "改超买 85")
	h.Handle(context.Background(), "oversold 15")
	s := rt.Snapshot()
	if s.Overbought != 85 || s.Oversold != 15 {
		t.Errorf("thresholds = %.0f/%.0f, want 85/15", s.Overbought, s.Oversold)
	}

	if reply := h.Handle(context.Background(), "超买 95"); !strings.Contains(reply, "70-90") {
		t.Errorf("expected range error, got: %s", reply)
	}
	if reply := h.Handle(context.Background(), "interval abc"); !strings.Contains(reply, "有效的数字") {
		t.Errorf("expected number error, got: %s", reply)
	}
}

func TestHandle_ChangeThreshold(t *testing.T) {
	h, _, rt := newHandler(t)

	h.Handle(context.Background(), "threshold 7")
	if got := rt.Snapshot().ChangeThresholdPct; got != 7 {
		t.Errorf("threshold = %v, want 7", got)
	}
	if reply := h.Handle(context.Background(), "改阈值 25"); !strings.Contains(reply, "0-20") {
		t.Errorf("expected range error, got: %s", reply)
	}
}

func TestHandle_CaseInsensitiveDispatch(t *testing.T) {
	h, _, _ := newHandler(t)

	reply := h.Handle(context.Background(), "  LIST  ")
	if !strings.Contains(reply, "没有监控的股票") {
		t.Errorf("uppercase command not dispatched: %s", reply)
	}
}

func TestHandle_UnknownAndHelp(t *testing.T) {
	h, _, _ := newHandler(t)

	if reply := h.Handle(context.Background(), "frobnicate"); !strings.Contains(reply, "未知命令") {
		t.Errorf("unexpected reply: %s", reply)
	}
	for _, text := range []string{"help", "帮助", "?", ""} {
		if reply := h.Handle(context.Background(), text); !strings.Contains(reply, "命令帮助") {
			t.Errorf("Handle(%q) did not return help: %s", text, reply)
		}
	}
}
