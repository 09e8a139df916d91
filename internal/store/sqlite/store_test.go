package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"stockwatch/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "monitor.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInstruments_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	inst := model.Instrument{Code: "sh600519", Name: "贵州茅台", AddedAt: time.Now()}
	if err := s.AddInstrument(inst); err != nil {
		t.Fatalf("add: %v", err)
	}

	ok, err := s.HasInstrument("sh600519")
	if err != nil || !ok {
		t.Fatalf("expected instrument to exist, ok=%v err=%v", ok, err)
	}

	all, err := s.Instruments()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].Code != "sh600519" || all[0].Name != "贵州茅台" {
		t.Fatalf("unexpected instruments: %+v", all)
	}

	if err := s.RemoveInstrument("sh600519"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	ok, _ = s.HasInstrument("sh600519")
	if ok {
		t.Fatal("expected instrument to be gone after remove")
	}
}

func TestAppendSample_EvictsBeyondCap(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	for i := 0; i < 150; i++ {
		err := s.AppendSample(model.PriceSample{
			Code:      "sz000001",
			Price:     float64(i),
			Volume:    float64(i * 10),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	prices, err := s.PriceHistory("sz000001", 200)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(prices) != HistoryCap {
		t.Fatalf("expected exactly %d retained samples, got %d", HistoryCap, len(prices))
	}
	// Exactly the last 100, oldest-first: 50..149
	if prices[0] != 50 || prices[len(prices)-1] != 149 {
		t.Errorf("expected 50..149 oldest-first, got first=%v last=%v", prices[0], prices[len(prices)-1])
	}
	for i := 1; i < len(prices); i++ {
		if prices[i] != prices[i-1]+1 {
			t.Fatalf("order broken at index %d: %v -> %v", i, prices[i-1], prices[i])
		}
	}
}

func TestHistory_LimitAndUnknownCode(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 10; i++ {
		s.AppendSample(model.PriceSample{Code: "sh600000", Price: float64(i), Volume: 1, Timestamp: time.Now()})
	}

	prices, err := s.PriceHistory("sh600000", 3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(prices) != 3 || prices[0] != 7 || prices[2] != 9 {
		t.Errorf("expected the 3 most recent oldest-first [7 8 9], got %v", prices)
	}

	vols, err := s.VolumeHistory("nope", 5)
	if err != nil {
		t.Fatalf("unknown code must not error: %v", err)
	}
	if len(vols) != 0 {
		t.Errorf("expected empty history for unknown code, got %v", vols)
	}
}

func TestRecordAlert(t *testing.T) {
	s := openTestStore(t)

	a := model.Alert{Code: "sh600519", Kind: model.AlertRSIOverbought, Text: "RSI(6) = 85.0"}
	if err := s.RecordAlert(a, time.Now()); err != nil {
		t.Fatalf("record alert: %v", err)
	}

	var n int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM alert_history`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 audit row, got %d", n)
	}
}
