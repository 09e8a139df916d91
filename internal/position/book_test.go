package position

import (
	"os"
	"path/filepath"
	"testing"

	"stockwatch/internal/model"
)

func writeBook(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "positions.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_NormalizesCodesAndParsesStrategies(t *testing.T) {
	path := writeBook(t, `[
		{"code": "600519", "cost_basis": 1500, "size": 100, "strategy": "mean-reversion-intraday"},
		{"code": "SZ000001", "cost_basis": 11.2, "size": 1000, "strategy": "momentum-short"},
		{"code": "300750", "cost_basis": 180, "size": 200}
	]`)

	book, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if book.Len() != 3 {
		t.Fatalf("Len = %d, want 3", book.Len())
	}

	if p := book.Get("sh600519"); p == nil || p.Strategy != model.StrategyMeanReversion {
		t.Errorf("sh600519 = %+v, want mean-reversion", p)
	}
	if p := book.Get("sz000001"); p == nil || p.Strategy != model.StrategyMomentum {
		t.Errorf("sz000001 = %+v, want momentum", p)
	}
	if p := book.Get("sz300750"); p == nil || p.Strategy != model.StrategyNone {
		t.Errorf("sz300750 = %+v, want no strategy", p)
	}
}

func TestLoad_UnknownStrategyFailsWholeLoad(t *testing.T) {
	path := writeBook(t, `[
		{"code": "600519", "strategy": "mean-reversion-intraday"},
		{"code": "000001", "strategy": "yolo"}
	]`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown strategy tag")
	}
}

func TestLoad_MissingCodeRejected(t *testing.T) {
	path := writeBook(t, `[{"cost_basis": 10}]`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing code")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEmptyBook(t *testing.T) {
	book := Empty()
	if book.Len() != 0 || book.Get("sh600519") != nil {
		t.Error("empty book must hold nothing")
	}
}
