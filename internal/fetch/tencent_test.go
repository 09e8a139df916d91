package fetch

import (
	"strings"
	"testing"
)

func TestNormalizeCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"600519", "sh600519"},
		{"000001", "sz000001"},
		{"300750", "sz300750"},
		{"430047", "bj430047"},
		{"835174", "bj835174"},
		{"sh600519", "sh600519"},
		{"SH600519", "sh600519"},
		{"SZ000001", "sz000001"},
		{" 600519 ", "sh600519"},
		{"AAPL", "aapl"},
	}
	for _, c := range cases {
		if got := NormalizeCode(c.in); got != c.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func samplePayload() string {
	fields := make([]string, 40)
	for i := range fields {
		fields[i] = "0"
	}
	fields[1] = "贵州茅台"
	fields[3] = "1700.01"
	fields[4] = "1698.00"
	fields[5] = "1699.00"
	fields[6] = "25000"
	fields[30] = "20250310150001"
	fields[33] = "1712.00"
	fields[34] = "1688.88"
	fields[37] = "424000"
	return `v_sh600519="` + strings.Join(fields, "~") + `";`
}

func TestParseQuote(t *testing.T) {
	q, err := parseQuote("sh600519", samplePayload())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.Name != "贵州茅台" {
		t.Errorf("name: got %q", q.Name)
	}
	if q.Price != 1700.01 || q.PreClose != 1698.00 || q.Open != 1699.00 {
		t.Errorf("prices: %+v", q)
	}
	if q.High != 1712.00 || q.Low != 1688.88 {
		t.Errorf("high/low: %+v", q)
	}
	if q.Volume != 25000 || q.Amount != 424000 {
		t.Errorf("volume/amount: %+v", q)
	}
	if q.Time != "20250310150001" {
		t.Errorf("time: got %q", q.Time)
	}
}

func TestParseQuote_NotFound(t *testing.T) {
	_, err := parseQuote("sh999999", `v_pv_none_match="1";`)
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParseQuote_ShortPayload(t *testing.T) {
	if _, err := parseQuote("sh600519", "1~x~2~3"); err == nil {
		t.Fatal("expected error on short payload")
	}
}

func TestParseQuote_BlankFieldsAreZero(t *testing.T) {
	fields := make([]string, 40)
	fields[3] = "" // blank price
	q, err := parseQuote("sh600519", strings.Join(fields, "~"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.Price != 0 {
		t.Errorf("expected zero price for blank field, got %v", q.Price)
	}
}

func TestParseKLines(t *testing.T) {
	body := []byte(`{"code":0,"data":{"sh600519":{"qfqday":[
		["2025-03-06","1690.00","1698.00","1701.00","1685.00","32000"],
		["2025-03-07","1698.00","1700.01","1712.00","1688.88","25000"]
	]}}}`)

	ks, err := parseKLines("sh600519", body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ks) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(ks))
	}
	if ks[0].Date != "2025-03-06" || ks[0].Close != 1698.00 {
		t.Errorf("first candle: %+v", ks[0])
	}
	if ks[1].High != 1712.00 || ks[1].Volume != 25000 {
		t.Errorf("second candle: %+v", ks[1])
	}
}

func TestParseKLines_PlainDayFallback(t *testing.T) {
	body := []byte(`{"data":{"bj430047":{"day":[["2025-03-07","10","11","12","9","100"]]}}}`)
	ks, err := parseKLines("bj430047", body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ks) != 1 || ks[0].Close != 11 {
		t.Errorf("unexpected candles: %+v", ks)
	}
}

func TestParseKLines_NoData(t *testing.T) {
	if _, err := parseKLines("sh600519", []byte(`{"data":{}}`)); err == nil {
		t.Fatal("expected error when code is absent")
	}
}
