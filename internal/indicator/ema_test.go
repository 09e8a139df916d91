package indicator

import (
	"math"
	"testing"
)

func TestEMA_SeedsToFirstPrice(t *testing.T) {
	out := EMA([]float64{10, 12, 14}, 3)
	if len(out) != 3 {
		t.Fatalf("expected output length 3, got %d", len(out))
	}
	if out[0] != 10 {
		t.Errorf("expected first element to seed to first price, got %v", out[0])
	}

	// k = 2/(3+1) = 0.5
	want1 := 12*0.5 + 10*0.5 // 11
	want2 := 14*0.5 + want1*0.5
	if math.Abs(out[1]-want1) > 1e-12 || math.Abs(out[2]-want2) > 1e-12 {
		t.Errorf("unexpected EMA sequence: %v", out)
	}
}

func TestEMA_ConstantSeries(t *testing.T) {
	out := EMA([]float64{7, 7, 7, 7, 7}, 4)
	for i, v := range out {
		if v != 7 {
			t.Errorf("element %d: expected 7, got %v", i, v)
		}
	}
}

func TestEMA_EmptyInput(t *testing.T) {
	if out := EMA(nil, 5); out != nil {
		t.Errorf("expected nil for empty input, got %v", out)
	}
}
