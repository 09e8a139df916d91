package indicator

import "testing"

func TestVolumeRatio_InsufficientData(t *testing.T) {
	if _, ok := VolumeRatio(nil); ok {
		t.Fatal("expected not-ok for empty input")
	}
	if _, ok := VolumeRatio([]float64{10}); ok {
		t.Fatal("expected not-ok with a single sample")
	}
}

func TestVolumeRatio_Spike(t *testing.T) {
	v, ok := VolumeRatio([]float64{10, 10, 10, 30})
	if !ok {
		t.Fatal("expected ok")
	}
	if v != 3.0 {
		t.Errorf("expected ratio 3.0, got %v", v)
	}
}

func TestVolumeRatio_Rounds(t *testing.T) {
	// 10 / mean([3,3,3]) = 3.3333... → 3.33
	v, ok := VolumeRatio([]float64{3, 3, 3, 10})
	if !ok {
		t.Fatal("expected ok")
	}
	if v != 3.33 {
		t.Errorf("expected 3.33, got %v", v)
	}
}

func TestVolumeRatio_ZeroBaseline(t *testing.T) {
	if _, ok := VolumeRatio([]float64{0, 0, 0, 30}); ok {
		t.Fatal("expected not-ok when the preceding mean is zero")
	}
}
