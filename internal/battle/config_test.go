package battle

import "testing"

// TestDefaultTickIsSane verifies the nominal tick configuration falls
// within the documented 0.05-0.2 second range.
func TestDefaultTickIsSane(t *testing.T) {
	cfg := DefaultTick()
	if cfg.DT < 0.05 || cfg.DT > 0.2 {
		t.Errorf("default tick DT %v outside nominal 0.05-0.2 range", cfg.DT)
	}
	if cfg.FixedRoundSecs <= 0 {
		t.Error("FixedRoundSecs must be positive")
	}
}

// TestGridDimensionsScaleWithUnitCount verifies the unit-count to map-size
// table is monotonically non-decreasing.
func TestGridDimensionsScaleWithUnitCount(t *testing.T) {
	counts := []int{5, 19, 20, 59, 60, 149, 150, 500}
	var prevW, prevH int
	for i, n := range counts {
		w, h := gridDimensions(n)
		if w <= 0 || h <= 0 {
			t.Fatalf("gridDimensions(%d) returned non-positive size %dx%d", n, w, h)
		}
		if i > 0 && (w < prevW || h < prevH) {
			t.Errorf("gridDimensions(%d) = %dx%d is smaller than a lower unit count's %dx%d", n, w, h, prevW, prevH)
		}
		prevW, prevH = w, h
	}
}

// TestDefaultVictoryCeilingsPositive verifies every victory-check ceiling
// is a usable positive value.
func TestDefaultVictoryCeilingsPositive(t *testing.T) {
	v := DefaultVictory()
	if v.StalemateRounds <= 0 || v.ForcedDecRounds <= 0 || v.MaxRounds <= 0 || v.MaxSimTimeSeconds <= 0 {
		t.Errorf("expected all victory ceilings to be positive, got %+v", v)
	}
}
