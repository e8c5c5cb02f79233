package battle

import "testing"

// TestNormalizeAngleFoldsIntoRange verifies arbitrary degree values fold
// into (-180, 180].
func TestNormalizeAngleFoldsIntoRange(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{180, 180},
		{181, -179},
		{-180, 180},
		{360, 0},
		{-360, 0},
		{540, 180},
	}
	for _, tt := range tests {
		got := normalizeAngle(tt.in)
		if got != tt.want {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestRelativeBearingFacesTarget verifies a target dead ahead of a unit's
// facing yields a bearing of zero.
func TestRelativeBearingFacesTarget(t *testing.T) {
	bearing := relativeBearing(0, 0, 10, 0, 0)
	if bearing != 0 {
		t.Errorf("expected 0 bearing for a target directly ahead, got %v", bearing)
	}
	behind := relativeBearing(0, 0, -10, 0, 0)
	if behind != 180 && behind != -180 {
		t.Errorf("expected +/-180 bearing for a target directly behind, got %v", behind)
	}
}

// TestInArcTurretAlwaysHits verifies a turret-mounted weapon ignores
// bearing entirely.
func TestInArcTurretAlwaysHits(t *testing.T) {
	for _, bearing := range []float64{-180, -90, 0, 90, 179} {
		if !inArc(ArcTurret, bearing) {
			t.Errorf("turret should fire at any bearing, failed at %v", bearing)
		}
	}
}

// TestInArcFrontBoundaries verifies the front arc's +/-45 degree half-width.
func TestInArcFrontBoundaries(t *testing.T) {
	tests := []struct {
		bearing float64
		want    bool
	}{
		{0, true},
		{45, true},
		{-45, true},
		{45.01, false},
		{-45.01, false},
		{90, false},
	}
	for _, tt := range tests {
		if got := inArc(ArcFront, tt.bearing); got != tt.want {
			t.Errorf("inArc(ArcFront, %v) = %v, want %v", tt.bearing, got, tt.want)
		}
	}
}

// TestInArcLeftRightRearPartitionCircle verifies the four named arcs
// partition the full circle without gaps once all directions are checked
// against one arc each.
func TestInArcLeftRightRearPartitionCircle(t *testing.T) {
	if !inArc(ArcLeft, 90) {
		t.Error("expected 90 degrees to fall in the left arc")
	}
	if !inArc(ArcRight, -90) {
		t.Error("expected -90 degrees to fall in the right arc")
	}
	if !inArc(ArcRear, 180) {
		t.Error("expected 180 degrees to fall in the rear arc")
	}
	if inArc(ArcFront, 180) {
		t.Error("180 degrees should not fall in the front arc")
	}
}

// TestArmorFacetSelectsBySector verifies front/side/rear armor selection
// follows the attacker's bearing relative to the defender's facing.
func TestArmorFacetSelectsBySector(t *testing.T) {
	armor := Armor{Front: 10, Side: 5, Rear: 2}

	tests := []struct {
		bearing float64
		want    float64
		label   string
	}{
		{0, 10, "dead ahead is front"},
		{44, 10, "just inside front sector"},
		{90, 5, "directly abeam is side"},
		{180, 2, "directly astern is rear"},
		{270, 5, "other side is side"},
		{350, 10, "wrapping near 360 is still front"},
	}
	for _, tt := range tests {
		if got := armorFacet(armor, tt.bearing); got != tt.want {
			t.Errorf("%s: armorFacet(%v) = %v, want %v", tt.label, tt.bearing, got, tt.want)
		}
	}
}
