package battle

import (
	"math"
	"testing"
)

// TestModsForWallIsSlowButSturdy verifies the wall formation trades speed
// for defense.
func TestModsForWallIsSlowButSturdy(t *testing.T) {
	m := modsFor(FormationWall)
	if m.SpeedMult >= 1 {
		t.Errorf("expected wall formation to be slower than baseline, got %v", m.SpeedMult)
	}
	if m.DefenseMult <= 1 {
		t.Errorf("expected wall formation to be sturdier than baseline, got %v", m.DefenseMult)
	}
}

// TestModsForUnknownShapeIsNeutral verifies an out-of-range shape value
// still returns sane neutral defaults rather than zeroed multipliers.
func TestModsForUnknownShapeIsNeutral(t *testing.T) {
	m := modsFor(FormationRectangle)
	if m.SpeedMult != 1 || m.DamageMult != 1 || m.AccuracyMult != 1 || m.DefenseMult != 1 {
		t.Errorf("expected all multipliers at 1.0 for the rectangle default, got %+v", m)
	}
}

// TestSlotForFindsMemberIndex verifies SlotFor locates a member's index
// and reports -1 for a unit not in the formation.
func TestSlotForFindsMemberIndex(t *testing.T) {
	f := &Formation{UnitIDs: []string{"a", "b", "c"}}
	if f.SlotFor("b") != 1 {
		t.Errorf("expected index 1 for 'b', got %d", f.SlotFor("b"))
	}
	if f.SlotFor("missing") != -1 {
		t.Errorf("expected -1 for a unit not in the formation, got %d", f.SlotFor("missing"))
	}
}

// TestSlotOffsetRectangleGridIsCentered verifies a rectangle formation's
// middle column sits on the centroid's forward axis.
func TestSlotOffsetRectangleGridIsCentered(t *testing.T) {
	f := &Formation{Shape: FormationRectangle, Cols: 3, Spacing: 2, Facing: 0}
	_, dy := f.SlotOffset(1) // row 0, col 1 (middle of 3 columns)
	if math.Abs(dy) > 1e-9 {
		t.Errorf("expected the middle column to have zero lateral offset, got %v", dy)
	}
}

// TestSlotOffsetRotatesWithFacing verifies a 90-degree formation facing
// rotates the local offset into world space.
func TestSlotOffsetRotatesWithFacing(t *testing.T) {
	f := &Formation{Shape: FormationRectangle, Cols: 1, Spacing: 1, Facing: 90}
	dx, dy := f.SlotOffset(1) // row 1, col 0: local (dx=1*spacing, dy=0)
	if math.Abs(dx) > 1e-9 {
		t.Errorf("expected a 90-degree rotation to zero out the x component, got %v", dx)
	}
	if dy <= 0 {
		t.Errorf("expected a 90-degree rotation to swing the offset onto +y, got %v", dy)
	}
}

// TestRecomputeCentroidIgnoresDeadMembers verifies a dead formation member
// doesn't pull the centroid toward its last position.
func TestRecomputeCentroidIgnoresDeadMembers(t *testing.T) {
	units := map[string]*Unit{
		"alive-1": {X: 0, Y: 0, HP: 10, MaxHP: 10},
		"alive-2": {X: 10, Y: 0, HP: 10, MaxHP: 10},
		"dead":    {X: 1000, Y: 1000, HP: 0, MaxHP: 10},
	}
	f := &Formation{UnitIDs: []string{"alive-1", "alive-2", "dead"}}
	f.RecomputeCentroid(units)
	if f.CentroidX != 5 || f.CentroidY != 0 {
		t.Errorf("expected centroid (5, 0) ignoring the dead member, got (%v, %v)", f.CentroidX, f.CentroidY)
	}
}

// TestRecomputeCentroidNoSurvivorsLeavesCentroidUnchanged verifies an
// all-dead formation keeps its last known centroid instead of resetting
// to the origin.
func TestRecomputeCentroidNoSurvivorsLeavesCentroidUnchanged(t *testing.T) {
	units := map[string]*Unit{"dead": {X: 0, Y: 0, HP: 0, MaxHP: 10}}
	f := &Formation{UnitIDs: []string{"dead"}, CentroidX: 7, CentroidY: 9}
	f.RecomputeCentroid(units)
	if f.CentroidX != 7 || f.CentroidY != 9 {
		t.Errorf("expected centroid to remain (7, 9) with no survivors, got (%v, %v)", f.CentroidX, f.CentroidY)
	}
}
