package battle

import "testing"

// TestDamageCoverHeavyDowngradesToLight verifies a depleted heavy cover
// tile downgrades to light rather than disappearing entirely.
func TestDamageCoverHeavyDowngradesToLight(t *testing.T) {
	tile := &CoverTile{X: 0, Y: 0, Density: CoverHeavy, HP: 10, MaxHP: 100}
	hit := DamageCover([]*CoverTile{tile}, 0, 0, 25)
	if !hit {
		t.Fatal("expected a cover tile within range to be found and damaged")
	}
	if tile.Density != CoverLight {
		t.Errorf("expected depleted heavy cover to downgrade to light, got %v", tile.Density)
	}
	if tile.HP != 50 {
		t.Errorf("expected downgraded cover to reset to half max hp, got %v", tile.HP)
	}
}

// TestDamageCoverLightIsRemoved verifies a depleted light cover tile is
// fully cleared (no longer blocks movement, zero max hp).
func TestDamageCoverLightIsRemoved(t *testing.T) {
	tile := &CoverTile{X: 0, Y: 0, Density: CoverLight, HP: 10, MaxHP: 50, BlocksMove: true}
	DamageCover([]*CoverTile{tile}, 0, 0, 25)
	if tile.HP != 0 || tile.BlocksMove || tile.MaxHP != 0 {
		t.Errorf("expected light cover to be fully cleared, got %+v", tile)
	}
}

// TestDamageCoverOutOfRangeMisses verifies a tile beyond the find radius is
// never selected.
func TestDamageCoverOutOfRangeMisses(t *testing.T) {
	tile := &CoverTile{X: 100, Y: 100, Density: CoverLight, HP: 10, MaxHP: 50}
	if DamageCover([]*CoverTile{tile}, 0, 0, 25) {
		t.Error("expected no tile within range to be damaged")
	}
}

// TestUpdateObjectivesSoleOccupantAccrues verifies a single faction's
// presence accrues capture progress and flips ownership once it hits 100.
func TestUpdateObjectivesSoleOccupantAccrues(t *testing.T) {
	terr := &Terrain{Objectives: []*TacticalObjective{
		{ID: "obj-1", VPPerSec: 1, CaptureProgress: map[string]float64{}},
	}}
	occupants := map[string]map[string]struct{}{"obj-1": {"red": {}}}
	vp := map[string]float64{}

	captures := terr.UpdateObjectives(occupants, 6.0, vp) // 6s * 20/s = 120, clamps to 100
	if len(captures) != 1 || captures[0].Faction != "red" {
		t.Fatalf("expected red to capture obj-1, got %+v", captures)
	}
	if terr.Objectives[0].Owner != "red" {
		t.Errorf("expected red to own obj-1, got %q", terr.Objectives[0].Owner)
	}
}

// TestUpdateObjectivesContestedFreezesProgress verifies two factions
// present simultaneously halts progress for either.
func TestUpdateObjectivesContestedFreezesProgress(t *testing.T) {
	terr := &Terrain{Objectives: []*TacticalObjective{
		{ID: "obj-1", VPPerSec: 1, CaptureProgress: map[string]float64{"red": 50}},
	}}
	occupants := map[string]map[string]struct{}{"obj-1": {"red": {}, "blue": {}}}
	vp := map[string]float64{}

	terr.UpdateObjectives(occupants, 10.0, vp)
	if terr.Objectives[0].CaptureProgress["red"] != 50 {
		t.Errorf("expected contested presence to freeze progress at 50, got %v", terr.Objectives[0].CaptureProgress["red"])
	}
}

// TestUpdateObjectivesEmptyDecaysProgress verifies an unoccupied objective
// decays existing progress rather than holding it indefinitely.
func TestUpdateObjectivesEmptyDecaysProgress(t *testing.T) {
	terr := &Terrain{Objectives: []*TacticalObjective{
		{ID: "obj-1", VPPerSec: 1, CaptureProgress: map[string]float64{"red": 10}},
	}}
	vp := map[string]float64{}
	terr.UpdateObjectives(map[string]map[string]struct{}{}, 1.0, vp)
	if terr.Objectives[0].CaptureProgress["red"] != 5 {
		t.Errorf("expected progress to decay by 5/s*1s = 5, got %v", terr.Objectives[0].CaptureProgress["red"])
	}
}

// TestUpdateObjectivesOwnedAccruesVP verifies an objective already owned
// by a faction feeds victory points every tick regardless of occupancy.
func TestUpdateObjectivesOwnedAccruesVP(t *testing.T) {
	terr := &Terrain{Objectives: []*TacticalObjective{
		{ID: "obj-1", VPPerSec: 2, Owner: "red", CaptureProgress: map[string]float64{}},
	}}
	vp := map[string]float64{}
	terr.UpdateObjectives(map[string]map[string]struct{}{}, 3.0, vp)
	if vp["red"] != 6 {
		t.Errorf("expected 2 vp/s * 3s = 6, got %v", vp["red"])
	}
}
