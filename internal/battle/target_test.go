package battle

import "testing"

// TestMaxCacheDistanceDiffersByDomain verifies space engagements keep a
// cached target valid over a longer range than ground engagements.
func TestMaxCacheDistanceDiffersByDomain(t *testing.T) {
	if maxCacheDistance(DomainSpace) <= maxCacheDistance(DomainGround) {
		t.Error("expected space domain's cache distance to exceed ground's")
	}
}

// TestSelectHardpointPrefersShieldWhileUp verifies an alive shield
// generator is chosen over a damaged hull component when shields are up.
func TestSelectHardpointPrefersShieldWhileUp(t *testing.T) {
	target := &Unit{
		Shield: 50,
		Components: []*Component{
			{ID: "shield-gen", Type: ComponentShield, MaxHP: 10, CurrentHP: 10},
			{ID: "hull", Type: ComponentHull, MaxHP: 100, CurrentHP: 40},
		},
	}
	if got := selectHardpoint(target); got != "shield-gen" {
		t.Errorf("expected shield-gen to be selected, got %q", got)
	}
}

// TestSelectHardpointPrefersMostDamaged verifies the most-damaged component
// (by hp fraction) is chosen once shields are down.
func TestSelectHardpointPrefersMostDamaged(t *testing.T) {
	target := &Unit{
		Shield: 0,
		Components: []*Component{
			{ID: "weapon", Type: ComponentWeapon, MaxHP: 10, CurrentHP: 9},
			{ID: "engine", Type: ComponentEngine, MaxHP: 10, CurrentHP: 2},
			{ID: "hull", Type: ComponentHull, MaxHP: 100, CurrentHP: 100},
		},
	}
	if got := selectHardpoint(target); got != "engine" {
		t.Errorf("expected engine (most damaged fraction) to be selected, got %q", got)
	}
}

// TestSelectHardpointFallsBackToHull verifies a fully healthy target with
// no weapon/engine components resolves to its hull.
func TestSelectHardpointFallsBackToHull(t *testing.T) {
	target := &Unit{
		Components: []*Component{
			{ID: "hull", Type: ComponentHull, MaxHP: 100, CurrentHP: 100},
		},
	}
	if got := selectHardpoint(target); got != "hull" {
		t.Errorf("expected hull fallback, got %q", got)
	}
}

// TestSelectHardpointEmptyWhenNothingAlive verifies a target with no
// surviving components returns an empty hardpoint rather than panicking.
func TestSelectHardpointEmptyWhenNothingAlive(t *testing.T) {
	target := &Unit{
		Components: []*Component{
			{ID: "hull", Type: ComponentHull, MaxHP: 100, CurrentHP: 0, IsDestroyed: true},
		},
	}
	if got := selectHardpoint(target); got != "" {
		t.Errorf("expected empty hardpoint when nothing survives, got %q", got)
	}
}

// TestSelectIgnoresSameFactionAndSelf verifies a selector never targets a
// unit from the attacker's own faction or the attacker itself.
func TestSelectIgnoresSameFactionAndSelf(t *testing.T) {
	attacker := &Unit{ID: "a1", FactionID: "red", X: 0, Y: 0}
	ally := &Unit{ID: "a2", FactionID: "red", X: 5, Y: 0, HP: 10, MaxHP: 10}
	units := map[string]*Unit{"a1": attacker, "a2": ally}

	sel := NewTargetSelector()
	targetID, _ := sel.Select(attacker, units, []string{"a1", "a2"}, 0, DoctrineStandard, false, false)
	if targetID != "" {
		t.Errorf("expected no target among same-faction candidates, got %q", targetID)
	}
}

// TestSelectPicksClosestEnemyByDefault verifies the default (non-kite)
// doctrine scores candidates primarily by distance.
func TestSelectPicksClosestEnemyByDefault(t *testing.T) {
	attacker := &Unit{ID: "a1", FactionID: "red", X: 0, Y: 0}
	near := &Unit{ID: "e1", FactionID: "blue", X: 10, Y: 0, HP: 10, MaxHP: 10,
		Components: []*Component{{ID: "e1-hull", Type: ComponentHull, MaxHP: 10, CurrentHP: 10}}}
	far := &Unit{ID: "e2", FactionID: "blue", X: 100, Y: 0, HP: 10, MaxHP: 10,
		Components: []*Component{{ID: "e2-hull", Type: ComponentHull, MaxHP: 10, CurrentHP: 10}}}
	units := map[string]*Unit{"a1": attacker, "e1": near, "e2": far}

	sel := NewTargetSelector()
	targetID, _ := sel.Select(attacker, units, []string{"e1", "e2"}, 0, DoctrineStandard, false, false)
	if targetID != "e1" {
		t.Errorf("expected closer enemy e1 to be selected, got %q", targetID)
	}
}

// TestCandidateRadiusWidensForKite verifies the kite doctrine pulls a wider
// candidate radius than the default.
func TestCandidateRadiusWidensForKite(t *testing.T) {
	if CandidateRadius(DoctrineKite) <= CandidateRadius(DoctrineStandard) {
		t.Error("expected kite doctrine to use a wider candidate radius")
	}
}
