package battle

import "testing"

// TestSnapshotPoolLoadReturnsLatestProduce verifies a reader always sees
// the most recently published snapshot.
func TestSnapshotPoolLoadReturnsLatestProduce(t *testing.T) {
	p := NewSnapshotPool()
	p.Produce(BattleSnapshot{Timestamp: 1})
	if got := p.Load().Timestamp; got != 1 {
		t.Fatalf("expected timestamp 1, got %v", got)
	}
	p.Produce(BattleSnapshot{Timestamp: 2})
	if got := p.Load().Timestamp; got != 2 {
		t.Fatalf("expected timestamp 2, got %v", got)
	}
	p.Produce(BattleSnapshot{Timestamp: 3})
	if got := p.Load().Timestamp; got != 3 {
		t.Fatalf("expected timestamp 3, got %v", got)
	}
}

// TestSnapshotPoolLoadBeforeAnyProduce verifies reading an empty pool
// returns the zero-value snapshot rather than panicking.
func TestSnapshotPoolLoadBeforeAnyProduce(t *testing.T) {
	p := NewSnapshotPool()
	snap := p.Load()
	if snap.Timestamp != 0 || len(snap.Units) != 0 {
		t.Errorf("expected a zero-value snapshot, got %+v", snap)
	}
}

// TestBuildSnapshotCapturesEveryUnit verifies every live and dead unit in
// the roster lands in the snapshot with its current position and status.
func TestBuildSnapshotCapturesEveryUnit(t *testing.T) {
	units := map[string]*Unit{
		"alive": {ID: "alive", Name: "Trooper", FactionID: "red", X: 1, Y: 2, HP: 50, MaxHP: 100, Facing: 90},
		"dead":  {ID: "dead", Name: "Tank", FactionID: "blue", X: 3, Y: 4, HP: 0, MaxHP: 100, Facing: 0},
	}
	snap := BuildSnapshot(12.5, units)
	if snap.Timestamp != 12.5 {
		t.Errorf("expected timestamp 12.5, got %v", snap.Timestamp)
	}
	if len(snap.Units) != 2 {
		t.Fatalf("expected 2 unit snapshots, got %d", len(snap.Units))
	}

	byID := make(map[string]UnitSnapshot, 2)
	for _, u := range snap.Units {
		byID[u.ID] = u
	}
	if !byID["alive"].IsAlive {
		t.Error("expected the alive unit to be flagged alive")
	}
	if byID["dead"].IsAlive {
		t.Error("expected the zero-hp unit to be flagged not alive")
	}
	if byID["alive"].X != 1 || byID["alive"].Y != 2 {
		t.Errorf("expected position to survive, got (%v, %v)", byID["alive"].X, byID["alive"].Y)
	}
}
