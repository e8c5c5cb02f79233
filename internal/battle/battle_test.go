package battle

import (
	"testing"
)

func testConfig() Config {
	return Config{Tick: DefaultTick(), Victory: DefaultVictory(), Grid: DefaultGrid()}
}

func testUnit(id, factionID string, x, y float64) *Unit {
	return &Unit{
		ID: id, FactionID: factionID,
		X: x, Y: y, MaxSpeed: 5, BallisticSkill: 80,
		HP: 100, MaxHP: 100,
		MeleeAttack: 10, MeleeDefense: 10,
		Components: []*Component{
			{ID: id + "-gun", Type: ComponentWeapon, MaxHP: 10, CurrentHP: 10,
				Range: 100, Strength: 5, AttacksPerSec: 2, Arc: ArcTurret},
		},
	}
}

func testArmies() map[string][]*Unit {
	// totalUnits < 20 maps to a 30x30 grid (config.go's gridDimensions
	// table), so both placements must stay within [0, 30].
	return map[string][]*Unit{
		"red":  {testUnit("red-1", "red", 5, 5)},
		"blue": {testUnit("blue-1", "blue", 25, 25)},
	}
}

// TestInitializeBattlePlacesEveryUnit verifies every roster entry lands in
// the unit map and spatial index.
func TestInitializeBattlePlacesEveryUnit(t *testing.T) {
	bs, err := InitializeBattle(testArmies(), nil, nil, nil, nil, "test-map", 1, testConfig())
	if err != nil {
		t.Fatalf("InitializeBattle failed: %v", err)
	}
	if len(bs.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(bs.Units))
	}
	if _, ok := bs.Units["red-1"]; !ok {
		t.Error("missing red-1")
	}
	if _, ok := bs.Units["blue-1"]; !ok {
		t.Error("missing blue-1")
	}
}

// TestInitializeBattleRejectsOutOfBounds verifies a unit placed outside
// the computed map bounds returns InvalidPlacement.
func TestInitializeBattleRejectsOutOfBounds(t *testing.T) {
	armies := map[string][]*Unit{
		"red": {testUnit("red-1", "red", 99999, 99999)},
	}
	_, err := InitializeBattle(armies, nil, nil, nil, nil, "test-map", 1, testConfig())
	if err == nil {
		t.Fatal("expected an error for an out-of-bounds unit")
	}
	be, ok := AsBattleError(err)
	if !ok {
		t.Fatalf("expected a BattleError, got %T", err)
	}
	if be.Kind != InvalidPlacement {
		t.Errorf("expected InvalidPlacement, got %v", be.Kind)
	}
}

// TestTickAdvancesSimTime verifies Tick advances total sim time by dt and
// never panics on a minimal two-unit battle.
func TestTickAdvancesSimTime(t *testing.T) {
	bs, err := InitializeBattle(testArmies(), nil, nil, nil, nil, "test-map", 1, testConfig())
	if err != nil {
		t.Fatalf("InitializeBattle failed: %v", err)
	}
	before := bs.TotalSimTime
	bs.Tick(0.1)
	if bs.TotalSimTime <= before {
		t.Errorf("expected TotalSimTime to advance, before=%v after=%v", before, bs.TotalSimTime)
	}
}

// TestExecuteRoundRunsEveryPhase drives several rounds through the legacy
// phase pipeline and checks it terminates in a sane state (no live unit
// with hp above its max, no negative hp).
func TestExecuteRoundRunsEveryPhase(t *testing.T) {
	bs, err := InitializeBattle(testArmies(), nil, nil, nil, nil, "test-map", 7, testConfig())
	if err != nil {
		t.Fatalf("InitializeBattle failed: %v", err)
	}
	executor := NewPhaseExecutor(DefaultPhases(bs), DefaultPhaseOrder())

	for i := 0; i < 20; i++ {
		bs.ExecuteRound(executor)
	}

	for id, u := range bs.Units {
		if u.HP < 0 || u.HP > u.MaxHP {
			t.Errorf("unit %s hp %v out of [0, %v]", id, u.HP, u.MaxHP)
		}
	}
}

// TestApplyCommandSpawnReinforcement verifies a spawn_reinforcement
// command adds a new unit to the roster.
func TestApplyCommandSpawnReinforcement(t *testing.T) {
	bs, err := InitializeBattle(testArmies(), nil, nil, nil, nil, "test-map", 1, testConfig())
	if err != nil {
		t.Fatalf("InitializeBattle failed: %v", err)
	}
	reinforcement := testUnit("red-2", "red", 6, 6)
	err = bs.ApplyCommand(Command{
		Type:      CommandSpawnReinforcement,
		FactionID: "red",
		Units:     []*Unit{reinforcement},
	})
	if err != nil {
		t.Fatalf("ApplyCommand failed: %v", err)
	}
	if _, ok := bs.Units["red-2"]; !ok {
		t.Error("expected reinforcement to be added to the roster")
	}
}

// TestApplyCommandUnknownTypeErrors verifies an unrecognized command type
// is rejected rather than silently ignored.
func TestApplyCommandUnknownTypeErrors(t *testing.T) {
	bs, err := InitializeBattle(testArmies(), nil, nil, nil, nil, "test-map", 1, testConfig())
	if err != nil {
		t.Fatalf("InitializeBattle failed: %v", err)
	}
	err = bs.ApplyCommand(Command{Type: CommandType("not_a_real_command")})
	if err == nil {
		t.Fatal("expected an error for an unknown command type")
	}
}

// TestReportCountsSurvivors verifies BuildReport counts alive units per
// faction correctly.
func TestReportCountsSurvivors(t *testing.T) {
	bs, err := InitializeBattle(testArmies(), nil, nil, nil, nil, "test-map", 1, testConfig())
	if err != nil {
		t.Fatalf("InitializeBattle failed: %v", err)
	}
	bs.Units["blue-1"].HP = 0

	armies := map[string][]*Unit{
		"red":  {bs.Units["red-1"]},
		"blue": {bs.Units["blue-1"]},
	}
	report := BuildReport("red", bs.MapName, bs.TotalSimTime, bs.Standings, armies, nil, nil)
	if report.Factions["red"].Survivors != 1 {
		t.Errorf("expected 1 red survivor, got %d", report.Factions["red"].Survivors)
	}
	if report.Factions["blue"].Survivors != 0 {
		t.Errorf("expected 0 blue survivors, got %d", report.Factions["blue"].Survivors)
	}
}
