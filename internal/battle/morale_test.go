package battle

import (
	"math/rand"
	"testing"
)

// TestAddSuppressionClampsAndFlags verifies suppression accumulates up to
// 100 and the pinned/suppressed flags track the documented thresholds.
func TestAddSuppressionClampsAndFlags(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		wantPinned   bool
		wantSuppress bool
	}{
		{"below threshold", 10, false, false},
		{"suppressed band", 30, false, true},
		{"pinned band", 80, true, true},
		{"over 100 clamps", 500, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &Unit{MaxHP: 100, HP: 100}
			AddSuppression(u, tt.amount)
			if u.Suppression > 100 {
				t.Errorf("suppression %v exceeds 100 cap", u.Suppression)
			}
			if u.IsPinned != tt.wantPinned {
				t.Errorf("IsPinned = %v, want %v", u.IsPinned, tt.wantPinned)
			}
			if u.IsSuppressed != tt.wantSuppress {
				t.Errorf("IsSuppressed = %v, want %v", u.IsSuppressed, tt.wantSuppress)
			}
		})
	}
}

// TestAddSuppressionResistanceReducesGain ensures SuppressionRes dampens
// the applied amount.
func TestAddSuppressionResistanceReducesGain(t *testing.T) {
	low := &Unit{MaxHP: 100, HP: 100, SuppressionRes: 0}
	high := &Unit{MaxHP: 100, HP: 100, SuppressionRes: 100}
	AddSuppression(low, 20)
	AddSuppression(high, 20)
	if high.Suppression >= low.Suppression {
		t.Errorf("higher resistance should gain less suppression: low=%v high=%v", low.Suppression, high.Suppression)
	}
}

// TestDecaySuppressionCoverRate verifies cover decays suppression faster
// than the open-ground baseline.
func TestDecaySuppressionCoverRate(t *testing.T) {
	open := &Unit{Suppression: 50}
	covered := &Unit{Suppression: 50}
	DecaySuppression(open, 1.0, false)
	DecaySuppression(covered, 1.0, true)
	if covered.Suppression >= open.Suppression {
		t.Errorf("cover should decay faster: open=%v covered=%v", open.Suppression, covered.Suppression)
	}
	if open.Suppression < 0 || covered.Suppression < 0 {
		t.Error("suppression should never go negative")
	}
}

// TestMoraleCheckFailsOnlyWhenSuppressed confirms a unit with zero
// suppression can never fail a morale check regardless of roll.
func TestMoraleCheckFailsOnlyWhenSuppressed(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	u := &Unit{HP: 10, MaxHP: 100, Suppression: 0}
	for i := 0; i < 100; i++ {
		result := MoraleCheck(rng, u, 0, 0, false)
		if result.Failed {
			t.Fatal("unit with zero suppression should never fail a morale check")
		}
	}
}

// TestMoraleCheckTrappedHalvesHP verifies an interdicted failed check
// halves hp instead of routing.
func TestMoraleCheckTrappedHalvesHP(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	u := &Unit{HP: 100, MaxHP: 100, Suppression: 80}
	var trapped bool
	for i := 0; i < 200; i++ {
		before := u.HP
		result := MoraleCheck(rng, u, -20, 0, true)
		if result.Failed && result.Trapped {
			trapped = true
			if u.HP > before/2+1 {
				t.Errorf("trapped failure should halve hp: before=%v after=%v", before, u.HP)
			}
			if u.IsRouting {
				t.Error("a trapped unit should not be marked routing")
			}
			break
		}
	}
	if !trapped {
		t.Fatal("expected at least one trapped failure across 200 low-threshold checks")
	}
}

// TestMaybeRallyRequiresAllThreeConditions exercises the rally gate one
// condition at a time.
func TestMaybeRallyRequiresAllThreeConditions(t *testing.T) {
	base := func() *Unit {
		return &Unit{IsRouting: true, Suppression: 10, TimeSinceDamage: 10, Morale: 50, MaxMorale: 100}
	}

	highSuppression := base()
	highSuppression.Suppression = 30
	if MaybeRally(highSuppression, 5, 25) {
		t.Error("should not rally while suppression is still high")
	}

	tooSoon := base()
	tooSoon.TimeSinceDamage = 1
	if MaybeRally(tooSoon, 5, 25) {
		t.Error("should not rally before the grace period elapses")
	}

	lowMorale := base()
	lowMorale.Morale = 10
	if MaybeRally(lowMorale, 5, 25) {
		t.Error("should not rally below the morale threshold")
	}

	u := base()
	if !MaybeRally(u, 5, 25) {
		t.Fatal("expected rally when all three conditions are met")
	}
	if u.IsRouting {
		t.Error("rallying should clear IsRouting")
	}

	if MaybeRally(u, 5, 25) {
		t.Error("a non-routing unit should never rally again")
	}
}

// TestCombatModifiersMatchSuppressionState checks the accuracy/speed
// multiplier table lines up with the pinned/suppressed/steady buckets.
func TestCombatModifiersMatchSuppressionState(t *testing.T) {
	tests := []struct {
		name         string
		suppression  float64
		wantAccuracy float64
		wantSpeed    float64
	}{
		{"steady", 0, 1, 1},
		{"suppressed", 50, 0.90, 0.75},
		{"pinned", 90, 0.50, 0.10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &Unit{Suppression: tt.suppression}
			updateSuppressionFlags(u)
			acc, speed := CombatModifiers(u)
			if acc != tt.wantAccuracy {
				t.Errorf("accuracy = %v, want %v", acc, tt.wantAccuracy)
			}
			if speed != tt.wantSpeed {
				t.Errorf("speed = %v, want %v", speed, tt.wantSpeed)
			}
		})
	}
}
