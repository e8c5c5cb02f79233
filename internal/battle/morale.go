package battle

import "math/rand"

// suppressionModifiers are the accuracy/speed multipliers and per-round
// morale delta attached to each suppression state.
type suppressionModifiers struct {
	AccuracyMult float64
	SpeedMult    float64
	MoralePerRound float64
}

func modifiersFor(s SuppressionState) suppressionModifiers {
	switch s {
	case SuppressionPinned:
		return suppressionModifiers{0.50, 0.10, -5}
	case SuppressionSuppressed:
		return suppressionModifiers{0.90, 0.75, 0}
	default:
		return suppressionModifiers{1, 1, 0}
	}
}

// AddSuppression applies a damaging hit's suppression contribution,
// clamped to 100, and recomputes the unit's pinned/suppressed flags.
func AddSuppression(u *Unit, amount float64) {
	u.Suppression += amount * 100 / (100 + u.SuppressionRes)
	if u.Suppression > 100 {
		u.Suppression = 100
	}
	updateSuppressionFlags(u)
}

// DecaySuppression applies the per-tick-second (or per-round) decay: -10
// baseline, -15 if the unit is in cover.
func DecaySuppression(u *Unit, dt float64, inCover bool) {
	rate := 10.0
	if inCover {
		rate = 15.0
	}
	u.Suppression -= rate * dt
	if u.Suppression < 0 {
		u.Suppression = 0
	}
	updateSuppressionFlags(u)
}

func updateSuppressionFlags(u *Unit) {
	switch {
	case u.Suppression >= 75:
		u.IsPinned, u.IsSuppressed = true, true
	case u.Suppression >= 25:
		u.IsPinned, u.IsSuppressed = false, true
	default:
		u.IsPinned, u.IsSuppressed = false, false
	}
}

// State returns the current suppression bucket.
func suppressionState(u *Unit) SuppressionState {
	switch {
	case u.IsPinned:
		return SuppressionPinned
	case u.IsSuppressed:
		return SuppressionSuppressed
	default:
		return SuppressionNone
	}
}

// CombatModifiers exposes the accuracy/speed multipliers for combat math
// and movement, derived from the unit's current suppression state.
func CombatModifiers(u *Unit) (accuracyMult, speedMult float64) {
	m := modifiersFor(suppressionState(u))
	return m.AccuracyMult, m.SpeedMult
}

// MoraleCheckResult reports the outcome of a single 2d6 morale check.
type MoraleCheckResult struct {
	Roll, Threshold float64
	Failed          bool
	Trapped         bool // an enemy interdictor prevented routing
}

// MoraleCheck computes threshold = leadership + modifiers; roll
// 2d6; on roll > threshold (with suppression>0), either trap (halve hp) or
// rout. routingNearby is the count of nearby friendly units already
// routing, used for the chain-routing modifier.
func MoraleCheck(rng *rand.Rand, u *Unit, leadership float64, routingNearby int, enemyInterdictorPresent bool) MoraleCheckResult {
	threshold := leadership
	threshold -= float64(int((1 - u.HP/u.MaxHP) * 5))
	hpFrac := u.HP / u.MaxHP
	if hpFrac < 0.25 {
		threshold -= 2
	} else if hpFrac < 0.5 {
		threshold -= 1
	}
	if u.Fatigue > 80 {
		threshold -= 2
	} else if u.Fatigue > 50 {
		threshold -= 1
	}
	chainPenalty := routingNearby / 2
	if chainPenalty > 3 {
		chainPenalty = 3
	}
	threshold -= float64(chainPenalty)

	roll := float64(rng.Intn(6)+1 + rng.Intn(6)+1)

	result := MoraleCheckResult{Roll: roll, Threshold: threshold}
	if roll > threshold && u.Suppression > 0 {
		result.Failed = true
		if enemyInterdictorPresent {
			result.Trapped = true
			u.HP = float64(int(u.HP / 2))
		} else {
			u.IsRouting = true
		}
	}
	return result
}

// MaybeRally clears routing when suppression has dropped below 25, enough
// time has passed since last damage, and morale has recovered above the
// rally threshold.
func MaybeRally(u *Unit, rallyGrace, rallyThreshold float64) bool {
	if !u.IsRouting {
		return false
	}
	if u.Suppression < 25 && u.TimeSinceDamage > rallyGrace && u.Morale >= rallyThreshold {
		u.IsRouting = false
		return true
	}
	return false
}
