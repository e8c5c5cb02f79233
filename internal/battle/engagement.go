package battle

import (
	"math"
	"math/rand"
)

// coverMod is the save-target bonus a defender standing in cover receives
// against a frontal attack; Heavy roughly doubles Light's benefit.
func coverMod(density CoverDensity, frontal bool) float64 {
	if !frontal {
		return 0 // flank/rear attacks bypass cover entirely
	}
	if density == CoverHeavy {
		return 1.5
	}
	return 0.75
}

// MitigationInput bundles the shared scalar/batch mitigation inputs.
type MitigationInput struct {
	ArmorFacet float64
	AP         float64
	CoverMod   float64
	Invuln     float64 // 7 = none
	DefenseMod float64
	Strength   float64
	DamageMult float64
	IsFortress bool
}

// Mitigate is the shared mitigation formula, used by both the scalar and
// batch vectorized paths so their semantics never diverge.
func Mitigate(in MitigationInput) float64 {
	saveTarget := clampF(7-in.ArmorFacet/10+in.AP/10-in.CoverMod, 2, 6)
	stop := (6 - saveTarget) / 6
	invuln := in.Invuln
	if invuln == 0 {
		invuln = 7
	}
	invulnChn := (6 - invuln) / 6
	mitigation := maxF(stop, invulnChn) + in.DefenseMod
	if mitigation > 0.95 {
		mitigation = 0.95
	}
	dmg := maxF(1, in.Strength*10*(1-mitigation)*in.DamageMult)
	if in.IsFortress {
		dmg *= 0.5
	}
	return dmg
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// ShotAttempt is the outcome of one weapon firing against one target this
// tick, before projectile creation.
type ShotAttempt struct {
	Weapon     *Component
	Hit        bool
	Deviation  float64
	BaseDamage float64
	ShieldMult float64
	HullMult   float64
	Lifetime   float64
	Speed      float64
}

// ResolveShot resolves a single weapon against a single target: range, arc,
// cooldown, accuracy roll, and projectile parameter derivation. Returns
// ok=false if the weapon should be skipped this tick (out of range/arc, or
// still cooling down).
func ResolveShot(rng *rand.Rand, attacker *Unit, weapon *Component, target *Unit, dmgMult float64, dt float64) (ShotAttempt, bool) {
	dx, dy := target.X-attacker.X, target.Y-attacker.Y
	dist := math.Hypot(dx, dy)
	if dist > weapon.Range {
		return ShotAttempt{}, false
	}

	bearing := relativeBearing(attacker.X, attacker.Y, target.X, target.Y, attacker.Facing)
	if !inArc(weapon.Arc, bearing) {
		return ShotAttempt{}, false
	}

	if weapon.CooldownRemain > 0 {
		weapon.CooldownRemain -= dt
		return ShotAttempt{}, false
	}
	rate := weapon.AttacksPerSec
	if rate < 0.1 {
		rate = 0.1
	}
	weapon.CooldownRemain = 1 / rate

	accMult, _ := CombatModifiers(attacker)
	acc := attacker.BallisticSkill / 100 * accMult
	if math.Abs(attacker.Z-target.Z) > 10 {
		acc *= 1.15 // height advantage swing; clamp handles the downside case too
	}
	acc = clampF(acc, 0.05, 0.95)

	hit := rng.Float64() < acc
	deviation := 0.0
	if !hit {
		deviation = (rng.Float64() - 0.5) * 4
	}

	speed := categoryProjectileSpeed(weapon.Category)
	lifetime := projectileLifetime(weapon.Range, speed)
	shieldMult, hullMult := ionMultipliers(weapon)

	baseDamage := weapon.Strength * 10 * dmgMult

	return ShotAttempt{
		Weapon:     weapon,
		Hit:        hit,
		Deviation:  deviation,
		BaseDamage: baseDamage,
		ShieldMult: shieldMult,
		HullMult:   hullMult,
		Lifetime:   lifetime,
		Speed:      speed,
	}, true
}

// BatchShotInput is one attacker-weapon-target triple's flattened inputs
// for the vectorized path.
type BatchShotInput struct {
	BS, Strength, AP, Attacks, Armor, Invuln, Cover, MD float64
	IsFortress                                          bool
}

// BatchShotResult is the vectorized-path output: expected-equal-to-scalar
// hit/crit counts and total damage for one attacker-weapon-target row.
type BatchShotResult struct {
	Hits, Crits int
	Damage      float64
}

// ResolveBatch is the batch vectorized path. Arcs are intentionally NOT
// enforced here, on the assumption of 360 degree coverage for batch
// engagements — callers must pre-filter by range only; the scalar path
// above remains the one that enforces arcs.
func ResolveBatch(rng *rand.Rand, in BatchShotInput, shotsThisTick int) BatchShotResult {
	hitProb := clampF(in.BS/100*(1-in.MD/100), 0.05, 0.95)
	critProb := clampF(5/maxF(in.BS, 1), 0, 1)

	var hits, crits int
	for i := 0; i < shotsThisTick; i++ {
		if rng.Float64() < hitProb {
			hits++
			if rng.Float64() < critProb {
				crits++
			}
		}
	}

	dmgPerHit := Mitigate(MitigationInput{
		ArmorFacet: in.Armor,
		AP:         in.AP,
		CoverMod:   in.Cover,
		Invuln:     in.Invuln,
		Strength:   in.Strength,
		DamageMult: 1,
		IsFortress: in.IsFortress,
	})

	damage := float64(hits)*dmgPerHit + float64(crits)*0.5*dmgPerHit
	return BatchShotResult{Hits: hits, Crits: crits, Damage: damage}
}
