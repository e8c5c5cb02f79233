package battle

import (
	"math"
	"sort"
)

// maxCacheDistance is the distance beyond which a cached target is
// discarded even if still alive.
func maxCacheDistance(d Domain) float64 {
	if d == DomainSpace {
		return 600
	}
	return 150
}

// TargetSelector resolves, for an attacker, the best enemy unit and
// hardpoint to engage this tick, honoring a short TTL cache.
type TargetSelector struct {
	cacheSeconds float64
}

// NewTargetSelector returns a selector with a 1.0s cache window.
func NewTargetSelector() *TargetSelector {
	return &TargetSelector{cacheSeconds: 1.0}
}

// candidate is a scored enemy in the selection pool.
type candidate struct {
	unit  *Unit
	score float64
}

// Select runs the target selector contract. units is a lookup
// by id for cache-validity checks; enemies is the pre-filtered opposing
// roster for attacker's faction; nearIDs is the candidate pool already
// pulled from the spatial index (query_circle/query_nearest, by caller);
// interdictorsNear/friendlyInterdictorNear flag trap/protection bonuses.
func (s *TargetSelector) Select(attacker *Unit, units map[string]*Unit, nearIDs []string, simTime float64, doctrine Doctrine, trapped bool, friendlyInterdictorNear bool) (targetID, componentID string) {
	if attacker.TargetCache.TTL > simTime && attacker.TargetCache.UnitID != "" {
		if cached, ok := units[attacker.TargetCache.UnitID]; ok && cached.IsAlive() {
			dx, dy := cached.X-attacker.X, cached.Y-attacker.Y
			if math.Hypot(dx, dy) <= maxCacheDistance(attacker.Domain) {
				return attacker.TargetCache.UnitID, attacker.TargetCache.ComponentID
			}
		}
	}

	cands := make([]candidate, 0, len(nearIDs))
	routed := make([]candidate, 0, 4)
	for _, id := range nearIDs {
		u, ok := units[id]
		if !ok || !u.IsAlive() || u.FactionID == attacker.FactionID || u.ID == attacker.ID {
			continue
		}
		if attacker.HasTag("AtPeaceWith:"+u.FactionID) || u.HasTag("AtPeaceWith:"+attacker.FactionID) {
			continue
		}
		dx, dy := u.X-attacker.X, u.Y-attacker.Y
		dist := math.Hypot(dx, dy)
		score := dist + roleBonus(attacker, u) + protectionBonus(u, friendlyInterdictorNear, trapped)
		c := candidate{u, score}
		if u.IsRouting {
			routed = append(routed, c)
		} else {
			cands = append(cands, c)
		}
	}
	cands = append(cands, routed...) // deprioritize routing enemies to the tail

	if len(cands) == 0 {
		return "", ""
	}

	var best candidate
	if doctrine == DoctrineKite {
		best = cands[0]
		for _, c := range cands[1:] {
			if c.unit.HP < best.unit.HP {
				best = c
			}
		}
	} else {
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].score < cands[j].score })
		best = cands[0]
	}

	hp := selectHardpoint(best.unit)
	attacker.TargetCache = TargetCache{UnitID: best.unit.ID, ComponentID: hp, TTL: simTime + s.cacheSeconds}
	return best.unit.ID, hp
}

// roleBonus implements the role-based scoring bonuses (more negative =
// more attractive target).
func roleBonus(attacker, target *Unit) float64 {
	var bonus float64
	if attacker.HasTag("AntiTank") && (target.HasTag("Vehicle") || target.HasTag("Monster") || toughness(target) >= 7) {
		bonus -= 15
	}
	if attacker.HasTag("AntiInfantry") && target.HasTag("SoftInfantry") {
		bonus -= 10
	}
	if attacker.HasTag("TitanKiller") {
		if target.HasTag("Titan") {
			bonus -= 50
		} else if target.HasTag("Vehicle") {
			bonus -= 20
		}
	}
	return bonus
}

func protectionBonus(target *Unit, friendlyInterdictorNear, trapped bool) float64 {
	var bonus float64
	if friendlyInterdictorNear {
		bonus -= 10
	}
	if trapped && target.HasTag("Interdictor") {
		bonus -= 100
	}
	return bonus
}

// toughness is a coarse 0-10 scale derived from max hp, used only for the
// Anti-Tank role bonus threshold; campaign data may set a Tough tag
// directly in which case that takes precedence via HasTag.
func toughness(u *Unit) float64 {
	switch {
	case u.MaxHP >= 500:
		return 9
	case u.MaxHP >= 250:
		return 7
	case u.MaxHP >= 100:
		return 5
	default:
		return 2
	}
}

// selectHardpoint implements the hardpoint selection order: prefer the
// shield generator while shields are up; else finish a damaged component;
// else a weapon/engine on an otherwise-healthy target; else hull.
func selectHardpoint(target *Unit) string {
	if target.Shield > 0 {
		if g := target.ShieldGenerator(); g != nil && g.Alive() {
			return g.ID
		}
	}
	var mostDamaged *Component
	var mostDamagedFrac = 1.0
	for _, c := range target.Components {
		if c.IsDestroyed || c.MaxHP <= 0 {
			continue
		}
		frac := c.CurrentHP / c.MaxHP
		if frac < 1.0 && frac < mostDamagedFrac {
			mostDamagedFrac = frac
			mostDamaged = c
		}
	}
	if mostDamaged != nil {
		return mostDamaged.ID
	}
	for _, c := range target.Components {
		if (c.Type == ComponentWeapon || c.Type == ComponentEngine) && c.Alive() {
			return c.ID
		}
	}
	for _, c := range target.Components {
		if c.Type == ComponentHull && c.Alive() {
			return c.ID
		}
	}
	return ""
}

// CandidateRadius returns the query_circle radius to pull the candidate
// pool from the spatial index.
func CandidateRadius(doctrine Doctrine) float64 {
	if doctrine == DoctrineKite {
		return 30
	}
	return 20 // else: 20 nearest, caller may use query_nearest instead
}
