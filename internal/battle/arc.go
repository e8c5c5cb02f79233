package battle

import "math"

// relativeBearing returns atan2(ty-sy, tx-sx) - facing, normalized to
// (-180, 180].
func relativeBearing(sx, sy, tx, ty, facing float64) float64 {
	abs := math.Atan2(ty-sy, tx-sx) * 180 / math.Pi
	rel := abs - facing
	return normalizeAngle(rel)
}

// normalizeAngle folds an arbitrary degree value into (-180, 180].
func normalizeAngle(deg float64) float64 {
	for deg <= -180 {
		deg += 360
	}
	for deg > 180 {
		deg -= 360
	}
	return deg
}

// inArc reports whether a relative bearing falls within a weapon's arc,
// each half-width 45 degrees.
func inArc(arc WeaponArc, bearing float64) bool {
	switch arc {
	case ArcTurret:
		return true
	case ArcFront:
		return bearing >= -45 && bearing <= 45
	case ArcLeft:
		return bearing > 45 && bearing <= 135
	case ArcRight:
		return bearing >= -135 && bearing < -45
	case ArcRear:
		return math.Abs(bearing) > 135
	default:
		return false
	}
}

// armorFacet selects the defender's armor value exposed to an attack
// arriving from the given attacker bearing (relative to the defender's own
// facing): Front 315-45, Side 45-135 / 225-315, Rear 135-225.
func armorFacet(armor Armor, attackerBearingOnDefender float64) float64 {
	b := math.Mod(attackerBearingOnDefender+360, 360)
	switch {
	case b >= 315 || b < 45:
		return armor.Front
	case b >= 135 && b < 225:
		return armor.Rear
	default:
		return armor.Side
	}
}
