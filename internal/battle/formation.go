package battle

import "math"

// FormationShape is a strongly typed variant set, replacing a
// dynamically-typed settings dictionary.
type FormationShape uint8

const (
	FormationRectangle FormationShape = iota
	FormationWedge
	FormationWall
	FormationLoose
	FormationLineOfBattle
	FormationAssaultSpearhead
	FormationEscortScreen
)

// FormationMods bundles the stat modifiers a shape contributes to F and H.
type FormationMods struct {
	SpeedMult    float64
	DamageMult   float64
	AccuracyMult float64
	DefenseMult  float64
	APBonus      float64
	EvasionMult  float64
	ShieldRegenMult float64
	AoEResilience   float64 // multiplier on AoE damage taken, 1.0 = normal
}

// modsFor implements the formation stat modifier table. Unset fields
// default to 1.0 (no change) or 0 (no bonus).
func modsFor(shape FormationShape) FormationMods {
	m := FormationMods{SpeedMult: 1, DamageMult: 1, AccuracyMult: 1, DefenseMult: 1, EvasionMult: 1, ShieldRegenMult: 1, AoEResilience: 1}
	switch shape {
	case FormationWedge:
		m.SpeedMult = 1.2
		m.DamageMult = 1.5 // charge-only; caller gates on doctrine
		m.DefenseMult = 0.8
	case FormationLoose:
		m.DefenseMult = 0.9
		m.AoEResilience = 0.5
	case FormationWall:
		m.SpeedMult = 0.7
		m.DefenseMult = 1.3
	case FormationLineOfBattle:
		m.SpeedMult = 0.8
		m.DamageMult = 1.15
		m.APBonus = 10
	case FormationAssaultSpearhead:
		m.SpeedMult = 1.25
		m.AccuracyMult = 1.2
		m.DefenseMult = 0.85
	case FormationEscortScreen:
		m.EvasionMult = 1.3
		m.ShieldRegenMult = 1.2
	}
	return m
}

// Formation is an ordered set of unit references with a shape, spacing,
// and facing, plus a derived centroid recomputed each tick.
type Formation struct {
	ID       string
	FactionID string
	Shape    FormationShape
	Spacing  float64
	Facing   float64 // degrees
	Cols     int
	UnitIDs  []string

	CentroidX, CentroidY float64
}

// Mods returns this formation's stat modifier bundle.
func (f *Formation) Mods() FormationMods { return modsFor(f.Shape) }

// SlotOffset returns the (Δx, Δy) offset of the index-th slot relative to
// the formation's centroid, before rotation by facing.
func (f *Formation) SlotOffset(index int) (dx, dy float64) {
	cols := f.Cols
	if cols < 1 {
		cols = 1
	}
	spacing := f.Spacing
	if spacing <= 0 {
		spacing = 1
	}

	switch f.Shape {
	case FormationWedge:
		row := 0
		remaining := index
		for remaining > row {
			remaining -= row + 1
			row++
		}
		colInRow := remaining
		rowWidth := row + 1
		centerOffset := float64(colInRow) - float64(rowWidth-1)/2.0
		dx = -float64(row) * spacing // rear rows farther from tip (tip faces +x)
		dy = centerOffset * spacing
	case FormationWall:
		layer := index / cols
		posInLayer := index % cols
		dx = float64(layer) * spacing
		dy = (float64(posInLayer) - float64(cols-1)/2.0) * spacing
	case FormationLoose:
		row := index / cols
		col := index % cols
		s := spacing * 2.5
		dx = float64(row) * s
		dy = (float64(col) - float64(cols-1)/2.0) * s
	default: // Rectangle, LineOfBattle, AssaultSpearhead, EscortScreen: plain grid
		row := index / cols
		col := index % cols
		dx = float64(row) * spacing
		dy = (float64(col) - float64(cols-1)/2.0) * spacing
	}

	// Rotate by formation facing.
	rad := f.Facing * math.Pi / 180
	cosF, sinF := math.Cos(rad), math.Sin(rad)
	rx := dx*cosF - dy*sinF
	ry := dx*sinF + dy*cosF
	return rx, ry
}

// RecomputeCentroid updates the formation's centroid from live member
// positions, given a lookup of unit id to unit.
func (f *Formation) RecomputeCentroid(units map[string]*Unit) {
	var sx, sy float64
	n := 0
	for _, id := range f.UnitIDs {
		u, ok := units[id]
		if !ok || !u.IsAlive() {
			continue
		}
		sx += u.X
		sy += u.Y
		n++
	}
	if n == 0 {
		return
	}
	f.CentroidX = sx / float64(n)
	f.CentroidY = sy / float64(n)
}

// SlotFor returns the index of unitID within the formation's unit list, or
// -1 if absent.
func (f *Formation) SlotFor(unitID string) int {
	for i, id := range f.UnitIDs {
		if id == unitID {
			return i
		}
	}
	return -1
}
