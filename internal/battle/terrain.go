package battle

import "math"

// CoverDensity is Heavy or Light destructible cover.
type CoverDensity uint8

const (
	CoverLight CoverDensity = iota
	CoverHeavy
)

// CoverTile is a destructible cover cell.
type CoverTile struct {
	X, Y          float64
	Density       CoverDensity
	HP, MaxHP     float64
	BlocksMove    bool
}

// CoverDestructionThreshold and downgrade parameters are tunables.
const (
	CoverDamageThreshold = 15.0
	CoverDamagePerHit    = 25.0
)

// DamageCover applies a high-impact hit to the nearest cover tile within a
// tight radius of (x,y); Heavy downgrades to Light on depletion, Light is
// removed. Returns true if a tile was found and damaged.
func DamageCover(tiles []*CoverTile, x, y, amount float64) bool {
	const findRadius = 4.0
	var best *CoverTile
	bestDist := math.MaxFloat64
	for _, t := range tiles {
		dx, dy := t.X-x, t.Y-y
		d := dx*dx + dy*dy
		if d < bestDist && d <= findRadius*findRadius {
			bestDist = d
			best = t
		}
	}
	if best == nil {
		return false
	}
	best.HP -= amount
	if best.HP <= 0 {
		if best.Density == CoverHeavy {
			best.Density = CoverLight
			best.HP = best.MaxHP / 2
		} else {
			best.HP = 0
			best.BlocksMove = false
			best.MaxHP = 0
		}
	}
	return true
}

// EnvironmentalArea is a circular zone applying a modifier map, e.g.
// speed_mult, accuracy_mult, defense_mult.
type EnvironmentalArea struct {
	ID        string
	CenterX, CenterY, Radius float64
	Modifiers map[string]float64
}

func (a *EnvironmentalArea) contains(x, y float64) bool {
	dx, dy := x-a.CenterX, y-a.CenterY
	return dx*dx+dy*dy <= a.Radius*a.Radius
}

// StaticObstacle is a circular impassable zone.
type StaticObstacle struct {
	ID      string
	CenterX, CenterY, Radius float64
}

// TacticalObjective is a circular capturable point granting vp_per_sec to
// whichever faction holds exclusive presence.
type TacticalObjective struct {
	ID        string
	CenterX, CenterY, Radius float64
	VPPerSec  float64
	Owner     string // faction id, "" if unclaimed
	CaptureProgress map[string]float64 // per-faction progress, 0-100
}

func (o *TacticalObjective) contains(x, y float64) bool {
	dx, dy := x-o.CenterX, y-o.CenterY
	return dx*dx+dy*dy <= o.Radius*o.Radius
}

// Terrain owns every map object for a battle and answers modifier/capture
// queries each tick.
type Terrain struct {
	Cover       []*CoverTile
	Areas       []*EnvironmentalArea
	Obstacles   []*StaticObstacle
	Objectives  []*TacticalObjective
}

// buildTerrainTemplate instantiates a named map template, falling back to a
// modest domain-appropriate default when templateID names nothing specific.
// Blueprint-authored templates are an external collaborator's concern;
// these are the built-in defaults the core ships with.
func buildTerrainTemplate(templateID string, domain Domain, w, h int) *Terrain {
	t := &Terrain{}
	cx, cy := float64(w)/2, float64(h)/2

	switch templateID {
	case "asteroid_field":
		t.Obstacles = append(t.Obstacles,
			&StaticObstacle{ID: "asteroid-1", CenterX: cx - 10, CenterY: cy, Radius: 4},
			&StaticObstacle{ID: "asteroid-2", CenterX: cx + 12, CenterY: cy - 8, Radius: 3},
		)
		t.Objectives = append(t.Objectives, &TacticalObjective{ID: "relay-station", CenterX: cx, CenterY: cy, Radius: 5, VPPerSec: 1})
	case "urban_ruins":
		t.Cover = append(t.Cover,
			&CoverTile{X: cx - 5, Y: cy, Density: CoverHeavy, HP: 100, MaxHP: 100},
			&CoverTile{X: cx + 5, Y: cy, Density: CoverLight, HP: 50, MaxHP: 50},
		)
		t.Objectives = append(t.Objectives, &TacticalObjective{ID: "command-post", CenterX: cx, CenterY: cy, Radius: 4, VPPerSec: 1.5})
	default:
		if domain == DomainSpace {
			t.Obstacles = append(t.Obstacles, &StaticObstacle{ID: "debris-field", CenterX: cx, CenterY: cy, Radius: 6})
		} else {
			t.Cover = append(t.Cover, &CoverTile{X: cx, Y: cy, Density: CoverHeavy, HP: 100, MaxHP: 100})
		}
		t.Objectives = append(t.Objectives, &TacticalObjective{ID: "central-objective", CenterX: cx, CenterY: cy, Radius: 6, VPPerSec: 1})
	}
	return t
}

// coverNear returns the density of the closest cover tile within radius of
// (x,y), and whether one was found at all.
func (t *Terrain) coverNear(x, y, radius float64) (CoverDensity, bool) {
	var best *CoverTile
	bestDist := math.MaxFloat64
	for _, c := range t.Cover {
		if c.MaxHP <= 0 {
			continue
		}
		dx, dy := c.X-x, c.Y-y
		d := dx*dx + dy*dy
		if d <= radius*radius && d < bestDist {
			bestDist = d
			best = c
		}
	}
	if best == nil {
		return CoverLight, false
	}
	return best.Density, true
}

// ModifiersAt returns the combined modifier map at (x,y): the per-area
// modifiers of every area containing the point are multiplied together.
func (t *Terrain) ModifiersAt(x, y float64) map[string]float64 {
	combined := map[string]float64{
		"speed_mult":    1.0,
		"accuracy_mult": 1.0,
		"defense_mult":  1.0,
	}
	for _, a := range t.Areas {
		if !a.contains(x, y) {
			continue
		}
		for k, v := range a.Modifiers {
			if _, ok := combined[k]; ok {
				combined[k] *= v
			} else {
				combined[k] = v
			}
		}
	}
	return combined
}

// ObstaclesNear returns obstacles within radius+1 of (x,y), used by the
// steering resolver's avoidance force.
func (t *Terrain) ObstaclesNear(x, y, radius float64) []*StaticObstacle {
	out := make([]*StaticObstacle, 0, 4)
	for _, o := range t.Obstacles {
		dx, dy := o.CenterX-x, o.CenterY-y
		d := math.Sqrt(dx*dx + dy*dy)
		if d <= radius+o.Radius+1 {
			out = append(out, o)
		}
	}
	return out
}

// UpdateObjectives accrues capture progress: exactly one
// faction present inside the objective accrues at 20/s capped at 100; zero
// factions present decays other factions' progress at 5/s; contested
// (2+ factions present) freezes progress. occupants maps objective id to
// the set of faction ids with at least one living unit inside.
func (t *Terrain) UpdateObjectives(occupants map[string]map[string]struct{}, dt float64, vp map[string]float64) (captures []struct {
	ObjectiveID, Faction string
}) {
	for _, o := range t.Objectives {
		if o.CaptureProgress == nil {
			o.CaptureProgress = make(map[string]float64)
		}
		present := occupants[o.ID]
		switch len(present) {
		case 0:
			for f := range o.CaptureProgress {
				o.CaptureProgress[f] = math.Max(0, o.CaptureProgress[f]-5*dt)
			}
		case 1:
			var sole string
			for f := range present {
				sole = f
			}
			o.CaptureProgress[sole] = math.Min(100, o.CaptureProgress[sole]+20*dt)
			if o.CaptureProgress[sole] >= 100 && o.Owner != sole {
				o.Owner = sole
				captures = append(captures, struct{ ObjectiveID, Faction string }{o.ID, sole})
			}
		default:
			// contested: frozen
		}
		if o.Owner != "" {
			vp[o.Owner] += o.VPPerSec * dt
		}
	}
	return captures
}
