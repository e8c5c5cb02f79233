package spatial

import "math"

// Tracker mirrors unit positions and faction encoding in dense,
// preallocated arrays alongside the Quadtree, trading the tree's
// better-than-linear single queries for O(n^2) batch queries that are
// still cheap at combat-sized unit counts (low hundreds) and vectorize
// far better than per-unit tree walks. Adapted from this package's
// SpatialGrid: entity indices, not pointers, reused scratch buffers.
type Tracker struct {
	ids      []uint32
	x, y     []float64
	faction  []uint32 // encoded faction id
	alive    []bool

	nearestScratch []NearestEnemy
	flowScratch    []FlowEntry
}

// NearestEnemy is one row of compute_nearest_enemies: the closest living
// opposing-faction unit to ids[i], or (sentinel, +Inf) if none.
type NearestEnemy struct {
	ID       uint32
	TargetID uint32
	Found    bool
	Distance float64
}

// FlowEntry is one row of compute_flow_field: signed direction toward the
// nearest enemy and the distance to it.
type FlowEntry struct {
	ID       uint32
	SignDX   float64
	SignDY   float64
	Distance float64
}

// SentinelDistance marks same-faction (masked) pairs in the batch math so
// an argmin over a full row never selects a friendly unit.
const SentinelDistance = math.MaxFloat64

// NewTracker preallocates for up to capacity units.
func NewTracker(capacity int) *Tracker {
	return &Tracker{
		ids:            make([]uint32, 0, capacity),
		x:              make([]float64, 0, capacity),
		y:              make([]float64, 0, capacity),
		faction:        make([]uint32, 0, capacity),
		alive:          make([]bool, 0, capacity),
		nearestScratch: make([]NearestEnemy, 0, capacity),
		flowScratch:    make([]FlowEntry, 0, capacity),
	}
}

// Reset clears the tracker for a fresh rebuild this tick, keeping capacity.
func (t *Tracker) Reset() {
	t.ids = t.ids[:0]
	t.x = t.x[:0]
	t.y = t.y[:0]
	t.faction = t.faction[:0]
	t.alive = t.alive[:0]
}

// Add mirrors one unit's position/faction/alive state for this tick.
func (t *Tracker) Add(id uint32, x, y float64, faction uint32, alive bool) {
	t.ids = append(t.ids, id)
	t.x = append(t.x, x)
	t.y = append(t.y, y)
	t.faction = append(t.faction, faction)
	t.alive = append(t.alive, alive)
}

// ComputeNearestEnemies returns, for every tracked unit, its nearest living
// opposing-faction unit. Same-faction pairs are masked with
// SentinelDistance before the argmin so they can never be selected.
func (t *Tracker) ComputeNearestEnemies() []NearestEnemy {
	n := len(t.ids)
	t.nearestScratch = t.nearestScratch[:0]

	for i := 0; i < n; i++ {
		if !t.alive[i] {
			t.nearestScratch = append(t.nearestScratch, NearestEnemy{ID: t.ids[i]})
			continue
		}
		bestDist := SentinelDistance
		var bestID uint32
		found := false
		for j := 0; j < n; j++ {
			if i == j || !t.alive[j] || t.faction[j] == t.faction[i] {
				continue
			}
			dx, dy := t.x[j]-t.x[i], t.y[j]-t.y[i]
			d2 := dx*dx + dy*dy
			if d2 < bestDist {
				bestDist = d2
				bestID = t.ids[j]
				found = true
			}
		}
		row := NearestEnemy{ID: t.ids[i], Found: found}
		if found {
			row.TargetID = bestID
			row.Distance = math.Sqrt(bestDist)
		} else {
			row.Distance = SentinelDistance
		}
		t.nearestScratch = append(t.nearestScratch, row)
	}
	return t.nearestScratch
}

// ComputeFlowField returns, for every tracked unit, the signed direction
// toward its nearest enemy and the distance to it — a cheap per-tick
// movement hint distinct from the obstacle-aware FlowField BFS navigation
// mesh used for long-range pathing.
func (t *Tracker) ComputeFlowField() []FlowEntry {
	nearest := t.ComputeNearestEnemies()
	t.flowScratch = t.flowScratch[:0]

	for i, row := range nearest {
		if !row.Found {
			t.flowScratch = append(t.flowScratch, FlowEntry{ID: row.ID, Distance: SentinelDistance})
			continue
		}
		var tx, ty float64
		for j, id := range t.ids {
			if id == row.TargetID {
				tx, ty = t.x[j], t.y[j]
				break
			}
		}
		dx, dy := tx-t.x[i], ty-t.y[i]
		t.flowScratch = append(t.flowScratch, FlowEntry{
			ID:       row.ID,
			SignDX:   sign(dx),
			SignDY:   sign(dy),
			Distance: row.Distance,
		})
	}
	return t.flowScratch
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
