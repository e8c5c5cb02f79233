package battle

import "sync/atomic"

// UnitSnapshot is one unit's entry in a positional snapshot.
type UnitSnapshot struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Faction string  `json:"faction"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	HP      float64 `json:"hp"`
	Facing  float64 `json:"facing"`
	IsAlive bool    `json:"is_alive"`
}

// BattleSnapshot is the full point-in-time state emitted at snap_interval.
type BattleSnapshot struct {
	Timestamp float64        `json:"timestamp"`
	Units     []UnitSnapshot `json:"units"`
}

// SnapshotPool is a lock-free triple buffer: the tick loop (producer)
// writes into a scratch slot and publishes it atomically; any reader
// (HTTP/WS handler, consumer) always sees a complete, torn-free snapshot,
// matching the source's GameSnapshot triple-buffer pattern.
type SnapshotPool struct {
	slots   [3]BattleSnapshot
	current atomic.Int32 // index of the published slot
	next    int32         // producer-owned scratch slot, never read by consumers
}

// NewSnapshotPool returns an empty triple buffer.
func NewSnapshotPool() *SnapshotPool {
	return &SnapshotPool{}
}

// Produce writes snap into the producer's scratch slot and publishes it.
func (p *SnapshotPool) Produce(snap BattleSnapshot) {
	cur := p.current.Load()
	// Pick a scratch slot distinct from the currently-published one.
	scratch := (cur + 1) % 3
	if scratch == p.next {
		scratch = (scratch + 1) % 3
	}
	p.slots[scratch] = snap
	p.next = scratch
	p.current.Store(scratch)
}

// Load returns the most recently published snapshot. Safe to call
// concurrently with Produce.
func (p *SnapshotPool) Load() BattleSnapshot {
	return p.slots[p.current.Load()]
}

// BuildSnapshot materializes a BattleSnapshot from the live unit roster.
func BuildSnapshot(simTime float64, units map[string]*Unit) BattleSnapshot {
	snap := BattleSnapshot{Timestamp: simTime, Units: make([]UnitSnapshot, 0, len(units))}
	for _, u := range units {
		snap.Units = append(snap.Units, UnitSnapshot{
			ID: u.ID, Name: u.Name, Faction: u.FactionID,
			X: u.X, Y: u.Y, HP: u.HP, Facing: u.Facing, IsAlive: u.IsAlive(),
		})
	}
	return snap
}
