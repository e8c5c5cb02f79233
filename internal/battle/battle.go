package battle

import (
	"hash/fnv"
	"math"
	"sort"

	"github.com/JaySpiffy/void-reckoning-engine-sub001/internal/battle/spatial"
)

// BattleState is the root aggregate: it exclusively owns every Unit,
// Component, Projectile, and map object for its lifetime. Units reference
// each other only by id, resolved through the maps below — no raw
// cross-unit handles that could outlive their owner.
type BattleState struct {
	ID string

	Units map[string]*Unit
	unitIdx map[string]uint32
	idxUnit []string

	Grid           *spatial.Quadtree
	Tracker        *spatial.Tracker
	ProjectileGrid *spatial.SpatialGrid
	Collision      *spatial.SweepAndPrune
	ObjectiveFlow  map[string]*spatial.FlowField
	Terrain        *Terrain

	Formations map[string]*Formation
	Doctrines  map[string]Doctrine // per faction
	FactionMetadata map[string]map[string]interface{}
	DefenderFactions map[string]struct{}

	TotalSimTime          float64
	RoundNum              int64
	RoundsSinceLastDamage int64
	RoundsSinceLastKill   int64
	lastSnapshotTime      float64

	Snapshots   *SnapshotPool
	EventLog    *EventLog
	events      []Event // retained in-memory for the post-action report
	RNG         *RngRegistry
	Projectiles *ProjectilePool
	Abilities   *AbilityDispatcher
	Resources   map[string]map[string]float64

	Standings *Standings
	Config    Config
	Domain    Domain
	MapName   string
	Width, Height int

	objectiveTimeline []ObjectiveCaptureEntry

	Finished bool
	Winner   string
}

// Result is the return value of tick/execute_round.
type Result struct {
	Winner    string
	Survivors map[string]int
	Finished  bool
}

// InitializeBattle builds a BattleState from caller-supplied armies (blueprint
// parsing and faction data are external collaborators' concern). Positions left
// at the zero value are auto-deployed near opposing edges with deterministic
// jitter from a hash of the faction id. Returns InvalidPlacement if any
// unit's footprint cannot be committed in-bounds and unoccupied.
func InitializeBattle(armies map[string][]*Unit, doctrines map[string]Doctrine, metadata map[string]map[string]interface{}, defenderFactions []string, domainHint *Domain, mapTemplateID string, seed int64, cfg Config) (*BattleState, error) {
	total := 0
	for _, roster := range armies {
		total += len(roster)
	}
	w, h := gridDimensions(total)

	domain := detectDomain(domainHint, armies)

	bs := &BattleState{
		ID:               mapTemplateID,
		Units:            make(map[string]*Unit, total),
		unitIdx:          make(map[string]uint32, total),
		idxUnit:          make([]string, 0, total),
		Grid:             spatial.NewQuadtree(spatial.Rect{X: 0, Y: 0, W: float64(w), H: float64(h)}, cfg.Grid.QuadtreeMaxObjects, cfg.Grid.QuadtreeMaxDepth),
		Tracker:          spatial.NewTracker(total),
		ProjectileGrid:   spatial.NewSpatialGrid(float64(w), float64(h), 50, total+64),
		Collision:        spatial.NewSweepAndPrune(total),
		Terrain:          buildTerrainTemplate(mapTemplateID, domain, w, h),
		Formations:       make(map[string]*Formation),
		Doctrines:        doctrines,
		FactionMetadata:  metadata,
		DefenderFactions: toSet(defenderFactions),
		Snapshots:        NewSnapshotPool(),
		EventLog:         NewEventLog(),
		RNG:              NewRngRegistry(seed),
		Projectiles:      NewProjectilePool(256),
		Abilities:        NewAbilityDispatcher(),
		Resources:        make(map[string]map[string]float64),
		Standings:        NewStandings(),
		Config:           cfg,
		Domain:           domain,
		MapName:          mapTemplateID,
		Width:            w,
		Height:           h,
	}

	factionIDs := make([]string, 0, len(armies))
	for f := range armies {
		factionIDs = append(factionIDs, f)
	}
	sort.Strings(factionIDs)

	for fi, factionID := range factionIDs {
		roster := armies[factionID]
		bs.Standings.RegisterFaction(factionID, len(roster))
		bs.Resources[factionID] = make(map[string]float64)

		for ui, u := range roster {
			if u.X == 0 && u.Y == 0 {
				edgeDeploy(u, factionID, fi, len(factionIDs), ui, w, h)
			}
			if !inBounds(u, w, h) {
				return nil, NewBattleError(InvalidPlacement, "unit "+u.ID+" out of bounds")
			}
			bs.Units[u.ID] = u
			idx := uint32(len(bs.idxUnit))
			bs.unitIdx[u.ID] = idx
			bs.idxUnit = append(bs.idxUnit, u.ID)
			if !bs.Grid.Insert(idx, u.X, u.Y) {
				return nil, NewBattleError(InvalidPlacement, "unit "+u.ID+" rejected by spatial index")
			}
		}
	}

	bs.buildObjectiveFlowFields()
	bs.rebuildTracker()
	return bs, nil
}

// flowFieldCellSize is the grid resolution used for objective navigation
// fields — coarse enough that a 100x100 map stays a few hundred cells.
const flowFieldCellSize = 10.0

// buildObjectiveFlowFields precomputes one obstacle-aware navigation field
// per tactical objective, so a unit with no living enemy to chase can still
// route toward the nearest objective in O(1) per lookup instead of
// straight-lining through impassable terrain. Obstacles are static for the
// lifetime of a battle, so this runs once at init rather than every tick.
func (b *BattleState) buildObjectiveFlowFields() {
	b.ObjectiveFlow = make(map[string]*spatial.FlowField, len(b.Terrain.Objectives))
	for _, obj := range b.Terrain.Objectives {
		field := spatial.NewFlowField(float64(b.Width), float64(b.Height), flowFieldCellSize)
		for _, o := range b.Terrain.Obstacles {
			for dx := -o.Radius; dx <= o.Radius; dx += flowFieldCellSize {
				for dy := -o.Radius; dy <= o.Radius; dy += flowFieldCellSize {
					if dx*dx+dy*dy > o.Radius*o.Radius {
						continue
					}
					field.SetCellBlocked(o.CenterX+dx, o.CenterY+dy, true)
				}
			}
		}
		field.Generate(obj.CenterX, obj.CenterY)
		b.ObjectiveFlow[obj.ID] = field
	}
}

// nearestObjectiveFlow returns the obstacle-aware bearing toward whichever
// tracked objective has the lowest path cost from (x,y), for a unit with no
// living enemy direction to steer by. ok is false if no objective field
// reaches this point.
func (b *BattleState) nearestObjectiveFlow(x, y float64) (dx, dy float64, ok bool) {
	bestCost := float32(math.MaxFloat32)
	for _, field := range b.ObjectiveFlow {
		vx, vy, cost := field.LookupWithCost(x, y)
		if vx == 0 && vy == 0 {
			continue
		}
		if cost < bestCost {
			bestCost = cost
			dx, dy = float64(vx), float64(vy)
			ok = true
		}
	}
	return dx, dy, ok
}

// computeNeighborPairs runs one sweep-and-prune broad phase over every
// tracked unit's position, narrowed to true circle overlap at
// neighborRadius, and returns each unit's neighbor index list keyed by its
// spatial-index slot — one batch pass instead of a per-unit radius scan.
func (b *BattleState) computeNeighborPairs() map[uint32][]uint32 {
	positions := make([][2]float32, len(b.idxUnit))
	for idx, id := range b.idxUnit {
		if u, ok := b.Units[id]; ok && u.IsAlive() {
			positions[idx] = [2]float32{float32(u.X), float32(u.Y)}
		} else {
			positions[idx] = [2]float32{float32(idx)*1e6 + 1e6, 0} // parked out of range
		}
	}

	pairs := b.Collision.UpdateFromSlice(positions, float32(neighborRadius))
	out := make(map[uint32][]uint32, len(positions))
	for _, p := range pairs {
		ax, ay := positions[p.A][0], positions[p.A][1]
		bx, by := positions[p.B][0], positions[p.B][1]
		if math.Hypot(float64(ax-bx), float64(ay-by)) > neighborRadius {
			continue
		}
		out[p.A] = append(out[p.A], p.B)
		out[p.B] = append(out[p.B], p.A)
	}
	return out
}

func toSet(ids []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func inBounds(u *Unit, w, h int) bool {
	return u.X >= 0 && u.X <= float64(w) && u.Y >= 0 && u.Y <= float64(h)
}

// edgeDeploy places a unit near its faction's assigned edge, spread
// equally around the map perimeter by faction index, with deterministic
// jitter derived from a hash of (factionID, unit index) so redeploys of
// the same roster are reproducible.
func edgeDeploy(u *Unit, factionID string, factionIdx, factionCount, unitIdx, w, h int) {
	cx, cy := float64(w)/2, float64(h)/2
	radius := math.Min(cx, cy) * 0.85
	angle := 2 * math.Pi * float64(factionIdx) / float64(maxInt(factionCount, 1))

	h1 := fnv.New64a()
	h1.Write([]byte(factionID))
	var buf [4]byte
	buf[0] = byte(unitIdx)
	h1.Write(buf[:1])
	jitterSeed := h1.Sum64()
	jitterX := float64(jitterSeed%21) - 10
	jitterY := float64((jitterSeed/21)%21) - 10

	spread := 3.0
	row := unitIdx / 10
	col := unitIdx % 10

	baseX := cx + math.Cos(angle)*radius
	baseY := cy + math.Sin(angle)*radius

	u.X = clampF(baseX+float64(col)*spread+jitterX, 1, float64(w)-1)
	u.Y = clampF(baseY+float64(row)*spread+jitterY, 1, float64(h)-1)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func detectDomain(hint *Domain, armies map[string][]*Unit) Domain {
	if hint != nil {
		return *hint
	}
	var spaceVotes, groundVotes int
	for _, roster := range armies {
		for _, u := range roster {
			if u.Domain == DomainSpace {
				spaceVotes++
			} else {
				groundVotes++
			}
		}
	}
	if spaceVotes > groundVotes {
		return DomainSpace
	}
	return DomainGround
}

// emit logs an event through the rate-limited event log and retains it for
// the post-action report.
func (b *BattleState) emit(eventType EventType, factionID string, payload interface{}) {
	ev := NewEvent(eventType, b.TotalSimTime, factionID, payload)
	if b.EventLog.Emit(ev) {
		b.events = append(b.events, ev)
	}
}

func (b *BattleState) diagnostic(severity, kind, message string) {
	b.emit(EventDiagnostic, "", DiagnosticPayload{Severity: severity, Kind: kind, Message: message})
}

// rebuildTracker refreshes the dense vectorized tracker from the current
// unit roster, step B's "refresh" at the top of the tick.
func (b *BattleState) rebuildTracker() {
	b.Tracker.Reset()
	for idx, id := range b.idxUnit {
		u, ok := b.Units[id]
		if !ok {
			continue
		}
		b.Tracker.Add(uint32(idx), u.X, u.Y, factionHash(u.FactionID), u.IsAlive())
	}
}

func factionHash(factionID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(factionID))
	return h.Sum32()
}

// livingFactions returns the set of faction ids with at least one living
// unit.
func (b *BattleState) livingFactions() map[string]bool {
	out := make(map[string]bool)
	for _, u := range b.Units {
		if u.IsAlive() {
			out[u.FactionID] = true
		}
	}
	return out
}

// CheckVictory runs the ordered victory check.
func (b *BattleState) CheckVictory(force bool) Result {
	active := b.livingFactions()
	survivors := make(map[string]int)
	for _, u := range b.Units {
		if u.IsAlive() {
			survivors[u.FactionID]++
		}
	}

	decide := func(winner string) Result {
		b.Finished = true
		b.Winner = winner
		for _, u := range b.Units {
			if u.FactionID != winner && u.IsAlive() {
				u.IsRouting = true
			}
		}
		return Result{Winner: winner, Survivors: survivors, Finished: true}
	}

	switch {
	case force:
		return decide(b.tieBreakWinner(active))
	case b.RoundsSinceLastDamage >= b.Config.Victory.StalemateRounds:
		return decide(b.tieBreakWinner(active))
	case b.RoundsSinceLastKill >= b.Config.Victory.ForcedDecRounds:
		return decide(b.tieBreakWinner(active))
	case len(active) <= 1:
		if len(active) == 1 {
			var only string
			for f := range active {
				only = f
			}
			return decide(only)
		}
		b.Finished = true
		return Result{Winner: "", Survivors: survivors, Finished: true}
	default:
		return Result{Survivors: survivors, Finished: false}
	}
}

// tieBreakWinner breaks a tie: prefer the alphabetically
// first surviving declared defender, else the surviving faction with the
// highest integrity, ties broken by larger total max_hp, then lexical.
func (b *BattleState) tieBreakWinner(active map[string]bool) string {
	var survivingDefenders []string
	for f := range active {
		if _, isDefender := b.DefenderFactions[f]; isDefender {
			survivingDefenders = append(survivingDefenders, f)
		}
	}
	if len(survivingDefenders) > 0 {
		sort.Strings(survivingDefenders)
		return survivingDefenders[0]
	}

	type tally struct {
		faction          string
		hp, maxHP        float64
	}
	tallies := make(map[string]*tally)
	for f := range active {
		tallies[f] = &tally{faction: f}
	}
	for _, u := range b.Units {
		t, ok := tallies[u.FactionID]
		if !ok {
			continue
		}
		t.hp += u.HP
		t.maxHP += u.MaxHP
	}

	var list []*tally
	for _, t := range tallies {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		a, c := list[i], list[j]
		integrityA, integrityB := 0.0, 0.0
		if a.maxHP > 0 {
			integrityA = a.hp / a.maxHP
		}
		if c.maxHP > 0 {
			integrityB = c.hp / c.maxHP
		}
		if integrityA != integrityB {
			return integrityA > integrityB
		}
		if a.maxHP != c.maxHP {
			return a.maxHP > c.maxHP
		}
		return a.faction < c.faction
	})
	if len(list) == 0 {
		return ""
	}
	return list[0].faction
}

// Report assembles the post-action report at battle end.
func (b *BattleState) Report() Report {
	armies := make(map[string][]*Unit)
	for _, u := range b.Units {
		armies[u.FactionID] = append(armies[u.FactionID], u)
	}
	return BuildReport(b.Winner, b.MapName, b.TotalSimTime, b.Standings, armies, b.objectiveTimeline, b.events)
}

// Shutdown stops the async event writer. Callers should invoke this once
// the battle is finished and its report has been consumed.
func (b *BattleState) Shutdown() {
	b.EventLog.Stop()
}
