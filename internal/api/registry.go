package api

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/JaySpiffy/void-reckoning-engine-sub001/internal/battle"
	"github.com/JaySpiffy/void-reckoning-engine-sub001/internal/battle/transport"
)

// BattleEntry owns one live BattleState plus the transport publisher that
// broadcasts its snapshots to any connected campaign/dashboard process.
type BattleEntry struct {
	mu        sync.Mutex
	State     *battle.BattleState
	Phases    *battle.PhaseExecutor
	Publisher *transport.Publisher
	seq       uint64
	createdAt time.Time
}

// Tick advances the battle by dt (0 = the battle's configured tick dt) and
// publishes the resulting snapshot.
func (e *BattleEntry) Tick(dt float64) battle.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	if dt <= 0 {
		dt = e.State.Config.Tick.DT
	}
	result := e.State.Tick(dt)
	e.publishLocked()
	return result
}

// ExecuteRound runs one legacy named-phase round and publishes the result.
func (e *BattleEntry) ExecuteRound() battle.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	result := e.State.ExecuteRound(e.Phases)
	e.publishLocked()
	return result
}

// ApplyCommand validates and applies one inbound command under the entry's
// lock, so it never races a concurrent Tick/ExecuteRound.
func (e *BattleEntry) ApplyCommand(cmd battle.Command) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.State.ApplyCommand(cmd)
}

// Report builds the post-action report under the entry's lock.
func (e *BattleEntry) Report() battle.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.State.Report()
}

// Snapshot returns the latest published positional snapshot.
func (e *BattleEntry) Snapshot() battle.BattleSnapshot {
	return e.State.Snapshots.Load()
}

func (e *BattleEntry) publishLocked() {
	snap := battle.BuildSnapshot(e.State.TotalSimTime, e.State.Units)
	e.State.Snapshots.Produce(snap)
	e.seq++
	if e.Publisher != nil {
		e.Publisher.PublishSnapshot(transport.FromBattleSnapshot(e.State.ID, e.seq, snap))
	}
}

// BattleRegistry holds every battle the control plane is managing, keyed
// by battle id, so a single process can run many concurrent battles
// instead of being tied to one long-running session.
type BattleRegistry struct {
	mu       sync.RWMutex
	battles  map[string]*BattleEntry
	sockDir  string // base directory for per-battle transport sockets
}

// NewBattleRegistry returns an empty registry. sockDir is the directory
// transport sockets are created under (e.g. "/tmp/battlesim"); pass "" to
// use transport.DefaultSocketPath's directory for every battle (fine for a
// single-battle deployment, but multi-battle deployments should pass a
// real directory so sockets don't collide).
func NewBattleRegistry(sockDir string) *BattleRegistry {
	return &BattleRegistry{
		battles: make(map[string]*BattleEntry),
		sockDir: sockDir,
	}
}

// Create initializes a new battle from a request, starts its transport
// publisher, and registers it.
func (r *BattleRegistry) Create(req InitializeBattleRequest) (*BattleEntry, error) {
	if req.BattleID == "" {
		return nil, fmt.Errorf("battle_id is required")
	}

	r.mu.Lock()
	if _, exists := r.battles[req.BattleID]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("battle %q already exists", req.BattleID)
	}
	r.mu.Unlock()

	armies := make(map[string][]*battle.Unit, len(req.Armies))
	for factionID, specs := range req.Armies {
		roster := make([]*battle.Unit, 0, len(specs))
		for _, spec := range specs {
			roster = append(roster, spec.ToUnit())
		}
		armies[factionID] = roster
	}

	doctrines := make(map[string]battle.Doctrine, len(req.Doctrines))
	for faction, d := range req.Doctrines {
		doctrines[faction] = doctrineFromString(d)
	}

	var domainHint *battle.Domain
	if req.Domain != "" {
		d := domainFromString(req.Domain)
		domainHint = &d
	}

	cfg := battle.Load()
	state, err := battle.InitializeBattle(armies, doctrines, nil, req.DefenderFactions, domainHint, req.MapTemplateID, req.Seed, cfg)
	if err != nil {
		return nil, err
	}
	state.ID = req.BattleID

	eventsPath := ""
	if r.sockDir != "" {
		eventsPath = r.sockDir + "/" + req.BattleID + ".events.log"
	}
	if err := state.EventLog.Start(eventsPath); err != nil {
		log.Printf("battle %s: event log failed to start, continuing in-memory only: %v", req.BattleID, err)
	}

	entry := &BattleEntry{
		State:     state,
		Phases:    battle.NewPhaseExecutor(battle.DefaultPhases(state), battle.DefaultPhaseOrder()),
		createdAt: time.Now(),
	}

	sockPath := transport.DefaultSocketPath
	if r.sockDir != "" {
		sockPath = r.sockDir + "/" + req.BattleID + ".sock"
	}
	pub := transport.NewPublisher(req.BattleID, sockPath)
	pub.OnCommand(func(env transport.CommandEnvelope) {
		unitsOf := func(ids []string) []*battle.Unit {
			// Command envelopes over the wire only name spawn targets by
			// faction+doctrine; a richer unit payload arrives via the HTTP
			// /command endpoint instead, which carries full UnitSpec JSON.
			return nil
		}
		cmd := transport.ToCommand(env, unitsOf)
		if err := entry.ApplyCommand(cmd); err != nil {
			log.Printf("battle %s: command %s rejected: %v", req.BattleID, env.Type, err)
		}
	})
	if err := pub.Start(); err != nil {
		log.Printf("battle %s: transport publisher failed to start: %v", req.BattleID, err)
	} else {
		entry.Publisher = pub
	}

	r.mu.Lock()
	r.battles[req.BattleID] = entry
	r.mu.Unlock()

	UpdateActiveBattleCount(r.Count())
	return entry, nil
}

// Get returns the battle entry for id, if any.
func (r *BattleRegistry) Get(id string) (*BattleEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.battles[id]
	return e, ok
}

// Delete stops and removes a battle from the registry.
func (r *BattleRegistry) Delete(id string) {
	r.mu.Lock()
	e, ok := r.battles[id]
	delete(r.battles, id)
	r.mu.Unlock()
	if !ok {
		return
	}
	if e.Publisher != nil {
		e.Publisher.Stop()
	}
	e.State.Shutdown()
	UpdateActiveBattleCount(r.Count())
}

// Count returns the number of battles currently held.
func (r *BattleRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.battles)
}

// IDs returns every registered battle id.
func (r *BattleRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.battles))
	for id := range r.battles {
		ids = append(ids, id)
	}
	return ids
}

// ShutdownAll stops every battle's publisher and event log, used on
// process shutdown.
func (r *BattleRegistry) ShutdownAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.battles {
		if e.Publisher != nil {
			e.Publisher.Stop()
		}
		e.State.Shutdown()
		delete(r.battles, id)
	}
}
