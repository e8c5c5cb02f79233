package battle

import "log"

// TickCtx is the one explicit context struct phases and ability handlers
// receive, replacing a broad, untyped bag of per-tick state.
type TickCtx struct {
	Units           map[string]*Unit
	EnemiesByFaction map[string][]*Unit
	Terrain         *Terrain
	Formations      map[string]*Formation
	Doctrines       map[string]Doctrine
	RoundNum        int64
	SimTime         float64
	RNG             *RngRegistry
	LogSink         *EventLog
}

// Phase is one named step of the round-based pipeline. Phases are
// tolerant: a panicking phase must not abort the round.
type Phase struct {
	Name string
	Run  func(ctx *TickCtx)
}

// DefaultPhaseOrder is the source's default named phase list.
func DefaultPhaseOrder() []string {
	return []string{"orbital_support", "ability", "movement", "shooting", "melee", "morale"}
}

// PhaseExecutor runs an ordered, named phase list once per round, catching
// and logging any panic so one broken phase cannot abort the round.
type PhaseExecutor struct {
	phases map[string]Phase
	order  []string
}

// NewPhaseExecutor builds an executor from registered phases and an
// explicit name order (universe rules may override DefaultPhaseOrder()).
func NewPhaseExecutor(phases []Phase, order []string) *PhaseExecutor {
	m := make(map[string]Phase, len(phases))
	for _, p := range phases {
		m[p.Name] = p
	}
	return &PhaseExecutor{phases: m, order: order}
}

// ExecuteRound runs every named phase in order, isolating panics.
func (e *PhaseExecutor) ExecuteRound(ctx *TickCtx) {
	for _, name := range e.order {
		phase, ok := e.phases[name]
		if !ok {
			continue
		}
		e.runPhaseSafely(phase, ctx)
	}
}

func (e *PhaseExecutor) runPhaseSafely(phase Phase, ctx *TickCtx) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("battle: phase %q panicked, round continues: %v", phase.Name, r)
			if ctx.LogSink != nil {
				ctx.LogSink.EmitSimple(EventDiagnostic, ctx.SimTime, "", DiagnosticPayload{
					Severity: "critical",
					Kind:     "phase_panic",
					Message:  phase.Name,
				})
			}
		}
	}()
	phase.Run(ctx)
}

// DefaultPhases builds the legacy round pipeline's phase set bound to b,
// covering DefaultPhaseOrder()'s six named steps at round granularity
// (coarser than Tick's per-tick spatial-index queries: targets and
// neighbors are found by scanning the living roster directly, acceptable
// since a round already represents several seconds of real time).
// orbital_support is left a no-op here — this engine has no orbital/arty
// component of its own; a caller with one registers its own Phase under
// that name and passes it through NewPhaseExecutor instead.
func DefaultPhases(b *BattleState) []Phase {
	return []Phase{
		{Name: "orbital_support", Run: func(ctx *TickCtx) {}},
		{Name: "ability", Run: func(ctx *TickCtx) { b.Abilities.TickCooldowns(b.Config.Tick.FixedRoundSecs) }},
		{Name: "movement", Run: b.runMovementPhase},
		{Name: "shooting", Run: b.runShootingPhase},
		{Name: "melee", Run: b.runMeleePhase},
		{Name: "morale", Run: b.runMoralePhase},
	}
}
