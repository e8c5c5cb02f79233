package battle

import "testing"

// TestExecuteRoundRunsPhasesInOrder verifies phases execute in the given
// order, not registration order.
func TestExecuteRoundRunsPhasesInOrder(t *testing.T) {
	var ran []string
	phases := []Phase{
		{Name: "b", Run: func(ctx *TickCtx) { ran = append(ran, "b") }},
		{Name: "a", Run: func(ctx *TickCtx) { ran = append(ran, "a") }},
	}
	exec := NewPhaseExecutor(phases, []string{"a", "b"})
	exec.ExecuteRound(&TickCtx{})

	if len(ran) != 2 || ran[0] != "a" || ran[1] != "b" {
		t.Errorf("expected phases to run in order [a, b], got %v", ran)
	}
}

// TestExecuteRoundSkipsUnregisteredNames verifies a name in the order list
// with no matching registered phase is silently skipped.
func TestExecuteRoundSkipsUnregisteredNames(t *testing.T) {
	var ran []string
	phases := []Phase{{Name: "a", Run: func(ctx *TickCtx) { ran = append(ran, "a") }}}
	exec := NewPhaseExecutor(phases, []string{"a", "nonexistent"})
	exec.ExecuteRound(&TickCtx{})

	if len(ran) != 1 || ran[0] != "a" {
		t.Errorf("expected only 'a' to run, got %v", ran)
	}
}

// TestExecuteRoundIsolatesPanickingPhase verifies a phase that panics does
// not prevent subsequent phases from running.
func TestExecuteRoundIsolatesPanickingPhase(t *testing.T) {
	var ran []string
	phases := []Phase{
		{Name: "boom", Run: func(ctx *TickCtx) { panic("phase exploded") }},
		{Name: "after", Run: func(ctx *TickCtx) { ran = append(ran, "after") }},
	}
	exec := NewPhaseExecutor(phases, []string{"boom", "after"})

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("ExecuteRound should isolate panics, but one escaped: %v", r)
		}
	}()
	exec.ExecuteRound(&TickCtx{})

	if len(ran) != 1 || ran[0] != "after" {
		t.Errorf("expected the phase after the panic to still run, got %v", ran)
	}
}

// TestExecuteRoundPanicEmitsDiagnosticEvent verifies a panicking phase logs
// a diagnostic event when a log sink is attached.
func TestExecuteRoundPanicEmitsDiagnosticEvent(t *testing.T) {
	log := NewEventLog()
	phases := []Phase{{Name: "boom", Run: func(ctx *TickCtx) { panic("phase exploded") }}}
	exec := NewPhaseExecutor(phases, []string{"boom"})
	exec.ExecuteRound(&TickCtx{LogSink: log, SimTime: 5})

	if log.TotalCount() != 1 {
		t.Errorf("expected exactly 1 diagnostic event to be emitted, got %d", log.TotalCount())
	}
}

// TestDefaultPhaseOrderIncludesAllSixSteps verifies the default order names
// every phase DefaultPhases binds.
func TestDefaultPhaseOrderIncludesAllSixSteps(t *testing.T) {
	order := DefaultPhaseOrder()
	want := []string{"orbital_support", "ability", "movement", "shooting", "melee", "morale"}
	if len(order) != len(want) {
		t.Fatalf("expected %d phases, got %d", len(want), len(order))
	}
	for i, name := range want {
		if order[i] != name {
			t.Errorf("expected phase %d to be %q, got %q", i, name, order[i])
		}
	}
}
