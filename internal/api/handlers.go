package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JaySpiffy/void-reckoning-engine-sub001/internal/battle"
)

// routerHandlers holds the registry the control plane operates on. One
// registry instance per process; every handler is a thin HTTP adapter over
// BattleRegistry/BattleEntry methods.
type routerHandlers struct {
	registry *BattleRegistry
	hubs     *hubRegistry
}

func (h *routerHandlers) handleCreateBattle(w http.ResponseWriter, r *http.Request) {
	var req InitializeBattleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.registry.Create(req)
	if err != nil {
		writeBattleError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"battle_id": entry.State.ID,
		"width":     entry.State.Width,
		"height":    entry.State.Height,
		"domain":    domainToString(entry.State.Domain),
	})
}

func (h *routerHandlers) battleFromPath(w http.ResponseWriter, r *http.Request) (*BattleEntry, bool) {
	id := chi.URLParam(r, "id")
	entry, ok := h.registry.Get(id)
	if !ok {
		writeError(w, "battle not found", http.StatusNotFound)
		return nil, false
	}
	return entry, true
}

func (h *routerHandlers) handleTick(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.battleFromPath(w, r)
	if !ok {
		return
	}

	var req TickRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	start := time.Now()
	result := entry.Tick(req.DT)
	RecordTick(time.Since(start))

	writeJSON(w, resultToJSON(result))
}

func (h *routerHandlers) handleExecuteRound(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.battleFromPath(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result := entry.ExecuteRound()
	RecordTick(time.Since(start))

	writeJSON(w, resultToJSON(result))
}

func (h *routerHandlers) handleApplyCommand(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.battleFromPath(w, r)
	if !ok {
		return
	}

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := entry.ApplyCommand(req.ToCommand()); err != nil {
		writeBattleError(w, err)
		return
	}

	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleGetReport(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.battleFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, entry.Report())
}

func (h *routerHandlers) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.battleFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, entry.Snapshot())
}

func (h *routerHandlers) handleListBattles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"battles": h.registry.IDs(),
		"count":   h.registry.Count(),
	})
}

func (h *routerHandlers) handleDeleteBattle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.registry.Get(id); !ok {
		writeError(w, "battle not found", http.StatusNotFound)
		return
	}
	h.registry.Delete(id)
	writeJSON(w, map[string]bool{"success": true})
}

func resultToJSON(res battle.Result) map[string]interface{} {
	return map[string]interface{}{
		"winner":    res.Winner,
		"finished":  res.Finished,
		"survivors": res.Survivors,
	}
}

// writeBattleError maps a battle.BattleError's kind to an HTTP status;
// any other error (a programmer mistake surfacing from deep in the engine)
// falls back to 500.
func writeBattleError(w http.ResponseWriter, err error) {
	var be *battle.BattleError
	if errors.As(err, &be) {
		status := http.StatusInternalServerError
		switch be.Kind {
		case battle.InvalidPlacement:
			status = http.StatusBadRequest
		case battle.MissingDependency:
			status = http.StatusUnprocessableEntity
		case battle.InconsistentState, battle.InternalPanic:
			status = http.StatusInternalServerError
		case battle.CancellationRequested:
			status = http.StatusConflict
		}
		writeError(w, err.Error(), status)
		return
	}
	writeError(w, err.Error(), http.StatusBadRequest)
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
