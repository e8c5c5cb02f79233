package battle

import "github.com/JaySpiffy/void-reckoning-engine-sub001/internal/battle/spatial"

// FactionStats accumulates the per-faction totals surfaced in the
// post-action report and mid-battle standings.
type FactionStats struct {
	DamageDealt   float64
	UnitsLost     int
	Kills         int
	InitialStrength int
}

// Standings ranks factions by victory points using a skip list for O(log n)
// score updates and rank queries, adapted from the source's kill
// leaderboard (itself modeled on Redis ZSET).
type Standings struct {
	vp    *spatial.SkipList
	stats map[string]*FactionStats
}

// NewStandings returns an empty standings tracker.
func NewStandings() *Standings {
	return &Standings{vp: spatial.NewSkipList(), stats: make(map[string]*FactionStats)}
}

// RegisterFaction seeds a faction's tracked stats at battle start.
func (s *Standings) RegisterFaction(factionID string, initialStrength int) {
	s.stats[factionID] = &FactionStats{InitialStrength: initialStrength}
	s.vp.Insert(factionID, 0)
}

// AddVP updates a faction's victory point total.
func (s *Standings) AddVP(factionID string, delta float64) {
	score, _ := s.vp.GetScore(factionID)
	s.vp.Insert(factionID, score+delta)
}

// VP returns a faction's current victory point total.
func (s *Standings) VP(factionID string) float64 {
	score, _ := s.vp.GetScore(factionID)
	return score
}

// Rank returns a faction's 1-indexed rank by victory points (1 = highest).
func (s *Standings) Rank(factionID string) int {
	return s.vp.GetRank(factionID)
}

// Top returns the top n factions by victory points.
func (s *Standings) Top(n int) []spatial.SkipListEntry {
	return s.vp.GetRange(1, n)
}

// Stats returns the mutable stats bucket for a faction, creating it if
// absent (defensive: a faction introduced mid-battle via apply_command
// still gets tracked).
func (s *Standings) Stats(factionID string) *FactionStats {
	st, ok := s.stats[factionID]
	if !ok {
		st = &FactionStats{}
		s.stats[factionID] = st
	}
	return st
}

// RecordDamage accumulates damage_dealt, monotonically non-decreasing.
func (s *Standings) RecordDamage(factionID string, amount float64) {
	s.Stats(factionID).DamageDealt += amount
}

// RecordKill increments a faction's kill count and the victim faction's
// units-lost count.
func (s *Standings) RecordKill(killerFaction, victimFaction string) {
	s.Stats(killerFaction).Kills++
	s.Stats(victimFaction).UnitsLost++
}
