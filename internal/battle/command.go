package battle

// CommandType enumerates the inbound control-plane commands a battle
// accepts mid-run.
type CommandType string

const (
	CommandSpawnReinforcement CommandType = "spawn_reinforcement"
	CommandSetDoctrine        CommandType = "set_doctrine"
	CommandRetreatFleet       CommandType = "retreat_fleet"
	CommandAddResource        CommandType = "add_resource"
	CommandForcePeace         CommandType = "force_peace"
	CommandUseAbility         CommandType = "use_ability"
)

// Command is one inbound instruction from the owning campaign process.
type Command struct {
	Type      CommandType
	FactionID string

	Units []*Unit // spawn_reinforcement

	Doctrine Doctrine // set_doctrine

	ResourceName   string // add_resource
	ResourceAmount float64

	PeaceFactionA string // force_peace; empty FactionA/B means "all factions"
	PeaceFactionB string

	SourceUnitID string // use_ability
	TargetUnitID string // use_ability, optional
	AbilityID    string // use_ability
}

// ApplyCommand validates and applies one inbound command. Unknown faction
// ids, malformed units, or an unknown command type return
// MissingDependency/InvalidPlacement rather than panicking — commands come
// from an external process and must never be trusted blindly.
func (b *BattleState) ApplyCommand(cmd Command) error {
	switch cmd.Type {
	case CommandSpawnReinforcement:
		return b.applySpawnReinforcement(cmd)
	case CommandSetDoctrine:
		if cmd.FactionID == "" {
			return NewBattleError(MissingDependency, "set_doctrine requires a faction id")
		}
		b.Doctrines[cmd.FactionID] = cmd.Doctrine
		return nil
	case CommandRetreatFleet:
		return b.applyRetreatFleet(cmd)
	case CommandAddResource:
		if cmd.FactionID == "" || cmd.ResourceName == "" {
			return NewBattleError(MissingDependency, "add_resource requires faction id and resource name")
		}
		if _, ok := b.Resources[cmd.FactionID]; !ok {
			b.Resources[cmd.FactionID] = make(map[string]float64)
		}
		b.Resources[cmd.FactionID][cmd.ResourceName] += cmd.ResourceAmount
		return nil
	case CommandForcePeace:
		b.applyForcePeace(cmd)
		return nil
	case CommandUseAbility:
		return b.applyUseAbility(cmd)
	default:
		return NewBattleError(MissingDependency, "unknown command type "+string(cmd.Type))
	}
}

func (b *BattleState) applySpawnReinforcement(cmd Command) error {
	if cmd.FactionID == "" || len(cmd.Units) == 0 {
		return NewBattleError(MissingDependency, "spawn_reinforcement requires faction id and at least one unit")
	}
	stats := b.Standings.Stats(cmd.FactionID)
	if _, ok := b.Resources[cmd.FactionID]; !ok {
		b.Resources[cmd.FactionID] = make(map[string]float64)
		b.Standings.RegisterFaction(cmd.FactionID, 0)
	}

	for i, u := range cmd.Units {
		if u.FactionID == "" {
			u.FactionID = cmd.FactionID
		}
		if u.X == 0 && u.Y == 0 {
			edgeDeploy(u, cmd.FactionID, 0, 1, len(b.idxUnit)+i, b.Width, b.Height)
		}
		if !inBounds(u, b.Width, b.Height) {
			return NewBattleError(InvalidPlacement, "reinforcement "+u.ID+" out of bounds")
		}
		if _, exists := b.Units[u.ID]; exists {
			return NewBattleError(InvalidPlacement, "reinforcement id "+u.ID+" already in use")
		}
		b.Units[u.ID] = u
		idx := uint32(len(b.idxUnit))
		b.unitIdx[u.ID] = idx
		b.idxUnit = append(b.idxUnit, u.ID)
		if !b.Grid.Insert(idx, u.X, u.Y) {
			return NewBattleError(InvalidPlacement, "reinforcement "+u.ID+" rejected by spatial index")
		}
	}
	stats.InitialStrength += len(cmd.Units)
	b.rebuildTracker()
	return nil
}

// applyRetreatFleet forces every living unit of a faction into a routing
// state and clears their weapons' line of engagement, modeling a
// commander-ordered withdrawal rather than a morale failure.
func (b *BattleState) applyRetreatFleet(cmd Command) error {
	if cmd.FactionID == "" {
		return NewBattleError(MissingDependency, "retreat_fleet requires a faction id")
	}
	found := false
	for _, u := range b.Units {
		if u.FactionID != cmd.FactionID || !u.IsAlive() {
			continue
		}
		u.IsRouting = true
		u.IsEngaged = false
		found = true
	}
	if !found {
		return NewBattleError(MissingDependency, "no living units for faction "+cmd.FactionID)
	}
	return nil
}

// applyForcePeace removes mutual hostility between two factions (or, with
// both sides blank, ends the battle outright) by marking every opposing
// unit's target cache stale and letting the next tick's selector skip them
// via a synthetic truce tag.
func (b *BattleState) applyForcePeace(cmd Command) {
	if cmd.PeaceFactionA == "" && cmd.PeaceFactionB == "" {
		b.Finished = true
		b.Winner = ""
		return
	}
	for _, u := range b.Units {
		if u.FactionID == cmd.PeaceFactionA || u.FactionID == cmd.PeaceFactionB {
			u.TargetCache = TargetCache{}
			if u.Tags == nil {
				u.Tags = make(map[string]struct{})
			}
			u.Tags["AtPeaceWith:"+cmd.PeaceFactionA] = struct{}{}
			u.Tags["AtPeaceWith:"+cmd.PeaceFactionB] = struct{}{}
		}
	}
}

// applyUseAbility invokes the ability dispatcher for one source/target pair,
// charging the source faction's resource pool on success and emitting
// ability_use or ability_fail so campaign tooling can observe the outcome.
func (b *BattleState) applyUseAbility(cmd Command) error {
	if cmd.SourceUnitID == "" || cmd.AbilityID == "" {
		return NewBattleError(MissingDependency, "use_ability requires a source unit id and an ability id")
	}
	source, ok := b.Units[cmd.SourceUnitID]
	if !ok || !source.IsAlive() {
		return NewBattleError(MissingDependency, "use_ability source unit "+cmd.SourceUnitID+" not found or dead")
	}

	var target *Unit
	if cmd.TargetUnitID != "" {
		target = b.Units[cmd.TargetUnitID]
	}

	resources, ok := b.Resources[source.FactionID]
	if !ok {
		resources = make(map[string]float64)
		b.Resources[source.FactionID] = resources
	}

	ctx := &TickCtx{
		Units:            b.Units,
		EnemiesByFaction: b.enemiesByFaction(),
		Terrain:          b.Terrain,
		Formations:       b.Formations,
		Doctrines:        b.Doctrines,
		RoundNum:         b.RoundNum,
		SimTime:          b.TotalSimTime,
		RNG:              b.RNG,
		LogSink:          b.EventLog,
	}

	outcome := b.Abilities.Execute(source, target, cmd.AbilityID, ctx, resources)
	if outcome.Success {
		b.emit(EventAbilityUse, source.FactionID, AbilityUsePayload{
			AbilityID: cmd.AbilityID, SourceID: source.ID, TargetID: cmd.TargetUnitID, Effect: outcome.Effect,
		})
	} else {
		b.emit(EventAbilityFail, source.FactionID, AbilityFailPayload{
			AbilityID: cmd.AbilityID, SourceID: source.ID, Reason: outcome.Description,
		})
	}
	return nil
}
