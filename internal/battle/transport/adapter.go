package transport

import "github.com/JaySpiffy/void-reckoning-engine-sub001/internal/battle"

// FromBattleSnapshot converts a sim-side snapshot into its wire envelope.
func FromBattleSnapshot(battleID string, seq uint64, snap battle.BattleSnapshot) SnapshotEnvelope {
	env := SnapshotEnvelope{
		BattleID:  battleID,
		Sequence:  seq,
		Timestamp: snap.Timestamp,
		Units:     make([]UnitEnvelope, len(snap.Units)),
	}
	for i, u := range snap.Units {
		env.Units[i] = UnitEnvelope{
			ID: u.ID, Name: u.Name, Faction: u.Faction,
			X: u.X, Y: u.Y, HP: u.HP, Facing: u.Facing, IsAlive: u.IsAlive,
		}
	}
	return env
}

// ToCommand converts a wire CommandEnvelope into a battle.Command. unitsOf
// resolves the blueprint/unit ids named by a spawn_reinforcement command
// into live *battle.Unit values; the transport layer carries only ids
// since it must stay decoupled from blueprint parsing (an external
// collaborator's concern).
func ToCommand(env CommandEnvelope, unitsOf func(ids []string) []*battle.Unit) battle.Command {
	cmd := battle.Command{
		Type:           battle.CommandType(env.Type),
		FactionID:      env.FactionID,
		ResourceName:   env.ResourceName,
		ResourceAmount: env.ResourceAmount,
		PeaceFactionA:  env.PeaceFactionA,
		PeaceFactionB:  env.PeaceFactionB,
		Doctrine:       parseDoctrine(env.Doctrine),
	}
	if len(env.UnitIDs) > 0 && unitsOf != nil {
		cmd.Units = unitsOf(env.UnitIDs)
	}
	return cmd
}

func parseDoctrine(s string) battle.Doctrine {
	switch s {
	case "charge":
		return battle.DoctrineCharge
	case "kite":
		return battle.DoctrineKite
	case "defend":
		return battle.DoctrineDefend
	case "capture_and_hold":
		return battle.DoctrineCaptureAndHold
	default:
		return battle.DoctrineStandard
	}
}
