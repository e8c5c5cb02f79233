package battle

import "encoding/json"

// EventType enumerates the outbound event log's entries.
type EventType uint8

const (
	EventUnknown EventType = iota
	EventShootingFire
	EventWeaponFireDetailed
	EventHardpointDestroyed
	EventMoraleFailure
	EventChainRouting
	EventCapture
	EventUnitDeath
	EventAbilityUse
	EventAbilityFail
	EventInterdictionTrap
	EventDiagnostic
)

// EventVersion allows the wire schema to evolve without breaking old logs.
const EventVersion uint8 = 1

// Event is one append-only, time-stamped entry in the outbound log.
type Event struct {
	Version   uint8     `json:"version"`
	Type      EventType `json:"type"`
	SimTime   float64   `json:"simTime"`
	Sequence  uint64    `json:"sequence"`
	FactionID string    `json:"factionId"` // source faction, for rate limiting
	Payload   []byte    `json:"payload"`
}

func (t EventType) String() string {
	switch t {
	case EventShootingFire:
		return "shooting_fire"
	case EventWeaponFireDetailed:
		return "weapon_fire_detailed"
	case EventHardpointDestroyed:
		return "hardpoint_destroyed"
	case EventMoraleFailure:
		return "morale_failure"
	case EventChainRouting:
		return "chain_routing"
	case EventCapture:
		return "capture"
	case EventUnitDeath:
		return "unit_death"
	case EventAbilityUse:
		return "ability_use"
	case EventAbilityFail:
		return "ability_fail"
	case EventInterdictionTrap:
		return "interdiction_trap"
	case EventDiagnostic:
		return "diagnostic"
	default:
		return "unknown"
	}
}

// Typed payloads, one per outbound event kind.

type ShootingFirePayload struct {
	AttackerID string  `json:"attackerId"`
	TargetID   string  `json:"targetId"`
	Weapon     string  `json:"weapon"`
	Range      float64 `json:"range"`
}

type WeaponFireDetailedPayload struct {
	AttackerID       string  `json:"attackerId"`
	TargetID         string  `json:"targetId"`
	Weapon           string  `json:"weapon"`
	HitRoll          float64 `json:"hitRoll"`
	Threshold        float64 `json:"threshold"`
	DamageBreakdown  float64 `json:"damageBreakdown"`
	Arc              string  `json:"arc"`
	Facing           float64 `json:"facing"`
	Kill             bool    `json:"kill"`
}

type HardpointDestroyedPayload struct {
	UnitID      string `json:"unitId"`
	ComponentID string `json:"componentId"`
}

type MoraleFailurePayload struct {
	UnitID    string  `json:"unitId"`
	Roll      float64 `json:"roll"`
	Threshold float64 `json:"threshold"`
}

type ChainRoutingPayload struct {
	UnitID string `json:"unitId"`
}

type CapturePayload struct {
	Faction     string `json:"faction"`
	ObjectiveID string `json:"objectiveId"`
}

type UnitDeathPayload struct {
	UnitID       string `json:"unitId"`
	KillerFaction string `json:"killerFaction"`
}

type AbilityUsePayload struct {
	AbilityID string                 `json:"abilityId"`
	SourceID  string                 `json:"sourceId"`
	TargetID  string                 `json:"targetId"`
	Effect    map[string]interface{} `json:"effect"`
}

type AbilityFailPayload struct {
	AbilityID string `json:"abilityId"`
	SourceID  string `json:"sourceId"`
	Reason    string `json:"reason"`
}

type InterdictionTrapPayload struct {
	UnitID string `json:"unitId"`
}

type DiagnosticPayload struct {
	Severity string `json:"severity"` // info | warning | critical
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

func encodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event stamped with the battle's sim clock.
func NewEvent(eventType EventType, simTime float64, factionID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		SimTime:   simTime,
		FactionID: factionID,
		Payload:   encodePayload(payload),
	}
}
