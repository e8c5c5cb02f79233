package api

import (
	"github.com/JaySpiffy/void-reckoning-engine-sub001/internal/battle"
)

// battle.Unit carries no JSON tags (it is an internal domain type, not a
// wire type), so the control plane marshals/unmarshals through these DTOs
// instead of the live simulation structs.

// ComponentSpec is the wire form of a battle.Component.
type ComponentSpec struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"` // "hull" | "shield" | "engine" | "weapon"
	Name          string  `json:"name"`
	MaxHP         float64 `json:"max_hp"`
	Range         float64 `json:"range,omitempty"`
	Strength      float64 `json:"strength,omitempty"`
	AP            float64 `json:"ap,omitempty"`
	AttacksPerSec float64 `json:"attacks_per_sec,omitempty"`
	Arc           string  `json:"arc,omitempty"`      // "front" | "left" | "right" | "rear" | "turret"
	Category      string  `json:"category,omitempty"` // "kinetic" | "energy" | "laser" | "missile" | "ion" | "exotic"
	Tags          []string `json:"tags,omitempty"`
}

// UnitSpec is the wire form of a battle.Unit, used both for
// initialize_battle's roster payload and command payloads that spawn units.
type UnitSpec struct {
	ID        string `json:"id"`
	FactionID string `json:"faction_id"`
	Name      string `json:"name"`
	Domain    string `json:"domain,omitempty"` // "ground" | "space"
	Class     string `json:"class,omitempty"`
	Tags      []string `json:"tags,omitempty"`

	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Facing       float64 `json:"facing,omitempty"`
	MaxSpeed     float64 `json:"max_speed"`
	TurnRate     float64 `json:"turn_rate,omitempty"`
	Acceleration float64 `json:"acceleration,omitempty"`
	FootprintW   int     `json:"footprint_w,omitempty"`
	FootprintH   int     `json:"footprint_h,omitempty"`

	MeleeAttack    float64 `json:"melee_attack,omitempty"`
	MeleeDefense   float64 `json:"melee_defense,omitempty"`
	BallisticSkill float64 `json:"ballistic_skill"`
	ArmorFront     float64 `json:"armor_front,omitempty"`
	ArmorSide      float64 `json:"armor_side,omitempty"`
	ArmorRear      float64 `json:"armor_rear,omitempty"`
	Evasion        float64 `json:"evasion,omitempty"`
	Invuln         float64 `json:"invuln,omitempty"`

	HP              float64 `json:"hp"`
	MaxHP           float64 `json:"max_hp"`
	Shield          float64 `json:"shield,omitempty"`
	MaxShield       float64 `json:"max_shield,omitempty"`
	ShieldRegenRate   float64 `json:"shield_regen_rate,omitempty"`
	MaxMorale         float64 `json:"max_morale,omitempty"`

	FormationID string `json:"formation_id,omitempty"`

	Components []ComponentSpec `json:"components,omitempty"`
}

func domainFromString(s string) battle.Domain {
	if s == "space" {
		return battle.DomainSpace
	}
	return battle.DomainGround
}

func domainToString(d battle.Domain) string {
	if d == battle.DomainSpace {
		return "space"
	}
	return "ground"
}

func arcFromString(s string) battle.WeaponArc {
	switch s {
	case "left":
		return battle.ArcLeft
	case "right":
		return battle.ArcRight
	case "rear":
		return battle.ArcRear
	case "turret":
		return battle.ArcTurret
	default:
		return battle.ArcFront
	}
}

func categoryFromString(s string) battle.WeaponCategory {
	switch s {
	case "energy":
		return battle.CategoryEnergy
	case "laser":
		return battle.CategoryLaser
	case "missile":
		return battle.CategoryMissile
	case "ion":
		return battle.CategoryIon
	case "exotic":
		return battle.CategoryExotic
	default:
		return battle.CategoryKinetic
	}
}

func componentTypeFromString(s string) battle.ComponentType {
	switch s {
	case "shield":
		return battle.ComponentShield
	case "engine":
		return battle.ComponentEngine
	case "weapon":
		return battle.ComponentWeapon
	default:
		return battle.ComponentHull
	}
}

// ToUnit converts a wire UnitSpec into a live battle.Unit ready for
// InitializeBattle or a spawn_reinforcement command.
func (s UnitSpec) ToUnit() *battle.Unit {
	tags := make(map[string]struct{}, len(s.Tags))
	for _, t := range s.Tags {
		tags[t] = struct{}{}
	}

	components := make([]*battle.Component, 0, len(s.Components))
	for _, c := range s.Components {
		components = append(components, &battle.Component{
			ID:            c.ID,
			Type:          componentTypeFromString(c.Type),
			Name:          c.Name,
			MaxHP:         c.MaxHP,
			CurrentHP:     c.MaxHP,
			Range:         c.Range,
			Strength:      c.Strength,
			AP:            c.AP,
			AttacksPerSec: c.AttacksPerSec,
			Arc:           arcFromString(c.Arc),
			Category:      categoryFromString(c.Category),
			Tags:          c.Tags,
		})
	}

	return &battle.Unit{
		ID:        s.ID,
		FactionID: s.FactionID,
		Name:      s.Name,
		Domain:    domainFromString(s.Domain),
		Class:     s.Class,
		Tags:      tags,

		X: s.X, Y: s.Y,
		Facing:       s.Facing,
		MaxSpeed:     s.MaxSpeed,
		TurnRate:     s.TurnRate,
		Acceleration: s.Acceleration,
		FootprintW:   s.FootprintW,
		FootprintH:   s.FootprintH,

		MeleeAttack:    s.MeleeAttack,
		MeleeDefense:   s.MeleeDefense,
		BallisticSkill: s.BallisticSkill,
		Armor:          battle.Armor{Front: s.ArmorFront, Side: s.ArmorSide, Rear: s.ArmorRear},
		Evasion:        s.Evasion,
		Invuln:         s.Invuln,

		HP: s.HP, MaxHP: s.MaxHP,
		Shield: s.Shield, MaxShield: s.MaxShield,
		ShieldRegenRate: s.ShieldRegenRate,
		Morale:          s.MaxMorale, MaxMorale: s.MaxMorale,

		FormationID: s.FormationID,
		Components:  components,
	}
}

// FromUnit converts a live battle.Unit back into its wire form, used by
// roster-inspection endpoints.
func FromUnit(u *battle.Unit) UnitSpec {
	tags := make([]string, 0, len(u.Tags))
	for t := range u.Tags {
		tags = append(tags, t)
	}
	return UnitSpec{
		ID: u.ID, FactionID: u.FactionID, Name: u.Name,
		Domain: domainToString(u.Domain), Class: u.Class, Tags: tags,
		X: u.X, Y: u.Y, Facing: u.Facing, MaxSpeed: u.MaxSpeed,
		BallisticSkill: u.BallisticSkill,
		ArmorFront:     u.Armor.Front, ArmorSide: u.Armor.Side, ArmorRear: u.Armor.Rear,
		HP: u.HP, MaxHP: u.MaxHP, Shield: u.Shield, MaxShield: u.MaxShield,
		MaxMorale: u.MaxMorale, FormationID: u.FormationID,
	}
}

// InitializeBattleRequest is the POST /battles request body.
type InitializeBattleRequest struct {
	BattleID         string               `json:"battle_id"`
	Armies           map[string][]UnitSpec `json:"armies"`
	Doctrines        map[string]string    `json:"doctrines,omitempty"`
	DefenderFactions []string             `json:"defender_factions,omitempty"`
	Domain           string               `json:"domain,omitempty"`
	MapTemplateID    string               `json:"map_template_id,omitempty"`
	Seed             int64                `json:"seed"`
}

func doctrineFromString(s string) battle.Doctrine {
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

// CommandRequest is the POST /battles/{id}/command request body.
type CommandRequest struct {
	Type           string    `json:"type"`
	FactionID      string    `json:"faction_id"`
	Units          []UnitSpec `json:"units,omitempty"`
	Doctrine       string    `json:"doctrine,omitempty"`
	ResourceName   string    `json:"resource_name,omitempty"`
	ResourceAmount float64   `json:"resource_amount,omitempty"`
	PeaceFactionA  string    `json:"peace_faction_a,omitempty"`
	PeaceFactionB  string    `json:"peace_faction_b,omitempty"`
}

// ToCommand converts a wire CommandRequest into a battle.Command.
func (c CommandRequest) ToCommand() battle.Command {
	units := make([]*battle.Unit, 0, len(c.Units))
	for _, spec := range c.Units {
		units = append(units, spec.ToUnit())
	}
	return battle.Command{
		Type:           battle.CommandType(c.Type),
		FactionID:      c.FactionID,
		Units:          units,
		Doctrine:       doctrineFromString(c.Doctrine),
		ResourceName:   c.ResourceName,
		ResourceAmount: c.ResourceAmount,
		PeaceFactionA:  c.PeaceFactionA,
		PeaceFactionB:  c.PeaceFactionB,
	}
}

// TickRequest is the POST /battles/{id}/tick request body.
type TickRequest struct {
	DT float64 `json:"dt,omitempty"` // 0 = use the battle's configured dt
}
