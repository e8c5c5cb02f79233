package battle

import "math"

// AbilityOutcome is the result of invoking a handler.
type AbilityOutcome struct {
	Success     bool
	Description string
	Effect      map[string]interface{}
}

// AbilityHandler is the single trait external collaborators implement to
// register a payload type (damage, heal, buff, stun, teleport, aoe_damage,
// capture, ion_pulse, ...). The dispatcher never does string-dispatch in
// the hot path beyond this one registry lookup.
type AbilityHandler interface {
	Execute(sourceID, targetID string, ctx *TickCtx) AbilityOutcome
}

// AbilityDef is the static definition of a registered ability.
type AbilityDef struct {
	ID          string
	PayloadType string
	Range       float64
	Cost        map[string]float64 // resource name -> amount
	Cooldown    float64
}

// AbilityDispatcher validates range/cost/cooldown and invokes the
// registered handler by payload_type.
type AbilityDispatcher struct {
	defs     map[string]AbilityDef
	handlers map[string]AbilityHandler
	cooldowns map[string]float64 // "sourceID:abilityID" -> remaining
}

// NewAbilityDispatcher returns an empty dispatcher ready for registration.
func NewAbilityDispatcher() *AbilityDispatcher {
	return &AbilityDispatcher{
		defs:      make(map[string]AbilityDef),
		handlers:  make(map[string]AbilityHandler),
		cooldowns: make(map[string]float64),
	}
}

// Register adds an ability definition and its handler.
func (d *AbilityDispatcher) Register(def AbilityDef, handler AbilityHandler) {
	d.defs[def.ID] = def
	d.handlers[def.PayloadType] = handler
}

// Execute validates and invokes ability_id against target from source,
// consuming faction resources only on success. Failures are non-fatal.
func (d *AbilityDispatcher) Execute(source, target *Unit, abilityID string, ctx *TickCtx, resources map[string]float64) AbilityOutcome {
	def, ok := d.defs[abilityID]
	if !ok {
		return AbilityOutcome{Success: false, Description: "unknown ability"}
	}

	key := source.ID + ":" + abilityID
	if remaining, ok := d.cooldowns[key]; ok && remaining > 0 {
		return AbilityOutcome{Success: false, Description: "on cooldown"}
	}

	if target != nil {
		dist := math.Hypot(target.X-source.X, target.Y-source.Y)
		if dist > def.Range {
			return AbilityOutcome{Success: false, Description: "out of range"}
		}
	}

	for resName, amount := range def.Cost {
		if resources[resName] < amount {
			return AbilityOutcome{Success: false, Description: "insufficient " + resName}
		}
	}

	handler, ok := d.handlers[def.PayloadType]
	if !ok {
		return AbilityOutcome{Success: false, Description: "missing handler for payload type " + def.PayloadType}
	}

	targetID := ""
	if target != nil {
		targetID = target.ID
	}
	outcome := handler.Execute(source.ID, targetID, ctx)

	if outcome.Success {
		for resName, amount := range def.Cost {
			resources[resName] -= amount
		}
		d.cooldowns[key] = def.Cooldown
	}
	return outcome
}

// TickCooldowns decrements every tracked ability cooldown by dt.
func (d *AbilityDispatcher) TickCooldowns(dt float64) {
	for k, v := range d.cooldowns {
		v -= dt
		if v <= 0 {
			delete(d.cooldowns, k)
		} else {
			d.cooldowns[k] = v
		}
	}
}

// Helper primitives exposed to handlers.

// ApplyDamage is the raw helper handlers use to hurt a unit; it does not
// run mitigation (that is the engagement resolver's job) — abilities that
// want mitigated damage should route through Mitigate themselves.
func ApplyDamage(u *Unit, amount float64) {
	u.HP -= amount
	u.TimeSinceDamage = 0
}

// ApplyHeal restores hp up to max_hp.
func ApplyHeal(u *Unit, amount float64) {
	u.HP = math.Min(u.MaxHP, u.HP+amount)
}

// ModifierDuration is an active timed stat modifier on a unit.
type ModifierDuration struct {
	Stat     string
	Delta    float64
	Remaining float64
}

// ApplyModifierWithDuration is a helper stub; actual storage of active
// modifiers is left to the handler's own ctx-scoped state since the core
// does not prescribe a modifier stack shape (ability registry contents are
// an external collaborator's concern).
func ApplyModifierWithDuration(existing []ModifierDuration, stat string, delta, duration float64) []ModifierDuration {
	return append(existing, ModifierDuration{Stat: stat, Delta: delta, Remaining: duration})
}

// Teleport repositions a unit directly, bypassing steering for this tick.
func Teleport(u *Unit, x, y float64) {
	u.X, u.Y = x, y
}
