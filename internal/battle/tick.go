package battle

import (
	"math"
	"math/rand"

	"github.com/JaySpiffy/void-reckoning-engine-sub001/internal/battle/spatial"
)

// idsNear returns the unit ids within radius of (x,y) via the quadtree,
// reusing a scratch buffer to avoid per-call allocation.
func (b *BattleState) idsNear(x, y, radius float64, scratch []uint32) ([]string, []uint32) {
	scratch = b.Grid.QueryCircle(x, y, radius, scratch[:0])
	out := make([]string, 0, len(scratch))
	for _, idx := range scratch {
		if int(idx) < len(b.idxUnit) {
			out = append(out, b.idxUnit[idx])
		}
	}
	return out, scratch
}

func (b *BattleState) doctrineFor(factionID string) Doctrine {
	if d, ok := b.Doctrines[factionID]; ok {
		return d
	}
	return DoctrineStandard
}

func (b *BattleState) leadershipFor(factionID string) float64 {
	if meta, ok := b.FactionMetadata[factionID]; ok {
		if v, ok := meta["leadership"].(float64); ok {
			return v
		}
	}
	return 7
}

func (b *BattleState) formationDamageMult(u *Unit) float64 {
	if u.FormationID == "" {
		return 1
	}
	f, ok := b.Formations[u.FormationID]
	if !ok {
		return 1
	}
	return f.Mods().DamageMult
}

// Tick advances the battle by one fixed real-time step: refresh the
// spatial index and vectorized tracker, determine this tick's processing
// order, then run movement/targeting/shooting/morale for each living unit,
// apply terrain upkeep, and finalize bookkeeping.
func (b *BattleState) Tick(dt float64) Result {
	if b.Finished {
		return Result{Winner: b.Winner, Finished: true}
	}

	b.rebuildTracker()
	b.RoundNum++
	b.TotalSimTime += dt
	b.RoundsSinceLastDamage++
	b.RoundsSinceLastKill++

	order := b.RNG.ShuffleOrder(len(b.idxUnit))
	combatRNG := b.RNG.Stream(StreamCombat)

	// Flow field gives units with no in-range target a long-range bearing
	// toward the nearest living enemy, computed once for the whole roster
	// rather than per unit.
	flowByID := make(map[string]spatial.FlowEntry, len(b.idxUnit))
	for _, row := range b.Tracker.ComputeFlowField() {
		if int(row.ID) < len(b.idxUnit) {
			flowByID[b.idxUnit[row.ID]] = row
		}
	}

	neighborsByIdx := b.computeNeighborPairs()

	var queryScratch, candidateScratch []uint32
	occupants := make(map[string]map[string]struct{}, len(b.Terrain.Objectives))
	damagedThisTick := false
	killedThisTick := false
	selector := NewTargetSelector()

	for _, idx := range order {
		if idx >= len(b.idxUnit) {
			continue
		}
		id := b.idxUnit[idx]
		u, ok := b.Units[id]
		if !ok || !u.IsAlive() {
			continue
		}

		mods := b.Terrain.ModifiersAt(u.X, u.Y)
		_, inCover := b.Terrain.coverNear(u.X, u.Y, 3)
		DecaySuppression(u, dt, inCover)
		u.TimeSinceDamage += dt
		MaybeRally(u, 5, u.MaxMorale*0.5)

		doctrine := b.doctrineFor(u.FactionID)

		detectionIDs, scratch := b.idsNear(u.X, u.Y, u.DetectionRange(), queryScratch)
		queryScratch = scratch

		// The targeting candidate pool is pulled at CandidateRadius, a
		// doctrine-sized band tighter than the full detection range used
		// above for neighbor/interdictor awareness.
		candidateIDs, cscratch := b.idsNear(u.X, u.Y, CandidateRadius(doctrine), candidateScratch)
		candidateScratch = cscratch

		var formation *Formation
		if u.FormationID != "" {
			formation = b.Formations[u.FormationID]
			if formation != nil {
				formation.RecomputeCentroid(b.Units)
			}
		}

		neighbors := make([]*Unit, 0, 8)
		for _, nidx := range neighborsByIdx[uint32(idx)] {
			if int(nidx) >= len(b.idxUnit) {
				continue
			}
			if n, ok := b.Units[b.idxUnit[nidx]]; ok && n.IsAlive() {
				neighbors = append(neighbors, n)
			}
		}

		friendlyInterdictorNear, enemyInterdictorNear, trapped := false, false, false
		for _, nid := range detectionIDs {
			n, ok := b.Units[nid]
			if !ok || !n.IsAlive() || n.ID == u.ID {
				continue
			}
			if n.HasTag("Interdictor") {
				if n.FactionID == u.FactionID {
					friendlyInterdictorNear = true
				} else {
					enemyInterdictorNear = true
				}
			}
		}
		if u.IsRouting {
			trapped = enemyInterdictorNear
		}

		targetID, componentID := selector.Select(u, b.Units, candidateIDs, b.TotalSimTime, doctrine, trapped, friendlyInterdictorNear)

		var target *Unit
		if targetID != "" {
			target = b.Units[targetID]
		}

		var tx, ty float64 = u.X, u.Y
		if target != nil {
			tx, ty = target.X, target.Y
		} else if row, ok := flowByID[u.ID]; ok && row.Distance < spatial.SentinelDistance {
			tx, ty = u.X+row.SignDX*50, u.Y+row.SignDY*50
		} else if dx, dy, ok := b.nearestObjectiveFlow(u.X, u.Y); ok {
			tx, ty = u.X+dx*50, u.Y+dy*50
		}
		obstacles := b.Terrain.ObstaclesNear(u.X, u.Y, neighborRadius)
		fx, fy := Steer(SteeringInput{
			Unit: u, Neighbors: neighbors, TargetX: tx, TargetY: ty,
			Obstacles: obstacles, Doctrine: doctrine, Formation: formation,
		})

		formationSpeedMult := 1.0
		if formation != nil {
			formationSpeedMult = formation.Mods().SpeedMult
		}
		speedMult := speedMultiplier(u, mods["speed_mult"], formationSpeedMult)

		oldX, oldY := u.X, u.Y
		if u.Domain == DomainSpace {
			ApplySpaceKinematics(u, fx*speedMult, fy*speedMult, dt)
		} else {
			ApplyGroundStep(u, fx, fy, speedMult, dt)
		}
		if u.X != oldX || u.Y != oldY {
			if uidx, ok := b.unitIdx[u.ID]; ok {
				b.Grid.UpdatePosition(uidx, oldX, oldY, u.X, u.Y)
			}
		}

		for _, obj := range b.Terrain.Objectives {
			if obj.contains(u.X, u.Y) {
				set, ok := occupants[obj.ID]
				if !ok {
					set = make(map[string]struct{})
					occupants[obj.ID] = set
				}
				set[u.FactionID] = struct{}{}
			}
		}

		if target == nil || !target.IsAlive() {
			continue
		}

		if meleeEligible(u, target) {
			hit, kill := b.resolveMeleeHit(combatRNG, u, target, b.formationDamageMult(u))
			if hit {
				damagedThisTick = true
				leadership := b.leadershipFor(target.FactionID)
				routingNearby := 0
				for _, n := range neighbors {
					if n.FactionID == target.FactionID && n.IsRouting {
						routingNearby++
					}
				}
				check := MoraleCheck(combatRNG, target, leadership, routingNearby, enemyInterdictorNear)
				if check.Failed {
					if check.Trapped {
						b.emit(EventInterdictionTrap, target.FactionID, InterdictionTrapPayload{UnitID: target.ID})
					} else {
						b.emit(EventMoraleFailure, target.FactionID, MoraleFailurePayload{UnitID: target.ID, Roll: check.Roll, Threshold: check.Threshold})
						if routingNearby > 0 {
							b.emit(EventChainRouting, target.FactionID, ChainRoutingPayload{UnitID: target.ID})
						}
					}
				}
			}
			if kill {
				killedThisTick = true
			}
			continue
		}

		targetMods := b.Terrain.ModifiersAt(target.X, target.Y)
		dmgMult := b.formationDamageMult(u) / targetMods["defense_mult"]

		for _, weapon := range u.Weapons() {
			shot, ok := ResolveShot(combatRNG, u, weapon, target, 1.0, dt)
			if !ok {
				continue
			}
			b.emit(EventShootingFire, u.FactionID, ShootingFirePayload{
				AttackerID: u.ID, TargetID: target.ID, Weapon: weapon.ID, Range: weapon.Range,
			})

			if !shot.Hit {
				b.Projectiles.Spawn(weapon.ID+"-miss", u.ID, target.ID, componentID, u.X, u.Y, target.X+shot.Deviation, target.Y+shot.Deviation, weapon.Strength*10, weapon.AP, shot.ShieldMult, shot.HullMult, shot.Speed, shot.Lifetime, shot.Deviation, weapon.Category, weapon.Tags)
				b.emit(EventWeaponFireDetailed, u.FactionID, WeaponFireDetailedPayload{
					AttackerID: u.ID, TargetID: target.ID, Weapon: weapon.ID, Kill: false,
				})
				continue
			}

			bearingOnDefender := relativeBearing(target.X, target.Y, u.X, u.Y, target.Facing)
			facet := armorFacet(target.Armor, bearingOnDefender)
			frontal := math.Abs(normalizeAngle(bearingOnDefender)) < 45
			density, hasCover := b.Terrain.coverNear(target.X, target.Y, 3)
			cov := 0.0
			if hasCover {
				cov = coverMod(density, frontal)
			}

			final := Mitigate(MitigationInput{
				ArmorFacet: facet,
				AP:         weapon.AP,
				CoverMod:   cov,
				Invuln:     target.Invuln,
				DefenseMod: 0,
				Strength:   weapon.Strength,
				DamageMult: dmgMult,
				IsFortress: target.HasTag("Fortress"),
			})

			hullPortion := target.ApplyDamage(final, shot.ShieldMult, shot.HullMult)
			target.HP -= hullPortion
			target.TimeSinceDamage = 0
			AddSuppression(target, final*0.5)
			b.Standings.RecordDamage(u.FactionID, final)
			damagedThisTick = true

			if componentID != "" {
				for _, c := range target.Components {
					if c.ID == componentID && c.Alive() {
						if c.TakeDamage(final * 0.3) {
							b.emit(EventHardpointDestroyed, target.FactionID, HardpointDestroyedPayload{UnitID: target.ID, ComponentID: c.ID})
						}
						break
					}
				}
			}

			target.ClampVitals()
			kill := target.HP <= 0
			b.emit(EventWeaponFireDetailed, u.FactionID, WeaponFireDetailedPayload{
				AttackerID: u.ID, TargetID: target.ID, Weapon: weapon.ID,
				DamageBreakdown: final, Kill: kill,
			})

			if kill {
				b.Standings.RecordKill(u.FactionID, target.FactionID)
				b.emit(EventUnitDeath, target.FactionID, UnitDeathPayload{UnitID: target.ID, KillerFaction: u.FactionID})
				killedThisTick = true
				if uidx, ok := b.unitIdx[target.ID]; ok {
					b.Grid.Remove(uidx, target.X, target.Y)
				}
			}

			leadership := b.leadershipFor(target.FactionID)
			routingNearby := 0
			for _, n := range neighbors {
				if n.FactionID == target.FactionID && n.IsRouting {
					routingNearby++
				}
			}
			check := MoraleCheck(combatRNG, target, leadership, routingNearby, enemyInterdictorNear)
			if check.Failed {
				if check.Trapped {
					b.emit(EventInterdictionTrap, target.FactionID, InterdictionTrapPayload{UnitID: target.ID})
				} else {
					b.emit(EventMoraleFailure, target.FactionID, MoraleFailurePayload{UnitID: target.ID, Roll: check.Roll, Threshold: check.Threshold})
					if routingNearby > 0 {
						b.emit(EventChainRouting, target.FactionID, ChainRoutingPayload{UnitID: target.ID})
					}
				}
			}
		}
	}

	vp := make(map[string]float64)
	for factionID := range b.livingFactions() {
		vp[factionID] = 0
	}
	captures := b.Terrain.UpdateObjectives(occupants, dt, vp)
	for factionID, delta := range vp {
		if delta > 0 {
			b.Standings.AddVP(factionID, delta)
		}
	}
	for _, c := range captures {
		b.objectiveTimeline = append(b.objectiveTimeline, ObjectiveCaptureEntry{Time: b.TotalSimTime, ObjectiveID: c.ObjectiveID, NewOwner: c.Faction})
		b.emit(EventCapture, c.Faction, CapturePayload{Faction: c.Faction, ObjectiveID: c.ObjectiveID})
	}

	b.stepProjectiles(dt)
	b.Abilities.TickCooldowns(dt)

	if damagedThisTick {
		b.RoundsSinceLastDamage = 0
	}
	if killedThisTick {
		b.RoundsSinceLastKill = 0
	}

	if b.TotalSimTime-b.lastSnapshotTime >= b.Config.Tick.SnapInterval {
		b.Snapshots.Produce(BuildSnapshot(b.TotalSimTime, b.Units))
		b.lastSnapshotTime = b.TotalSimTime
	}

	return b.CheckVictory(false)
}

// ExecuteRound runs the legacy named-phase pipeline once, advancing
// total_sim_time by the configured fixed-round duration rather than the
// real-time tick's dt.
func (b *BattleState) ExecuteRound(phases *PhaseExecutor) Result {
	if b.Finished {
		return Result{Winner: b.Winner, Finished: true}
	}
	b.rebuildTracker()
	b.RoundNum++

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
	phases.ExecuteRound(ctx)

	b.TotalSimTime += b.Config.Tick.FixedRoundSecs
	b.RoundsSinceLastDamage++
	b.RoundsSinceLastKill++

	return b.CheckVictory(false)
}

// collateralRadius is how close a stray (missed) shot must pass to an
// uninvolved unit to risk hitting it instead.
const collateralRadius = 4.0

// stepProjectiles advances every in-flight (visual/missed) projectile and
// resolves collateral contact against bystanders using the fixed-cell
// broad-phase grid: a separate structure from the quadtree because
// projectile density and query radius (a handful of pixels) differ sharply
// from the unit-targeting radius the quadtree is tuned for.
func (b *BattleState) stepProjectiles(dt float64) {
	b.ProjectileGrid.Clear()
	for idx, id := range b.idxUnit {
		if u, ok := b.Units[id]; ok && u.IsAlive() {
			b.ProjectileGrid.Insert(uint32(idx), u.X, u.Y)
		}
	}

	for _, proj := range b.Projectiles.ActiveSlots() {
		source := b.Units[proj.SourceUnitID]
		tx, ty := proj.X, proj.Y
		if target, ok := b.Units[proj.TargetUnitID]; ok {
			tx, ty = target.X+proj.Deviation, target.Y+proj.Deviation
		}

		stillFlying := proj.Step(tx, ty, dt)
		if !stillFlying || proj.Contact(tx, ty) {
			proj.Retire()
			continue
		}
		if source == nil {
			continue
		}

		for _, nidx := range b.ProjectileGrid.QueryRadius(proj.X, proj.Y, collateralRadius) {
			if int(nidx) >= len(b.idxUnit) {
				continue
			}
			bystander := b.Units[b.idxUnit[nidx]]
			if bystander == nil || !bystander.IsAlive() || bystander.ID == proj.TargetUnitID || bystander.FactionID == source.FactionID {
				continue
			}
			dx, dy := bystander.X-proj.X, bystander.Y-proj.Y
			if dx*dx+dy*dy > collateralRadius*collateralRadius {
				continue
			}
			hullPortion := bystander.ApplyDamage(proj.Damage*0.5, proj.ShieldMult, proj.HullMult)
			bystander.HP -= hullPortion
			bystander.ClampVitals()
			b.Standings.RecordDamage(source.FactionID, proj.Damage*0.5)
			proj.Retire()
			break
		}
	}
}

// runMovementPhase is the round-pipeline's movement step: steer every
// living unit toward its nearest living enemy (no cached target_selector,
// no spatial-index query) and apply domain kinematics.
func (b *BattleState) runMovementPhase(ctx *TickCtx) {
	dt := b.Config.Tick.FixedRoundSecs
	for _, u := range ctx.Units {
		if !u.IsAlive() {
			continue
		}
		doctrine := b.doctrineFor(u.FactionID)
		target := nearestEnemy(u, ctx.Units)
		tx, ty := u.X, u.Y
		if target != nil {
			tx, ty = target.X, target.Y
		}

		var formation *Formation
		if u.FormationID != "" {
			formation = b.Formations[u.FormationID]
			if formation != nil {
				formation.RecomputeCentroid(b.Units)
			}
		}
		neighbors := neighborsWithin(u, ctx.Units, neighborRadius)
		obstacles := b.Terrain.ObstaclesNear(u.X, u.Y, neighborRadius)

		fx, fy := Steer(SteeringInput{
			Unit: u, Neighbors: neighbors, TargetX: tx, TargetY: ty,
			Obstacles: obstacles, Doctrine: doctrine, Formation: formation,
		})

		mods := b.Terrain.ModifiersAt(u.X, u.Y)
		formationSpeedMult := 1.0
		if formation != nil {
			formationSpeedMult = formation.Mods().SpeedMult
		}
		speedMult := speedMultiplier(u, mods["speed_mult"], formationSpeedMult)

		oldX, oldY := u.X, u.Y
		if u.Domain == DomainSpace {
			ApplySpaceKinematics(u, fx*speedMult, fy*speedMult, dt)
		} else {
			ApplyGroundStep(u, fx, fy, speedMult, dt)
		}
		if u.X != oldX || u.Y != oldY {
			if uidx, ok := b.unitIdx[u.ID]; ok {
				b.Grid.UpdatePosition(uidx, oldX, oldY, u.X, u.Y)
			}
		}
	}
}

// runShootingPhase resolves one shot per living weapon against the
// nearest enemy, sharing the scalar engagement path with Tick.
func (b *BattleState) runShootingPhase(ctx *TickCtx) {
	rng := b.RNG.Stream(StreamCombat)
	dt := b.Config.Tick.FixedRoundSecs
	for _, u := range ctx.Units {
		if !u.IsAlive() || len(u.Weapons()) == 0 {
			continue
		}
		target := nearestEnemy(u, ctx.Units)
		if target == nil {
			continue
		}
		targetMods := b.Terrain.ModifiersAt(target.X, target.Y)
		dmgMult := b.formationDamageMult(u) / targetMods["defense_mult"]
		componentID := selectHardpoint(target)
		for _, weapon := range u.Weapons() {
			b.resolveAndApplyShot(rng, u, weapon, target, componentID, dmgMult, dt)
		}
	}
}

// meleeRange is the distance at or under which two living ground units
// route to the melee resolver instead of shooting.
const meleeRange = 5.0

// meleeEligible reports whether attacker and target should route to the
// melee resolver this tick instead of exchanging ranged fire: both must be
// ground-domain, alive, and within meleeRange of each other.
func meleeEligible(attacker, target *Unit) bool {
	if attacker.Domain != DomainGround || target.Domain != DomainGround {
		return false
	}
	if !attacker.IsAlive() || !target.IsAlive() {
		return false
	}
	return math.Hypot(target.X-attacker.X, target.Y-attacker.Y) <= meleeRange
}

// resolveMeleeHit rolls one close-combat exchange and applies damage, death,
// and suppression — the melee counterpart to ResolveShot/Mitigate used by
// the ranged path. Reports whether the attack landed and whether it killed
// the target.
func (b *BattleState) resolveMeleeHit(rng *rand.Rand, attacker, target *Unit, dmgMult float64) (hit, kill bool) {
	if attacker.MeleeAttack <= 0 {
		return false, false
	}
	hitChance := clampF(0.5+(attacker.MeleeAttack-target.MeleeDefense)/100, 0.05, 0.95)
	if rng.Float64() >= hitChance {
		return false, false
	}
	facet := armorFacet(target.Armor, 0)
	final := Mitigate(MitigationInput{
		ArmorFacet: facet,
		Invuln:     target.Invuln,
		Strength:   attacker.MeleeAttack / 10,
		DamageMult: dmgMult,
	})
	hullPortion := target.ApplyDamage(final, 1, 1)
	target.HP -= hullPortion
	target.TimeSinceDamage = 0
	AddSuppression(target, final*0.25)
	b.Standings.RecordDamage(attacker.FactionID, final)
	target.ClampVitals()

	if target.HP <= 0 {
		b.Standings.RecordKill(attacker.FactionID, target.FactionID)
		b.emit(EventUnitDeath, target.FactionID, UnitDeathPayload{UnitID: target.ID, KillerFaction: attacker.FactionID})
		if uidx, ok := b.unitIdx[target.ID]; ok {
			b.Grid.Remove(uidx, target.X, target.Y)
		}
		return true, true
	}
	return true, false
}

// runMeleePhase resolves unarmed/close-combat engagements the shooting
// phase's ranged weapons don't cover, for units with a nonzero melee_attack
// standing within meleeRange of a living enemy.
func (b *BattleState) runMeleePhase(ctx *TickCtx) {
	rng := b.RNG.Stream(StreamCombat)
	for _, u := range ctx.Units {
		if !u.IsAlive() || u.MeleeAttack <= 0 {
			continue
		}
		target := nearestEnemy(u, ctx.Units)
		if target == nil || !meleeEligible(u, target) {
			continue
		}
		hit, kill := b.resolveMeleeHit(rng, u, target, b.formationDamageMult(u))
		if hit {
			b.RoundsSinceLastDamage = 0
		}
		if kill {
			b.RoundsSinceLastKill = 0
		}
	}
}

// runMoralePhase applies suppression decay, rally checks, and an upkeep
// morale check for any unit still carrying suppression from prior rounds.
func (b *BattleState) runMoralePhase(ctx *TickCtx) {
	rng := b.RNG.Stream(StreamPhases)
	dt := b.Config.Tick.FixedRoundSecs
	for _, u := range ctx.Units {
		if !u.IsAlive() {
			continue
		}
		_, inCover := b.Terrain.coverNear(u.X, u.Y, 3)
		DecaySuppression(u, dt, inCover)
		u.TimeSinceDamage += dt
		if MaybeRally(u, 5, u.MaxMorale*0.5) {
			continue
		}
		if u.Suppression <= 0 {
			continue
		}
		leadership := b.leadershipFor(u.FactionID)
		check := MoraleCheck(rng, u, leadership, 0, false)
		if check.Failed {
			b.emit(EventMoraleFailure, u.FactionID, MoraleFailurePayload{UnitID: u.ID, Roll: check.Roll, Threshold: check.Threshold})
		}
	}
}

// resolveAndApplyShot runs ResolveShot and, on a hit, applies mitigation,
// component damage, death, and the post-damage morale check — the engagement
// tail both Tick and the legacy shooting phase share.
func (b *BattleState) resolveAndApplyShot(rng *rand.Rand, attacker *Unit, weapon *Component, target *Unit, componentID string, dmgMult, dt float64) {
	shot, ok := ResolveShot(rng, attacker, weapon, target, 1.0, dt)
	if !ok {
		return
	}
	b.emit(EventShootingFire, attacker.FactionID, ShootingFirePayload{
		AttackerID: attacker.ID, TargetID: target.ID, Weapon: weapon.ID, Range: weapon.Range,
	})

	if !shot.Hit {
		b.Projectiles.Spawn(weapon.ID+"-miss", attacker.ID, target.ID, componentID, attacker.X, attacker.Y, target.X+shot.Deviation, target.Y+shot.Deviation, weapon.Strength*10, weapon.AP, shot.ShieldMult, shot.HullMult, shot.Speed, shot.Lifetime, shot.Deviation, weapon.Category, weapon.Tags)
		b.emit(EventWeaponFireDetailed, attacker.FactionID, WeaponFireDetailedPayload{
			AttackerID: attacker.ID, TargetID: target.ID, Weapon: weapon.ID, Kill: false,
		})
		return
	}

	bearingOnDefender := relativeBearing(target.X, target.Y, attacker.X, attacker.Y, target.Facing)
	facet := armorFacet(target.Armor, bearingOnDefender)
	frontal := math.Abs(normalizeAngle(bearingOnDefender)) < 45
	density, hasCover := b.Terrain.coverNear(target.X, target.Y, 3)
	cov := 0.0
	if hasCover {
		cov = coverMod(density, frontal)
	}

	final := Mitigate(MitigationInput{
		ArmorFacet: facet,
		AP:         weapon.AP,
		CoverMod:   cov,
		Invuln:     target.Invuln,
		Strength:   weapon.Strength,
		DamageMult: dmgMult,
		IsFortress: target.HasTag("Fortress"),
	})

	hullPortion := target.ApplyDamage(final, shot.ShieldMult, shot.HullMult)
	target.HP -= hullPortion
	target.TimeSinceDamage = 0
	AddSuppression(target, final*0.5)
	b.Standings.RecordDamage(attacker.FactionID, final)
	b.RoundsSinceLastDamage = 0

	if componentID != "" {
		for _, c := range target.Components {
			if c.ID == componentID && c.Alive() {
				if c.TakeDamage(final * 0.3) {
					b.emit(EventHardpointDestroyed, target.FactionID, HardpointDestroyedPayload{UnitID: target.ID, ComponentID: c.ID})
				}
				break
			}
		}
	}

	target.ClampVitals()
	kill := target.HP <= 0
	b.emit(EventWeaponFireDetailed, attacker.FactionID, WeaponFireDetailedPayload{
		AttackerID: attacker.ID, TargetID: target.ID, Weapon: weapon.ID,
		DamageBreakdown: final, Kill: kill,
	})

	if kill {
		b.Standings.RecordKill(attacker.FactionID, target.FactionID)
		b.emit(EventUnitDeath, target.FactionID, UnitDeathPayload{UnitID: target.ID, KillerFaction: attacker.FactionID})
		b.RoundsSinceLastKill = 0
		if uidx, ok := b.unitIdx[target.ID]; ok {
			b.Grid.Remove(uidx, target.X, target.Y)
		}
	}

	leadership := b.leadershipFor(target.FactionID)
	check := MoraleCheck(rng, target, leadership, 0, false)
	if check.Failed {
		if check.Trapped {
			b.emit(EventInterdictionTrap, target.FactionID, InterdictionTrapPayload{UnitID: target.ID})
		} else {
			b.emit(EventMoraleFailure, target.FactionID, MoraleFailurePayload{UnitID: target.ID, Roll: check.Roll, Threshold: check.Threshold})
		}
	}
}

// nearestEnemy scans the full roster for the closest living unit of a
// different faction, the legacy pipeline's brute-force stand-in for
// target_selector's spatial-index candidate pool.
func nearestEnemy(u *Unit, units map[string]*Unit) *Unit {
	var best *Unit
	bestDist := math.MaxFloat64
	for _, o := range units {
		if !o.IsAlive() || o.FactionID == u.FactionID || o.ID == u.ID {
			continue
		}
		d := math.Hypot(o.X-u.X, o.Y-u.Y)
		if d < bestDist {
			bestDist = d
			best = o
		}
	}
	return best
}

func neighborsWithin(u *Unit, units map[string]*Unit, radius float64) []*Unit {
	out := make([]*Unit, 0, 8)
	for _, o := range units {
		if !o.IsAlive() || o.ID == u.ID {
			continue
		}
		if math.Hypot(o.X-u.X, o.Y-u.Y) <= radius {
			out = append(out, o)
		}
	}
	return out
}

func (b *BattleState) enemiesByFaction() map[string][]*Unit {
	out := make(map[string][]*Unit)
	for _, u := range b.Units {
		if !u.IsAlive() {
			continue
		}
		out[u.FactionID] = append(out[u.FactionID], u)
	}
	return out
}
