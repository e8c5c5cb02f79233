package battle

import "math"

// SteeringInput bundles what the resolver needs for one unit's force
// synthesis this tick: one explicit struct with only the fields steering
// actually consumes, instead of a broad untyped options bag.
type SteeringInput struct {
	Unit       *Unit
	Neighbors  []*Unit // within radius ~10
	TargetX, TargetY float64
	Obstacles  []*StaticObstacle
	Doctrine   Doctrine
	Formation  *Formation
}

const neighborRadius = 10.0

// Steer computes the weighted 2D force synthesis, returning an
// unnormalized vector; the caller normalizes and scales by max speed,
// terrain, formation, and suppression/routing multipliers.
func Steer(in SteeringInput) (fx, fy float64) {
	u := in.Unit

	// Obstacle avoidance (x3).
	for _, o := range in.Obstacles {
		dx, dy := u.X-o.CenterX, u.Y-o.CenterY
		d := math.Hypot(dx, dy) - o.Radius
		if d < neighborRadius+1 && d >= 0 {
			mag := 5 * (neighborRadius + 1 - d) / (neighborRadius + 1)
			nx, ny := normalize(dx, dy)
			fx += nx * mag * 3
			fy += ny * mag * 3
		}
	}

	// Seek or flee.
	sx, sy := seekOrFlee(in)
	fx += sx
	fy += sy

	// Separation (x1.5).
	band := 2.0
	if in.Doctrine == DoctrineKite {
		band = 4.0
	}
	for _, n := range in.Neighbors {
		dx, dy := u.X-n.X, u.Y-n.Y
		d := math.Hypot(dx, dy)
		if d > 0 && d < band {
			nx, ny := normalize(dx, dy)
			fx += nx * (1 / d) * 1.5
			fy += ny * (1 / d) * 1.5
		}
	}

	// Alignment (x0.3).
	if len(in.Neighbors) > 0 {
		var acx, acy float64
		for _, n := range in.Neighbors {
			rad := n.Facing * math.Pi / 180
			acx += math.Cos(rad)
			acy += math.Sin(rad)
		}
		acx /= float64(len(in.Neighbors))
		acy /= float64(len(in.Neighbors))
		fx += acx * 0.3
		fy += acy * 0.3
	}

	// Cohesion (x0.2 CHARGE / x0.1 others, skipped in KITE).
	if in.Doctrine != DoctrineKite && len(in.Neighbors) > 0 {
		var ccx, ccy float64
		for _, n := range in.Neighbors {
			ccx += n.X
			ccy += n.Y
		}
		ccx /= float64(len(in.Neighbors))
		ccy /= float64(len(in.Neighbors))
		dx, dy := ccx-u.X, ccy-u.Y
		w := 0.1
		if in.Doctrine == DoctrineCharge {
			w = 0.2
		}
		fx += dx * w
		fy += dy * w
	}

	// Formation slotting (x2), strong enough to dominate when present.
	if in.Formation != nil {
		idx := in.Formation.SlotFor(u.ID)
		if idx >= 0 {
			ox, oy := in.Formation.SlotOffset(idx)
			slotX := in.Formation.CentroidX + ox
			slotY := in.Formation.CentroidY + oy
			dx, dy := slotX-u.X, slotY-u.Y
			fx += dx * 2
			fy += dy * 2
		}
	}

	return fx, fy
}

func seekOrFlee(in SteeringInput) (fx, fy float64) {
	u := in.Unit
	dx, dy := in.TargetX-u.X, in.TargetY-u.Y
	dist := math.Hypot(dx, dy)
	nx, ny := normalize(dx, dy)

	if u.IsRouting {
		return -nx * 1.5, -ny * 1.5
	}

	switch in.Doctrine {
	case DoctrineCharge:
		return nx * 0.8, ny * 0.8
	case DoctrineKite:
		wr := u.MaxWeaponRange()
		lo, hi := 0.5*wr, 0.9*wr
		switch {
		case dist < lo:
			return -nx, -ny
		case dist <= hi:
			return 0, 0
		case dist > 35:
			return nx * 0.2, ny * 0.2 // gentle seek
		default:
			return 0, 0
		}
	case DoctrineDefend:
		if dist < 15 {
			return nx * 0.5, ny * 0.5
		}
		return 0, 0
	default:
		return nx * 1.0, ny * 1.0
	}
}

func normalize(dx, dy float64) (float64, float64) {
	d := math.Hypot(dx, dy)
	if d == 0 {
		return 0, 0
	}
	return dx / d, dy / d
}

// speedMultiplier folds terrain, formation, suppression, and routing
// penalties into one scalar applied to the normalized steering vector.
func speedMultiplier(u *Unit, terrainSpeedMult float64, formationSpeedMult float64) float64 {
	mult := terrainSpeedMult * formationSpeedMult
	switch {
	case u.IsPinned:
		mult *= 0.10
	case u.IsSuppressed:
		mult *= 0.75
	}
	if u.IsRouting {
		mult *= 1.2
	}
	return mult
}

// ApplySpaceKinematics implements the inertial space-domain movement
// model: facing slews toward the desired heading at turn_rate*dt; throttle
// is reduced when the heading error is large; current_speed eases toward
// max_speed*throttle at acceleration*dt.
func ApplySpaceKinematics(u *Unit, desiredX, desiredY, dt float64) {
	desiredHeading := math.Atan2(desiredY, desiredX) * 180 / math.Pi
	diff := normalizeAngle(desiredHeading - u.Facing)

	maxTurn := u.TurnRate * dt
	if math.Abs(diff) <= maxTurn {
		u.Facing = normalizeAngle(u.Facing + diff)
	} else if diff > 0 {
		u.Facing = normalizeAngle(u.Facing + maxTurn)
	} else {
		u.Facing = normalizeAngle(u.Facing - maxTurn)
	}

	throttle := 1.0
	switch {
	case math.Abs(diff) > 90:
		throttle = 0.1
	case math.Abs(diff) > 45:
		throttle = 0.5
	}

	targetSpeed := u.MaxSpeed * throttle
	maxDelta := u.Acceleration * dt
	if u.CurrentSpeed < targetSpeed {
		u.CurrentSpeed = math.Min(targetSpeed, u.CurrentSpeed+maxDelta)
	} else if u.CurrentSpeed > targetSpeed {
		u.CurrentSpeed = math.Max(targetSpeed, u.CurrentSpeed-maxDelta)
	}

	rad := u.Facing * math.Pi / 180
	ratio := 0.0
	if u.MaxSpeed > 0 {
		ratio = u.CurrentSpeed / u.MaxSpeed
	}
	u.X += math.Cos(rad) * ratio * u.CurrentSpeed * dt
	u.Y += math.Sin(rad) * ratio * u.CurrentSpeed * dt
}

// ApplyGroundStep implements the stepwise grid kernel: move by
// (sgn(dx), sgn(dy)) scaled by speed, gated by the same band logic that
// produced the steering force's magnitude.
func ApplyGroundStep(u *Unit, fx, fy, speedMult, dt float64) {
	nx, ny := normalize(fx, fy)
	if nx == 0 && ny == 0 {
		return
	}
	step := u.MaxSpeed * speedMult * dt
	u.X += nx * step
	u.Y += ny * step
	if nx != 0 || ny != 0 {
		u.Facing = math.Atan2(ny, nx) * 180 / math.Pi
	}
}
