package main

import "math"

const (
	ProjectileSpeed    = 800.0 // pixels/s, mob shots only (players use class ProjSpeed)
	ProjectileLifetime = 2.0   // seconds
	ProjectileRadius   = 4.0
	ProjectileOffset   = 30.0 // spawn distance from ship center
)

// Projectile represents a laser projectile
type Projectile struct {
	ID       string
	OwnerID  string
	X, Y     float64
	VX, VY   float64
	Rotation float64
	Life     float64
	Damage   int
	Alive    bool
	OwnerGov *Government
}

func (p *Projectile) Position() Vec2   { return Vec2{p.X, p.Y} }
func (p *Projectile) Velocity() Vec2   { return Vec2{p.VX, p.VY} }
func (p *Projectile) Gov() *Government { return p.OwnerGov }
func (p *Projectile) Target() Body     { return nil }
func (p *Projectile) Radius() float64  { return ProjectileRadius }
func (p *Projectile) Facing() float64  { return p.Rotation }
func (p *Projectile) Mask(step int) Mask {
	return CircleMask{Radius: ProjectileRadius, Frame: step}
}

// NewProjectile creates a single projectile from a player's position,
// fired at angleOffset radians from the ship's own facing, carrying the
// damage and speed of the ship's class.
func NewProjectile(owner *Player, angleOffset float64) *Projectile {
	id := GenerateID(3)
	def := GetClassDef(ShipClass(owner.ShipType))
	rot := owner.Rotation + angleOffset
	vx := math.Cos(rot) * def.ProjSpeed
	vy := math.Sin(rot) * def.ProjSpeed
	return &Projectile{
		ID:       id,
		OwnerID:  owner.ID,
		X:        owner.X + math.Cos(rot)*ProjectileOffset,
		Y:        owner.Y + math.Sin(rot)*ProjectileOffset,
		VX:       vx + owner.VX*0.3, // inherit some of ship velocity
		VY:       vy + owner.VY*0.3,
		Rotation: rot,
		Life:     ProjectileLifetime,
		Damage:   def.ProjDamage,
		Alive:    true,
		OwnerGov: GovernmentForTeam(owner.Team),
	}
}

// FireVolley builds every projectile a player's class fires in a single
// shot, spread across the class's SpreadAngles (the Tank's shotgun fires
// several at once, everything else fires one).
func FireVolley(owner *Player) []*Projectile {
	def := GetClassDef(ShipClass(owner.ShipType))
	angles := def.SpreadAngles()
	shots := make([]*Projectile, 0, len(angles))
	for _, a := range angles {
		shots = append(shots, NewProjectile(owner, a))
	}
	return shots
}

// NewMobProjectile creates a projectile from a mob's position and facing direction
func NewMobProjectile(mob *Mob) *Projectile {
	id := GenerateID(3)
	vx := math.Cos(mob.Rotation) * ProjectileSpeed
	vy := math.Sin(mob.Rotation) * ProjectileSpeed
	return &Projectile{
		ID:       id,
		OwnerID:  mob.ID,
		X:        mob.X + math.Cos(mob.Rotation)*ProjectileOffset,
		Y:        mob.Y + math.Sin(mob.Rotation)*ProjectileOffset,
		VX:       vx + mob.VX*0.3,
		VY:       vy + mob.VY*0.3,
		Rotation: mob.Rotation,
		Life:     ProjectileLifetime,
		Damage:   MobProjDamage,
		Alive:    true,
		OwnerGov: govRaider,
	}
}

// Update moves the projectile one tick
func (p *Projectile) Update(dt float64) {
	if !p.Alive {
		return
	}
	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.Life -= dt

	// Wrap around world
	if p.X < 0 {
		p.X += WorldWidth
	} else if p.X > WorldWidth {
		p.X -= WorldWidth
	}
	if p.Y < 0 {
		p.Y += WorldHeight
	} else if p.Y > WorldHeight {
		p.Y -= WorldHeight
	}

	if p.Life <= 0 {
		p.Alive = false
	}
}

// ToState converts to protocol state
func (p *Projectile) ToState() ProjectileState {
	return ProjectileState{
		ID:    p.ID,
		X:     round1(p.X),
		Y:     round1(p.Y),
		R:     round1(p.Rotation),
		Owner: p.OwnerID,
	}
}
