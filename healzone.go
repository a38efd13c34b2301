package main

// HealZone is an area-of-effect heal placed by the Support class ability
type HealZone struct {
	ID      string
	X, Y    float64
	Radius  float64
	OwnerID string
	TeamID  int
	Life    float64
	Rate    float64 // HP/s healed to allies in range
}

// NewHealZone creates a heal zone at the given position
func NewHealZone(x, y float64, ownerID string, team int) *HealZone {
	return &HealZone{
		ID:      GenerateID(4),
		X:       x,
		Y:       y,
		Radius:  HealAuraRadius,
		OwnerID: ownerID,
		TeamID:  team,
		Life:    HealAuraDuration,
		Rate:    HealAuraRate,
	}
}

// Update ticks the heal zone lifetime, returns false when expired
func (hz *HealZone) Update(dt float64) bool {
	hz.Life -= dt
	return hz.Life > 0
}

// healZonePulseCycle is the tick period of the ring's pulse animation,
// cosmetic only — it never affects the heal radius or tick logic.
const healZonePulseCycle = 20

// ToState converts to protocol state. Frame drives the client's pulsing
// ring render and has no bearing on who actually gets healed.
func (hz *HealZone) ToState(step int) HealZoneState {
	return HealZoneState{
		ID:     hz.ID,
		X:      round1(hz.X),
		Y:      round1(hz.Y),
		Radius: round1(hz.Radius),
		TeamID: hz.TeamID,
		Frame:  step % healZonePulseCycle,
	}
}
