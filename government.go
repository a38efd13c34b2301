package main

// Government identifies the faction a body belongs to for the broad-phase
// friend/foe predicate. Players are assigned one government per team;
// raiders and asteroids share fixed governments; a nil government (no
// pointer at all, not the zero value) matches everything.
type Government struct {
	id      int
	enemies map[int]bool
}

var (
	govRaider = &Government{id: -1}
	govDebris = &Government{id: -2}
	govTeam   = map[int]*Government{}
)

func init() {
	red := &Government{id: TeamRed}
	blue := &Government{id: TeamBlue}
	neutral := &Government{id: TeamNone}

	red.enemies = map[int]bool{blue.id: true, govRaider.id: true}
	blue.enemies = map[int]bool{red.id: true, govRaider.id: true}
	neutral.enemies = map[int]bool{govRaider.id: true}
	govRaider.enemies = map[int]bool{red.id: true, blue.id: true, neutral.id: true}

	govTeam[TeamRed] = red
	govTeam[TeamBlue] = blue
	govTeam[TeamNone] = neutral
}

// GovernmentForTeam returns the shared Government for a team ID.
func GovernmentForTeam(team int) *Government {
	if g, ok := govTeam[team]; ok {
		return g
	}
	return govTeam[TeamNone]
}

// IsEnemy reports whether other is hostile to g. A nil receiver or nil
// argument is handled by the caller (CollisionIndex treats either-nil as
// always-eligible, matching the friend/foe predicate in CollisionSet.cpp).
func (g *Government) IsEnemy(other *Government) bool {
	if g == nil || other == nil {
		return false
	}
	return g.enemies[other.id]
}
