package main

import (
	"math"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate       = 60 // physics ticks per second
	BroadcastRate  = 30 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

const (
	maxProjectilesPerSession = 500
	maxPlayersPerSession     = 20
	maxMobsPerSession        = 12
	mobSpawnInterval         = 8.0 // seconds
	asteroidSpawnInterval    = 5.0
	maxAsteroidsPerSession   = 30
	pickupSpawnInterval      = 10.0
	maxPickupsPerSession     = 8

	indexCellSize  = 256 // rounded down to a power of two by NewCollisionIndex
	indexCellCount = 32
)

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
}

// Game holds the state for one game session: the body population plus the
// CollisionIndex that is rebuilt from it every tick.
type Game struct {
	mu          sync.RWMutex
	players     map[string]*Player
	projectiles map[string]*Projectile
	mobs        map[string]*Mob
	asteroids   map[string]*Asteroid
	pickups     map[string]*Pickup
	healZones   map[string]*HealZone
	missiles    map[string]*HomingProjectile
	clients     map[string]Broadcaster // playerID -> client
	controllers map[string]Broadcaster // playerID -> phone controller client
	tick        uint64
	running     bool
	stop        chan struct{}
	nextShip    int

	db    *DB
	match MatchState

	index *CollisionIndex

	mobSpawnT      float64
	asteroidSpawnT float64
	pickupSpawnT   float64

	telemetry *CollisionTelemetry
}

// NewGame creates a new Game for the given mode, optionally persisting
// match results through db (nil disables persistence).
func NewGame(mode GameMode, db *DB) *Game {
	return &Game{
		players:     make(map[string]*Player),
		projectiles: make(map[string]*Projectile),
		mobs:        make(map[string]*Mob),
		asteroids:   make(map[string]*Asteroid),
		pickups:     make(map[string]*Pickup),
		healZones:   make(map[string]*HealZone),
		missiles:    make(map[string]*HomingProjectile),
		clients:     make(map[string]Broadcaster),
		controllers: make(map[string]Broadcaster),
		stop:        make(chan struct{}),
		index:       NewCollisionIndex(indexCellSize, indexCellCount),
		db:          db,
		match:       NewMatchState(DefaultConfig(mode)),
		telemetry:   newTelemetryIfDB(db),
	}
}

func newTelemetryIfDB(db *DB) *CollisionTelemetry {
	if db == nil {
		return nil
	}
	return NewCollisionTelemetry(db)
}

// Run starts the game loop
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		g.running = false
		close(g.stop)
		if g.telemetry != nil {
			g.telemetry.Stop()
		}
	}
}

// AddPlayer adds a new player to the game. homeTeam is the player's
// account-level faction preference (TeamNone for guests and unauthenticated
// joins), honored by AssignTeam only when it doesn't unbalance the match.
func (g *Game) AddPlayer(name string, homeTeam int) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.players) >= maxPlayersPerSession {
		return nil
	}

	id := GenerateID(4)
	ship := g.nextShip % 4
	g.nextShip++
	player := NewPlayer(id, name, ship)
	player.Team = g.match.AssignTeam(g.players, homeTeam)
	player.X, player.Y = g.match.SpawnPosition(player.Team)
	g.players[id] = player
	return player
}

// HasPlayer reports whether a player with the given ID is in the session.
func (g *Game) HasPlayer(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.players[id]
	return ok
}

// SetController associates a phone controller connection with a player.
func (g *Game) SetController(playerID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.controllers[playerID] = client
	if c, ok := g.clients[playerID]; ok {
		c.SendJSON(Envelope{T: MsgCtrlOn})
	}
}

// RemoveController detaches a phone controller from its player.
func (g *Game) RemoveController(playerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.controllers, playerID)
	if c, ok := g.clients[playerID]; ok {
		c.SendJSON(Envelope{T: MsgCtrlOff})
	}
}

// HandleReady marks a player ready during the lobby phase and starts the
// countdown once every player in the session is ready.
func (g *Game) HandleReady(playerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[playerID]
	if !ok {
		return
	}
	p.Ready = true
	g.match.ReadyPlayers[playerID] = true
	if g.match.Phase != PhaseLobby {
		return
	}
	for id := range g.players {
		if !g.match.ReadyPlayers[id] {
			return
		}
	}
	g.match.Phase = PhaseCountdown
	g.match.CountdownT = 3.0
}

// HandleTeamPick lets a player choose a side before the match starts.
func (g *Game) HandleTeamPick(playerID string, team int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.match.Config.IsTeamMode() {
		return
	}
	p, ok := g.players[playerID]
	if !ok || (team != TeamRed && team != TeamBlue) {
		return
	}
	p.Team = team
}

// HandleRematch resets the match to the lobby phase for another round.
func (g *Game) HandleRematch(playerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.match.Phase != PhaseResult {
		return
	}
	if _, ok := g.players[playerID]; !ok {
		return
	}
	g.match.ReadyPlayers[playerID] = true
	for id := range g.players {
		if !g.match.ReadyPlayers[id] {
			return
		}
	}
	g.match = NewMatchState(g.match.Config)
	for _, p := range g.players {
		p.Ready = false
		p.Score = 0
		if !p.Alive {
			RespawnPlayer(p)
		}
	}
}

// RemovePlayer removes a player from the game
func (g *Game) RemovePlayer(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.players, id)
	delete(g.clients, id)
}

// SetClient associates a broadcaster with a player
func (g *Game) SetClient(playerID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[playerID] = client
}

// HandleInput processes input from a player
func (g *Game) HandleInput(playerID string, input ClientInput) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[playerID]
	if !ok {
		return
	}
	// Only update target rotation when target is far enough from ship
	// to produce a stable angle (avoids flickering when idle on mobile)
	dx := input.MX - p.X
	dy := input.MY - p.Y
	if dx*dx+dy*dy > 25 { // > 5px distance
		p.TargetR = math.Atan2(dy, dx)
	}
	p.Firing = input.Fire
	p.Boosting = input.Boost
	p.TargetX = input.MX
	p.TargetY = input.MY
	p.SlowThresh = Clamp(input.Thresh, 50, 400)
}

// PlayerCount returns the number of players
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.players)
}

// rebuildIndex clears and repopulates the CollisionIndex from the current
// body population. Called twice per tick: once before movement (so AI
// steering queries see this tick's starting positions) and once after
// (so the hit-test pass sees where everything actually ended up).
func (g *Game) rebuildIndex() {
	g.index.Clear(int(g.tick))
	for _, p := range g.players {
		if p.Alive {
			g.index.Add(p)
		}
	}
	for _, m := range g.mobs {
		if m.Alive {
			g.index.Add(m)
		}
	}
	for _, a := range g.asteroids {
		if a.Alive {
			g.index.Add(a)
		}
	}
	for _, proj := range g.projectiles {
		if proj.Alive {
			g.index.Add(proj)
		}
	}
	g.index.Finalize()
}

// update runs one game tick
func (g *Game) update() {
	g.mu.Lock()
	defer g.mu.Unlock()

	dt := 1.0 / float64(TickRate)
	g.tick++

	g.advanceMatch(dt)
	g.spawnEntities(dt)

	// Pass 1: index reflects this tick's starting positions, used by AI
	// steering (mob detect/dodge, missile homing).
	g.rebuildIndex()

	for _, p := range g.players {
		p.Update(dt)
		if p.CanFire() && len(g.projectiles) < maxProjectilesPerSession {
			def := GetClassDef(ShipClass(p.ShipType))
			for _, proj := range FireVolley(p) {
				g.projectiles[proj.ID] = proj
			}
			p.FireCD = def.FireCD
		}
	}
	for _, m := range g.mobs {
		if m.Update(dt, g.index) && len(g.projectiles) < maxProjectilesPerSession {
			proj := NewMobProjectile(m)
			g.projectiles[proj.ID] = proj
		}
	}
	for _, h := range g.missiles {
		h.Update(dt, g.index)
	}
	for id, proj := range g.projectiles {
		proj.Update(dt)
		if !proj.Alive {
			delete(g.projectiles, id)
		}
	}
	for id, a := range g.asteroids {
		a.Update(dt)
		if !a.Alive {
			delete(g.asteroids, id)
		}
	}
	for id, pk := range g.pickups {
		pk.Update(dt)
		if !pk.Alive {
			delete(g.pickups, id)
		}
	}
	for id, hz := range g.healZones {
		if !hz.Update(dt) {
			delete(g.healZones, id)
		}
	}

	// Pass 2: index reflects post-move positions, used for the precise
	// hit-test and area-effect queries below.
	g.rebuildIndex()

	g.checkProjectileHits()
	g.checkAsteroidImpacts()
	g.checkPickupRange()
	g.checkHealZones()

	if g.telemetry != nil {
		g.telemetry.RecordTick(g.tick, g.index)
	}

	if g.tick%BroadcastEvery == 0 {
		g.broadcastState()
	}
}

// advanceMatch steps the lobby/countdown/playing/result phase machine and
// persists results through db once a timed or scored match concludes.
func (g *Game) advanceMatch(dt float64) {
	switch g.match.Phase {
	case PhaseCountdown:
		g.match.CountdownT -= dt
		if g.match.CountdownT <= 0 {
			g.match.Phase = PhasePlaying
		}
	case PhasePlaying:
		if g.match.Config.TimeLimit > 0 {
			g.match.TimeLeft -= dt
			if g.match.TimeLeft <= 0 {
				g.endMatch()
			}
		}
		if g.match.Config.ScoreLimit > 0 {
			for _, p := range g.players {
				if p.Score >= g.match.Config.ScoreLimit {
					g.endMatch()
					break
				}
			}
		}
		if g.match.AdvanceWave(dt) {
			g.spawnWave()
		}
	case PhaseResult:
		g.match.ResultTimer -= dt
	}
}

// endMatch transitions to the result phase and records per-player stats.
func (g *Game) endMatch() {
	g.match.Phase = PhaseResult
	g.match.ResultTimer = 10.0
	g.match.ReadyPlayers = make(map[string]bool)

	if g.db == nil {
		return
	}
	winner := TeamNone
	if g.match.Config.IsTeamMode() {
		if g.match.Teams[TeamRed].Score > g.match.Teams[TeamBlue].Score {
			winner = TeamRed
		} else if g.match.Teams[TeamBlue].Score > g.match.Teams[TeamRed].Score {
			winner = TeamBlue
		}
	}
	duration := g.match.Config.TimeLimit - g.match.TimeLeft
	matchID, err := g.db.RecordMatch(int(g.match.Config.Mode), duration, winner)
	if err != nil {
		return
	}
	for _, p := range g.players {
		if p.AuthPlayerID == 0 {
			continue
		}
		won := !g.match.Config.IsTeamMode() || p.Team == winner
		xp := 50 + p.Score*10
		g.db.UpdateStatsAfterMatch(p.AuthPlayerID, p.Score, 0, 0, won, duration, xp)
		g.db.RecordMatchPlayer(matchID, p.AuthPlayerID, p.Team, p.Score, 0, 0, p.Score, xp)
	}
}

// spawnWave drops a bonus batch of raiders for a wave-survival match,
// sized to the current wave number so later waves run heavier.
func (g *Game) spawnWave() {
	bonus := 2 + g.match.WaveNumber
	for i := 0; i < bonus && len(g.mobs) < maxMobsPerSession; i++ {
		mob := NewMob()
		g.mobs[mob.ID] = mob
	}
}

// spawnEntities periodically introduces mobs, asteroids and pickups.
func (g *Game) spawnEntities(dt float64) {
	g.mobSpawnT -= dt
	if g.mobSpawnT <= 0 && len(g.mobs) < maxMobsPerSession {
		mob := NewMob()
		g.mobs[mob.ID] = mob
		g.mobSpawnT = mobSpawnInterval
	}
	g.asteroidSpawnT -= dt
	if g.asteroidSpawnT <= 0 && len(g.asteroids) < maxAsteroidsPerSession {
		a := NewAsteroid(WorldWidth, WorldHeight)
		g.asteroids[a.ID] = a
		g.asteroidSpawnT = asteroidSpawnInterval
	}
	g.pickupSpawnT -= dt
	if g.pickupSpawnT <= 0 && len(g.pickups) < maxPickupsPerSession {
		pk := NewPickup(WorldWidth, WorldHeight)
		g.pickups[pk.ID] = pk
		g.pickupSpawnT = pickupSpawnInterval
	}
}

// checkProjectileHits resolves each live projectile against the index via
// a single Line query along its last movement step.
func (g *Game) checkProjectileHits() {
	for projID, proj := range g.projectiles {
		if !proj.Alive {
			continue
		}
		from := proj.Position().Sub(proj.Velocity().Scale(1.0 / TickRate))
		to := proj.Position()
		closest := 1.0
		hit := g.index.Line(from, to, &closest, proj.Gov(), nil)
		if hit == nil {
			continue
		}

		switch victim := hit.(type) {
		case *Player:
			if victim.ID == proj.OwnerID {
				continue
			}
			died := ApplyDamage(victim, proj.Damage)
			proj.Alive = false
			delete(g.projectiles, projID)
			if died {
				g.onPlayerKilled(proj.OwnerID, victim)
			}
		case *Mob:
			died := victim.TakeDamage(proj.Damage)
			proj.Alive = false
			delete(g.projectiles, projID)
			if died {
				if killer, ok := g.players[proj.OwnerID]; ok {
					AwardKill(killer, MobKillScore)
				}
			}
		}
	}
}

func (g *Game) onPlayerKilled(killerID string, victim *Player) {
	killer, ok := g.players[killerID]
	if !ok {
		return
	}
	AwardKill(killer, 1)
	killMsg := Envelope{T: MsgKill, Data: KillMsg{
		KillerID:   killer.ID,
		KillerName: killer.Name,
		VictimID:   victim.ID,
		VictimName: victim.Name,
	}}
	g.broadcastMsg(killMsg)
	if client, ok := g.clients[victim.ID]; ok {
		client.SendJSON(Envelope{T: MsgDeath, Data: DeathMsg{
			KillerID:   killer.ID,
			KillerName: killer.Name,
		}})
	}
}

// checkAsteroidImpacts uses a Ring query around each asteroid to find
// ships in its path, replacing an O(N*M) manual scan.
func (g *Game) checkAsteroidImpacts() {
	for _, a := range g.asteroids {
		if !a.Alive {
			continue
		}
		for _, body := range g.index.Circle(a.Position(), AsteroidRadius) {
			switch v := body.(type) {
			case *Player:
				if !v.Alive {
					continue
				}
				if ApplyDamage(v, v.HP) {
					g.broadcastMsg(Envelope{T: MsgDeath, Data: DeathMsg{KillerName: "an asteroid"}})
				}
			case *Mob:
				v.TakeDamage(v.MaxHP)
			}
		}
	}
}

// checkPickupRange heals the first alive player found within a pickup's
// radius via a Ring query, then consumes the pickup.
func (g *Game) checkPickupRange() {
	for id, pk := range g.pickups {
		if !pk.Alive {
			continue
		}
		for _, body := range g.index.Circle(Vec2{pk.X, pk.Y}, PickupRadius) {
			p, ok := body.(*Player)
			if !ok || !p.Alive {
				continue
			}
			p.HP += int(float64(PickupHeal) * pk.Potency)
			if p.HP > p.MaxHP {
				p.HP = p.MaxHP
			}
			pk.Alive = false
			delete(g.pickups, id)
			break
		}
	}
}

// checkHealZones applies heal-aura regeneration to every ally within each
// active zone's radius via a Ring query.
func (g *Game) checkHealZones() {
	for _, hz := range g.healZones {
		for _, body := range g.index.Ring(Vec2{hz.X, hz.Y}, 0, hz.Radius) {
			p, ok := body.(*Player)
			if !ok || !p.Alive || p.Team != hz.TeamID {
				continue
			}
			p.HP += int(hz.Rate / TickRate)
			if p.HP > p.MaxHP {
				p.HP = p.MaxHP
			}
		}
	}
}

// broadcastState sends the current game state to all clients
func (g *Game) broadcastState() {
	state := GameState{
		Players:     make([]PlayerState, 0, len(g.players)),
		Projectiles: make([]ProjectileState, 0, len(g.projectiles)),
		Mobs:        make([]MobState, 0, len(g.mobs)),
		Asteroids:   make([]AsteroidState, 0, len(g.asteroids)),
		Pickups:     make([]PickupState, 0, len(g.pickups)),
		HealZones:   make([]HealZoneState, 0, len(g.healZones)),
		Tick:        g.tick,
	}

	for _, p := range g.players {
		state.Players = append(state.Players, p.ToState())
	}
	for _, proj := range g.projectiles {
		state.Projectiles = append(state.Projectiles, proj.ToState())
	}
	for _, m := range g.mobs {
		state.Mobs = append(state.Mobs, m.ToState())
	}
	for _, a := range g.asteroids {
		state.Asteroids = append(state.Asteroids, a.ToState())
	}
	for _, pk := range g.pickups {
		state.Pickups = append(state.Pickups, pk.ToState())
	}
	for _, hz := range g.healZones {
		state.HealZones = append(state.HealZones, hz.ToState(int(g.tick)))
	}

	// State broadcasts are msgpack-encoded (not JSON) since they go out at
	// BroadcastRate to every client in the session and are the highest-volume
	// message on the wire.
	data, err := msgpack.Marshal(state)
	if err != nil {
		return
	}

	for _, client := range g.clients {
		if c, ok := client.(*Client); ok {
			c.SendBinary(data)
		} else {
			client.SendJSON(Envelope{T: MsgState, Data: state})
		}
	}
}

// broadcastMsg sends a message to all clients in the session
func (g *Game) broadcastMsg(msg Envelope) {
	for _, client := range g.clients {
		client.SendJSON(msg)
	}
}
