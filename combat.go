package main

// ApplyDamage applies damage to a player and returns true if they died
func ApplyDamage(player *Player, damage int) bool {
	return player.TakeDamage(damage)
}

// RespawnPlayer respawns a dead player
func RespawnPlayer(player *Player) {
	player.Respawn()
}

// AwardKill credits a player's score for eliminating a target worth the
// given number of points: 1 for another player, MobKillScore for a raider.
func AwardKill(killer *Player, points int) {
	killer.Score += points
}
