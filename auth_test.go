package main

import "testing"

func TestHomeFactionForIsDeterministic(t *testing.T) {
	a := homeFactionFor("wanderer")
	b := homeFactionFor("wanderer")
	if a != b {
		t.Errorf("expected homeFactionFor to be stable for the same username, got %d then %d", a, b)
	}
	if a != TeamRed && a != TeamBlue {
		t.Errorf("expected a real team, got %d", a)
	}
}

func TestHomeFactionForSpreadsAcrossBothTeams(t *testing.T) {
	seenRed, seenBlue := false, false
	for i := 0; i < 64; i++ {
		name := GenerateGuestName()
		switch homeFactionFor(name) {
		case TeamRed:
			seenRed = true
		case TeamBlue:
			seenBlue = true
		}
	}
	if !seenRed || !seenBlue {
		t.Error("expected a sample of usernames to land on both teams")
	}
}
