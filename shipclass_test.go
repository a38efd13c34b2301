package main

import "testing"

func TestGetClassDefFallsBackToFighter(t *testing.T) {
	def := GetClassDef(ShipClass(99))
	if def != ShipClasses[ClassFighter] {
		t.Error("out-of-range class should fall back to Fighter")
	}
}

func TestSpreadAnglesSingleShotFiresAhead(t *testing.T) {
	def := GetClassDef(ClassFighter)
	angles := def.SpreadAngles()
	if len(angles) != 1 || angles[0] != 0 {
		t.Errorf("expected a single zero-angle shot, got %v", angles)
	}
}

func TestSpreadAnglesTankFansEvenly(t *testing.T) {
	def := GetClassDef(ClassTank)
	angles := def.SpreadAngles()
	if len(angles) != def.ProjCount {
		t.Fatalf("expected %d angles, got %d", def.ProjCount, len(angles))
	}
	if angles[0] != -def.ProjSpread/2 {
		t.Errorf("expected first angle at -spread/2, got %f", angles[0])
	}
	last := angles[len(angles)-1]
	if last != def.ProjSpread/2 {
		t.Errorf("expected last angle at +spread/2, got %f", last)
	}
}
