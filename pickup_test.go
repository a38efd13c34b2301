package main

import "testing"

func TestNewPickupPotencyInRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		pk := NewPickup(WorldWidth, WorldHeight)
		if pk.Potency < 0.85 {
			t.Fatalf("potency %f below minimum roll", pk.Potency)
		}
		if pk.Potency > 1.15*pickupSuperchargeMul {
			t.Fatalf("potency %f exceeds supercharged ceiling", pk.Potency)
		}
	}
}

func TestNewPickupWithinWorldBounds(t *testing.T) {
	pk := NewPickup(WorldWidth, WorldHeight)
	if pk.X < 50 || pk.X > WorldWidth-50 {
		t.Errorf("X %f out of spawn bounds", pk.X)
	}
	if pk.Y < 50 || pk.Y > WorldHeight-50 {
		t.Errorf("Y %f out of spawn bounds", pk.Y)
	}
}

func TestPickupUpdateExpiresAtZeroLife(t *testing.T) {
	pk := &Pickup{Alive: true, Life: 0.01}
	pk.Update(0.02)
	if pk.Alive {
		t.Error("pickup should expire once Life drops to zero")
	}
}
