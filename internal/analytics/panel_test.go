package analytics

import (
	"math/rand"
	"testing"
)

func TestPanelFillsToSize(t *testing.T) {
	p := NewPanel(5, 10, rand.New(rand.NewSource(1)))
	for id := 1; id <= 20; id++ {
		p.Offer(id, 0)
	}
	if p.Len() != 5 {
		t.Errorf("panel size = %d, want 5", p.Len())
	}
	// The first five candidates filled the free slots.
	for id := 1; id <= 5; id++ {
		if !p.Contains(id) {
			t.Errorf("early candidate %d missing from a fresh panel", id)
		}
	}
}

func TestPanelActiveMembersAreSticky(t *testing.T) {
	p := NewPanel(3, 10, rand.New(rand.NewSource(2)))
	p.Offer(1, 0)
	p.Offer(2, 0)
	p.Offer(3, 0)

	// Members refreshed every tick never go stale, so no stream of
	// candidates can displace them.
	for tick := 1; tick <= 500; tick++ {
		p.Offer(1, tick)
		p.Offer(2, tick)
		p.Offer(3, tick)
		p.Offer(1000+tick, tick)
	}
	for id := 1; id <= 3; id++ {
		if !p.Contains(id) {
			t.Errorf("active member %d was displaced", id)
		}
	}
}

func TestPanelStaleMemberDisplaceable(t *testing.T) {
	p := NewPanel(1, 10, rand.New(rand.NewSource(3)))
	p.Offer(1, 0)

	// Member 1 is never refreshed; with a single slot the replacement roll
	// eventually lands and the stale member goes.
	displaced := false
	for tick := 11; tick <= 2000 && !displaced; tick++ {
		p.Offer(tick, tick)
		displaced = !p.Contains(1)
	}
	if !displaced {
		t.Error("stale member survived 2000 candidate offers")
	}
	if p.Len() != 1 {
		t.Errorf("panel size = %d, want 1", p.Len())
	}
}

func TestPanelRemoveFreesSlot(t *testing.T) {
	p := NewPanel(2, 10, rand.New(rand.NewSource(4)))
	p.Offer(1, 0)
	p.Offer(2, 0)
	p.Remove(1)

	if p.Contains(1) || p.Len() != 1 {
		t.Fatalf("remove failed: contains=%v len=%d", p.Contains(1), p.Len())
	}
	p.Offer(3, 1)
	if !p.Contains(3) || p.Len() != 2 {
		t.Errorf("freed slot not refilled: contains(3)=%v len=%d", p.Contains(3), p.Len())
	}
	// Removing an unknown id is a no-op.
	p.Remove(99)
	if p.Len() != 2 {
		t.Errorf("removing unknown id changed the panel: len=%d", p.Len())
	}
}
