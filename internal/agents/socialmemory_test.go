package agents

import (
	"testing"

	"github.com/Bbeierle12/ecosysx/internal/config"
)

func TestTrustClampedToUnitInterval(t *testing.T) {
	cfg := config.Default().Social
	m := NewSocialMemory(cfg)
	m.Remember(1, 0)

	for i := 0; i < 100; i++ {
		m.UpdateTrust(1, 0.2, i)
	}
	if got := m.Trust(1); got != 1 {
		t.Errorf("trust after many gains = %v, want 1", got)
	}
	for i := 0; i < 100; i++ {
		m.UpdateTrust(1, -0.2, i)
	}
	if got := m.Trust(1); got != 0 {
		t.Errorf("trust after many losses = %v, want 0", got)
	}
}

func TestUnknownPeerHasNeutralTrust(t *testing.T) {
	m := NewSocialMemory(config.Default().Social)
	if got := m.Trust(99); got != 0.5 {
		t.Errorf("Trust(unknown) = %v, want 0.5", got)
	}
	if m.Knows(99) {
		t.Error("Knows(unknown) = true")
	}
}

func TestMemoryEvictsLeastRecentlySeen(t *testing.T) {
	cfg := config.Default().Social
	m := NewSocialMemory(cfg)

	for id := 0; id < cfg.MaxKnownAgents; id++ {
		m.Remember(id, id) // Peer id last seen at tick id
	}
	if m.Size() != cfg.MaxKnownAgents {
		t.Fatalf("size = %d, want %d", m.Size(), cfg.MaxKnownAgents)
	}

	// Refresh peer 0 so peer 1 becomes the stalest.
	m.Remember(0, 1000)
	m.Remember(777, 1001)

	if m.Size() != cfg.MaxKnownAgents {
		t.Errorf("size after eviction = %d, want %d", m.Size(), cfg.MaxKnownAgents)
	}
	if m.Knows(1) {
		t.Error("stalest peer survived eviction")
	}
	if !m.Knows(0) {
		t.Error("recently refreshed peer was evicted")
	}
	if !m.Knows(777) {
		t.Error("newly remembered peer is missing")
	}
}

func TestDecayPullsIdleTrustTowardNeutral(t *testing.T) {
	cfg := config.Default().Social
	m := NewSocialMemory(cfg)
	m.Remember(1, 0)
	m.UpdateTrust(1, 0.4, 0) // 0.9

	// Still inside the idle window: no drift.
	m.Decay(cfg.TrustIdleTicks)
	if got := m.Trust(1); got != 0.9 {
		t.Errorf("trust drifted inside idle window: %v", got)
	}

	m.Decay(cfg.TrustIdleTicks + 1)
	after := m.Trust(1)
	if after >= 0.9 || after < 0.5 {
		t.Errorf("idle trust = %v, want drift from 0.9 toward 0.5", after)
	}
}

func TestSharedInfoBounded(t *testing.T) {
	m := NewSocialMemory(config.Default().Social)
	m.Remember(1, 0)
	for i := 0; i < 3*maxSharedInfo; i++ {
		m.AddSharedInfo(1, i, "tip")
	}
	if got := len(m.Peers()[1].SharedInfo); got > maxSharedInfo {
		t.Errorf("shared info length = %d, cap is %d", got, maxSharedInfo)
	}
}
