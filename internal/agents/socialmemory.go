package agents

import (
	"github.com/Bbeierle12/ecosysx/internal/config"
)

// Cap on the shared-info log kept per peer.
const maxSharedInfo = 10

// PeerRecord is what one agent knows about another.
type PeerRecord struct {
	Trust        float64  `json:"trust"` // [0,1], 0.5 is neutral
	Interactions int      `json:"interactions"`
	LastSeen     int      `json:"last_seen"` // Tick
	SharedInfo   []string `json:"shared_info,omitempty"`
}

// SocialMemory is a bounded per-agent knowledge base about other agents.
// The map never exceeds max_known_agents; overflow evicts the peer with the
// oldest LastSeen.
type SocialMemory struct {
	cfg   config.SocialConfig
	peers map[int]*PeerRecord
}

// NewSocialMemory creates an empty memory bounded by the config.
func NewSocialMemory(cfg config.SocialConfig) *SocialMemory {
	return &SocialMemory{
		cfg:   cfg,
		peers: make(map[int]*PeerRecord, cfg.MaxKnownAgents),
	}
}

// Remember records an encounter with a peer, creating a neutral-trust record
// on first sight and evicting the least-recently-seen peer if full.
func (m *SocialMemory) Remember(peerID, tick int) *PeerRecord {
	if rec, ok := m.peers[peerID]; ok {
		rec.Interactions++
		rec.LastSeen = tick
		return rec
	}

	if len(m.peers) >= m.cfg.MaxKnownAgents {
		m.evictOldest()
	}

	rec := &PeerRecord{Trust: 0.5, Interactions: 1, LastSeen: tick}
	m.peers[peerID] = rec
	return rec
}

func (m *SocialMemory) evictOldest() {
	oldestID := -1
	oldestSeen := int(^uint(0) >> 1)
	for id, rec := range m.peers {
		if rec.LastSeen < oldestSeen || (rec.LastSeen == oldestSeen && id < oldestID) {
			oldestID = id
			oldestSeen = rec.LastSeen
		}
	}
	if oldestID >= 0 {
		delete(m.peers, oldestID)
	}
}

// UpdateTrust shifts trust for a peer, clamped to [0,1]. Creates the record
// if the peer is unknown.
func (m *SocialMemory) UpdateTrust(peerID int, delta float64, tick int) {
	rec := m.Remember(peerID, tick)
	rec.Trust = clamp01(rec.Trust + delta)
}

// Trust returns the trust held for a peer; 0.5 for unknown peers.
func (m *SocialMemory) Trust(peerID int) float64 {
	if rec, ok := m.peers[peerID]; ok {
		return rec.Trust
	}
	return 0.5
}

// Knows reports whether the peer has a record.
func (m *SocialMemory) Knows(peerID int) bool {
	_, ok := m.peers[peerID]
	return ok
}

// AddSharedInfo appends to a peer's shared-info log, dropping the oldest
// entry when the log is full.
func (m *SocialMemory) AddSharedInfo(peerID, tick int, info string) {
	rec := m.Remember(peerID, tick)
	if len(rec.SharedInfo) >= maxSharedInfo {
		rec.SharedInfo = rec.SharedInfo[1:]
	}
	rec.SharedInfo = append(rec.SharedInfo, info)
}

// Decay relaxes trust toward neutral for peers not seen within the idle
// window.
func (m *SocialMemory) Decay(tick int) {
	for _, rec := range m.peers {
		if tick-rec.LastSeen > m.cfg.TrustIdleTicks {
			rec.Trust += (0.5 - rec.Trust) * m.cfg.TrustDecayRate
		}
	}
}

// Size returns the number of known peers.
func (m *SocialMemory) Size() int {
	return len(m.peers)
}

// Peers exposes the record map for analytics snapshots. Not safe to mutate.
func (m *SocialMemory) Peers() map[int]*PeerRecord {
	return m.peers
}
