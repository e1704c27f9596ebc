package agents

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Bbeierle12/ecosysx/internal/config"
	"github.com/Bbeierle12/ecosysx/internal/env"
)

// Personality is one immutable trait drawn at creation for causal agents.
type Personality uint8

const (
	Cautious Personality = iota
	Bold
	Cooperative
	Loner
	Curious
)

var personalityNames = [...]string{"cautious", "bold", "cooperative", "loner", "curious"}

// String returns the personality name.
func (p Personality) String() string {
	if int(p) < len(personalityNames) {
		return personalityNames[p]
	}
	return "unknown"
}

// Caps on the bounded knowledge lists. Growth past a cap evicts the oldest
// entry.
const (
	maxKnownResources = 15
	maxDangerZones    = 10
	maxHelpRequests   = 10
	maxAlliances      = 5
)

// KnownResource is a remembered resource location. Confidence decays
// continuously with age rather than expiring at a step.
type KnownResource struct {
	ID        string       `json:"id"`
	Position  env.Position `json:"position"`
	Value     float64      `json:"value"`
	Timestamp int          `json:"timestamp"`
}

// Confidence returns exp(-age/decay): 1 when fresh, ~0.37 at one decay
// period of age.
func (k KnownResource) Confidence(tick, informationDecay int) float64 {
	if informationDecay <= 0 {
		return 0
	}
	age := float64(tick - k.Timestamp)
	if age <= 0 {
		return 1
	}
	return math.Exp(-age / float64(informationDecay))
}

// DangerZone marks an area to avoid (observed infection cluster).
type DangerZone struct {
	Position  env.Position `json:"position"`
	Radius    float64      `json:"radius"`
	Timestamp int          `json:"timestamp"`
}

// HelpRequest records a peer's call for help.
type HelpRequest struct {
	From      int          `json:"from"`
	Position  env.Position `json:"position"`
	Timestamp int          `json:"timestamp"`
}

// Alliance is a standing mutual-aid bond with a peer.
type Alliance struct {
	Peer  int `json:"peer"`
	Since int `json:"since"`
}

// Territory is a claimed patch, refreshed while the owner stays inside it.
type Territory struct {
	Center    env.Position `json:"center"`
	Radius    float64      `json:"radius"`
	ClaimedAt int          `json:"claimed_at"`
}

// PlannedMove is a planner decision queued for a later tick. The reasoning
// trace exists for observability only.
type PlannedMove struct {
	Archetype  string       `json:"archetype"`
	Target     env.Position `json:"target"`
	HasTarget  bool         `json:"has_target"`
	Confidence float64      `json:"confidence"`
	Reasoning  string       `json:"reasoning"`
}

// Social is the extension carried by causal agents: social memory, bounded
// knowledge lists, messaging state, and the queued planner decision.
type Social struct {
	Personality Personality   `json:"personality"`
	Memory      *SocialMemory `json:"-"`

	KnownResources []KnownResource `json:"known_resources"`
	DangerZones    []DangerZone    `json:"danger_zones"`
	HelpRequests   []HelpRequest   `json:"help_requests"`
	Alliances      []Alliance      `json:"alliances"`
	Territory      *Territory      `json:"territory,omitempty"`

	Inbox           []Message `json:"-"`
	MessageCooldown int       `json:"message_cooldown"`
	HelpCooldown    int       `json:"help_cooldown"`

	// Planner hand-off. PlanInFlight enforces at most one outstanding
	// reasoning request per agent; Planned is consumed on a later tick.
	Planned      *PlannedMove `json:"-"`
	PlanInFlight bool         `json:"-"`
}

// NewSocial draws the personality and builds empty bounded state.
func NewSocial(rng *rand.Rand, cfg config.SocialConfig) *Social {
	return &Social{
		Personality: Personality(rng.Intn(len(personalityNames))),
		Memory:      NewSocialMemory(cfg),
	}
}

// NoteResource records a resource sighting, replacing a stale entry for the
// same resource id or evicting the oldest when full.
func (s *Social) NoteResource(id string, pos env.Position, value float64, tick int) {
	for i := range s.KnownResources {
		if s.KnownResources[i].ID == id {
			s.KnownResources[i] = KnownResource{ID: id, Position: pos, Value: value, Timestamp: tick}
			return
		}
	}
	if len(s.KnownResources) >= maxKnownResources {
		s.dropOldestResource()
	}
	s.KnownResources = append(s.KnownResources, KnownResource{ID: id, Position: pos, Value: value, Timestamp: tick})
}

func (s *Social) dropOldestResource() {
	oldest := 0
	for i := 1; i < len(s.KnownResources); i++ {
		if s.KnownResources[i].Timestamp < s.KnownResources[oldest].Timestamp {
			oldest = i
		}
	}
	s.KnownResources = append(s.KnownResources[:oldest], s.KnownResources[oldest+1:]...)
}

// NoteDanger records an area to avoid.
func (s *Social) NoteDanger(pos env.Position, radius float64, tick int) {
	if len(s.DangerZones) >= maxDangerZones {
		s.DangerZones = s.DangerZones[1:]
	}
	s.DangerZones = append(s.DangerZones, DangerZone{Position: pos, Radius: radius, Timestamp: tick})
}

// AddHelpRequest records a peer's call for help.
func (s *Social) AddHelpRequest(from int, pos env.Position, tick int) {
	if len(s.HelpRequests) >= maxHelpRequests {
		s.HelpRequests = s.HelpRequests[1:]
	}
	s.HelpRequests = append(s.HelpRequests, HelpRequest{From: from, Position: pos, Timestamp: tick})
}

// AlliedWith reports an existing alliance with a peer.
func (s *Social) AlliedWith(peer int) bool {
	for _, al := range s.Alliances {
		if al.Peer == peer {
			return true
		}
	}
	return false
}

// AddAlliance records a bond, evicting the oldest when full.
func (s *Social) AddAlliance(peer, tick int) {
	if s.AlliedWith(peer) {
		return
	}
	if len(s.Alliances) >= maxAlliances {
		s.Alliances = s.Alliances[1:]
	}
	s.Alliances = append(s.Alliances, Alliance{Peer: peer, Since: tick})
}

// BestKnownResource returns the remembered resource with the highest
// confidence-weighted value, or nil when nothing useful is remembered.
func (s *Social) BestKnownResource(tick, informationDecay int) *KnownResource {
	var best *KnownResource
	bestScore := 0.0
	for i := range s.KnownResources {
		kr := &s.KnownResources[i]
		score := kr.Value * kr.Confidence(tick, informationDecay)
		if score > bestScore {
			best = kr
			bestScore = score
		}
	}
	return best
}

// DecayInformation ages out expired list entries and ticks cooldowns down.
// Called once per tick for every causal agent.
func (s *Social) DecayInformation(tick int, cfg config.SocialConfig) {
	keepRes := s.KnownResources[:0]
	for _, kr := range s.KnownResources {
		if tick-kr.Timestamp <= cfg.InformationDecay {
			keepRes = append(keepRes, kr)
		}
	}
	s.KnownResources = keepRes

	keepDanger := s.DangerZones[:0]
	for _, dz := range s.DangerZones {
		if tick-dz.Timestamp <= cfg.InformationDecay {
			keepDanger = append(keepDanger, dz)
		}
	}
	s.DangerZones = keepDanger

	keepHelp := s.HelpRequests[:0]
	for _, hr := range s.HelpRequests {
		if tick-hr.Timestamp <= cfg.InformationDecay {
			keepHelp = append(keepHelp, hr)
		}
	}
	s.HelpRequests = keepHelp

	if s.MessageCooldown > 0 {
		s.MessageCooldown--
	}
	if s.HelpCooldown > 0 {
		s.HelpCooldown--
	}

	s.Memory.Decay(tick)
}

// ObservePeers refreshes social memory for peers in sight and marks
// clusters of infection as danger zones.
func ObservePeers(a *Agent, peers []*Agent, tick int) {
	if !a.IsCausal() {
		return
	}
	infected := 0
	var infectedAt env.Position
	for _, p := range peers {
		a.Social.Memory.Remember(p.ID, tick)
		if p.Status == Infected {
			infected++
			infectedAt = p.Position
		}
	}
	if infected >= 2 {
		a.Social.NoteDanger(infectedAt, a.Genotype.SocialRadius, tick)
	}
}

// ObserveResources records resource sightings within social reach.
func ObserveResources(a *Agent, e env.Environment, tick int) {
	if !a.IsCausal() {
		return
	}
	reach := a.Genotype.SocialRadius
	for _, r := range e.Resources() {
		if a.Position.DistanceTo(r.Position) <= reach {
			a.Social.NoteResource(r.ID, r.Position, r.Value, tick)
		}
	}
}

// ComposeMessage emits at most one message for this tick, gated on the
// communication cooldown: a resource tip when well-fed with a fresh
// location, an infection warning when Recovered with infected peers nearby,
// an alliance request toward a highly trusted peer, or a trade offer from
// an aggressive agent holding surplus knowledge.
func ComposeMessage(a *Agent, peers []*Agent, tick int, rng *rand.Rand, cfg config.SocialConfig) *Message {
	if !a.IsCausal() || a.Social.MessageCooldown > 0 || len(peers) == 0 {
		return nil
	}
	// Loners talk less.
	chattiness := 0.5
	if a.Social.Personality == Loner {
		chattiness = 0.15
	}
	if a.Social.Personality == Cooperative {
		chattiness = 0.8
	}
	if rng.Float64() > chattiness {
		return nil
	}

	peer := peers[rng.Intn(len(peers))]

	if a.Energy > 70 {
		if best := a.Social.BestKnownResource(tick, cfg.InformationDecay); best != nil {
			msg := NewMessage(a.ID, peer.ID, MsgResourceTip, tick)
			msg.Payload = best.Position
			msg.Value = best.Value
			msg.Priority = best.Confidence(tick, cfg.InformationDecay)
			msg.Content = fmt.Sprintf("resource %s worth %.0f", best.ID, best.Value)
			msg.Range = cfg.MessageRange
			a.Social.MessageCooldown = cfg.MessageCooldown
			return &msg
		}
	}

	if a.Status == Recovered {
		infectedNearby := 0
		var at env.Position
		for _, p := range peers {
			if p.Status == Infected {
				infectedNearby++
				at = p.Position
			}
		}
		if infectedNearby > 0 {
			msg := NewMessage(a.ID, Broadcast, MsgInfectionWarning, tick)
			msg.Payload = at
			msg.Value = float64(infectedNearby)
			msg.Priority = clamp01(0.5 + 0.2*float64(infectedNearby))
			msg.Content = fmt.Sprintf("%d infected nearby", infectedNearby)
			msg.Range = cfg.MessageRange
			a.Social.MessageCooldown = cfg.MessageCooldown
			return &msg
		}
	}

	if peer.IsCausal() && !a.Social.AlliedWith(peer.ID) &&
		a.Social.Memory.Trust(peer.ID) >= cfg.AllianceTrust {
		msg := NewMessage(a.ID, peer.ID, MsgAllianceRequest, tick)
		msg.Priority = a.Social.Memory.Trust(peer.ID)
		msg.Content = "alliance"
		msg.Range = cfg.MessageRange
		a.Social.MessageCooldown = cfg.MessageCooldown
		return &msg
	}

	if a.Genotype.Aggressiveness > 0.6 && len(a.Social.KnownResources) > 2 {
		if best := a.Social.BestKnownResource(tick, cfg.InformationDecay); best != nil {
			msg := NewMessage(a.ID, peer.ID, MsgTradeOffer, tick)
			msg.Payload = best.Position
			msg.Value = best.Value
			msg.Priority = 0.5
			msg.Content = fmt.Sprintf("trading location of %s", best.ID)
			msg.Range = cfg.MessageRange
			a.Social.MessageCooldown = cfg.MessageCooldown
			return &msg
		}
	}

	return nil
}

// MaybeRequestHelp emits a help request when energy or infection severity
// crosses the threshold, the cooldown is clear, and at least one
// sufficiently trusted peer is in range.
func MaybeRequestHelp(a *Agent, peers []*Agent, tick int, cfg config.SocialConfig) *Message {
	if !a.IsCausal() || a.Social.HelpCooldown > 0 {
		return nil
	}
	severelyInfected := a.Status == Infected && a.InfectionTimer > 48
	if a.Energy > cfg.HelpEnergyThreshold && !severelyInfected {
		return nil
	}

	trusted := false
	for _, p := range peers {
		if a.Position.DistanceTo(p.Position) <= cfg.MessageRange &&
			a.Social.Memory.Trust(p.ID) >= cfg.MinHelpTrust {
			trusted = true
			break
		}
	}
	if !trusted {
		return nil
	}

	msg := NewMessage(a.ID, Broadcast, MsgHelpRequest, tick)
	msg.Payload = a.Position
	msg.Value = a.Energy
	msg.Priority = 1 - a.Energy/MaxEnergy
	msg.Content = "help"
	msg.Range = cfg.MessageRange
	a.Social.HelpCooldown = cfg.HelpCooldown
	return &msg
}

// ReceiveMessage applies a message to the recipient: trust shifts with the
// confidence of the content, the payload lands in the matching bounded
// list, and the message joins the capped inbox. Reports whether an alliance
// or trade was accepted, so the engine can mirror the bond on the sender.
func ReceiveMessage(a *Agent, msg Message, tick int, cfg config.SocialConfig) bool {
	if !a.IsCausal() {
		return false
	}
	s := a.Social

	if len(s.Inbox) >= cfg.MaxMessages {
		s.Inbox = s.Inbox[1:]
	}
	s.Inbox = append(s.Inbox, msg)

	if msg.Priority >= 0.5 {
		s.Memory.UpdateTrust(msg.Sender, cfg.TrustGain, tick)
	} else {
		s.Memory.UpdateTrust(msg.Sender, -cfg.TrustLoss, tick)
	}
	s.Memory.AddSharedInfo(msg.Sender, tick, msg.Type.String())

	switch msg.Type {
	case MsgResourceTip:
		s.NoteResource("tip:"+msg.ID, msg.Payload, msg.Value*msg.Priority, tick)
	case MsgInfectionWarning:
		s.NoteDanger(msg.Payload, cfg.MessageRange/2, tick)
	case MsgHelpRequest:
		s.AddHelpRequest(msg.Sender, msg.Payload, tick)
	case MsgAllianceRequest:
		if s.Memory.Trust(msg.Sender) >= cfg.AllianceTrust {
			s.AddAlliance(msg.Sender, tick)
			return true
		}
	case MsgTradeOffer:
		// Accepting a trade takes the location and pays in trust.
		s.NoteResource("trade:"+msg.ID, msg.Payload, msg.Value, tick)
		s.Memory.UpdateTrust(msg.Sender, cfg.TrustGain*2, tick)
		return true
	}
	return false
}

// UpdateTerritory claims the current surroundings when unclaimed and the
// agent is thriving, refreshes the claim while the owner stays inside, and
// abandons it once the owner has wandered off.
func UpdateTerritory(a *Agent, tick int) {
	if !a.IsCausal() {
		return
	}
	s := a.Social
	radius := a.Genotype.SocialRadius

	if s.Territory == nil {
		if a.Energy > 75 && a.Social.Personality != Loner {
			s.Territory = &Territory{Center: a.Position, Radius: radius, ClaimedAt: tick}
		}
		return
	}

	if a.Position.DistanceTo(s.Territory.Center) <= s.Territory.Radius {
		s.Territory.ClaimedAt = tick
		return
	}
	if tick-s.Territory.ClaimedAt > 100 {
		s.Territory = nil
	}
}

// InDanger reports whether a position falls inside any remembered danger
// zone.
func (s *Social) InDanger(pos env.Position) bool {
	for _, dz := range s.DangerZones {
		if pos.DistanceTo(dz.Position) <= dz.Radius {
			return true
		}
	}
	return false
}
