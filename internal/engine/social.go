package engine

import (
	"github.com/Bbeierle12/ecosysx/internal/agents"
)

// socialPhase runs the causal agents' observation, knowledge decay, and
// message exchange for one tick. Messages compose against the pre-delivery
// state and deliver afterwards, so ordering within a tick does not leak
// between senders.
func (e *Engine) socialPhase(snapshot []*agents.Agent, tick int) {
	type delivery struct {
		sender *agents.Agent
		msg    agents.Message
	}
	var outbox []delivery

	for _, a := range snapshot {
		if !a.IsCausal() {
			continue
		}
		peers := e.socialPeers(snapshot, a)

		agents.ObservePeers(a, peers, tick)
		agents.ObserveResources(a, e.world, tick)
		agents.UpdateTerritory(a, tick)
		a.Social.DecayInformation(tick, e.cfg.Social)

		if msg := agents.ComposeMessage(a, peers, tick, e.rng, e.cfg.Social); msg != nil {
			outbox = append(outbox, delivery{sender: a, msg: *msg})
		}
		if msg := agents.MaybeRequestHelp(a, peers, tick, e.cfg.Social); msg != nil {
			outbox = append(outbox, delivery{sender: a, msg: *msg})
		}
	}

	for _, d := range outbox {
		e.deliver(snapshot, d.sender, d.msg, tick)
	}
}

// deliver routes a message to its recipient, or to every causal agent
// within range for broadcasts. An accepted alliance or trade mirrors the
// bond back onto the sender.
func (e *Engine) deliver(snapshot []*agents.Agent, sender *agents.Agent, msg agents.Message, tick int) {
	if msg.Recipient != agents.Broadcast {
		target, ok := e.agentIdx[msg.Recipient]
		if !ok || !target.IsCausal() {
			return
		}
		if accepted := agents.ReceiveMessage(target, msg, tick, e.cfg.Social); accepted {
			e.mirrorBond(sender, target, msg, tick)
		}
		return
	}

	for _, target := range snapshot {
		if target.ID == sender.ID || !target.IsCausal() {
			continue
		}
		if sender.Position.DistanceTo(target.Position) > msg.Range {
			continue
		}
		if accepted := agents.ReceiveMessage(target, msg, tick, e.cfg.Social); accepted {
			e.mirrorBond(sender, target, msg, tick)
		}
	}
}

func (e *Engine) mirrorBond(sender, target *agents.Agent, msg agents.Message, tick int) {
	if !sender.IsCausal() {
		return
	}
	switch msg.Type {
	case agents.MsgAllianceRequest:
		sender.Social.AddAlliance(target.ID, tick)
	case agents.MsgTradeOffer:
		sender.Social.Memory.UpdateTrust(target.ID, e.cfg.Social.TrustGain, tick)
	}
}

// socialPeers returns the causal-visible peers within message range.
func (e *Engine) socialPeers(snapshot []*agents.Agent, a *agents.Agent) []*agents.Agent {
	var peers []*agents.Agent
	for _, p := range snapshot {
		if p.ID == a.ID {
			continue
		}
		if a.Position.DistanceTo(p.Position) <= e.cfg.Social.MessageRange {
			peers = append(peers, p)
		}
	}
	return peers
}
