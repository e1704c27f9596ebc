package analytics

import "math/rand"

// Panel is a bounded sample of agents followed across their whole lives,
// reservoir-style. It is deliberately not a uniform reservoir: a sitting
// member is only displaced while it has gone stale, so agents that keep
// getting observed hold their slot. The sample skews toward long-lived,
// recently active agents, which is the population the longitudinal series
// is meant to describe.
type Panel struct {
	size       int
	staleAfter int
	rng        *rand.Rand

	members []panelMember
	index   map[int]int // Agent id -> slot
	seen    int         // Candidates ever offered
}

type panelMember struct {
	id       int
	joined   int
	lastSeen int
}

// NewPanel builds an empty panel. Members untouched for staleAfter ticks
// become displaceable.
func NewPanel(size, staleAfter int, rng *rand.Rand) *Panel {
	if size < 1 {
		size = 1
	}
	return &Panel{
		size:       size,
		staleAfter: staleAfter,
		rng:        rng,
		index:      make(map[int]int, size),
	}
}

// Offer presents an agent as a panel candidate. Existing members are
// refreshed; new candidates fill free slots or roll against a stale member.
func (p *Panel) Offer(id, tick int) {
	if slot, ok := p.index[id]; ok {
		p.members[slot].lastSeen = tick
		return
	}
	p.seen++

	if len(p.members) < p.size {
		p.index[id] = len(p.members)
		p.members = append(p.members, panelMember{id: id, joined: tick, lastSeen: tick})
		return
	}

	slot := p.rng.Intn(p.seen)
	if slot >= p.size {
		return
	}
	if tick-p.members[slot].lastSeen <= p.staleAfter {
		return
	}
	delete(p.index, p.members[slot].id)
	p.members[slot] = panelMember{id: id, joined: tick, lastSeen: tick}
	p.index[id] = slot
}

// Remove drops a dead agent, freeing its slot.
func (p *Panel) Remove(id int) {
	slot, ok := p.index[id]
	if !ok {
		return
	}
	last := len(p.members) - 1
	if slot != last {
		p.members[slot] = p.members[last]
		p.index[p.members[slot].id] = slot
	}
	p.members = p.members[:last]
	delete(p.index, id)
}

// Contains reports panel membership.
func (p *Panel) Contains(id int) bool {
	_, ok := p.index[id]
	return ok
}

// IDs returns the current member ids.
func (p *Panel) IDs() []int {
	out := make([]int, len(p.members))
	for i, m := range p.members {
		out[i] = m.id
	}
	return out
}

// Len returns the current member count.
func (p *Panel) Len() int {
	return len(p.members)
}

// Reset empties the panel.
func (p *Panel) Reset() {
	p.members = p.members[:0]
	p.index = make(map[int]int, p.size)
	p.seen = 0
}
