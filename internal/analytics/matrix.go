package analytics

// PairKey identifies an unordered agent pair; Lo < Hi always.
type PairKey struct {
	Lo, Hi int
}

// MakePairKey normalizes an agent pair into its key.
func MakePairKey(a, b int) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

// PairStats accumulates the contact history of one pair across the whole
// run. Hours grow by the step length on every tick the pair is in contact.
type PairStats struct {
	Hours         float64 `json:"hours"`
	LastTick      int     `json:"last_tick"`
	Transmissions int     `json:"transmissions"`
}

// Matrix is the persistent contact matrix. Unlike the windowed counters it
// never resets between windows; Reset clears it only on a full run reset.
type Matrix struct {
	stepHours float64
	cells     map[PairKey]*PairStats
}

// NewMatrix builds an empty matrix accumulating stepHours per contact tick.
func NewMatrix(stepHours float64) *Matrix {
	return &Matrix{stepHours: stepHours, cells: make(map[PairKey]*PairStats)}
}

// RecordContact credits one tick of contact to the pair.
func (m *Matrix) RecordContact(a, b, tick int) {
	cell := m.cell(MakePairKey(a, b))
	cell.Hours += m.stepHours
	cell.LastTick = tick
}

// RecordTransmission credits an infection passed within the pair.
func (m *Matrix) RecordTransmission(a, b, tick int) {
	cell := m.cell(MakePairKey(a, b))
	cell.Transmissions++
	cell.LastTick = tick
}

// Pair returns the accumulated stats for a pair, zero if never in contact.
func (m *Matrix) Pair(a, b int) PairStats {
	if cell, ok := m.cells[MakePairKey(a, b)]; ok {
		return *cell
	}
	return PairStats{}
}

// Len returns the number of pairs ever seen in contact.
func (m *Matrix) Len() int {
	return len(m.cells)
}

// Cells exposes the underlying map for export. Not safe to mutate.
func (m *Matrix) Cells() map[PairKey]*PairStats {
	return m.cells
}

// Reset drops all history.
func (m *Matrix) Reset() {
	m.cells = make(map[PairKey]*PairStats)
}

func (m *Matrix) cell(k PairKey) *PairStats {
	cell, ok := m.cells[k]
	if !ok {
		cell = &PairStats{}
		m.cells[k] = cell
	}
	return cell
}
