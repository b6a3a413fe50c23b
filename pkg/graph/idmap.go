package graph

// IDMap translates between external (original) node ids and the dense
// internal ids used by the engine.
type IDMap struct {
	originals []uint64
	mapped    map[uint64]int64
	highest   uint64
}

func newIDMap(capacity int) *IDMap {
	return &IDMap{
		originals: make([]uint64, 0, capacity),
		mapped:    make(map[uint64]int64, capacity),
	}
}

// add maps original to the next dense id, returning the existing id if
// original was already added.
func (m *IDMap) add(original uint64) int64 {
	if id, ok := m.mapped[original]; ok {
		return id
	}
	id := int64(len(m.originals))
	m.originals = append(m.originals, original)
	m.mapped[original] = id
	if original > m.highest {
		m.highest = original
	}
	return id
}

// ToMapped returns the internal id of an external id
func (m *IDMap) ToMapped(original uint64) (int64, bool) {
	id, ok := m.mapped[original]
	return id, ok
}

// ToOriginal returns the external id of an internal id
func (m *IDMap) ToOriginal(mapped int64) uint64 {
	return m.originals[mapped]
}

// Contains reports whether the external id is part of the graph
func (m *IDMap) Contains(original uint64) bool {
	_, ok := m.mapped[original]
	return ok
}

// NodeCount returns the number of mapped nodes
func (m *IDMap) NodeCount() int64 {
	return int64(len(m.originals))
}

// HighestOriginalID returns the largest external id seen
func (m *IDMap) HighestOriginalID() uint64 {
	return m.highest
}
