package pipeline

// btbEntry records the target the branch target buffer last observed for
// a given PC.
type btbEntry struct {
	target uint64
	valid  bool
}

// BTB is a branch target buffer keyed exactly by PC. Unlike a fixed-size,
// index-aliasing table, a flat map never collides two different branch
// PCs onto the same slot, so a lookup hit always names the right target.
type BTB struct {
	entries map[uint64]btbEntry
	hits    uint64
	misses  uint64
}

// NewBTB creates an empty branch target buffer.
func NewBTB() *BTB {
	return &BTB{entries: make(map[uint64]btbEntry)}
}

// Lookup returns the last target recorded for pc and whether it was found.
func (b *BTB) Lookup(pc uint64) (uint64, bool) {
	entry, ok := b.entries[pc]
	if !ok || !entry.valid {
		b.misses++
		return 0, false
	}
	b.hits++
	return entry.target, true
}

// Update records the resolved target for a branch at pc.
func (b *BTB) Update(pc, target uint64) {
	b.entries[pc] = btbEntry{target: target, valid: true}
}

// HitRate returns the fraction of lookups that found a recorded target,
// as a percentage.
func (b *BTB) HitRate() float64 {
	total := b.hits + b.misses
	if total == 0 {
		return 0
	}
	return float64(b.hits) / float64(total) * 100
}

// Reset clears all recorded targets and hit/miss counters.
func (b *BTB) Reset() {
	b.entries = make(map[uint64]btbEntry)
	b.hits = 0
	b.misses = 0
}
