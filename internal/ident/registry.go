// Package ident maps identifier spellings to palette slots.
package ident

// Registry assigns palette slots to identifier spellings. Spellings are
// compared exactly, so "Foo" and "foo" are distinct. The zero value is
// not usable; create registries with New or AssignFull.
type Registry struct {
	size  int
	slots map[string]int
	order []string
}

// New returns an empty registry for a palette of size k. k < 1 is
// treated as 1.
func New(k int) *Registry {
	return &Registry{
		size:  max(k, 1),
		slots: make(map[string]int),
	}
}

// AssignFull builds a registry from spellings in scan order. The i-th
// distinct spelling gets slot i mod k; repeats keep their first slot.
func AssignFull(spellings []string, k int) *Registry {
	r := New(k)
	for _, s := range spellings {
		if _, ok := r.slots[s]; ok {
			continue
		}
		r.put(s, len(r.order))
	}
	return r
}

func (r *Registry) put(spelling string, n int) int {
	slot := n % r.size
	r.slots[spelling] = slot
	r.order = append(r.order, spelling)
	return slot
}

// Size returns the palette size the registry was built for.
func (r *Registry) Size() int {
	return r.size
}

// Len returns the number of spellings recorded.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Slot returns the slot of spelling.
func (r *Registry) Slot(spelling string) (int, bool) {
	if r == nil {
		return 0, false
	}
	slot, ok := r.slots[spelling]
	return slot, ok
}

// Insert records spelling with the slot n mod Size, unless it is
// already present, and returns its slot.
func (r *Registry) Insert(spelling string, n uint64) int {
	if slot, ok := r.slots[spelling]; ok {
		return slot
	}
	return r.put(spelling, int(n%uint64(r.size)))
}

// Spellings returns the recorded spellings in insertion order.
func (r *Registry) Spellings() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Equal reports whether r and other hold the same assignments.
func (r *Registry) Equal(other *Registry) bool {
	if r.Len() != other.Len() {
		return false
	}
	if r.Len() == 0 {
		return true
	}
	for i, s := range r.order {
		if other.order[i] != s || other.slots[s] != r.slots[s] {
			return false
		}
	}
	return true
}

// Counter hands out rotating slot numbers for spellings first seen
// between full assignments.
type Counter struct {
	n uint64
}

// Next returns the current value and advances the counter.
func (c *Counter) Next() uint64 {
	n := c.n
	c.n++
	return n
}

// Reset restarts the counter at zero.
func (c *Counter) Reset() {
	c.n = 0
}
