package arena

import (
	"github.com/bits-and-blooms/bitset"
)

// Undefined marks a core distance or reachability that has not been set.
const Undefined = -1.0

// Defined reports whether v holds a real distance.
func Defined(v float64) bool { return v >= 0 }

// Item is the mutable per-element state of an ordering run.
type Item struct {
	// CoreDistance is set once when the element is finalized.
	CoreDistance float64
	// Reachability only decreases after it is first set.
	Reachability float64
	// DistanceToCurrent caches the distance to the element currently being
	// expanded. It is scratch space valid for one neighborhood query.
	DistanceToCurrent float64
}

// Arena stores Items for n elements.
type Arena struct {
	items     []Item
	processed *bitset.BitSet
}

// New creates an Arena for n elements with every distance undefined.
func New(n int) *Arena {
	a := &Arena{
		items:     make([]Item, n),
		processed: bitset.New(uint(n)),
	}
	a.resetItems()

	return a
}

// Len returns the number of elements.
func (a *Arena) Len() int { return len(a.items) }

// Item returns a pointer to the state of element i.
func (a *Arena) Item(i int) *Item { return &a.items[i] }

// Processed reports whether element i has been finalized.
func (a *Arena) Processed(i int) bool { return a.processed.Test(uint(i)) }

// MarkProcessed finalizes element i.
func (a *Arena) MarkProcessed(i int) { a.processed.Set(uint(i)) }

func (a *Arena) resetItems() {
	for i := range a.items {
		a.items[i] = Item{
			CoreDistance:      Undefined,
			Reachability:      Undefined,
			DistanceToCurrent: Undefined,
		}
	}
}

// SizeOf estimates the heap footprint of an Arena for n elements.
func SizeOf(n int) int64 {
	const itemBytes = 24
	words := (int64(n) + 63) / 64

	return int64(n)*itemBytes + words*8
}
