package container

// Unordered is a growable list that does not preserve insertion order.
//
// RemoveAt runs in constant time by moving the last element into the vacated
// slot. Backing storage is reused across Clear calls.
type Unordered[T any] struct {
	items []T
}

// NewUnordered creates a list with room for capacity elements.
func NewUnordered[T any](capacity int) *Unordered[T] {
	return &Unordered[T]{items: make([]T, 0, capacity)}
}

// Add appends v.
func (u *Unordered[T]) Add(v T) {
	u.items = append(u.items, v)
}

// At returns the element at position i.
func (u *Unordered[T]) At(i int) T {
	return u.items[i]
}

// Len returns the number of elements.
func (u *Unordered[T]) Len() int {
	return len(u.items)
}

// Clear removes all elements and keeps the allocated storage.
func (u *Unordered[T]) Clear() {
	clear(u.items)
	u.items = u.items[:0]
}

// RemoveAt removes and returns the element at position i.
// The former last element takes its place.
func (u *Unordered[T]) RemoveAt(i int) T {
	v := u.items[i]
	last := len(u.items) - 1
	u.items[i] = u.items[last]

	var zero T
	u.items[last] = zero
	u.items = u.items[:last]

	return v
}

// Items returns the live backing slice. Callers may reorder it but must not
// retain it across mutations.
func (u *Unordered[T]) Items() []T {
	return u.items
}
