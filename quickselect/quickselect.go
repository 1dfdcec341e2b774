// Package quickselect implements deterministic k-th order statistic selection.
//
// Select uses median-of-medians pivoting, so the worst case stays linear in
// the number of elements regardless of input order. The slice is reordered
// in place; no allocations are made.
package quickselect

import "fmt"

// Func is the signature shared by selection strategies.
//
// A Func reorders items and returns the position of the element that would be
// at index k if items were sorted by cmp.
type Func[E any] func(items []E, k int, cmp func(a, b E) int) int

// Select reorders items so that the element of rank k (0-based) ends up at a
// position it returns. Elements before that position compare less than it.
//
// Select panics if k is outside [0, len(items)).
func Select[E any](items []E, k int, cmp func(a, b E) int) int {
	if k < 0 || k >= len(items) {
		panic(fmt.Sprintf("quickselect: rank %d out of range [0, %d)", k, len(items)))
	}
	return selectRange(items, 0, len(items)-1, k, cmp)
}

func selectRange[E any](items []E, left, right, k int, cmp func(a, b E) int) int {
	for {
		if left == right {
			return left
		}

		p := partition(items, left, right, pivot(items, left, right, cmp), cmp)

		switch {
		case k == p:
			return k
		case k < p:
			right = p - 1
		default:
			left = p + 1
		}
	}
}

// pivot returns the position of an approximate median of items[left:right+1].
func pivot[E any](items []E, left, right int, cmp func(a, b E) int) int {
	if right-left < 5 {
		return median5(items, left, right, cmp)
	}

	// Move the median of each group of five to the front of the range.
	for i := left; i <= right; i += 5 {
		end := min(i+4, right)
		m := median5(items, i, end, cmp)
		dst := left + (i-left)/5
		items[m], items[dst] = items[dst], items[m]
	}

	last := left + (right-left)/5
	mid := left + (right-left)/10

	return selectRange(items, left, last, mid, cmp)
}

// partition moves every element smaller than the pivot in front of it and
// returns the pivot's final position.
func partition[E any](items []E, left, right, pivotIndex int, cmp func(a, b E) int) int {
	pv := items[pivotIndex]
	items[pivotIndex], items[right] = items[right], items[pivotIndex]

	store := left
	for i := left; i < right; i++ {
		if cmp(items[i], pv) < 0 {
			items[store], items[i] = items[i], items[store]
			store++
		}
	}

	items[right], items[store] = items[store], items[right]

	return store
}

// median5 insertion-sorts a group of at most five elements and returns the
// position of its median.
func median5[E any](items []E, left, right int, cmp func(a, b E) int) int {
	for i := left + 1; i <= right; i++ {
		for j := i; j > left && cmp(items[j-1], items[j]) > 0; j-- {
			items[j-1], items[j] = items[j], items[j-1]
		}
	}

	return left + (right-left)/2
}
