// Package queue implements the bounded max-heap used by the heap-based
// k-NN selection strategy.
package queue

import "container/heap"

// Compile time check to ensure MaxHeap satisfies the heap interface.
var _ heap.Interface = (*MaxHeap)(nil)

// Item is one measured training row.
type Item struct {
	Pos      uint32  // Pos is the row's position in the training scan order; it breaks distance ties.
	Label    uint32  // Label is the class id of the training row.
	Distance float64 // Distance is the measured dissimilarity to the query.
}

// Worse reports whether a ranks strictly after b: a greater distance, with
// ties broken by scan position. This total order is shared by all three
// selection strategies so they retain identical neighbor sets.
func Worse(a, b Item) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.Pos > b.Pos
}

// MaxHeap holds up to k items with the worst retained item at the root,
// so the worst can be evicted in O(log k) when a better one arrives.
type MaxHeap struct {
	Items []Item
}

// NewMaxHeap creates a MaxHeap with capacity for k items.
func NewMaxHeap(k int) *MaxHeap {
	return &MaxHeap{Items: make([]Item, 0, k)}
}

// Len returns the number of items in the heap.
func (h *MaxHeap) Len() int { return len(h.Items) }

// Less reports whether the element with index i should sort before the
// element with index j. The root is the worst item, so "before" means worse.
func (h *MaxHeap) Less(i, j int) bool { return Worse(h.Items[i], h.Items[j]) }

// Swap swaps the elements with indexes i and j.
func (h *MaxHeap) Swap(i, j int) { h.Items[i], h.Items[j] = h.Items[j], h.Items[i] }

// Push adds x to the heap. Use heap.Push, not this method directly.
func (h *MaxHeap) Push(x any) {
	item, _ := x.(Item)
	h.Items = append(h.Items, item)
}

// Pop removes and returns the worst retained item. Use heap.Pop.
func (h *MaxHeap) Pop() any {
	old := h.Items
	n := len(old)
	item := old[n-1]
	h.Items = old[:n-1]
	return item
}

// Top returns the worst retained item without removing it.
func (h *MaxHeap) Top() Item { return h.Items[0] }

// ReplaceTop replaces the worst retained item and restores heap order.
func (h *MaxHeap) ReplaceTop(it Item) {
	h.Items[0] = it
	heap.Fix(h, 0)
}
