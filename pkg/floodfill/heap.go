package floodfill

import "github.com/azybler/floodfill_pt/pkg/model"

// pqElement is a priority queue element: an ordered (cost, node) pair
// with min-cost precedence, per spec.md §4.1.
type pqElement struct {
	cost model.Cost
	node model.NodeID
}

// minHeap is a concrete-typed binary min-heap over pqElement, keyed on
// cost ascending. Concrete-typed rather than container/heap to avoid
// interface-dispatch overhead on the per-origin hot loop.
type minHeap struct {
	items []pqElement
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) Push(e pqElement) {
	h.items = append(h.items, e)
	h.siftUp(len(h.items) - 1)
}

func (h *minHeap) Pop() pqElement {
	n := len(h.items)
	top := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *minHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].cost >= h.items[parent].cost {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *minHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].cost < h.items[smallest].cost {
			smallest = left
		}
		if right < n && h.items[right].cost < h.items[smallest].cost {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
