package session

// History is a bounded, ordered list of strings kept oldest to newest.
// Recording an item that is already present moves it to the newest slot
// instead of duplicating it.
type History struct {
	items []string
	cap   int
}

// NewHistory returns a history bounded to capacity entries.
func NewHistory(capacity int) *History {
	if capacity < 0 {
		capacity = 0
	}

	return &History{cap: capacity}
}

// Record appends item as the newest entry. Empty items are ignored.
// When the history is full the oldest entry is dropped.
func (h *History) Record(item string) {
	if item == "" || h.cap == 0 {
		return
	}

	for i, existing := range h.items {
		if existing == item {
			h.items = append(h.items[:i], h.items[i+1:]...)

			break
		}
	}

	if len(h.items) == h.cap {
		h.items = h.items[1:]
	}

	h.items = append(h.items, item)
}

// Items returns the entries oldest to newest. The slice is shared; do
// not mutate.
func (h *History) Items() []string {
	return h.items
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.items)
}

// Cap returns the current capacity.
func (h *History) Cap() int {
	return h.cap
}

// Full reports whether recording a new item would drop the oldest one.
func (h *History) Full() bool {
	return len(h.items) >= h.cap
}

// SetCapacity rebounds the history, dropping oldest entries if the new
// capacity is smaller than the current length.
func (h *History) SetCapacity(capacity int) {
	if capacity < 0 {
		capacity = 0
	}

	h.cap = capacity
	if len(h.items) > capacity {
		h.items = append([]string(nil), h.items[len(h.items)-capacity:]...)
	}
}
