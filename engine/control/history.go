package control

// HistoryCapacity is the number of command log entries retained.
const HistoryCapacity = 5

// History is a fixed-capacity ring of command log entries, most recent first.
// Pushing past capacity overwrites the oldest entry. The zero value is empty and ready to use.
type History struct {
	entries [HistoryCapacity]string
	start   int
	n       int
}

// PushFront inserts a batch of entries at the front so that batch[0] becomes the most recent entry
// and the rest follow in order.
//
// Parameters:
//   - batch: the entries to insert
func (h *History) PushFront(batch ...string) {
	for i := len(batch) - 1; i >= 0; i-- {
		h.start = (h.start - 1 + HistoryCapacity) % HistoryCapacity
		h.entries[h.start] = batch[i]
		if h.n < HistoryCapacity {
			h.n++
		}
	}
}

// Entries returns a copy of the retained entries, most recent first.
//
// Returns:
//   - []string: the entries
func (h *History) Entries() []string {
	out := make([]string, h.n)
	for i := range out {
		out[i] = h.entries[(h.start+i)%HistoryCapacity]
	}
	return out
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	return h.n
}

// Clear removes every entry.
func (h *History) Clear() {
	*h = History{}
}
