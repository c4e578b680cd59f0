package voice

// MaxHistory is how many transcripts a History keeps
const MaxHistory = 10

// History is a bounded, most-recent-first list of processed transcripts.
// It is diagnostic only: matching never reads it.
type History struct {
	entries  []string
	capacity int
}

// NewHistory creates a history holding at most capacity entries
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = MaxHistory
	}
	return &History{
		entries:  make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Add records a transcript, evicting the oldest entry when full
func (h *History) Add(transcript string) {
	if len(h.entries) == h.capacity {
		h.entries = h.entries[:h.capacity-1]
	}
	h.entries = append([]string{transcript}, h.entries...)
}

// Entries returns a copy of the history, most recent first
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of recorded transcripts
func (h *History) Len() int {
	return len(h.entries)
}
