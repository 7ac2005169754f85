// Package state tracks per-conversation search state: whether the next
// free-text message from a conversation should be interpreted as a search
// query. Like the search engine, it is a small dependency-free component;
// callers decide what to log.
//
// State lives in volatile memory only. A conversation that is never
// referenced has no entry and reads as Idle; abandoned conversations need no
// cleanup for correctness.
package state

import "sync"

// Phase is the per-conversation search phase.
type Phase int

const (
	// Idle is the default phase: free text is ordinary chat.
	Idle Phase = iota
	// AwaitingQuery means the next free-text message is a search query.
	AwaitingQuery
)

// String returns a label for logs.
func (p Phase) String() string {
	if p == AwaitingQuery {
		return "awaiting_query"
	}
	return "idle"
}

// Key identifies a conversation: the chat/user pair that scopes search state.
type Key struct {
	ChatID int64
	UserID int64
}

// Tracker owns the conversation state mapping. Safe for concurrent use;
// operations on distinct keys do not contend beyond the single mutex, and no
// cross-conversation ordering is implied.
type Tracker struct {
	mu     sync.Mutex
	phases map[Key]Phase
}

// NewTracker returns an empty tracker. All keys read as Idle.
func NewTracker() *Tracker {
	return &Tracker{phases: make(map[Key]Phase)}
}

// Phase returns the current phase for k. Absent keys are Idle.
func (t *Tracker) Phase(k Key) Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phases[k]
}

// Arm moves k to AwaitingQuery: the next free-text message from this
// conversation will be treated as a search query. Arming an already-armed
// conversation is a no-op.
func (t *Tracker) Arm(k Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases[k] = AwaitingQuery
}

// Take consumes the AwaitingQuery phase for k exactly once: it reports
// whether k was armed and resets it to Idle either way. The phase is cleared
// even when the message that triggered the call turns out to be unusable as
// a query, so a conversation can never get stuck awaiting.
func (t *Tracker) Take(k Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	armed := t.phases[k] == AwaitingQuery
	delete(t.phases, k)
	return armed
}
