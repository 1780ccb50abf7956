package action

import "sync"

// List is a mutable, ordered sequence of actions.
//
// Mutations take a single-writer lock and advance the generation.
// Readers work on snapshots and never see a partially rebuilt list.
//
// List is safe for concurrent use.
type List struct {
	mu      sync.RWMutex
	label   string
	actions []Action
	gen     uint64
}

// NewList creates an empty list.
func NewList(label string) *List {
	return &List{label: label}
}

// Label returns the label given to NewList.
func (l *List) Label() string { return l.label }

// Reset empties the list.
func (l *List) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = nil
	l.gen++
}

// Append adds actions to the end of the list.
func (l *List) Append(actions ...Action) {
	if len(actions) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = append(l.actions, actions...)
	l.gen++
}

// Rebuild replaces the whole list with the actions fn adds to a Builder.
// fn runs without the lock held; the swap itself is atomic.
func (l *List) Rebuild(fn func(*Builder)) {
	var b Builder
	fn(&b)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = b.actions
	l.gen++
}

// Len returns the number of actions.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.actions)
}

// Generation returns the number of mutations so far.
func (l *List) Generation() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.gen
}

// Snapshot is an immutable copy of a list at one generation.
type Snapshot struct {
	Label      string
	Actions    []Action
	Generation uint64
}

// Snapshot copies the current contents.
func (l *List) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Snapshot{
		Label:      l.label,
		Actions:    append([]Action(nil), l.actions...),
		Generation: l.gen,
	}
}

// Builder collects actions for List.Rebuild.
type Builder struct {
	actions []Action
}

// Add appends actions and returns the builder for chaining.
func (b *Builder) Add(actions ...Action) *Builder {
	b.actions = append(b.actions, actions...)
	return b
}

// Len returns the number of actions added so far.
func (b *Builder) Len() int { return len(b.actions) }
