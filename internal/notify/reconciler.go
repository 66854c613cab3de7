package notify

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Reconciler merges notifications from the pull-based history fetch and the
// push channel into one ordered, deduplicated view. The fetched copy of an
// identity wins over the pushed copy because only the fetch carries an
// authoritative Read flag.
type Reconciler struct {
	mu      sync.Mutex
	fetched []Notification
	pushed  []Notification
	log     zerolog.Logger
}

// NewReconciler creates an empty reconciler.
func NewReconciler(log zerolog.Logger) *Reconciler {
	return &Reconciler{log: log}
}

// SetFetched replaces the batch from the history fetch. Re-fetching
// recomputes the merge rather than accumulating duplicates; pushed entries
// already covered by the new batch are dropped.
func (r *Reconciler) SetFetched(batch []Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fetched = append([]Notification(nil), batch...)

	inBatch := make(map[string]bool, len(batch))
	for _, n := range batch {
		inBatch[n.ID] = true
	}
	kept := r.pushed[:0]
	for _, n := range r.pushed {
		if !inBatch[n.ID] {
			kept = append(kept, n)
		}
	}
	r.pushed = kept

	r.log.Debug().
		Int("fetched", len(r.fetched)).
		Int("pushed_kept", len(r.pushed)).
		Msg("notification batch reconciled")
}

// AddPushed records a notification from the push channel. A pushed identity
// already known from the fetch is ignored; the fetched copy stays.
func (r *Reconciler) AddPushed(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.fetched {
		if f.ID == n.ID {
			return
		}
	}
	for _, p := range r.pushed {
		if p.ID == n.ID {
			return
		}
	}
	r.pushed = append(r.pushed, n)
}

// Merged returns the combined view, most recent first, each identity exactly
// once.
func (r *Reconciler) Merged() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged := make([]Notification, 0, len(r.fetched)+len(r.pushed))
	merged = append(merged, r.fetched...)
	merged = append(merged, r.pushed...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged
}

// Unread returns how many notifications in the merged view are unread.
func (r *Reconciler) Unread() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, n := range r.fetched {
		if !n.Read {
			count++
		}
	}
	for _, n := range r.pushed {
		if !n.Read {
			count++
		}
	}
	return count
}
