package pulse

import (
	"sort"
	"sync"
)

// wildcardEntry pairs a stored wildcard pattern with its listener.
type wildcardEntry struct {
	pattern  string
	listener Listener
}

// Registry owns all live subscriptions. Exact-name subscriptions live in a
// per-event bucket; wildcard subscriptions live in a single ordered list.
// Both buckets are kept sorted by (priority, identifier).
//
// All methods are safe for concurrent use. ExtractForEvent performs its
// read-and-prune step under one lock acquisition, which is what keeps a
// once-listener from firing twice when two publishes race.
type Registry struct {
	mu        sync.Mutex
	exact     map[string][]Listener
	wildcards []wildcardEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		exact: make(map[string][]Listener),
	}
}

// Add registers a listener under an event name or wildcard pattern.
// It returns false without registering when allowDuplicates is false and a
// listener with the same identifier already exists under the same key.
func (r *Registry) Add(key string, l Listener, allowDuplicates bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if isPattern(key) {
		if !allowDuplicates {
			for _, e := range r.wildcards {
				if e.pattern == key && e.listener.ID == l.ID {
					return false
				}
			}
		}
		r.wildcards = append(r.wildcards, wildcardEntry{pattern: key, listener: l})
		sortWildcards(r.wildcards)
		return true
	}

	bucket := r.exact[key]
	if !allowDuplicates {
		for _, existing := range bucket {
			if existing.ID == l.ID {
				return false
			}
		}
	}
	bucket = append(bucket, l)
	sortListeners(bucket)
	r.exact[key] = bucket
	return true
}

// Remove deletes every listener registered under the given key with the
// given identifier, checking both the exact and wildcard buckets. It returns
// whether anything was removed.
func (r *Registry) Remove(key, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := false

	if bucket, ok := r.exact[key]; ok {
		kept := bucket[:0]
		for _, l := range bucket {
			if l.ID == id {
				removed = true
				continue
			}
			kept = append(kept, l)
		}
		if len(kept) == 0 {
			delete(r.exact, key)
		} else {
			r.exact[key] = kept
		}
	}

	kept := r.wildcards[:0]
	for _, e := range r.wildcards {
		if e.pattern == key && e.listener.ID == id {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	r.wildcards = kept

	return removed
}

// ExtractForEvent returns the snapshot of listeners matched to one publish:
// all exact listeners for the event name plus all wildcard listeners whose
// pattern matches it, sorted by (priority, identifier). Matched listeners
// with Once set are pruned from storage in the same step.
func (r *Registry) ExtractForEvent(eventName string) []Listener {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []Listener

	if bucket, ok := r.exact[eventName]; ok {
		matched = append(matched, bucket...)
		kept := make([]Listener, 0, len(bucket))
		for _, l := range bucket {
			if l.Once {
				continue
			}
			kept = append(kept, l)
		}
		if len(kept) == 0 {
			delete(r.exact, eventName)
		} else {
			r.exact[eventName] = kept
		}
	}

	pruned := false
	for _, e := range r.wildcards {
		if Matches(eventName, e.pattern) {
			matched = append(matched, e.listener)
			if e.listener.Once {
				pruned = true
			}
		}
	}
	if pruned {
		kept := r.wildcards[:0]
		for _, e := range r.wildcards {
			if e.listener.Once && Matches(eventName, e.pattern) {
				continue
			}
			kept = append(kept, e)
		}
		r.wildcards = kept
	}

	sortListeners(matched)
	return matched
}

// ClearAll removes every subscription and returns how many there were.
func (r *Registry) ClearAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := len(r.wildcards)
	for _, bucket := range r.exact {
		count += len(bucket)
	}
	r.exact = make(map[string][]Listener)
	r.wildcards = nil
	return count
}

// CountForEvent returns how many listeners would match the given event name:
// exact subscribers plus wildcard subscribers whose pattern matches.
func (r *Registry) CountForEvent(eventName string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := len(r.exact[eventName])
	for _, e := range r.wildcards {
		if Matches(eventName, e.pattern) {
			count++
		}
	}
	return count
}

// TotalCount returns the number of live subscriptions.
func (r *Registry) TotalCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := len(r.wildcards)
	for _, bucket := range r.exact {
		count += len(bucket)
	}
	return count
}

// EventKeys returns the sorted union of exact event names and wildcard
// patterns with at least one subscriber.
func (r *Registry) EventKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(r.exact)+len(r.wildcards))
	for name := range r.exact {
		seen[name] = struct{}{}
	}
	for _, e := range r.wildcards {
		seen[e.pattern] = struct{}{}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortListeners(ls []Listener) {
	sort.SliceStable(ls, func(i, j int) bool {
		if ls[i].Priority != ls[j].Priority {
			return ls[i].Priority < ls[j].Priority
		}
		return ls[i].ID < ls[j].ID
	})
}

func sortWildcards(es []wildcardEntry) {
	sort.SliceStable(es, func(i, j int) bool {
		if es[i].listener.Priority != es[j].listener.Priority {
			return es[i].listener.Priority < es[j].listener.Priority
		}
		return es[i].listener.ID < es[j].listener.ID
	})
}
