// Package wordlib holds the in-memory word library and its text format.
//
// A WordLib maps a term to its entry. Terms are trimmed of surrounding
// whitespace and compared exactly (case-sensitive). Inserting an existing
// term overwrites it.
//
// # Usage
//
//	lib := wordlib.New()
//	if err := lib.Upsert("hello", "你好"); err != nil {
//		// errors.Is(err, wordlib.ErrInvalidEntry)
//	}
//	text := lib.Serialize()
//	again, err := wordlib.Parse(text)
package wordlib

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mrlokans/wordbook/internal/entities"
)

// ErrInvalidEntry is returned when an entry has a blank term or an
// unknown category.
var ErrInvalidEntry = errors.New("invalid entry")

// WordLib is a collection of word entries keyed by term.
// It is safe for concurrent use.
type WordLib struct {
	mu       sync.RWMutex
	entries  map[string]entities.Entry
	revision uint64
}

// New returns an empty WordLib.
func New() *WordLib {
	return &WordLib{entries: make(map[string]entities.Entry)}
}

// NormalizeTerm trims surrounding whitespace from a term.
func NormalizeTerm(term string) string {
	return strings.TrimSpace(term)
}

// Size returns the number of entries.
func (l *WordLib) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Upsert inserts or overwrites the definition for term.
func (l *WordLib) Upsert(term, definition string) error {
	return l.Put(entities.Entry{Term: term, Definition: definition})
}

// Put inserts or overwrites an entry. The stored term is trimmed. A blank
// term or a category outside the known set is rejected with ErrInvalidEntry,
// so every stored entry can be serialized and parsed back.
func (l *WordLib) Put(entry entities.Entry) error {
	entry.Term = NormalizeTerm(entry.Term)
	if entry.Term == "" {
		return ErrInvalidEntry
	}
	for _, c := range entry.Categories {
		if !c.Valid() {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidEntry, string(c))
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[entry.Term] = entry.Clone()
	l.revision++
	return nil
}

// Lookup returns the entry stored for term.
func (l *WordLib) Lookup(term string) (entities.Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.entries[NormalizeTerm(term)]
	if !ok {
		return entities.Entry{}, false
	}
	return entry.Clone(), true
}

// Contains reports whether term is present.
func (l *WordLib) Contains(term string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[NormalizeTerm(term)]
	return ok
}

// Remove deletes term and reports whether it was present.
func (l *WordLib) Remove(term string) bool {
	term = NormalizeTerm(term)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[term]; !ok {
		return false
	}
	delete(l.entries, term)
	l.revision++
	return true
}

// Clear removes every entry.
func (l *WordLib) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return
	}
	l.entries = make(map[string]entities.Entry)
	l.revision++
}

// Terms returns all terms in ascending order.
func (l *WordLib) Terms() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	terms := make([]string, 0, len(l.entries))
	for term := range l.entries {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Entries returns copies of all entries ordered by term.
func (l *WordLib) Entries() []entities.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := make([]entities.Entry, 0, len(l.entries))
	for _, entry := range l.entries {
		entries = append(entries, entry.Clone())
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// ByCategory returns copies of the entries tagged with c, ordered by term.
func (l *WordLib) ByCategory(c entities.Category) []entities.Entry {
	entries := []entities.Entry{}
	for _, entry := range l.Entries() {
		if entry.HasCategory(c) {
			entries = append(entries, entry)
		}
	}
	return entries
}

// CategoryCounts returns how many entries carry each category. Untagged
// entries are not counted.
func (l *WordLib) CategoryCounts() map[entities.Category]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	counts := make(map[entities.Category]int)
	for _, entry := range l.entries {
		seen := make(map[entities.Category]bool, len(entry.Categories))
		for _, c := range entry.Categories {
			if !seen[c] {
				seen[c] = true
				counts[c]++
			}
		}
	}
	return counts
}

// Merge copies entries from other whose terms are not yet present and
// returns how many were added. Existing entries are kept.
func (l *WordLib) Merge(other *WordLib) int {
	if other == nil || other == l {
		return 0
	}
	incoming := other.Entries()

	l.mu.Lock()
	defer l.mu.Unlock()
	added := 0
	for _, entry := range incoming {
		if _, ok := l.entries[entry.Term]; ok {
			continue
		}
		l.entries[entry.Term] = entry
		added++
	}
	if added > 0 {
		l.revision++
	}
	return added
}

// Revision is a counter bumped by every mutation. Callers compare it
// against a remembered value to tell whether the library changed.
func (l *WordLib) Revision() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.revision
}
