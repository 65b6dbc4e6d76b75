package store

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Nomadcxx/namesink/internal/names"
	"github.com/Nomadcxx/namesink/internal/notify"
)

// SourceFile references an original file. It is never mutated.
type SourceFile struct {
	Name string
	Size int64
	Path string // content handle, empty for in-memory sources
}

// Item is one row of the rename list
type Item struct {
	ID        string
	Source    SourceFile
	Candidate string
	Order     int
}

// Modified reports whether the candidate differs from the original name
func (i Item) Modified() bool {
	return names.IsModified(i.Source.Name, i.Candidate)
}

// Validation recomputes the validation result for the candidate
func (i Item) Validation() names.ValidationResult {
	return names.Validate(i.Candidate)
}

// Snapshot is an immutable view of the collection.
// Every mutation produces a new Items slice and a higher Version.
type Snapshot struct {
	Version uint64
	Items   []Item
}

// Store holds the ordered rename list.
// It is not safe for concurrent use; a single goroutine owns it.
type Store struct {
	snap Snapshot
	sink notify.Sink
}

// New creates an empty store. sink may be nil.
func New(sink notify.Sink) *Store {
	return &Store{sink: sink}
}

// Snapshot returns the current view
func (s *Store) Snapshot() Snapshot {
	return s.snap
}

// Len returns the number of items
func (s *Store) Len() int {
	return len(s.snap.Items)
}

// Get returns the item with the given id
func (s *Store) Get(id string) (Item, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Item{}, false
	}
	return s.snap.Items[i], true
}

// Initialize replaces the collection wholesale with fresh items in input order
func (s *Store) Initialize(files []SourceFile) Snapshot {
	items := make([]Item, 0, len(files))
	used := make(map[string]bool, len(files))
	for i, f := range files {
		items = append(items, newItem(i, f, used))
	}
	return s.commit(items)
}

// Add appends files to the collection, keeping existing items and their ids
func (s *Store) Add(files []SourceFile) Snapshot {
	if len(files) == 0 {
		return s.snap
	}

	items := s.clone(len(files))
	used := make(map[string]bool, len(items)+len(files))
	for _, it := range items {
		used[it.ID] = true
	}

	start := len(items)
	for i, f := range files {
		items = append(items, newItem(start+i, f, used))
	}

	snap := s.commit(items)
	notify.Send(s.sink, notify.FilesAdded(len(files)))
	log.Debug().Int("added", len(files)).Int("total", len(items)).Msg("files added to rename list")
	return snap
}

// Reorder moves the dragged item to the target item's position.
// Items in between shift by one. Equal or unknown ids leave the collection unchanged.
func (s *Store) Reorder(draggedID, targetID string) Snapshot {
	if draggedID == targetID {
		return s.snap
	}

	from := s.indexOf(draggedID)
	to := s.indexOf(targetID)
	if from < 0 || to < 0 {
		missing := draggedID
		if from >= 0 {
			missing = targetID
		}
		notFound("reorder", missing)
		return s.snap
	}

	items := s.clone(0)
	moved := items[from]
	if from < to {
		copy(items[from:to], items[from+1:to+1])
	} else {
		copy(items[to+1:from+1], items[to:from])
	}
	items[to] = moved

	return s.commit(items)
}

// Rename stores the reconciled candidate name for an item.
// Returns false when the id is unknown; that is a caller bug and is only logged.
func (s *Store) Rename(id, raw string) (Item, bool) {
	i := s.indexOf(id)
	if i < 0 {
		notFound("rename", id)
		return Item{}, false
	}

	items := s.clone(0)
	items[i].Candidate = names.Reconcile(items[i].Source.Name, raw)
	s.commit(items)

	return s.snap.Items[i], true
}

// Remove drops the given items. Unknown ids are ignored.
func (s *Store) Remove(ids ...string) Snapshot {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	items := make([]Item, 0, len(s.snap.Items))
	for _, it := range s.snap.Items {
		if !drop[it.ID] {
			items = append(items, it)
		}
	}

	if len(items) == len(s.snap.Items) {
		return s.snap
	}
	return s.commit(items)
}

// Clear removes every item at the user's request and reports it
func (s *Store) Clear() Snapshot {
	snap := s.Reset()
	notify.Send(s.sink, notify.FilesCleared())
	return snap
}

// Reset removes every item without notifying the sink
func (s *Store) Reset() Snapshot {
	return s.commit(nil)
}

// ValidateAll validates every candidate. Results are recomputed on each call.
func (s *Store) ValidateAll() map[string]names.ValidationResult {
	results := make(map[string]names.ValidationResult, len(s.snap.Items))
	for _, it := range s.snap.Items {
		results[it.ID] = it.Validation()
	}
	return results
}

// Validation returns the validation result for one item
func (s *Store) Validation(id string) (names.ValidationResult, bool) {
	it, ok := s.Get(id)
	if !ok {
		notFound("validate", id)
		return names.ValidationResult{}, false
	}
	return it.Validation(), true
}

// IsModified reports whether an item's candidate differs from its original name
func (s *Store) IsModified(id string) bool {
	it, ok := s.Get(id)
	if !ok {
		notFound("is_modified", id)
		return false
	}
	return it.Modified()
}

// Modified returns the modified items in order
func (s *Store) Modified() []Item {
	var out []Item
	for _, it := range s.snap.Items {
		if it.Modified() {
			out = append(out, it)
		}
	}
	return out
}

// ModifiedCount counts items whose candidate differs from the original name
func (s *Store) ModifiedCount() int {
	return len(s.Modified())
}

// ValidCount counts items whose candidate passes validation
func (s *Store) ValidCount() int {
	count := 0
	for _, it := range s.snap.Items {
		if it.Validation().Valid {
			count++
		}
	}
	return count
}

// HasValidationErrors reports whether any candidate fails validation
func (s *Store) HasValidationErrors() bool {
	return s.ValidCount() < len(s.snap.Items)
}

func (s *Store) indexOf(id string) int {
	for i, it := range s.snap.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// clone copies the current items into a fresh slice with room for extra
func (s *Store) clone(extra int) []Item {
	items := make([]Item, len(s.snap.Items), len(s.snap.Items)+extra)
	copy(items, s.snap.Items)
	return items
}

// commit renumbers Order and publishes a new snapshot
func (s *Store) commit(items []Item) Snapshot {
	for i := range items {
		items[i].Order = i
	}
	s.snap = Snapshot{Version: s.snap.Version + 1, Items: items}
	return s.snap
}

// newItem derives an id from position and name, suffixing until it is unused
func newItem(pos int, f SourceFile, used map[string]bool) Item {
	base := fmt.Sprintf("file-%d-%s", pos, f.Name)
	id := base
	for n := 2; used[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	used[id] = true

	return Item{ID: id, Source: f, Candidate: f.Name, Order: pos}
}

func notFound(op, id string) {
	log.Warn().Str("op", op).Str("id", id).Msg("unknown item id")
}
