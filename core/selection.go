package core

import (
	"sync"
)

type EntryState int

const (
	// StatePending marks a package the user selected without choosing a version yet
	StatePending EntryState = iota
	StateResolved
)

func (s EntryState) String() string {
	if s == StateResolved {
		return "resolved"
	}
	return "pending"
}

// SelectionEntry is one selected package. The version is only reachable through Version, which reports
// whether the entry is resolved, so a pending entry can never be mistaken for a retrievable one.
type SelectionEntry struct {
	Package PackageSummary
	state   EntryState
	version PackageVersion
}

func PendingEntry(pkg PackageSummary) SelectionEntry {
	return SelectionEntry{Package: pkg, state: StatePending}
}

func ResolvedEntry(pkg PackageSummary, version PackageVersion) SelectionEntry {
	return SelectionEntry{Package: pkg, state: StateResolved, version: version}
}

func (e SelectionEntry) State() EntryState {
	return e.state
}

func (e SelectionEntry) IsResolved() bool {
	return e.state == StateResolved
}

func (e SelectionEntry) Version() (PackageVersion, bool) {
	if e.state != StateResolved {
		return PackageVersion{}, false
	}
	return e.version, true
}

func (e SelectionEntry) clone() SelectionEntry {
	e.Package = e.Package.clone()
	if e.state == StateResolved {
		e.version = e.version.clone()
	}
	return e
}

type ToggleResult int

const (
	MarkedPending ToggleResult = iota
	Deselected
)

func (r ToggleResult) String() string {
	if r == Deselected {
		return "deselected"
	}
	return "selected"
}

// SelectionStore is an insertion ordered set of selected packages keyed by package ID.
// Every operation is applied atomically and in call order.
type SelectionStore struct {
	mu      sync.Mutex
	order   []string
	entries map[string]SelectionEntry
}

func NewSelectionStore() *SelectionStore {
	return &SelectionStore{entries: make(map[string]SelectionEntry)}
}

// Toggle removes the package when present, otherwise records it as pending until a version is assigned
func (s *SelectionStore) Toggle(pkg PackageSummary) ToggleResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[pkg.ID]; ok {
		s.removeLocked(pkg.ID)
		return Deselected
	}
	s.order = append(s.order, pkg.ID)
	s.entries[pkg.ID] = PendingEntry(pkg.clone())
	return MarkedPending
}

// AssignVersion resolves the entry for pkg, inserting it at the end if absent.
// An existing entry keeps its position.
func (s *SelectionStore) AssignVersion(pkg PackageSummary, version PackageVersion) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[pkg.ID]; !ok {
		s.order = append(s.order, pkg.ID)
	}
	s.entries[pkg.ID] = ResolvedEntry(pkg.clone(), version.clone())
}

func (s *SelectionStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return false
	}
	s.removeLocked(id)
	return true
}

func (s *SelectionStore) removeLocked(id string) {
	delete(s.entries, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *SelectionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.entries = make(map[string]SelectionEntry)
}

func (s *SelectionStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[id]
	return ok
}

func (s *SelectionStore) Get(id string) (SelectionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return SelectionEntry{}, false
	}
	return e.clone(), true
}

func (s *SelectionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.order)
}

// Snapshot returns a copy of every entry in insertion order. Later store mutations do not affect it.
func (s *SelectionStore) Snapshot() []SelectionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SelectionEntry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id].clone())
	}
	return out
}
