// Package sharelist keeps the user's ordered, de-duplicated share list.
//
// Entries are keyed by display name. Two different shows with the same name
// collide; there is no stable identifier in the season documents to do better.
package sharelist

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/seasonshare/internal/domain"
)

// Persister stores the full list after every mutation
type Persister interface {
	ShareList(ctx context.Context) ([]domain.ShareEntry, error)
	SetShareList(ctx context.Context, list []domain.ShareEntry) error
}

// Target selects an entry to remove, by position or by name
type Target struct {
	index  int
	name   string
	byName bool
}

// Index targets the entry at position i
func Index(i int) Target { return Target{index: i} }

// Name targets the entry called name
func Name(name string) Target { return Target{name: name, byName: true} }

type Manager struct {
	log   zerolog.Logger
	store Persister

	mu      sync.Mutex
	entries []domain.ShareEntry
}

// New loads the persisted list and returns a manager owning it
func New(ctx context.Context, log zerolog.Logger, store Persister) (*Manager, error) {
	entries, err := store.ShareList(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load share list")
	}

	m := &Manager{
		log:   log.With().Str("module", "sharelist").Logger(),
		store: store,
	}

	// drop duplicates a hand-edited store may contain
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		m.entries = append(m.entries, e)
	}

	return m, nil
}

// Add appends entry unless one with the same name exists, in which case it
// returns domain.ErrDuplicateEntry and leaves the list unchanged.
func (m *Manager) Add(ctx context.Context, entry domain.ShareEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(entry.Name) >= 0 {
		return errors.Wrapf(domain.ErrDuplicateEntry, "%s", entry.Name)
	}

	m.entries = append(m.entries, entry)
	if err := m.persist(ctx); err != nil {
		return err
	}

	m.log.Debug().Str("name", entry.Name).Int("len", len(m.entries)).Msg("added to share list")
	return nil
}

// Remove deletes the targeted entry. A target that matches nothing is a no-op
// and reports false.
func (m *Manager) Remove(ctx context.Context, t Target) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := t.index
	if t.byName {
		i = m.indexOf(t.name)
	}
	if i < 0 || i >= len(m.entries) {
		return false, nil
	}

	removed := m.entries[i]
	m.entries = append(m.entries[:i:i], m.entries[i+1:]...)
	if err := m.persist(ctx); err != nil {
		return true, err
	}

	m.log.Debug().Str("name", removed.Name).Int("len", len(m.entries)).Msg("removed from share list")
	return true, nil
}

// Clear empties the list, used after a successful export
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = nil
	return m.persist(ctx)
}

// List returns a copy of the current entries
func (m *Manager) List() []domain.ShareEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.ShareEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Contains reports whether an entry named name is in the list
func (m *Manager) Contains(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexOf(name) >= 0
}

func (m *Manager) indexOf(name string) int {
	for i, e := range m.entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// persist must be called with mu held
func (m *Manager) persist(ctx context.Context) error {
	if err := m.store.SetShareList(ctx, m.entries); err != nil {
		return errors.Wrap(err, "failed to persist share list")
	}
	return nil
}
