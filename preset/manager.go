package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"randpipe/picker"
)

// Manager handles loading, saving, and updating the preset store.
type Manager struct {
	mu       sync.RWMutex
	filePath string
	store    PresetStore
}

// NewManager loads the preset store from filePath, or creates an empty store
// if the file does not exist. Returns an error only on unexpected I/O failures
// or a corrupt file.
func NewManager(filePath string) (*Manager, error) {
	m := &Manager{filePath: filePath, store: emptyStore()}
	store, err := readStore(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, nil
		}
		return nil, err
	}
	m.store = store
	return m, nil
}

// Path returns the file backing the store.
func (m *Manager) Path() string {
	return m.filePath
}

// Get returns a snapshot of the current store.
func (m *Manager) Get() PresetStore {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyStore(m.store)
}

// Find returns the preset with the given id.
func (m *Manager) Find(id string) (Preset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store.Presets {
		if p.ID == id {
			p.Options = p.Options.Clone()
			return p, nil
		}
	}
	return Preset{}, ErrNotFound
}

// Save cleans store, writes it atomically to disk, then updates in-memory
// state. Presets with a blank title are dropped, options are trimmed and
// blank ones removed, missing IDs are generated and recentlyUsed keeps only
// known IDs.
func (m *Manager) Save(store PresetStore) error {
	store = sanitize(store)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeAtomic(store); err != nil {
		return err
	}
	m.store = store
	return nil
}

// MarkUsed prepends id to the recentlyUsed list (deduplicating, capping at 10,
// and filtering out IDs that no longer exist in presets). A non-existent id is
// silently ignored.
func (m *Manager) MarkUsed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	known := presetIDs(m.store.Presets)
	if !known[id] {
		return nil
	}

	m.store.RecentlyUsed = mru(id, m.store.RecentlyUsed, known)
	return m.writeAtomic(m.store)
}

// reload replaces the in-memory store with the file's contents. The read
// happens under the write lock so a concurrent Save or MarkUsed cannot be
// overwritten by an older copy of the file.
func (m *Manager) reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	store, err := readStore(m.filePath)
	if err != nil {
		return err
	}
	m.store = store
	return nil
}

// writeAtomic writes to a temp file then renames it over filePath.
// Caller must hold m.mu.
func (m *Manager) writeAtomic(store PresetStore) error {
	dir := filepath.Dir(m.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create preset dir: %w", err)
	}

	tmp := m.filePath + ".tmp"
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write presets: %w", err)
	}
	return os.Rename(tmp, m.filePath)
}

func readStore(path string) (PresetStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PresetStore{}, err
	}
	var store PresetStore
	if err := json.Unmarshal(data, &store); err != nil {
		return PresetStore{}, fmt.Errorf("parse %s: %w", path, err)
	}
	// Hand-edited files get the same cleanup as Save.
	return sanitize(store), nil
}

func sanitize(store PresetStore) PresetStore {
	presets := make([]Preset, 0, len(store.Presets))
	for _, p := range store.Presets {
		p.Title = strings.TrimSpace(p.Title)
		if p.Title == "" {
			continue
		}
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.Options = picker.Clean(p.Options)
		presets = append(presets, p)
	}

	known := presetIDs(presets)
	ru := make([]string, 0, len(store.RecentlyUsed))
	seen := map[string]bool{}
	for _, id := range store.RecentlyUsed {
		if known[id] && !seen[id] && len(ru) < maxRecentlyUsed {
			seen[id] = true
			ru = append(ru, id)
		}
	}
	return PresetStore{Presets: presets, RecentlyUsed: ru}
}

// mru builds a most-recently-used list with id in front, dropping duplicates
// and IDs not in known.
func mru(id string, existing []string, known map[string]bool) []string {
	seen := map[string]bool{id: true}
	list := []string{id}
	for _, eid := range existing {
		if len(list) == maxRecentlyUsed {
			break
		}
		if seen[eid] || !known[eid] {
			continue
		}
		seen[eid] = true
		list = append(list, eid)
	}
	return list
}

func presetIDs(presets []Preset) map[string]bool {
	ids := make(map[string]bool, len(presets))
	for _, p := range presets {
		ids[p.ID] = true
	}
	return ids
}

func emptyStore() PresetStore {
	return PresetStore{Presets: []Preset{}, RecentlyUsed: []string{}}
}

func copyStore(s PresetStore) PresetStore {
	presets := make([]Preset, len(s.Presets))
	for i, p := range s.Presets {
		p.Options = p.Options.Clone()
		presets[i] = p
	}
	ru := make([]string, len(s.RecentlyUsed))
	copy(ru, s.RecentlyUsed)
	return PresetStore{Presets: presets, RecentlyUsed: ru}
}
