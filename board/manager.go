package board

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"randpipe/picker"
)

var ErrNameTaken = errors.New("board name already in use")
var ErrNotFound = errors.New("board not found")

type Manager struct {
	mu     sync.RWMutex
	boards map[string]*Board
	src    picker.Source // nil → global generator
	log    *zap.Logger
}

func NewManager(log *zap.Logger) *Manager {
	return NewManagerWithSource(log, nil)
}

// NewManagerWithSource creates a Manager whose boards draw from src. Tests
// pass a seeded *rand.Rand or a fixed source for repeatable picks; src must
// then be safe for use by every board.
func NewManagerWithSource(log *zap.Logger, src picker.Source) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{boards: make(map[string]*Board), src: src, log: log}
}

func (m *Manager) Create(name string) (*Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.boards {
		if b.Name == name {
			return nil, ErrNameTaken
		}
	}

	b := newBoard(uuid.New().String(), name, m.src)
	m.boards[b.ID] = b
	m.log.Info("board created", zap.String("board_id", b.ID), zap.String("name", name))
	return b, nil
}

// List returns every live board, oldest first.
func (m *Manager) List() []*Board {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Board, 0, len(m.boards))
	for _, b := range m.boards {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func (m *Manager) Get(id string) (*Board, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.boards[id]
	return b, ok
}

// Delete removes the board and closes its Done channel.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.boards[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.boards, id)
	b.close()
	m.log.Info("board deleted", zap.String("board_id", id))
	return nil
}

// Reap deletes boards that have had no watchers and no changes for ttl,
// checking every interval until ctx is done. A ttl <= 0 disables reaping.
func (m *Manager) Reap(ctx context.Context, ttl, every time.Duration) error {
	if ttl <= 0 {
		<-ctx.Done()
		return nil
	}
	if every <= 0 {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			m.reapIdle(now.Add(-ttl))
		}
	}
}

func (m *Manager) reapIdle(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, b := range m.boards {
		if !b.Idle(cutoff) {
			continue
		}
		delete(m.boards, id)
		b.close()
		n++
		m.log.Info("board reaped", zap.String("board_id", id), zap.String("name", b.Name))
	}
	return n
}
