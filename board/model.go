package board

import (
	"sync"
	"time"

	"randpipe/picker"
)

const maxHistory = 50

// Event types pushed to watchers.
const (
	EventOptions = "options"
	EventPicked  = "picked"
)

// Event is a change notification sent to every watcher of a board.
type Event struct {
	Type    string
	Options picker.OptionList
	Picked  picker.Selection
}

// Snapshot is a point-in-time copy of a board, safe to encode.
type Snapshot struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	CreatedAt  time.Time         `json:"created_at"`
	LastActive time.Time         `json:"last_active"`
	Watchers   int               `json:"watchers"`
	Options    picker.OptionList `json:"options"`
	Picked     *string           `json:"picked"`
	History    []string          `json:"history"`
}

// Board owns one option list and everyone watching it.
type Board struct {
	ID        string
	Name      string
	CreatedAt time.Time

	mu         sync.Mutex
	picker     *picker.Picker
	history    *historyBuf
	lastActive time.Time
	watchers   map[chan Event]struct{}
	done       chan struct{}
	closeOnce  sync.Once
}

func newBoard(id, name string, src picker.Source) *Board {
	now := time.Now()
	return &Board{
		ID:         id,
		Name:       name,
		CreatedAt:  now,
		picker:     picker.New(src),
		history:    newHistoryBuf(),
		lastActive: now,
		watchers:   make(map[chan Event]struct{}),
		done:       make(chan struct{}),
	}
}

// historyBuf keeps the most recent picks, oldest first.
type historyBuf struct {
	data []string
	max  int
}

func newHistoryBuf() *historyBuf {
	return &historyBuf{max: maxHistory}
}

func (h *historyBuf) Add(v string) {
	h.data = append(h.data, v)
	if len(h.data) > h.max {
		excess := len(h.data) - h.max
		h.data = h.data[excess:]
	}
}

func (h *historyBuf) Snapshot() []string {
	cp := make([]string, len(h.data))
	copy(cp, h.data)
	return cp
}

// SetOptions replaces the board's list with the normalized form of text and
// notifies watchers.
func (b *Board) SetOptions(text string) picker.OptionList {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.optionsChanged(b.picker.SetText(text))
}

// SetOptionList replaces the board's list with an already split list, such
// as a saved preset. Entries are trimmed and blank ones dropped but never
// split further.
func (b *Board) SetOptionList(opts []string) picker.OptionList {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.optionsChanged(b.picker.SetOptions(opts))
}

// optionsChanged must be called with b.mu held.
func (b *Board) optionsChanged(opts picker.OptionList) picker.OptionList {
	b.lastActive = time.Now()
	b.broadcast(Event{Type: EventOptions, Options: opts})
	return opts
}

// Pick selects a random option, records it in the history and notifies
// watchers. Picking from an empty board yields an invalid Selection and is
// still broadcast so viewers clear their display.
func (b *Board) Pick() picker.Selection {
	b.mu.Lock()
	defer b.mu.Unlock()
	sel := b.picker.Pick()
	if sel.Valid {
		b.history.Add(sel.Value)
	}
	b.lastActive = time.Now()
	b.broadcast(Event{Type: EventPicked, Picked: sel})
	return sel
}

// Snapshot returns a copy of the board's current state.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := Snapshot{
		ID:         b.ID,
		Name:       b.Name,
		CreatedAt:  b.CreatedAt,
		LastActive: b.lastActive,
		Watchers:   len(b.watchers),
		Options:    b.picker.Options(),
		History:    b.history.Snapshot(),
	}
	if sel := b.picker.Selection(); sel.Valid {
		v := sel.Value
		s.Picked = &v
	}
	return s
}

// Idle reports whether nobody watches the board and it has not changed since
// cutoff.
func (b *Board) Idle(cutoff time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.watchers) == 0 && b.lastActive.Before(cutoff)
}

// Watch registers ch to receive every subsequent change. Sends never block:
// if ch is full the event is dropped for that watcher.
func (b *Board) Watch(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.watchers[ch] = struct{}{}
	b.lastActive = time.Now()
}

// Unwatch removes ch and closes it so the reader's loop exits. It is a no-op
// for a channel that is not registered.
func (b *Board) Unwatch(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[ch]; !ok {
		return
	}
	delete(b.watchers, ch)
	close(ch)
}

// Done returns a channel that is closed when the board is deleted.
func (b *Board) Done() <-chan struct{} {
	return b.done
}

func (b *Board) close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// broadcast must be called with b.mu held.
func (b *Board) broadcast(ev Event) {
	for ch := range b.watchers {
		select {
		case ch <- ev:
		default:
		}
	}
}
