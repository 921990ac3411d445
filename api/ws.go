package api

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"randpipe/board"
	"randpipe/picker"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type    string            `json:"type"`
	Text    string            `json:"text,omitempty"`
	Options picker.OptionList `json:"options,omitempty"`
	Picked  *string           `json:"picked,omitempty"`
	History []string          `json:"history,omitempty"`
}

func eventMessage(ev board.Event) wsMessage {
	msg := wsMessage{Type: ev.Type}
	switch ev.Type {
	case board.EventOptions:
		msg.Options = ev.Options
	case board.EventPicked:
		if ev.Picked.Valid {
			v := ev.Picked.Value
			msg.Picked = &v
		}
	}
	return msg
}

func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, ok := h.manager.Get(id)
	if !ok {
		http.Error(w, "board not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade", zap.String("board_id", id), zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	// Serialise all WebSocket writes: gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	events := make(chan board.Event, 64)
	b.Watch(events)
	defer b.Unwatch(events) // closes events so the pump exits

	snap := b.Snapshot()
	state := wsMessage{Type: "state", Options: snap.Options, Picked: snap.Picked, History: snap.History}
	if err := writeMsg(state); err != nil {
		h.log.Debug("ws initial state", zap.String("board_id", id), zap.Error(err))
		return
	}

	// Pump board changes to the client until Unwatch closes events.
	go func() {
		for ev := range events {
			if err := writeMsg(eventMessage(ev)); err != nil {
				return
			}
		}
	}()

	// Close the connection when the board goes away so ReadJSON below
	// unblocks immediately.
	connDone := make(chan struct{})
	go func() {
		select {
		case <-b.Done():
			writeMsg(wsMessage{Type: "closed"}) //nolint:errcheck
			conn.Close()
		case <-connDone:
		}
	}()
	defer close(connDone)

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			// Client went away or the board was deleted.
			return
		}

		switch msg.Type {
		case "options":
			b.SetOptions(msg.Text)
		case "pick":
			b.Pick()
		default:
			h.log.Debug("ws unknown message", zap.String("board_id", id), zap.String("type", msg.Type))
		}
	}
}
