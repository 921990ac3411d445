package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"randpipe/board"
	"randpipe/preset"
)

type pickResponse struct {
	Picked *string `json:"picked"`
}

func (h *handler) listBoards(w http.ResponseWriter, r *http.Request) {
	boards := h.manager.List()
	snaps := make([]board.Snapshot, 0, len(boards))
	for _, b := range boards {
		snaps = append(snaps, b.Snapshot())
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (h *handler) createBoard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	b, err := h.manager.Create(strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, board.ErrNameTaken) {
			http.Error(w, "board name already in use", http.StatusConflict)
			return
		}
		h.log.Error("create board", zap.Error(err))
		http.Error(w, "failed to create board", http.StatusInternalServerError)
		return
	}
	if req.Text != "" {
		b.SetOptions(req.Text)
	}

	writeJSON(w, http.StatusCreated, b.Snapshot())
}

func (h *handler) getBoard(w http.ResponseWriter, r *http.Request) {
	b, ok := h.boardFromURL(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.Snapshot())
}

func (h *handler) deleteBoard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.manager.Delete(id); err != nil {
		if errors.Is(err, board.ErrNotFound) {
			http.Error(w, "board not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete board", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) setBoardOptions(w http.ResponseWriter, r *http.Request) {
	b, ok := h.boardFromURL(w, r)
	if !ok {
		return
	}
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b.SetOptions(req.Text)
	writeJSON(w, http.StatusOK, b.Snapshot())
}

func (h *handler) pickBoard(w http.ResponseWriter, r *http.Request) {
	b, ok := h.boardFromURL(w, r)
	if !ok {
		return
	}
	sel := b.Pick()
	resp := pickResponse{}
	if sel.Valid {
		resp.Picked = &sel.Value
	}
	writeJSON(w, http.StatusOK, resp)
}

// loadPreset replaces a board's options with a saved preset and bumps the
// preset in the recently used list.
func (h *handler) loadPreset(w http.ResponseWriter, r *http.Request) {
	b, ok := h.boardFromURL(w, r)
	if !ok {
		return
	}
	p, err := h.presetManager.Find(chi.URLParam(r, "presetID"))
	if err != nil {
		if errors.Is(err, preset.ErrNotFound) {
			http.Error(w, "preset not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load preset", http.StatusInternalServerError)
		return
	}
	b.SetOptionList(p.Options)
	if err := h.presetManager.MarkUsed(p.ID); err != nil {
		// The board is already updated; a failed MRU write is not fatal.
		h.log.Warn("mark preset used", zap.String("preset_id", p.ID), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, b.Snapshot())
}

func (h *handler) boardFromURL(w http.ResponseWriter, r *http.Request) (*board.Board, bool) {
	b, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "board not found", http.StatusNotFound)
		return nil, false
	}
	return b, true
}
