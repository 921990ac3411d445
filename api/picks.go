package api

import (
	"net/http"

	"randpipe/picker"
)

type textRequest struct {
	Text string `json:"text"`
}

func (h *handler) normalize(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]picker.OptionList{"options": picker.Normalize(req.Text)})
}

// pick selects from a caller-supplied list without touching any board.
// Entries are trimmed and blank ones dropped, so the result is always one of
// the caller's entries.
func (h *handler) pick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Options []string `json:"options"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	opts := picker.Clean(req.Options)
	resp := pickResponse{}
	if v, ok := picker.Select(opts, nil); ok {
		resp.Picked = &v
	}
	writeJSON(w, http.StatusOK, resp)
}
