package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"randpipe/preset"
)

func (h *handler) getPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.presetManager.Get())
}

// putPresets replaces the whole store. Save drops untitled presets, trims
// options and filters recentlyUsed to IDs still present.
func (h *handler) putPresets(w http.ResponseWriter, r *http.Request) {
	var store preset.PresetStore
	if !decodeJSON(w, r, &store) {
		return
	}

	if err := h.presetManager.Save(store); err != nil {
		h.log.Error("save presets", zap.String("path", h.presetManager.Path()), zap.Error(err))
		http.Error(w, "failed to save presets", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, h.presetManager.Get())
}

func (h *handler) usePreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// MarkUsed silently ignores non-existent IDs.
	if err := h.presetManager.MarkUsed(id); err != nil {
		h.log.Error("mark preset used", zap.String("preset_id", id), zap.Error(err))
		http.Error(w, "failed to update recently used", http.StatusInternalServerError)
		return
	}

	store := h.presetManager.Get()
	writeJSON(w, http.StatusOK, map[string][]string{"recentlyUsed": store.RecentlyUsed})
}
