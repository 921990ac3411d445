package preset

import (
	"errors"

	"randpipe/picker"
)

// Preset is a saved, named option list.
type Preset struct {
	ID      string            `json:"id"`
	Title   string            `json:"title"`
	Options picker.OptionList `json:"options"`
}

// PresetStore is the full persistent state.
type PresetStore struct {
	Presets      []Preset `json:"presets"`
	RecentlyUsed []string `json:"recentlyUsed"` // MRU order, max 10 IDs
}

const maxRecentlyUsed = 10

var ErrNotFound = errors.New("preset not found")
