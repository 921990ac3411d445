package preset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the store whenever the preset file is changed by another
// process, until ctx is done. The parent directory is watched rather than the
// file itself because writers, this one included, replace the file by rename.
// A file that fails to parse is logged and the previous store is kept.
func (m *Manager) Watch(ctx context.Context, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	dir := filepath.Dir(m.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create preset dir: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("preset watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(m.filePath)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := m.reload(); err != nil {
				log.Warn("preset reload failed", zap.String("path", m.filePath), zap.Error(err))
				continue
			}
			log.Debug("presets reloaded", zap.String("path", m.filePath))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("preset watcher error", zap.Error(err))
		}
	}
}
