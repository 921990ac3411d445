package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"randpipe/board"
	"randpipe/preset"
)

func RegisterRoutes(manager *board.Manager, pm *preset.Manager, staticFS fs.FS, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	h := &handler{manager: manager, presetManager: pm, log: log}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	// Stateless helpers
	r.Post("/api/normalize", h.normalize)
	r.Post("/api/pick", h.pick)

	// Boards
	r.Get("/api/boards", h.listBoards)
	r.Post("/api/boards", h.createBoard)
	r.Get("/api/boards/{id}", h.getBoard)
	r.Delete("/api/boards/{id}", h.deleteBoard)
	r.Put("/api/boards/{id}/options", h.setBoardOptions)
	r.Post("/api/boards/{id}/pick", h.pickBoard)
	r.Post("/api/boards/{id}/preset/{presetID}", h.loadPreset)

	// WebSocket
	r.Get("/api/boards/{id}/ws", h.handleWS)

	// Presets
	r.Get("/api/presets", h.getPresets)
	r.Put("/api/presets", h.putPresets)
	r.Post("/api/presets/{id}/use", h.usePreset)

	// The embedded FS keeps the assets under static/, while tests and dev
	// runs hand in an FS rooted at the assets. fs.Sub never fails for a
	// plain directory name, so look for index.html to decide which we got.
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		staticSub = staticFS
	} else if _, statErr := fs.Stat(staticSub, "index.html"); statErr != nil {
		staticSub = staticFS
	}

	// Every page is the same single document; the script reads the board
	// id from the path. FileServer is kept for assets only because it
	// answers index.html requests with a redirect.
	r.Get("/", serveFile(staticSub, "index.html"))
	r.Get("/board/{id}", serveFile(staticSub, "index.html"))

	fileServer := http.FileServer(http.FS(staticSub))
	r.Get("/css/*", fileServer.ServeHTTP)
	r.Get("/js/*", fileServer.ServeHTTP)

	return r
}

// serveFile answers with the named HTML document from fsys, or 404 if it is
// missing.
func serveFile(fsys fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}
}

// requestLogger logs one line per request with zap.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// maxBodyBytes caps request bodies and WebSocket messages.
const maxBodyBytes = 1 << 20

// decodeJSON reads a size-limited JSON body into v. On failure it writes the
// error response (413 when the body is too large, 400 otherwise) and returns
// false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type handler struct {
	manager       *board.Manager
	presetManager *preset.Manager
	log           *zap.Logger
}
