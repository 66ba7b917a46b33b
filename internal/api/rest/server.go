package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	app "print-guard/internal/application"
	"print-guard/internal/domain/entity"
	"print-guard/internal/logger"
)

const (
	moduleHTTP = "HTTP"

	// DefaultStatusInterval период отправки состояния по websocket.
	DefaultStatusInterval = time.Second

	maxSettingsBody = 1 << 20
)

// Monitor операции ядра, доступные через HTTP
type Monitor interface {
	Start()
	StartFromMacro()
	Stop(ctx context.Context)
	SetMaskOverlay(show bool)
	ResetStats(cam entity.CameraID) error
	Status() app.StatusSnapshot
	Settings() *entity.Settings
	UpdateSettings(ctx context.Context, patch []byte) (*entity.Settings, error)
	History() []entity.FailureEvent
	ClearHistory()
	Frame(cam entity.CameraID, maskColor string) ([]byte, error)
}

// LogSource последние строки журнала для панели логов
type LogSource interface {
	String() string
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server HTTP-интерфейс управления
type Server struct {
	monitor        Monitor
	logs           LogSource
	metrics        http.Handler
	router         *mux.Router
	statusInterval time.Duration
}

// NewServer создаёт сервер. logs и metrics могут быть nil.
func NewServer(monitor Monitor, logs LogSource, metrics http.Handler) *Server {
	s := &Server{
		monitor:        monitor,
		logs:           logs,
		metrics:        metrics,
		router:         mux.NewRouter(),
		statusInterval: DefaultStatusInterval,
	}
	s.routes()
	return s
}

// SetStatusInterval меняет период websocket-обновлений.
func (s *Server) SetStatusInterval(d time.Duration) {
	if d > 0 {
		s.statusInterval = d
	}
}

// Handler возвращает корневой обработчик.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(corsMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/action/start", s.handleStart).Methods("GET", "POST", "OPTIONS")
	api.HandleFunc("/action/stop", s.handleStop).Methods("GET", "POST", "OPTIONS")
	api.HandleFunc("/action/start_from_macro", s.handleStartFromMacro).Methods("POST", "OPTIONS")
	api.HandleFunc("/action/toggle_mask", s.handleToggleMask).Methods("POST", "OPTIONS")
	api.HandleFunc("/stats/reset/{cam:[0-9]+}", s.handleResetStats).Methods("POST", "OPTIONS")

	api.HandleFunc("/settings", s.handleGetSettings).Methods("GET", "OPTIONS")
	api.HandleFunc("/settings", s.handleSaveSettings).Methods("POST")

	api.HandleFunc("/status", s.handleStatus).Methods("GET", "OPTIONS")
	api.HandleFunc("/status/ws", s.handleStatusStream).Methods("GET")

	api.HandleFunc("/failure_history", s.handleHistory).Methods("GET", "OPTIONS")
	api.HandleFunc("/failure_history/clear", s.handleClearHistory).Methods("POST", "OPTIONS")

	api.HandleFunc("/frame/{cam:[0-9]+}", s.handleFrame).Methods("GET", "OPTIONS")
	api.HandleFunc("/logs", s.handleLogs).Methods("GET", "OPTIONS")

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics).Methods("GET")
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn(moduleHTTP, "encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func cameraFromPath(r *http.Request) (entity.CameraID, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["cam"])
	if err != nil {
		return 0, false
	}
	cam := entity.CameraID(id)
	return cam, cam.Valid()
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.monitor.Start()
	writeSuccess(w)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.monitor.Stop(r.Context())
	writeSuccess(w)
}

func (s *Server) handleStartFromMacro(w http.ResponseWriter, r *http.Request) {
	s.monitor.StartFromMacro()
	writeSuccess(w)
}

func (s *Server) handleToggleMask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Show bool `json:"show"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxSettingsBody)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.monitor.SetMaskOverlay(body.Show)
	writeSuccess(w)
}

func (s *Server) handleResetStats(w http.ResponseWriter, r *http.Request) {
	cam, ok := cameraFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid camera")
		return
	}
	if err := s.monitor.ResetStats(cam); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid camera")
		return
	}
	writeSuccess(w)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Settings())
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSettingsBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read body")
		return
	}

	saved, err := s.monitor.UpdateSettings(r.Context(), body)
	switch {
	case errors.Is(err, entity.ErrInvalidSettings):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logger.Error(moduleHTTP, "Save settings failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "saved", "config": saved})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Status())
}

// handleStatusStream отправляет состояние каждые statusInterval, пока клиент подключён.
func (s *Server) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn(moduleHTTP, "Failed to upgrade to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debug(moduleHTTP, "WebSocket error: %v", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(s.statusInterval)
	defer ticker.Stop()

	for {
		conn.SetWriteDeadline(time.Now().Add(s.statusInterval + time.Second))
		if err := conn.WriteJSON(s.monitor.Status()); err != nil {
			return
		}

		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"events": s.monitor.History()})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.monitor.ClearHistory()
	writeSuccess(w)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["cam"])

	data, err := s.monitor.Frame(entity.CameraID(id), r.URL.Query().Get("mask_color"))
	if err != nil {
		logger.Error(moduleHTTP, "Encode frame failed: %v", err)
		http.Error(w, "frame unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	logs := ""
	if s.logs != nil {
		logs = s.logs.String()
	}
	writeJSON(w, http.StatusOK, map[string]string{"logs": logs})
}
