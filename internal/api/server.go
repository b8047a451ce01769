// Package api exposes the progression engine over HTTP for the desktop UI
// and other local clients.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"realmquest/internal/engine"
)

// Server is the RealmQuest HTTP API server.
type Server struct {
	svc            *engine.Service
	metricsEnabled bool
	requestTimeout time.Duration
}

func NewServer(svc *engine.Service) *Server {
	return &Server{svc: svc, requestTimeout: 30 * time.Second}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetRequestTimeout overrides the per-request timeout.
func (s *Server) SetRequestTimeout(d time.Duration) {
	if d > 0 {
		s.requestTimeout = d
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/realms", func(r chi.Router) {
			r.Get("/", s.handleListRealms)
			r.Post("/", s.handleCreateRealm)
			r.Route("/{realmID}", func(r chi.Router) {
				r.Get("/", s.handleGetRealm)
				r.Get("/stats", s.handleGetRealm)
				r.Delete("/", s.handleDeleteRealm)
				r.Post("/visit", s.handleVisitRealm)
				r.Route("/tasks", func(r chi.Router) {
					r.Get("/", s.handleListTasks)
					r.Post("/", s.handleCreateTask)
					r.Delete("/{taskID}", s.handleDeleteTask)
					r.Post("/{taskID}/complete", s.handleCompleteTask)
					r.Post("/{taskID}/uncomplete", s.handleUncompleteTask)
				})
			})
		})

		r.Route("/daily-quests", func(r chi.Router) {
			r.Get("/", s.handleListQuests)
			r.Post("/", s.handleCreateCustomQuest)
			r.Post("/generate", s.handleGenerateQuests)
			r.Patch("/{questID}/progress", s.handleQuestProgress)
			r.Post("/{questID}/progress", s.handleQuestProgress)
			r.Post("/{questID}/claim", s.handleClaimQuest)
		})

		r.Get("/badges", s.handleListBadges)
		r.Get("/badges/available", s.handleAvailableBadges)

		r.Route("/users", func(r chi.Router) {
			r.Get("/stats", s.handleUserStats)
			r.Get("/xp-history", s.handleXPHistory)
		})
	})

	return r
}

// userID resolves the caller identity. Local single-user clients omit the
// header and get the default identity.
func userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return engine.DefaultUserID
}

func (s *Server) handleListRealms(w http.ResponseWriter, r *http.Request) {
	realms, err := s.svc.ListRealms(r.Context(), userID(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, http.StatusOK, realms)
}

type createRealmRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Theme       string `json:"theme"`
	Difficulty  string `json:"difficulty"`
}

func (s *Server) handleCreateRealm(w http.ResponseWriter, r *http.Request) {
	var req createRealmRequest
	if !decode(w, r, &req) {
		return
	}
	realm, err := s.svc.CreateRealm(r.Context(), userID(r), engine.CreateRealmInput{
		Name:        req.Name,
		Description: req.Description,
		Theme:       engine.RealmTheme(req.Theme),
		Difficulty:  engine.RealmDifficulty(req.Difficulty),
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, http.StatusCreated, realm)
}

func (s *Server) handleGetRealm(w http.ResponseWriter, r *http.Request) {
	realm, err := s.svc.GetRealm(r.Context(), userID(r), chi.URLParam(r, "realmID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, http.StatusOK, realm)
}

func (s *Server) handleDeleteRealm(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteRealm(r.Context(), userID(r), chi.URLParam(r, "realmID")); err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"deleted": chi.URLParam(r, "realmID")})
}

func (s *Server) handleVisitRealm(w http.ResponseWriter, r *http.Request) {
	updated, err := s.svc.RecordRealmVisit(r.Context(), userID(r), chi.URLParam(r, "realmID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"updatedQuests": updated})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.ListTasks(r.Context(), userID(r), chi.URLParam(r, "realmID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, http.StatusOK, tasks)
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !decode(w, r, &req) {
		return
	}
	task, err := s.svc.CreateTask(r.Context(), userID(r), chi.URLParam(r, "realmID"), engine.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  engine.Difficulty(req.Difficulty),
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, http.StatusCreated, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	err := s.svc.DeleteTask(r.Context(), userID(r), chi.URLParam(r, "realmID"), chi.URLParam(r, "taskID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"deleted": chi.URLParam(r, "taskID")})
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.CompleteTask(r.Context(), userID(r), chi.URLParam(r, "realmID"), chi.URLParam(r, "taskID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	taskCompletions.Inc()
	xpGranted.Add(float64(res.XPGained))
	badgesEarned.Add(float64(len(res.NewBadges)))
	if res.LevelUp != nil {
		levelUps.Inc()
	}
	writeData(w, http.StatusOK, res)
}

func (s *Server) handleUncompleteTask(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.UncompleteTask(r.Context(), userID(r), chi.URLParam(r, "realmID"), chi.URLParam(r, "taskID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	taskReversals.Inc()
	writeData(w, http.StatusOK, res)
}

func (s *Server) handleListQuests(w http.ResponseWriter, r *http.Request) {
	includeExpired := r.URL.Query().Get("includeExpired") == "true"
	quests, err := s.svc.ListQuests(r.Context(), userID(r), includeExpired)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, http.StatusOK, quests)
}

func (s *Server) handleGenerateQuests(w http.ResponseWriter, r *http.Request) {
	quests, err := s.svc.GenerateDailyQuests(r.Context(), userID(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, http.StatusOK, quests)
}

type customQuestRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Target      int    `json:"target"`
	XPReward    int    `json:"xpReward"`
}

func (s *Server) handleCreateCustomQuest(w http.ResponseWriter, r *http.Request) {
	var req customQuestRequest
	if !decode(w, r, &req) {
		return
	}
	quest, err := s.svc.CreateCustomQuest(r.Context(), userID(r), req.Title, req.Description, req.Target, req.XPReward)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, http.StatusCreated, quest)
}

type questProgressRequest struct {
	Increment int `json:"increment"`
}

func (s *Server) handleQuestProgress(w http.ResponseWriter, r *http.Request) {
	var req questProgressRequest
	if !decode(w, r, &req) {
		return
	}
	quest, err := s.svc.AdvanceQuestProgress(r.Context(), userID(r), chi.URLParam(r, "questID"), req.Increment)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, http.StatusOK, quest)
}

func (s *Server) handleClaimQuest(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.ClaimQuest(r.Context(), userID(r), chi.URLParam(r, "questID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	questClaims.Inc()
	xpGranted.Add(float64(res.XPGained))
	if res.LevelUp != nil {
		levelUps.Inc()
	}
	writeData(w, http.StatusOK, res)
}

func (s *Server) handleListBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.svc.Badges(r.Context(), userID(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, http.StatusOK, badges)
}

// handleAvailableBadges lists catalog entries the user has not earned yet.
func (s *Server) handleAvailableBadges(w http.ResponseWriter, r *http.Request) {
	views, err := s.svc.Badges(r.Context(), userID(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	available := make([]engine.BadgeView, 0, len(views))
	for _, v := range views {
		if !v.Earned {
			available = append(available, v)
		}
	}
	writeData(w, http.StatusOK, available)
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context(), userID(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (s *Server) handleXPHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	entries, err := s.svc.XPHistory(r.Context(), userID(r), limit)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, http.StatusOK, entries)
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeEngineError maps engine error kinds to HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch engine.KindOf(err) {
	case engine.KindNotFound:
		status = http.StatusNotFound
	case engine.KindConflict:
		status = http.StatusConflict
	case engine.KindInvalidInput:
		status = http.StatusBadRequest
	case engine.KindInconsistent:
		status = http.StatusInternalServerError
	}
	writeError(w, status, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// corsMiddleware adds CORS headers for local development clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
