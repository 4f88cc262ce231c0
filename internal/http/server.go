package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tutorhive/schedule/internal/auth"
	"tutorhive/schedule/internal/config"
	"tutorhive/schedule/internal/schedule"
)

var (
	reconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_reconciliations_total",
		Help: "Reconciled schedule reads, by outcome.",
	}, []string{"outcome"})
	completionMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_completion_mutations_total",
		Help: "Completion workflow mutations, by operation and outcome.",
	}, []string{"operation", "outcome"})
)

type Server struct {
	cfg     config.Config
	service *schedule.Service
}

func NewServer(cfg config.Config, service *schedule.Service) *Server {
	return &Server{cfg: cfg, service: service}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.With(s.authMiddleware).Get("/schedule", s.handleGetOwnSchedule)
	r.With(s.authMiddleware).Get("/schedule/{teacherId}", s.handleGetSchedule)
	r.With(s.authMiddleware).Post("/schedule/completion-request", s.handleRequestCompletion)
	r.With(s.authMiddleware).Post("/schedule/complete", s.handleMarkComplete)

	return r
}

// Auth

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func bearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// Models

type requestCompletionRequest struct {
	Date    string `json:"date"`
	Day     string `json:"day"`
	Time    string `json:"time"`
	Batch   string `json:"batch"`
	Subject string `json:"subject"`
}

type markCompleteRequest struct {
	TeacherID string `json:"teacherId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Status    string `json:"status"`
}

// Handlers

func (s *Server) handleGetOwnSchedule(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	if claims.UserType != "teacher" && claims.UserType != "admin" {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	s.serveSchedule(w, r, claims.UserID)
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	teacherID := chi.URLParam(r, "teacherId")
	if teacherID == "" {
		writeError(w, http.StatusBadRequest, "missing_teacher_id")
		return
	}
	if claims.UserType != "admin" && teacherID != claims.UserID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	s.serveSchedule(w, r, teacherID)
}

func (s *Server) serveSchedule(w http.ResponseWriter, r *http.Request, teacherID string) {
	classes, err := s.service.GetReconciledSchedule(r.Context(), teacherID)
	if err != nil {
		reconciliationsTotal.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	reconciliationsTotal.WithLabelValues("ok").Inc()
	if classes == nil {
		classes = []schedule.ReconciledClass{}
	}
	writeJSON(w, http.StatusOK, classes)
}

func (s *Server) handleRequestCompletion(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	if claims.UserType != "teacher" {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req requestCompletionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	class := schedule.ScheduledClass{
		TeacherID:   claims.UserID,
		TeacherName: claims.Name,
		Date:        req.Date,
		Day:         req.Day,
		Time:        req.Time,
		Batch:       req.Batch,
		Subject:     req.Subject,
	}
	override, err := s.service.RequestCompletion(r.Context(), claims.UserID, claims.Name, class)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidInput) {
			completionMutationsTotal.WithLabelValues("request", "invalid").Inc()
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}
		completionMutationsTotal.WithLabelValues("request", "error").Inc()
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	completionMutationsTotal.WithLabelValues("request", "ok").Inc()
	writeJSON(w, http.StatusCreated, map[string]string{
		"status":  string(override.Status),
		"date":    override.Date,
		"batch":   override.Batch,
		"subject": override.Subject,
	})
}

func (s *Server) handleMarkComplete(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	if claims.UserType != "teacher" && claims.UserType != "admin" {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req markCompleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.TeacherID == "" {
		req.TeacherID = claims.UserID
	}
	if claims.UserType != "admin" && req.TeacherID != claims.UserID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	status := req.Status
	if status == "" {
		status = "Completed"
	}

	err := s.service.MarkComplete(r.Context(), claims.UserID, req.TeacherID, req.Date, req.Time, status)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidInput):
			completionMutationsTotal.WithLabelValues("complete", "invalid").Inc()
			writeError(w, http.StatusBadRequest, "missing_fields")
		case errors.Is(err, schedule.ErrRowNotFound):
			completionMutationsTotal.WithLabelValues("complete", "not_found").Inc()
			writeError(w, http.StatusNotFound, "class_not_found")
		default:
			completionMutationsTotal.WithLabelValues("complete", "error").Inc()
			writeError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}
	completionMutationsTotal.WithLabelValues("complete", "ok").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// Helpers

func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
