// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/activity-signup/internal/model"
	"github.com/Shivanand-hulikatti/activity-signup/internal/repository"
	"github.com/Shivanand-hulikatti/activity-signup/internal/service"
)

const maxBodyBytes = 1 << 20

// ActivityHandler holds all HTTP handlers for the activities API.
type ActivityHandler struct {
	svc    *service.ActivityService
	logger *zap.Logger
}

// NewActivityHandler constructs an ActivityHandler.
func NewActivityHandler(svc *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityHandler{svc: svc, logger: logger}
}

// Routes mounts the activity endpoints on r.
func (h *ActivityHandler) Routes(r chi.Router) {
	r.Get("/activities", h.ListActivities)
	r.Post("/activities/{name}/signup", h.Signup)
	r.Post("/activities/{name}/unregister", h.Unregister)
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, model.ErrorResponse{Detail: detail})
}

// activityName returns the decoded {name} path segment. chi matches on the
// raw path when the request carried escapes that differ from the default
// encoding (such as %2F), so the segment is unescaped only in that case.
func activityName(r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// ListActivities handles GET /activities
// Returns an object keyed by activity name, in display order.
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.svc.ListActivities(r.Context())
	if err != nil {
		h.logger.Error("list activities", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

// Signup handles POST /activities/{name}/signup?email=
func (h *ActivityHandler) Signup(w http.ResponseWriter, r *http.Request) {
	name, err := activityName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid activity name")
		return
	}

	msg, err := h.svc.Signup(r.Context(), name, r.URL.Query().Get("email"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingEmail):
			writeError(w, http.StatusUnprocessableEntity, "Missing email to sign up")
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "Activity not found")
		case errors.Is(err, repository.ErrAlreadyRegistered):
			writeError(w, http.StatusBadRequest, "Student is already signed up")
		case errors.Is(err, repository.ErrActivityFull):
			writeError(w, http.StatusBadRequest, "Activity is full")
		default:
			h.logger.Error("sign up", zap.Error(err), zap.String("activity", name))
			writeError(w, http.StatusInternalServerError, "Failed to sign up")
		}
		return
	}

	writeJSON(w, http.StatusOK, model.SignupResponse{Message: msg})
}

// Unregister handles POST /activities/{name}/unregister
// The email comes from the email query parameter, or else from a JSON
// body of the form {"email": "..."}.
func (h *ActivityHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	name, err := activityName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid activity name")
		return
	}

	email := r.URL.Query().Get("email")
	if email == "" {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		if len(bytes.TrimSpace(body)) > 0 {
			var req model.UnregisterRequest
			if err := json.Unmarshal(body, &req); err != nil {
				writeError(w, http.StatusUnprocessableEntity, "Invalid JSON body")
				return
			}
			email = req.Email
		}
	}

	msg, err := h.svc.Unregister(r.Context(), name, email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "Activity not found")
		case errors.Is(err, service.ErrMissingEmail):
			writeError(w, http.StatusBadRequest, "Missing email to unregister")
		case errors.Is(err, repository.ErrParticipantNotFound):
			writeError(w, http.StatusNotFound, "Participant not found in activity")
		default:
			h.logger.Error("unregister", zap.Error(err), zap.String("activity", name))
			writeError(w, http.StatusInternalServerError, "Failed to unregister")
		}
		return
	}

	writeJSON(w, http.StatusOK, model.SignupResponse{Message: msg})
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
