package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mealshare/mealshare-be/internal/http/respond"
	"github.com/mealshare/mealshare-be/internal/middleware"
	"github.com/mealshare/mealshare-be/internal/models/dto"
	"github.com/mealshare/mealshare-be/internal/profile"
	"github.com/mealshare/mealshare-be/internal/storage"
)

// ProfileHandler owns role selection, profile completion, and profile
// fetch. All routes require an authenticated identity.
type ProfileHandler struct {
	svc *profile.Service
	log *zap.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(svc *profile.Service, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, log: log}
}

// Register attaches profile routes to the router.
func (h *ProfileHandler) Register(r chi.Router) {
	r.Post("/profile/role", h.handleSelectRole)
	r.Post("/profile/complete", h.handleComplete)
	r.Get("/profile", h.handleView)
}

func (h *ProfileHandler) handleSelectRole(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	role, _ := body["role"].(string)
	volunteer, _ := body["volunteer"].(bool)
	extra := make(map[string]any, len(body))
	for k, v := range body {
		if k == "role" || k == "volunteer" {
			continue
		}
		extra[k] = v
	}

	result, err := h.svc.SelectRole(r.Context(), identity, role, volunteer, extra)
	if err != nil {
		if errors.Is(err, profile.ErrRoleRequired) {
			respond.Error(w, http.StatusBadRequest, "role is required")
			return
		}
		h.log.Error("role selection failed", zap.String("user_id", identity.ID.String()), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "your role could not be updated, please try again")
		return
	}

	respond.JSON(w, http.StatusOK, "role updated", toRoleResult(result))
}

func (h *ProfileHandler) handleComplete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	result, err := h.svc.CompleteProfile(r.Context(), identity, fields)
	if err != nil {
		h.log.Error("profile completion failed", zap.String("user_id", identity.ID.String()), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "your profile could not be updated, please try again")
		return
	}

	respond.JSON(w, http.StatusOK, "profile updated", toRoleResult(result))
}

func (h *ProfileHandler) handleView(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.svc.View(r.Context(), identity)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "profile not found")
			return
		}
		h.log.Error("profile fetch failed", zap.String("user_id", identity.ID.String()), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	view := dto.ProfileView{
		RoleResult: toRoleResult(result),
		Attributes: displayAttributes(result.Row),
	}
	respond.JSON(w, http.StatusOK, "profile", view)
}

func toRoleResult(result profile.Result) dto.RoleResult {
	return dto.RoleResult{
		Role:            string(result.Role),
		PersistedRole:   string(result.PersistedRole),
		Volunteer:       result.Volunteer,
		VolunteerSynced: result.VolunteerSynced,
		Completed:       result.Completed,
	}
}

// displayAttributes strips columns already surfaced as top-level fields
// and drops null attribute values.
func displayAttributes(row map[string]any) map[string]any {
	attrs := make(map[string]any, len(row))
	for col, value := range row {
		switch col {
		case "user_id", "role", "completed":
			continue
		}
		if value == nil {
			continue
		}
		attrs[col] = value
	}
	return attrs
}
