package handlers

import (
	"encoding/json"
	"net/http"

	"taskboard-service/models"
	"taskboard-service/services"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GetEmployees lists the employees a manager can assign tasks to.
func (h *UserHandler) GetEmployees(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	if actor.Role != models.RoleManager {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	employees, err := h.service.Employees(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(employees)
}

// GetMe echoes the resolved identity with its account record, which
// the UI uses to decide which controls to show. Hiding controls is a
// convenience, not a boundary; the service re-checks every mutation.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetByID(r.Context(), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}
