package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dinescout/backend/internal/application/services"
	"github.com/dinescout/backend/internal/domain/entities"
)

// PreferenceHandler handles user dining preference HTTP requests
type PreferenceHandler struct {
	preferenceService *services.PreferenceService
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(preferenceService *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{
		preferenceService: preferenceService,
	}
}

// GetPreferences handles GET /api/v1/users/{id}/preferences
func (h *PreferenceHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	prefs, err := h.preferenceService.Get(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, prefs)
}

// SavePreferences handles PUT /api/v1/users/{id}/preferences
func (h *PreferenceHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	var prefs entities.UserPreference
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	prefs.UserID = userID

	if err := h.preferenceService.Save(r.Context(), &prefs); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, prefs)
}
