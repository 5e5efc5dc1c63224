package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dinescout/backend/internal/application/services"
	"github.com/dinescout/backend/internal/domain/entities"
)

// AssistantHandler handles conversational recommendation requests
type AssistantHandler struct {
	assistantService *services.AssistantService
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(assistantService *services.AssistantService) *AssistantHandler {
	return &AssistantHandler{
		assistantService: assistantService,
	}
}

type chatRequest struct {
	UserID              string                      `json:"user_id"`
	Message             string                      `json:"message"`
	ConversationHistory []entities.ConversationTurn `json:"conversation_history"`
}

// Chat handles POST /api/v1/assistant/chat
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		respondWithError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	response, err := h.assistantService.Chat(r.Context(), req.UserID, req.Message, req.ConversationHistory)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, response)
}
