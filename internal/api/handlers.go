package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/remote-first-institute/aiwo/internal/flow"
	"github.com/remote-first-institute/aiwo/internal/models"
	"github.com/remote-first-institute/aiwo/internal/store"
)

// indexHandler handles GET / as a liveness probe.
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// flowSuggestionsHandler handles GET /flow-suggestions.
func (s *Server) flowSuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(models.FlowSuggestionsResponse{
		Suggestions: []models.FlowSuggestion{
			models.FlowKindScoreIntro.Suggestion(),
			models.FlowKindQuestionsAndPlaybook.Suggestion(),
		},
	}))
}

// startChatHandler handles POST /chats.
func (s *Server) startChatHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("startChatHandler invoked", "method", r.Method, "path", r.URL.Path)
	query := r.URL.Query()

	kind := models.FlowKind(query.Get("flow"))
	if !models.IsValidFlowKind(kind) {
		slog.Warn("startChatHandler unknown flow", "flow", kind)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Unknown flow."))
		return
	}

	format := models.TextFormat(query.Get("text_format"))
	if format == "" {
		format = models.TextFormatMarkdown
	}
	if !models.IsValidTextFormat(format) {
		slog.Warn("startChatHandler unknown text format", "text_format", format)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Unknown text format."))
		return
	}

	user, errResp := s.authenticate(query.Get("email"), query.Get("api_key"))
	if errResp != nil {
		writeJSONResponse(w, http.StatusUnauthorized, *errResp)
		return
	}

	isPaid := false
	if user != nil {
		purchases, err := s.st.GetPurchases(user.ID)
		if err != nil {
			slog.Error("startChatHandler failed to load purchases", "error", err, "userID", user.ID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load purchases"))
			return
		}
		isPaid = len(purchases) > 0
	}

	deps := flow.Deps{
		GenAI:      s.genai,
		Playbook:   s.playbook,
		Sentiment:  s.sentiment,
		Store:      s.st,
		User:       user,
		TextFormat: format,
	}
	chatID, resp, err := s.registry.Start(r.Context(), kind, deps)
	if err != nil {
		if errors.Is(err, models.ErrUnknownFlowKind) {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Unknown flow."))
			return
		}
		slog.Error("startChatHandler failed to start flow", "error", err, "flow", kind)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to start the conversation"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.Success(models.StartChatResponse{
		ChatID:      chatID,
		Messages:    s.emoji.ReplaceAll(resp.Messages),
		Suggestions: resp.Suggestions,
		IsPaid:      isPaid,
	}))
}

// authenticate resolves the caller from either a registered email or the
// service key. It returns an error response to send when neither is accepted.
func (s *Server) authenticate(email, apiKey string) (*models.User, *models.APIResponse) {
	switch {
	case email != "":
		user, err := s.st.GetUser(email)
		if err != nil {
			slog.Error("authenticate failed to load user", "error", err)
			resp := models.Error("Failed to load user")
			return nil, &resp
		}
		if user == nil {
			slog.Warn("authenticate email not approved", "email", email)
			resp := models.Error("Your email is not approved yet. Contact community@remote-first.institute to get access.")
			return nil, &resp
		}
		return user, nil

	case apiKey != "":
		if !s.checkServiceKey(apiKey) {
			resp := models.Error("Invalid API key.")
			return nil, &resp
		}
		return nil, nil

	default:
		resp := models.Error("Missing credentials.")
		return nil, &resp
	}
}

// sendMessageHandler handles POST /chats/{chatID}/messages.
func (s *Server) sendMessageHandler(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	slog.Debug("sendMessageHandler invoked", "chatID", chatID)

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("sendMessageHandler invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("sendMessageHandler validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	resp, err := s.registry.Submit(r.Context(), chatID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSessionNotFound):
			writeJSONResponse(w, http.StatusNotFound, models.Error("This chat doesn't exist."))
		case errors.Is(err, models.ErrSessionBusy):
			writeJSONResponse(w, http.StatusTooManyRequests, models.Error("Please wait for the previous answer."))
		case errors.Is(err, models.ErrNotSupported):
			writeJSONResponse(w, http.StatusBadRequest, models.Error("This chat doesn't accept messages."))
		default:
			slog.Error("sendMessageHandler flow failed", "error", err, "chatID", chatID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to generate a reply"))
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, models.Success(models.SendMessageResponse{
		Messages:    s.emoji.ReplaceAll(resp.Messages),
		Suggestions: resp.Suggestions,
	}))
}

// deleteChatHandler handles DELETE /chats/{chatID}.
func (s *Server) deleteChatHandler(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	if err := s.registry.Delete(chatID); err != nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("This chat doesn't exist."))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(nil))
}

// addUserHandler handles POST /users.
func (s *Server) addUserHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if !s.checkServiceKey(req.APIKey) {
		writeJSONResponse(w, http.StatusUnauthorized, models.Error("Invalid API key."))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	_, err := s.st.AddUser(models.User{
		Email:      req.Email,
		Country:    req.Country,
		Industry:   req.Industry,
		Profession: req.Profession,
	})
	// Re-registering an existing email is not an error for the caller.
	if err != nil && !errors.Is(err, store.ErrDuplicateUser) {
		slog.Error("addUserHandler failed to add user", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to add user"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(nil))
}

// deleteUserHandler handles DELETE /users.
func (s *Server) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if !s.checkServiceKey(req.APIKey) {
		writeJSONResponse(w, http.StatusUnauthorized, models.Error("Invalid API key."))
		return
	}

	if err := s.st.DeleteUser(req.Email); err != nil {
		slog.Error("deleteUserHandler failed to delete user", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete user"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(nil))
}

// checkServiceKey compares the presented key against the configured service
// key in constant time. An unset service key rejects everything.
func (s *Server) checkServiceKey(key string) bool {
	if s.serviceKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.serviceKey)) == 1
}
