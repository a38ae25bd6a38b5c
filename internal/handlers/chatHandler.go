package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"motoassist/internal/adapter"
	"motoassist/internal/adapter/utils"
	"motoassist/internal/api"
	"motoassist/internal/domain/chatModel"
	"motoassist/internal/job"
	"motoassist/internal/rag"
	"motoassist/pkg/logger_i"
)

// ChatHandler serves the chat surface. All collaborators are injected so
// tests can run it against fakes.
type ChatHandler struct {
	rag           rag.Service
	conversations chatModel.ConversationStore
	jobs          *job.Service
	logger        *logger_i.Logger
}

func NewChatHandler(ragService rag.Service, conversations chatModel.ConversationStore, jobService *job.Service) *ChatHandler {
	return &ChatHandler{
		rag:           ragService,
		conversations: conversations,
		jobs:          jobService,
		logger:        logger_i.NewLogger("ChatHandler"),
	}
}

// Welcome godoc
// @Summary      API greeting
// @Produce      json
// @Success      200  {object}  api.WelcomeResponse
// @Router       / [get]
func (h *ChatHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.WelcomeResponse{Message: "Hello, welcome to the API :)"})
}

// Ask godoc
// @Summary      Ask the manual assistant a question
// @Description  Runs retrieval over the indexed manual, completes an answer and persists the turn.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest  true  "User, optional thread and question"
// @Success      200      {object}  api.AskResponse
// @Failure      400      {object}  api.ErrorResponse "Missing user_id or question"
// @Failure      500      {object}  api.ErrorResponse "Upstream or storage failure"
// @Router       /ask [post]
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	var req api.AskRequest
	if err := decodeJSONBody(r, &req); err != nil {
		log.Warn("Bad ask request", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg, ok := validateAskRequest(req); !ok {
		log.Warn("Bad ask request", "reason", msg)
		WriteErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.rag.Ask(r.Context(), rag.AskRequest{
		UserId:   req.UserID,
		ThreadId: req.Thread,
		Question: req.Question,
	})
	if err != nil {
		log.Error("Ask failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJsonResponse(w, http.StatusOK, api.AskResponse{
		Response: result.Response,
		Images:   result.Images,
	})
}

// History godoc
// @Summary      Conversation history for a user
// @Description  Returns turn records most-recent-first, optionally limited to one thread.
// @Tags         Chat
// @Produce      json
// @Param        user_id    path      string  true   "User id"
// @Param        thread_id  path      string  false  "Thread id"
// @Success      200  {array}  api.TurnRecord
// @Failure      500  {object}  api.ErrorResponse
// @Router       /history/{user_id} [get]
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	userId := utils.GetChiURLParam(r, "user_id")
	threadId := utils.GetChiURLParam(r, "thread_id")

	turns, err := h.conversations.GetHistory(r.Context(), userId, threadId)
	if err != nil {
		log.Error("History lookup failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToTurnRecords(turns))
}

// GetChatHistory godoc
// @Summary      Reduced conversation history
// @Description  Returns {req,res} pairs for a user, most-recent-first.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body  api.ChatHistoryRequest  true  "User id"
// @Success      200  {array}   api.ChatHistoryEntry
// @Failure      400  {object}  api.ErrorResponse
// @Router       /getchathistory [post]
func (h *ChatHandler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	var req api.ChatHistoryRequest
	if err := decodeJSONBody(r, &req); err != nil || strings.TrimSpace(req.UserID) == "" {
		log.Warn("Bad chat history request", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	turns, err := h.conversations.GetHistory(r.Context(), req.UserID, "")
	if err != nil {
		log.Error("History lookup failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToChatHistoryEntries(turns))
}

func validateAskRequest(req api.AskRequest) (string, bool) {
	if strings.TrimSpace(req.UserID) == "" {
		return "user_id is required", false
	}
	if strings.TrimSpace(req.Question) == "" {
		return "question is required", false
	}
	return "", true
}

func decodeJSONBody(r *http.Request, target any) error {
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(r.Body)

	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return err
	}
	return nil
}
