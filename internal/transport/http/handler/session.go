package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/app"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/transport/http/response"
)

const sessionNotFoundMessage = "Session ID not found. Please start a new session."

type SessionHandler struct {
	qaService *app.QAService
}

type AskQuestionRequest struct {
	Question  string   `json:"question" binding:"required"`
	Filenames []string `json:"filenames"`
	SessionID string   `json:"session_id" binding:"required"`
}

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
}

type HistoryResponse struct {
	SessionID string `json:"session_id"`
	History   string `json:"history"`
}

func NewSessionHandler(qaService *app.QAService) *SessionHandler {
	return &SessionHandler{qaService: qaService}
}

func (h *SessionHandler) Start(c *gin.Context) {
	id, err := h.qaService.StartSession(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "start session failed")
		return
	}
	response.OK(c, StartSessionResponse{SessionID: id})
}

func (h *SessionHandler) Ask(c *gin.Context) {
	var req AskQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.qaService.Ask(c.Request.Context(), app.AskInput{
		SessionID: req.SessionID,
		Question:  req.Question,
		Filenames: req.Filenames,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, sessionNotFoundMessage)
		case errors.Is(err, app.ErrNoValidDocuments):
			response.Error(c, http.StatusNotFound, response.CodeNoValidDocuments, "No valid documents found for the given filenames.")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ask failed")
		}
		return
	}
	response.OK(c, result)
}

func (h *SessionHandler) History(c *gin.Context) {
	sessionID := c.Query("session_id")
	history, err := h.qaService.History(c.Request.Context(), sessionID)
	if err != nil {
		h.sessionError(c, err, "get history failed")
		return
	}
	response.OK(c, HistoryResponse{SessionID: sessionID, History: history})
}

func (h *SessionHandler) Clear(c *gin.Context) {
	sessionID := c.Query("session_id")
	if err := h.qaService.ClearSession(c.Request.Context(), sessionID); err != nil {
		h.sessionError(c, err, "clear session failed")
		return
	}
	response.OK(c, gin.H{"message": fmt.Sprintf("Session %s has been cleared.", sessionID)})
}

func (h *SessionHandler) sessionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "session_id is required")
	case errors.Is(err, app.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "Session ID not found.")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
