// File: handlers/assistant.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/config"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/services/assistant"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AssistantHandler exposes the conversational endpoints.
type AssistantHandler struct {
	Service assistant.AssistantService
}

// NewAssistantHandler wires the handler.
func NewAssistantHandler(svc assistant.AssistantService) *AssistantHandler {
	return &AssistantHandler{Service: svc}
}

// ChatHandler streams one assistant turn back to the caller as
// server-sent events. Every code path ends with an is_final frame.
func (h *AssistantHandler) ChatHandler(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	if strings.TrimSpace(req.Message) == "" {
		writeEvent(c, models.ChatStreamEvent{
			Error:     "message must not be empty",
			IsFinal:   true,
			SessionID: req.SessionID,
		})
		return
	}

	sessionID, events := h.Service.StreamMessage(c.Request.Context(), req.SessionID, req.Message)
	for ev := range events {
		ev.SessionID = sessionID
		writeEvent(c, ev)
	}
}

func writeEvent(c *gin.Context, ev models.ChatStreamEvent) {
	raw, err := json.Marshal(ev)
	if err != nil {
		utils.GetLogger().Error("stream event marshal failed", zap.Error(err))
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", raw)
	c.Writer.Flush()
}

// CommonQuestionsHandler returns suggested starter questions for the chat
// widget.
func (h *AssistantHandler) CommonQuestionsHandler(c *gin.Context) {
	company := config.AppConfig.CompanyName
	questions := []string{
		fmt.Sprintf("What services does %s offer?", company),
		fmt.Sprintf("How can I contact %s?", company),
		fmt.Sprintf("What makes %s different?", company),
		fmt.Sprintf("How can %s help my business?", company),
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}
