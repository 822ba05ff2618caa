// File: models/chat.go
package models

import "time"

// ChatRequest is the payload coming from the frontend into /api/assistant/chat.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatStreamEvent is a single frame of the assistant's streamed reply.
// Error events are terminal; the final text frame carries IsFinal plus the
// session id so the caller can persist it for subsequent turns.
type ChatStreamEvent struct {
	ResponseChunk string `json:"response_chunk,omitempty"`
	IsFinal       bool   `json:"is_final"`
	SessionID     string `json:"session_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// RetrievedDocument is one knowledge-base chunk returned by the retriever.
// Read-only input to prompt assembly.
type RetrievedDocument struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ChatLogEntry is a persisted transcript row of one completed turn.
type ChatLogEntry struct {
	ID           string    `bson:"id" json:"id"`
	SessionID    string    `bson:"sessionId" json:"sessionId"`
	UserMessage  string    `bson:"userMessage" json:"userMessage"`
	BotResponse  string    `bson:"botResponse" json:"botResponse"`
	ResponseTime float64   `bson:"responseTime" json:"responseTime"` // seconds
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}
