// Package dto holds the JSON bodies of the finder HTTP API.
package dto

import (
	"time"

	"github.com/Laisky/smart-email-finder/internal/finder/model"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GenerateEmailsRequest is the body of POST /generate-emails.
type GenerateEmailsRequest struct {
	Prompt      string `json:"prompt"`
	ContextData string `json:"contextData"`
	TargetUser  string `json:"targetUser"`
}

// GenerateEmailsResponse is the 200 body of POST /generate-emails. Success is
// false when the model output could not be parsed; RawResponse then carries it.
type GenerateEmailsResponse struct {
	Success     bool                   `json:"success"`
	Emails      []model.GeneratedEmail `json:"emails"`
	Error       string                 `json:"error,omitempty"`
	RawResponse string                 `json:"rawResponse,omitempty"`
	ContextUsed string                 `json:"contextUsed"`
}

// ServiceInfo is the body of GET /.
type ServiceInfo struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
	Usage     map[string]string `json:"usage"`
	Timestamp time.Time         `json:"timestamp"`
}

// CreateSessionResponse is the body of POST /sessions.
type CreateSessionResponse struct {
	ID string `json:"id"`
}

// SessionResponse carries a session's aggregated state.
type SessionResponse struct {
	ID string `json:"id"`
	model.Snapshot
}

// LookupRequest is the body of POST /sessions/:id/lookup. An empty Source
// selects the configured default mode.
type LookupRequest struct {
	Query      string `json:"query" binding:"required"`
	Source     string `json:"source"`
	TargetUser string `json:"targetUser"`
}

// PersonalizeRequest is the body of POST /sessions/:id/personalize.
type PersonalizeRequest struct {
	DomainEmailIndex *int   `json:"domainEmailIndex" binding:"required"`
	TargetUser       string `json:"targetUser"`
}
