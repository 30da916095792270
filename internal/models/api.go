// Package models defines API request and response types for aiwo endpoints.
package models

import (
	"errors"
	"fmt"
	"net/mail"
)

// APIStatus represents the status field of an API response.
type APIStatus string

const (
	APIStatusOK    APIStatus = "ok"
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}

// StartChatResponse is returned from POST /chats.
type StartChatResponse struct {
	ChatID      string           `json:"chat_id"`
	Messages    []string         `json:"messages"`
	Suggestions []FlowSuggestion `json:"flow_suggestions,omitempty"`
	IsPaid      bool             `json:"is_paid"`
}

// SendMessageRequest is the body of POST /chats/{chatID}/messages.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// Validate checks the message content against gateway limits.
func (r *SendMessageRequest) Validate() error {
	if r.Content == "" {
		return errors.New("content is required")
	}
	if len(r.Content) > MaxUserMessageLength {
		return fmt.Errorf("content exceeds maximum length of %d characters", MaxUserMessageLength)
	}
	return nil
}

// SendMessageResponse is returned from POST /chats/{chatID}/messages.
type SendMessageResponse struct {
	Messages    []string         `json:"messages"`
	Suggestions []FlowSuggestion `json:"flow_suggestions,omitempty"`
}

// FlowSuggestionsResponse is returned from GET /flow-suggestions.
type FlowSuggestionsResponse struct {
	Suggestions []FlowSuggestion `json:"flow_suggestions"`
}

// AddUserRequest is the body of POST /users.
type AddUserRequest struct {
	APIKey     string `json:"api_key"`
	Email      string `json:"email"`
	Country    string `json:"country"`
	Industry   string `json:"industry"`
	Profession string `json:"profession"`
}

// Validate performs field validation on an AddUserRequest.
func (r *AddUserRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("invalid email address: %w", err)
	}
	if r.Country == "" {
		return errors.New("country is required")
	}
	if r.Industry == "" {
		return errors.New("industry is required")
	}
	if r.Profession == "" {
		return errors.New("profession is required")
	}
	return nil
}

// DeleteUserRequest is the body of DELETE /users.
type DeleteUserRequest struct {
	APIKey string `json:"api_key"`
	Email  string `json:"email"`
}
