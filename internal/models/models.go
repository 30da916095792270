// Package models defines the core data structures for aiwo.
//
// It includes flow kinds, flow responses, user-facing suggestions, and the
// persistence entities shared across modules.
package models

import (
	"errors"
	"time"
)

// FlowKind identifies a conversational flow variant.
type FlowKind string

const (
	// FlowKindQuestionsAndPlaybook runs the legacy free-form questionnaire followed by playbook chat.
	FlowKindQuestionsAndPlaybook FlowKind = "questions_and_playbook"
	// FlowKindScoreIntro asks the user to pick their team role.
	FlowKindScoreIntro FlowKind = "remote_work_score_intro"
	// FlowKindScoreTeamMember runs the scored questionnaire for regular team members.
	FlowKindScoreTeamMember FlowKind = "remote_work_score_team_member"
	// FlowKindScorePeopleLeader runs the scored questionnaire for people leaders.
	FlowKindScorePeopleLeader FlowKind = "remote_work_score_people_leader"
	// FlowKindSalesAgent runs the stage-driven sales interview.
	FlowKindSalesAgent FlowKind = "sales_agent"
	// FlowKindAwesome sends a single complimentary message.
	FlowKindAwesome FlowKind = "awesome"
)

// IsValidFlowKind checks if the given flow kind is supported.
func IsValidFlowKind(k FlowKind) bool {
	switch k {
	case FlowKindQuestionsAndPlaybook, FlowKindScoreIntro, FlowKindScoreTeamMember,
		FlowKindScorePeopleLeader, FlowKindSalesAgent, FlowKindAwesome:
		return true
	default:
		return false
	}
}

// Suggestion returns the user-facing suggestion entry for this flow kind.
func (k FlowKind) Suggestion() FlowSuggestion {
	var text string
	switch k {
	case FlowKindQuestionsAndPlaybook:
		text = "Find out and help improve my Remote Work Score (legacy)"
	case FlowKindScoreIntro:
		text = "Find out my Remote Work Score"
	case FlowKindScoreTeamMember:
		text = "I'm a regular team member!"
	case FlowKindScorePeopleLeader:
		text = "I'm a team leader!"
	case FlowKindSalesAgent:
		text = "Get my Distributed Work Score"
	case FlowKindAwesome:
		text = "Tell me how awesome I am"
	}
	return FlowSuggestion{ID: string(k), Text: text}
}

// FlowSuggestion is a follow-up action offered to the user at the end of a flow.
type FlowSuggestion struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// FlowResponse is the result of a single flow turn.
//
// A nil Suggestions slice means the flow is still running. A non-nil slice
// (possibly empty) signals the flow reached a terminal state and the session
// should be released.
type FlowResponse struct {
	Messages    []string         `json:"messages"`
	Suggestions []FlowSuggestion `json:"flow_suggestions,omitempty"`
	Extra       map[string]any   `json:"-"`
}

// Terminal reports whether this response ends the flow.
func (r *FlowResponse) Terminal() bool {
	return r.Suggestions != nil
}

// ExtraKeyScore is the Extra key carrying a computed remote work score.
const ExtraKeyScore = "remote_work_score"

// Score extracts the computed score from Extra, if present.
func (r *FlowResponse) Score() (int, bool) {
	v, ok := r.Extra[ExtraKeyScore]
	if !ok {
		return 0, false
	}
	score, ok := v.(int)
	return score, ok
}

// Role identifies the user's position in their team, which selects the
// questionnaire variant.
type Role string

const (
	RoleTeamMember   Role = "team_member"
	RolePeopleLeader Role = "people_leader"
)

// TextFormat selects the markup dialect for rendered messages.
type TextFormat string

const (
	// TextFormatMarkdown renders standard Markdown (bold, [text](url) links).
	TextFormatMarkdown TextFormat = "markdown"
	// TextFormatSlack renders Slack-style markup (*bold*, <url|text> links).
	TextFormatSlack TextFormat = "slack"
)

// IsValidTextFormat checks if the given text format is supported.
func IsValidTextFormat(f TextFormat) bool {
	return f == TextFormatMarkdown || f == TextFormatSlack
}

// Validation constants for gateway input.
const (
	// MaxUserMessageLength bounds a single user message before it reaches the core.
	MaxUserMessageLength = 1000
)

// Error variables for better error handling and testability
var (
	// ErrSessionNotFound indicates the chat id does not map to an active session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionBusy indicates a previous submit for the session is still in flight.
	ErrSessionBusy = errors.New("session busy")
	// ErrNotSupported indicates the flow variant does not support the operation.
	ErrNotSupported = errors.New("operation not supported by this flow")
	// ErrInvalidAnswerCount indicates the answer slice length does not match the question list.
	ErrInvalidAnswerCount = errors.New("answer count does not match question count")
	// ErrInvalidAnswerIndex indicates an answer index outside the question's points vector.
	ErrInvalidAnswerIndex = errors.New("answer index out of range")
	// ErrUnknownFlowKind indicates an unrecognized flow kind was requested.
	ErrUnknownFlowKind = errors.New("unknown flow kind")
)

// User is a registered participant.
type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Country    string    `json:"country"`
	Industry   string    `json:"industry"`
	Profession string    `json:"profession"`
	CreatedAt  time.Time `json:"created_at"`
}

// Answer records one interview turn together with its sentiment analysis.
type Answer struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	Topic     string    `json:"topic"`
	Score     float64   `json:"score"`     // sentiment score in [-1, 1]
	Magnitude float64   `json:"magnitude"` // sentiment magnitude >= 0
	CreatedAt time.Time `json:"created_at"`
}

// ScoreRecord persists a computed remote work score.
type ScoreRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Score     int       `json:"score"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Purchase records a completed checkout for a user.
type Purchase struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
