// Package flow implements the conversational flow variants.
//
// A Flow is a stateful conversation driver. Start produces the opening
// message(s); Submit advances the conversation with one user message. Each
// response carries the flow's messages and, once the flow reaches a terminal
// state, a non-nil (possibly empty) suggestions slice.
package flow

import (
	"context"

	"github.com/remote-first-institute/aiwo/internal/genai"
	"github.com/remote-first-institute/aiwo/internal/models"
	"github.com/remote-first-institute/aiwo/internal/playbook"
	"github.com/remote-first-institute/aiwo/internal/sentiment"
	"github.com/remote-first-institute/aiwo/internal/store"
)

// Flow drives one conversation variant.
type Flow interface {
	// Start opens the conversation and returns the initial response.
	Start(ctx context.Context) (*models.FlowResponse, error)
	// Submit advances the conversation with a user message. Flows that end at
	// Start return models.ErrNotSupported.
	Submit(ctx context.Context, text string) (*models.FlowResponse, error)
}

// Deps bundles the shared services flows draw on. Fields a particular flow
// does not need may be nil.
type Deps struct {
	GenAI      genai.ClientInterface
	Playbook   playbook.Retriever
	Sentiment  sentiment.Analyzer
	Store      store.Store
	User       *models.User
	TextFormat models.TextFormat
}

// New constructs the flow for the given kind.
func New(kind models.FlowKind, deps Deps) (Flow, error) {
	switch kind {
	case models.FlowKindQuestionsAndPlaybook:
		return NewQuestionAndPlaybookFlow(deps), nil
	case models.FlowKindScoreIntro:
		return NewIntroFlow(), nil
	case models.FlowKindScoreTeamMember:
		return NewScoreAndPlaybookFlow(models.RoleTeamMember, deps), nil
	case models.FlowKindScorePeopleLeader:
		return NewScoreAndPlaybookFlow(models.RolePeopleLeader, deps), nil
	case models.FlowKindSalesAgent:
		return NewSalesFlow(deps), nil
	case models.FlowKindAwesome:
		return NewAwesomeFlow(deps), nil
	default:
		return nil, models.ErrUnknownFlowKind
	}
}
