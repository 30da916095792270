package flow

import (
	"context"

	"github.com/remote-first-institute/aiwo/internal/models"
)

// ScoreAndPlaybookFlow chains the scored questionnaire into the playbook
// chat. When the questionnaire ends, the computed score selects the tier
// message and seeds a playbook chat that continues the session.
type ScoreAndPlaybookFlow struct {
	deps  Deps
	inner Flow
}

// NewScoreAndPlaybookFlow creates the questionnaire-then-playbook composite
// for the given role.
func NewScoreAndPlaybookFlow(role models.Role, deps Deps) *ScoreAndPlaybookFlow {
	return &ScoreAndPlaybookFlow{deps: deps, inner: NewQuestionnaireFlow(role, deps)}
}

// Start opens the inner questionnaire.
func (f *ScoreAndPlaybookFlow) Start(ctx context.Context) (*models.FlowResponse, error) {
	return f.inner.Start(ctx)
}

// Submit forwards the message to the current inner flow. A terminal
// questionnaire response triggers the handoff: the tier message and the
// playbook opening are appended, and the session keeps running.
func (f *ScoreAndPlaybookFlow) Submit(ctx context.Context, text string) (*models.FlowResponse, error) {
	resp, err := f.inner.Submit(ctx, text)
	if err != nil {
		return nil, err
	}
	if !resp.Terminal() {
		return resp, nil
	}

	messages := resp.Messages
	if userScore, ok := resp.Score(); ok {
		messages = append(messages, TierMessage(userScore, f.deps.TextFormat))

		chat := NewPlaybookFlow(userScore, f.deps)
		opening, err := chat.Start(ctx)
		if err != nil {
			return nil, err
		}
		f.inner = chat
		messages = append(messages, opening.Messages...)
	}

	return &models.FlowResponse{Messages: messages}, nil
}
