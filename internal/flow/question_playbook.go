package flow

import (
	"context"
	"regexp"
	"strconv"

	"github.com/remote-first-institute/aiwo/internal/models"
)

// scorePattern matches the score announcement of the legacy assessment.
var scorePattern = regexp.MustCompile(`(?i)Score: (\d+)`)

// QuestionAndPlaybookFlow chains the legacy free-form assessment into the
// playbook chat. When the assessment announces a score, the flow renders the
// tier message and hands the conversation over to a playbook chat seeded with
// that score.
type QuestionAndPlaybookFlow struct {
	deps  Deps
	inner Flow
}

// NewQuestionAndPlaybookFlow creates the legacy composite flow.
func NewQuestionAndPlaybookFlow(deps Deps) *QuestionAndPlaybookFlow {
	return &QuestionAndPlaybookFlow{deps: deps, inner: NewQuestionChat(deps)}
}

// Start opens the inner assessment.
func (f *QuestionAndPlaybookFlow) Start(ctx context.Context) (*models.FlowResponse, error) {
	return f.inner.Start(ctx)
}

// Submit forwards the message to the current inner flow, switching to the
// playbook chat once a score is announced.
func (f *QuestionAndPlaybookFlow) Submit(ctx context.Context, text string) (*models.FlowResponse, error) {
	resp, err := f.inner.Submit(ctx, text)
	if err != nil {
		return nil, err
	}
	answer := resp.Messages[0]

	match := scorePattern.FindStringSubmatch(answer)
	if match == nil {
		return &models.FlowResponse{Messages: []string{answer}}, nil
	}
	userScore, err := strconv.Atoi(match[1])
	if err != nil {
		return &models.FlowResponse{Messages: []string{answer}}, nil
	}

	tier := TierMessage(userScore, f.deps.TextFormat)

	chat := NewPlaybookFlow(userScore, f.deps)
	opening, err := chat.Start(ctx)
	if err != nil {
		return nil, err
	}
	f.inner = chat

	return &models.FlowResponse{Messages: append([]string{tier}, opening.Messages...)}, nil
}
