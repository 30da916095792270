package flow

import (
	"context"

	"github.com/remote-first-institute/aiwo/internal/models"
)

// IntroFlow asks the user to pick their team role. It ends at Start: the
// response offers the role-specific questionnaire flows as suggestions.
type IntroFlow struct{}

// NewIntroFlow creates the role selection flow.
func NewIntroFlow() *IntroFlow {
	return &IntroFlow{}
}

// Start returns the role prompt with one suggestion per questionnaire variant.
func (f *IntroFlow) Start(_ context.Context) (*models.FlowResponse, error) {
	return &models.FlowResponse{
		Messages: []string{"Please select your role in the team"},
		Suggestions: []models.FlowSuggestion{
			models.FlowKindScoreTeamMember.Suggestion(),
			models.FlowKindScorePeopleLeader.Suggestion(),
		},
	}, nil
}

// Submit is not supported; the flow ends at Start.
func (f *IntroFlow) Submit(_ context.Context, _ string) (*models.FlowResponse, error) {
	return nil, models.ErrNotSupported
}
