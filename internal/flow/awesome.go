package flow

import (
	"context"

	"github.com/remote-first-institute/aiwo/internal/genai"
	"github.com/remote-first-institute/aiwo/internal/models"
)

const awesomePrompt = "Tell the user how awesome they are and how much you like them." +
	" Use Markdown formatting. Add emojis."

// AwesomeFlow sends a single complimentary message and ends, suggesting
// another round of the same.
type AwesomeFlow struct {
	client genai.ClientInterface
}

// NewAwesomeFlow creates the compliment flow.
func NewAwesomeFlow(deps Deps) *AwesomeFlow {
	return &AwesomeFlow{client: deps.GenAI}
}

// Start generates the compliment and ends the flow.
func (f *AwesomeFlow) Start(ctx context.Context) (*models.FlowResponse, error) {
	message, err := f.client.Generate(ctx, "", awesomePrompt)
	if err != nil {
		return nil, err
	}
	return &models.FlowResponse{
		Messages:    []string{message},
		Suggestions: []models.FlowSuggestion{models.FlowKindAwesome.Suggestion()},
	}, nil
}

// Submit is not supported; the flow ends at Start.
func (f *AwesomeFlow) Submit(_ context.Context, _ string) (*models.FlowResponse, error) {
	return nil, models.ErrNotSupported
}
