package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"

	"github.com/remote-first-institute/aiwo/internal/genai"
	"github.com/remote-first-institute/aiwo/internal/models"
	"github.com/remote-first-institute/aiwo/internal/playbook"
)

// playbookStartAttempts is how many times the opening turn is retried when
// the model output cannot be parsed.
const playbookStartAttempts = 5

// playbookFallbackReply is returned when every opening attempt failed.
const playbookFallbackReply = "Failed to generate a reply, sorry."

const playbookSystemPrompt = `As an AI-powered chatbot, your goal is to help people managers become better at leading distributed teams. Your task is to help the user generate a bespoke plan for each company or team, pinpointing the areas that need improvement to optimize the remote work model. The plan can include recommendations on communication channels, collaboration, employee engagement, and more, based on chatbot vast dataset and understanding of effective remote work practices.

You should be able to help the user by querying the playbook content and answering their questions or requests for help based on the playbook content or best practices from the world's top remote companies, such as GitLab, Doist, Buffer, or Automattic.

The user has responded to questions regarding their remote work.
Their score was calculated to %d%%.

Remote work readiness scale:
Low: 0-50%%
Medium: 51-90%%
High: 91-100%%

Please provide relevant and creative recommendations that are actionable and helpful to the user's specific needs and challenges. Format your responses with Markdown and add emojis. During the conversation, always ask follow-up questions to the user to keep the conversation going.`

const playbookOpeningPrompt = `Generate a bespoke improvement plan opening for the user based on their score. End your response by asking the user: "Which challenge do you want me to help you solve first?

Please add information about: 1. Problem description (eg. As a Director of Marketing, I have too many meetings. 2. Timezones differences (eg. Max 4h time difference). 3 Tools you are using (eg. Slack for sync, Notion for async). 4. Additional context (eg. We want to get an action plan how to become more asynchronous friendly in 30 days)."`

// PlaybookFlow is an open-ended advisory chat grounded in the remote work
// playbook. Each turn retrieves the playbook fragments most relevant to the
// user's message and feeds them to the model as context. The flow never ends
// on its own.
type PlaybookFlow struct {
	client    genai.ClientInterface
	retriever playbook.Retriever
	userScore int

	history []openai.ChatCompletionMessageParamUnion
}

// NewPlaybookFlow creates a playbook chat for a user with the given score.
func NewPlaybookFlow(userScore int, deps Deps) *PlaybookFlow {
	return &PlaybookFlow{
		client:    deps.GenAI,
		retriever: deps.Playbook,
		userScore: userScore,
	}
}

// Start generates the opening improvement plan. Parse failures are retried a
// few times before giving up with a fallback reply.
func (f *PlaybookFlow) Start(ctx context.Context) (*models.FlowResponse, error) {
	var reply string
	var err error
	for attempt := 0; attempt < playbookStartAttempts; attempt++ {
		reply, err = f.turn(ctx, playbookOpeningPrompt)
		if err == nil {
			break
		}
		if !errors.Is(err, genai.ErrOutputParse) {
			return nil, err
		}
		slog.Warn("PlaybookFlow.Start: output parse failed, retrying", "attempt", attempt+1, "error", err)
	}
	if err != nil {
		reply = playbookFallbackReply
	}
	return &models.FlowResponse{Messages: []string{reply}}, nil
}

// Submit answers one user message with playbook-grounded advice.
func (f *PlaybookFlow) Submit(ctx context.Context, text string) (*models.FlowResponse, error) {
	reply, err := f.turn(ctx, text)
	if err != nil {
		return nil, err
	}
	return &models.FlowResponse{Messages: []string{reply}}, nil
}

// turn retrieves playbook context for the input, generates a reply, and
// appends the exchange to the history.
func (f *PlaybookFlow) turn(ctx context.Context, input string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(fmt.Sprintf(playbookSystemPrompt, f.userScore)),
	}
	messages = append(messages, f.history...)

	if f.retriever != nil {
		fragments, err := f.retriever.Search(ctx, input)
		if err != nil {
			slog.Warn("PlaybookFlow.turn: playbook search failed", "error", err)
		} else if len(fragments) > 0 {
			messages = append(messages, openai.SystemMessage(
				"Relevant playbook fragments:\n"+strings.Join(fragments, "\n---\n")))
		}
	}
	messages = append(messages, openai.UserMessage(input))

	reply, err := f.client.GenerateWithMessages(ctx, messages)
	if err != nil {
		return "", err
	}
	f.history = append(f.history, openai.UserMessage(input), openai.AssistantMessage(reply))
	return reply, nil
}
