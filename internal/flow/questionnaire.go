package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/remote-first-institute/aiwo/internal/genai"
	"github.com/remote-first-institute/aiwo/internal/models"
	"github.com/remote-first-institute/aiwo/internal/score"
	"github.com/remote-first-institute/aiwo/internal/store"
)

const askQuestionPrompt = `You're a conversational AI agent designed to ask user questions regarding their remote work experience.

Question %d of %d:
%s

Possible answers:
%s

Ask the question and provide the possible answers. Use Markdown formatting. Add emojis.`

const parseAnswerPrompt = `You're a conversational AI agent designed to parse user's responses to a questionnaire regarding their remote work experience.

The user was asked: "%s".

The possible answers are:
%s

The user's response was: "%s".

If the answer makes sense, submit the number representing it to the question to the "submit_answer" function.

Reply with some feedback to the user. Use Markdown formatting. Add emojis.`

// submitAnswerTool lets the model record which option the user chose.
var submitAnswerTool = openai.ChatCompletionToolParam{
	Function: shared.FunctionDefinitionParam{
		Name:        "submit_answer",
		Description: openai.String("submit user's answer to the question"),
		Parameters: shared.FunctionParameters{
			"type": "object",
			"properties": map[string]any{
				"answer": map[string]any{
					"type":        "number",
					"description": "The number representing the user's answer, starting at 1.",
				},
			},
			"required": []string{"answer"},
		},
	},
}

// QuestionnaireFlow walks the user through the scored questionnaire for their
// role. Each user message is parsed by the model; a recognized answer advances
// to the next question, anything else asks the user to retry. After the last
// answer the flow computes the score, persists it, and ends.
type QuestionnaireFlow struct {
	client genai.ClientInterface
	store  store.Store
	user   *models.User

	role      models.Role
	questions []score.Question
	answers   []int
	retry     bool
}

// NewQuestionnaireFlow creates the questionnaire for the given role.
func NewQuestionnaireFlow(role models.Role, deps Deps) *QuestionnaireFlow {
	return &QuestionnaireFlow{
		client:    deps.GenAI,
		store:     deps.Store,
		user:      deps.User,
		role:      role,
		questions: score.QuestionsFor(role),
	}
}

// Start asks the first question.
func (f *QuestionnaireFlow) Start(ctx context.Context) (*models.FlowResponse, error) {
	question, err := f.nextQuestion(ctx)
	if err != nil {
		return nil, err
	}
	return &models.FlowResponse{Messages: []string{question}}, nil
}

// Submit parses the user's answer to the pending question.
func (f *QuestionnaireFlow) Submit(ctx context.Context, text string) (*models.FlowResponse, error) {
	index := len(f.answers)
	question := f.questions[index]

	prompt := fmt.Sprintf(parseAnswerPrompt, question.Text, formatAnswers(question), text)
	resp, err := f.client.GenerateWithTools(ctx,
		[]openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		[]openai.ChatCompletionToolParam{submitAnswerTool},
	)
	if err != nil {
		return nil, err
	}

	for _, call := range resp.ToolCalls {
		if call.Function.Name != "submit_answer" {
			continue
		}
		if rejection := f.recordAnswer(call.Function.Arguments, question); rejection != "" {
			return &models.FlowResponse{Messages: []string{rejection}}, nil
		}
	}

	messages := []string{resp.Content}

	if len(f.answers) == len(f.questions) {
		return f.finish(messages)
	}
	if !f.retry {
		question, err := f.nextQuestion(ctx)
		if err != nil {
			return nil, err
		}
		messages = append(messages, question)
	}
	return &models.FlowResponse{Messages: messages}, nil
}

// nextQuestion renders the pending question. The retry flag stays set until
// an answer to it is recorded.
func (f *QuestionnaireFlow) nextQuestion(ctx context.Context) (string, error) {
	f.retry = true
	index := len(f.answers)
	question := f.questions[index]
	prompt := fmt.Sprintf(askQuestionPrompt, index+1, len(f.questions), question.Text, formatAnswers(question))
	return f.client.Generate(ctx, "", prompt)
}

// recordAnswer validates and stores a submitted answer. It returns a
// user-facing rejection message when the submission is not a valid option.
func (f *QuestionnaireFlow) recordAnswer(arguments json.RawMessage, question score.Question) string {
	raw, ok := parseAnswerArgument(arguments)
	if !ok {
		return fmt.Sprintf("%s is not a valid option. Try again.", strings.TrimSpace(string(arguments)))
	}
	answer := int(math.Ceil(raw))
	if answer < 1 || answer > question.OptionCount() {
		return fmt.Sprintf("%d is not a valid option. Try again.", answer)
	}
	f.retry = false
	f.answers = append(f.answers, answer-1)
	return ""
}

// finish computes the final score, persists it, and ends the flow.
func (f *QuestionnaireFlow) finish(messages []string) (*models.FlowResponse, error) {
	points, err := score.Points(f.questions, f.answers)
	if err != nil {
		return nil, err
	}
	result, err := score.Calculate(f.questions, f.answers)
	if err != nil {
		return nil, err
	}

	if f.store != nil && f.user != nil {
		record := models.ScoreRecord{UserID: f.user.ID, Score: result, Role: f.role}
		if err := f.store.AddScore(record); err != nil {
			slog.Error("QuestionnaireFlow.finish: failed to persist score", "error", err, "userID", f.user.ID)
		}
	}

	messages = append(messages, fmt.Sprintf(
		"You've got %d points which results in a %d%% Remote Work Score.", points, result))
	return &models.FlowResponse{
		Messages:    messages,
		Suggestions: []models.FlowSuggestion{},
		Extra:       map[string]any{models.ExtraKeyScore: result},
	}, nil
}

// parseAnswerArgument extracts the numeric answer from the tool arguments.
// Models occasionally send the number as a string; both encodings are
// accepted.
func parseAnswerArgument(arguments json.RawMessage) (float64, bool) {
	var args struct {
		Answer json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil || len(args.Answer) == 0 {
		return 0, false
	}
	var number float64
	if err := json.Unmarshal(args.Answer, &number); err == nil {
		return number, true
	}
	var text string
	if err := json.Unmarshal(args.Answer, &text); err == nil {
		if number, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return number, true
		}
	}
	return 0, false
}

// formatAnswers renders the selectable options for a question.
func formatAnswers(q score.Question) string {
	if q.Answers == nil {
		return "A single digit between 1 (not at all) and 5 (absolutely yes)"
	}
	var b strings.Builder
	for i, answer := range q.Answers {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, answer)
	}
	return b.String()
}
