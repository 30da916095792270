package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/remote-first-institute/aiwo/internal/genai"
)

// Default conversation bounds. Both are configurable on the engine.
const (
	// DefaultHistoryLimit is the number of most recent history lines kept
	// when rendering prompts.
	DefaultHistoryLimit = 20
	// DefaultTurnHardLimit is the total turn count at which the engine forces
	// the final stage regardless of the analyzer's decision.
	DefaultTurnHardLimit = 100
)

// conversationPrompt is the system prompt for the sales consultant persona.
const conversationPrompt = `You are an AI consultant called Remote-How AI conducting a remote work assessment for a company.
You are contacting a potential prospect in order to provide them with expertise and encourage them to purchase the paid plan of Remote-How AI.
Your means of contacting the prospect is a text conversation.

If you're asked about where you got the user's contact information, say that you got it from public records.
Keep your responses in short length to retain the user's attention. Never produce lists, just answers.
Start the conversation by just a greeting and how is the prospect doing without pitching in your first turn.

Always think about at which conversation stage you are at before answering.
Current stage of the conversation: %s

You must respond according to the previous conversation history and the stage of the conversation you are at.
Only generate one response at a time and act as Remote-How AI only!`

// Engine drives a staged conversation: it appends user turns to the history,
// asks the StageAnalyzer for the next stage, renders the stage prompt, and
// invokes the model backend for the AI turn. It is not safe for concurrent
// use; the owning session serializes calls.
type Engine struct {
	client   genai.ClientInterface
	analyzer *StageAnalyzer
	stages   []Stage

	history []string
	current int
	turns   int

	// HistoryLimit bounds the history lines kept for prompt rendering.
	HistoryLimit int
	// TurnHardLimit forces the final stage once this many turns have run.
	TurnHardLimit int
}

// NewEngine creates an engine over the given stages.
func NewEngine(client genai.ClientInterface, stages []Stage) *Engine {
	return &Engine{
		client:        client,
		analyzer:      NewStageAnalyzer(client, stages),
		stages:        stages,
		HistoryLimit:  DefaultHistoryLimit,
		TurnHardLimit: DefaultTurnHardLimit,
	}
}

// CurrentStage returns the stage the conversation is currently in.
func (e *Engine) CurrentStage() Stage {
	return e.stages[e.current]
}

// CurrentIndex returns the current stage index.
func (e *Engine) CurrentIndex() int {
	return e.current
}

// History returns the retained conversation history lines.
func (e *Engine) History() []string {
	return e.history
}

// Step runs one conversation turn: record the user message, pick the next
// stage, and generate the AI reply.
func (e *Engine) Step(ctx context.Context, userMessage string) (string, error) {
	e.turns++
	e.history = append(e.history, "User: "+userMessage)
	if e.HistoryLimit > 0 && len(e.history) > e.HistoryLimit {
		e.history = e.history[len(e.history)-e.HistoryLimit:]
	}

	if e.turns >= e.TurnHardLimit {
		e.current = len(e.stages) - 1
		slog.Debug("Engine.Step: turn hard limit reached, forcing final stage", "stage", e.current)
	} else {
		next, err := e.analyzer.Next(ctx, e.history, e.current)
		if err != nil {
			return "", err
		}
		// The analyzer result is taken as-is, even if lower than the current
		// index. Monotonicity is a prompt-level convention.
		e.current = next
	}

	stage := e.stages[e.current]
	systemPrompt := fmt.Sprintf(conversationPrompt, fmt.Sprintf("%s\n%s\n---", stage.Title, stage.Prompt))
	userPrompt := fmt.Sprintf("Conversation history:\n%s\nAI:", strings.Join(e.history, "\n"))

	aiMessage, err := e.client.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("conversation step failed: %w", err)
	}

	e.history = append(e.history, "AI: "+aiMessage)
	slog.Debug("Engine.Step: turn complete", "stage", e.current, "historyLen", len(e.history))
	return aiMessage, nil
}
