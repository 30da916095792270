package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/remote-first-institute/aiwo/internal/agent"
	"github.com/remote-first-institute/aiwo/internal/genai"
	"github.com/remote-first-institute/aiwo/internal/models"
	"github.com/remote-first-institute/aiwo/internal/sentiment"
	"github.com/remote-first-institute/aiwo/internal/store"
)

// interviewDoneMessage is returned for any message after the closing pitch.
const interviewDoneMessage = "The interview has already been completed. Buy our product to get more results!"

const donationPitchPrompt = `You were interviewing a user on their remote work performance and you got their remote work score which is %d/100.
Encourage the user to donate to the Remote-First Institute if they want to get more in-depth results, and personalized recommendations. Make sure you ask an appealing question to get the user attention - leverage the context data you have.

Make sure that the text is using the markdown language to make it pretty and use emotes to decorate it.`

// SalesFlow runs the stage-driven assessment interview. Each answered turn is
// scored for sentiment and persisted. When the conversation reaches the final
// stage the flow delivers a one-time closing pitch built from the user's
// stored score, and afterwards only repeats a completion notice.
type SalesFlow struct {
	client    genai.ClientInterface
	engine    *agent.Engine
	store     store.Store
	sentiment sentiment.Analyzer
	user      *models.User

	lastQuestion string
	done         bool
}

// NewSalesFlow creates the staged interview flow.
func NewSalesFlow(deps Deps) *SalesFlow {
	return &SalesFlow{
		client:    deps.GenAI,
		engine:    agent.NewEngine(deps.GenAI, agent.SalesStages),
		store:     deps.Store,
		sentiment: deps.Sentiment,
		user:      deps.User,
	}
}

// Start opens the interview with a greeting turn.
func (f *SalesFlow) Start(ctx context.Context) (*models.FlowResponse, error) {
	reply, err := f.engine.Step(ctx, "hello")
	if err != nil {
		return nil, err
	}
	return &models.FlowResponse{Messages: []string{reply}}, nil
}

// Submit advances the interview by one turn.
func (f *SalesFlow) Submit(ctx context.Context, text string) (*models.FlowResponse, error) {
	if f.done {
		return &models.FlowResponse{Messages: []string{interviewDoneMessage}}, nil
	}

	currentStage := f.engine.CurrentStage()
	if currentStage.Title == agent.StageTitleDone {
		return f.closingPitch(ctx)
	}

	reply, err := f.engine.Step(ctx, text)
	if err != nil {
		return nil, err
	}

	if f.lastQuestion != "" && f.user != nil {
		f.recordAnswer(ctx, text, currentStage.Topic)
	}

	f.lastQuestion = reply
	return &models.FlowResponse{Messages: []string{reply}}, nil
}

// closingPitch delivers the one-time donation pitch using the user's stored
// score and marks the interview complete.
func (f *SalesFlow) closingPitch(ctx context.Context) (*models.FlowResponse, error) {
	f.done = true

	var userScore int
	if f.store != nil && f.user != nil {
		record, err := f.store.LatestScore(f.user.ID)
		if err != nil {
			slog.Error("SalesFlow.closingPitch: failed to load score", "error", err, "userID", f.user.ID)
		} else if record != nil {
			userScore = record.Score
		}
	}

	pitch, err := f.client.Generate(ctx, "", fmt.Sprintf(donationPitchPrompt, userScore))
	if err != nil {
		return nil, err
	}
	return &models.FlowResponse{Messages: []string{pitch}}, nil
}

// recordAnswer scores the user's reply to the previous question and persists
// it. Persistence problems are logged, not surfaced; the interview goes on.
func (f *SalesFlow) recordAnswer(ctx context.Context, text, topic string) {
	if f.store == nil || f.sentiment == nil {
		return
	}
	result, err := f.sentiment.Analyze(ctx, text)
	if err != nil {
		slog.Warn("SalesFlow.recordAnswer: sentiment analysis failed", "error", err)
		return
	}
	answer := models.Answer{
		UserID:    f.user.ID,
		Question:  f.lastQuestion,
		Response:  text,
		Topic:     topic,
		Score:     result.Score,
		Magnitude: result.Magnitude,
	}
	if err := f.store.AddAnswer(answer); err != nil {
		slog.Warn("SalesFlow.recordAnswer: failed to persist answer", "error", err)
	}
}
