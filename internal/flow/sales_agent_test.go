package flow

import (
	"context"
	"strings"
	"testing"

	"github.com/remote-first-institute/aiwo/internal/models"
	"github.com/remote-first-institute/aiwo/internal/sentiment"
	"github.com/remote-first-institute/aiwo/internal/store"
)

// salesScript drives the sales flow: analyzer calls pop stage indices,
// conversation calls pop replies, and the donation prompt gets the pitch.
type salesScript struct {
	stages  []string
	replies []string
	pitch   string

	pitchPrompts []string
}

func (s *salesScript) client() *fakeClient {
	return &fakeClient{generateFn: func(systemPrompt, userPrompt string) (string, error) {
		if systemPrompt == "" && strings.Contains(userPrompt, "donate to the Remote-First Institute") {
			s.pitchPrompts = append(s.pitchPrompts, userPrompt)
			return s.pitch, nil
		}
		if systemPrompt == "" {
			stage := s.stages[0]
			s.stages = s.stages[1:]
			return stage, nil
		}
		reply := s.replies[0]
		s.replies = s.replies[1:]
		return reply, nil
	}}
}

func TestSalesFlowInterview(t *testing.T) {
	memStore := store.NewInMemoryStore()
	user := &models.User{ID: 3}
	if err := memStore.AddScore(models.ScoreRecord{UserID: user.ID, Score: 61, Role: models.RoleTeamMember}); err != nil {
		t.Fatalf("AddScore failed: %v", err)
	}

	script := &salesScript{
		stages:  []string{"0", "1", "4"},
		replies: []string{"Hi! How are you doing?", "Tell me about your company.", "Thanks, we are done."},
		pitch:   "Consider donating! 🎁",
	}
	analyzer := &fakeSentiment{result: sentiment.Result{Score: 0.5, Magnitude: 1.1}}

	f := NewSalesFlow(Deps{
		GenAI:     script.client(),
		Store:     memStore,
		Sentiment: analyzer,
		User:      user,
	})

	resp, err := f.Start(context.Background())
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if resp.Terminal() {
		t.Error("expected running interview")
	}
	if resp.Messages[0] != "Hi! How are you doing?" {
		t.Errorf("unexpected greeting %q", resp.Messages[0])
	}

	// First user turn. No question has been asked through Submit yet, so
	// nothing is persisted.
	resp, err = f.Submit(context.Background(), "doing great")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if resp.Messages[0] != "Tell me about your company." {
		t.Errorf("unexpected reply %q", resp.Messages[0])
	}
	if got := len(memStore.Answers()); got != 0 {
		t.Errorf("expected no persisted answers yet, got %d", got)
	}

	// Second user turn answers the previous question and moves the engine to
	// the final stage.
	resp, err = f.Submit(context.Background(), "we are 50 people")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if resp.Messages[0] != "Thanks, we are done." {
		t.Errorf("unexpected reply %q", resp.Messages[0])
	}

	answers := memStore.Answers()
	if len(answers) != 1 {
		t.Fatalf("expected 1 persisted answer, got %d", len(answers))
	}
	a := answers[0]
	if a.Question != "Tell me about your company." {
		t.Errorf("unexpected question %q", a.Question)
	}
	if a.Response != "we are 50 people" {
		t.Errorf("unexpected response %q", a.Response)
	}
	if a.Topic != "company" {
		t.Errorf("unexpected topic %q", a.Topic)
	}
	if a.Score != 0.5 || a.Magnitude != 1.1 {
		t.Errorf("unexpected sentiment %v/%v", a.Score, a.Magnitude)
	}

	// The engine is now in the "Done" stage: the next turn delivers the
	// one-time pitch built from the stored score.
	resp, err = f.Submit(context.Background(), "anything else?")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if resp.Messages[0] != "Consider donating! 🎁" {
		t.Errorf("expected pitch, got %q", resp.Messages[0])
	}
	if len(script.pitchPrompts) != 1 || !strings.Contains(script.pitchPrompts[0], "61/100") {
		t.Errorf("expected pitch prompt with stored score, got %q", script.pitchPrompts)
	}

	// Every later message only repeats the completion notice.
	resp, err = f.Submit(context.Background(), "hello?")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if resp.Messages[0] != interviewDoneMessage {
		t.Errorf("expected completion notice, got %q", resp.Messages[0])
	}
}

func TestSalesFlowSentimentFailureDoesNotBlock(t *testing.T) {
	memStore := store.NewInMemoryStore()
	script := &salesScript{
		stages:  []string{"0", "0", "0"},
		replies: []string{"Hello!", "Question one?", "Question two?"},
	}
	analyzer := &fakeSentiment{err: context.DeadlineExceeded}

	f := NewSalesFlow(Deps{
		GenAI:     script.client(),
		Store:     memStore,
		Sentiment: analyzer,
		User:      &models.User{ID: 1},
	})

	if _, err := f.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := f.Submit(context.Background(), "hi"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := f.Submit(context.Background(), "my answer"); err != nil {
		t.Fatalf("Submit after sentiment failure failed: %v", err)
	}
	if got := len(memStore.Answers()); got != 0 {
		t.Errorf("expected no persisted answers, got %d", got)
	}
}

func TestSalesFlowAnonymousUserSkipsPersistence(t *testing.T) {
	memStore := store.NewInMemoryStore()
	script := &salesScript{
		stages:  []string{"0", "0", "0"},
		replies: []string{"Hello!", "Question one?", "Question two?"},
	}

	f := NewSalesFlow(Deps{GenAI: script.client(), Store: memStore})

	if _, err := f.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := f.Submit(context.Background(), "hi"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := f.Submit(context.Background(), "an answer"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := len(memStore.Answers()); got != 0 {
		t.Errorf("expected no persisted answers for anonymous user, got %d", got)
	}
}
