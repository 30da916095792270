package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/openai/openai-go"

	"github.com/remote-first-institute/aiwo/internal/flow"
	"github.com/remote-first-institute/aiwo/internal/genai"
	"github.com/remote-first-institute/aiwo/internal/models"
)

// stubClient answers every backend call immediately. GenerateWithTools can be
// made to block so a test can hold a submit open.
type stubClient struct {
	entered chan struct{}
	release chan struct{}
}

func (c *stubClient) Generate(_ context.Context, _, _ string) (string, error) {
	return "reply", nil
}

func (c *stubClient) GenerateWithMessages(_ context.Context, _ []openai.ChatCompletionMessageParamUnion) (string, error) {
	return "reply", nil
}

func (c *stubClient) GenerateWithTools(_ context.Context, _ []openai.ChatCompletionMessageParamUnion, _ []openai.ChatCompletionToolParam) (*genai.ToolCallResponse, error) {
	if c.entered != nil {
		c.entered <- struct{}{}
		<-c.release
	}
	return &genai.ToolCallResponse{Content: "noted"}, nil
}

// terminalFlow ends on the first submit.
type terminalFlow struct{}

func (terminalFlow) Start(context.Context) (*models.FlowResponse, error) {
	return &models.FlowResponse{Messages: []string{"hi"}}, nil
}

func (terminalFlow) Submit(context.Context, string) (*models.FlowResponse, error) {
	return &models.FlowResponse{
		Messages:    []string{"bye"},
		Suggestions: []models.FlowSuggestion{},
	}, nil
}

func TestRegistryStartAndSubmit(t *testing.T) {
	r := NewRegistry()
	deps := flow.Deps{GenAI: &stubClient{}}

	chatID, resp, err := r.Start(context.Background(), models.FlowKindQuestionsAndPlaybook, deps)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if chatID == "" {
		t.Fatal("expected non-empty chat id")
	}
	if resp.Terminal() {
		t.Error("expected running flow")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 active session, got %d", r.Len())
	}

	submitResp, err := r.Submit(context.Background(), chatID, "hello")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(submitResp.Messages) == 0 {
		t.Error("expected messages in response")
	}
}

func TestRegistryTerminalStartNotRegistered(t *testing.T) {
	r := NewRegistry()
	deps := flow.Deps{GenAI: &stubClient{}}

	chatID, resp, err := r.Start(context.Background(), models.FlowKindScoreIntro, deps)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !resp.Terminal() {
		t.Fatal("expected terminal opening response")
	}
	if r.Len() != 0 {
		t.Errorf("expected no active sessions, got %d", r.Len())
	}
	if _, err := r.Submit(context.Background(), chatID, "hi"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRegistrySubmitUnknownSession(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Submit(context.Background(), "nope", "hi"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRegistryBusyRejection(t *testing.T) {
	r := NewRegistry()
	client := &stubClient{entered: make(chan struct{}), release: make(chan struct{})}
	deps := flow.Deps{GenAI: client}

	// The questionnaire's Start only renders the first question; submits go
	// through the blocking tool call.
	chatID, _, err := r.Start(context.Background(), models.FlowKindScoreTeamMember, deps)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := r.Submit(context.Background(), chatID, "first"); err != nil {
			t.Errorf("first Submit failed: %v", err)
		}
	}()

	// Wait until the first submit is inside the flow and holds the session.
	<-client.entered

	if _, err := r.Submit(context.Background(), chatID, "second"); !errors.Is(err, models.ErrSessionBusy) {
		t.Errorf("expected ErrSessionBusy, got %v", err)
	}

	close(client.release)
	wg.Wait()

	// With the first submit finished the session accepts messages again.
	client.entered = nil
	if _, err := r.Submit(context.Background(), chatID, "third"); err != nil {
		t.Errorf("Submit after release failed: %v", err)
	}
}

func TestRegistryTerminalSubmitRemovesSession(t *testing.T) {
	r := NewRegistry()
	chatID := newChatID()
	r.sessions[chatID] = &Session{flow: terminalFlow{}}

	resp, err := r.Submit(context.Background(), chatID, "last message")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !resp.Terminal() {
		t.Fatal("expected terminal response")
	}
	if r.Len() != 0 {
		t.Errorf("expected session removed, got %d active", r.Len())
	}
	if _, err := r.Submit(context.Background(), chatID, "again"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRegistryDelete(t *testing.T) {
	r := NewRegistry()
	deps := flow.Deps{GenAI: &stubClient{}}

	chatID, _, err := r.Start(context.Background(), models.FlowKindQuestionsAndPlaybook, deps)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := r.Delete(chatID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := r.Delete(chatID); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestChatIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := newChatID()
		if len(id) != 32 {
			t.Fatalf("expected 32-char hex id, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate chat id %q", id)
		}
		seen[id] = true
	}
}
