package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go"

	"github.com/remote-first-institute/aiwo/internal/genai"
	"github.com/remote-first-institute/aiwo/internal/models"
	"github.com/remote-first-institute/aiwo/internal/store"
	"github.com/remote-first-institute/aiwo/internal/textutil"
)

const testServiceKey = "test-service-key"

// stubClient answers every model call with a fixed reply.
type stubClient struct{}

func (stubClient) Generate(_ context.Context, _, _ string) (string, error) {
	return "model reply", nil
}

func (stubClient) GenerateWithMessages(_ context.Context, _ []openai.ChatCompletionMessageParamUnion) (string, error) {
	return "model reply", nil
}

func (stubClient) GenerateWithTools(_ context.Context, _ []openai.ChatCompletionMessageParamUnion, _ []openai.ChatCompletionToolParam) (*genai.ToolCallResponse, error) {
	return &genai.ToolCallResponse{Content: "model reply"}, nil
}

func newTestServer() (*Server, *store.InMemoryStore) {
	st := store.NewInMemoryStore()
	srv := NewServer(st, stubClient{}, nil, nil, textutil.NewEmojiReplacer(),
		WithServiceKey(testServiceKey))
	return srv, st
}

// decodeResult unmarshals the result field of a wrapped API response.
func decodeResult(t *testing.T, body []byte, out interface{}) string {
	t.Helper()
	var resp struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("failed to decode response envelope: %v (%s)", err, body)
	}
	if out != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			t.Fatalf("failed to decode result: %v (%s)", err, resp.Result)
		}
	}
	return resp.Status
}

func startChat(t *testing.T, handler http.Handler, query string) models.StartChatResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats?"+query, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("start chat returned status %d: %s", rec.Code, rec.Body.String())
	}
	var result models.StartChatResponse
	decodeResult(t, rec.Body.Bytes(), &result)
	return result
}

func TestStartChatRequiresCredentials(t *testing.T) {
	srv, _ := newTestServer()
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats?flow=awesome", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats?flow=awesome&email=nobody@example.com", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unapproved email, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats?flow=awesome&api_key=wrong", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong api key, got %d", rec.Code)
	}
}

func TestStartChatUnknownFlow(t *testing.T) {
	srv, _ := newTestServer()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats?flow=bogus&api_key="+testServiceKey, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown flow, got %d", rec.Code)
	}
}

func TestStartChatUnknownTextFormat(t *testing.T) {
	srv, _ := newTestServer()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/chats?flow=awesome&text_format=html&api_key="+testServiceKey, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown text format, got %d", rec.Code)
	}
}

func TestStartChatWithServiceKey(t *testing.T) {
	srv, _ := newTestServer()
	result := startChat(t, srv.Handler(), "flow=remote_work_score_intro&api_key="+testServiceKey)

	if result.ChatID == "" {
		t.Error("expected non-empty chat id")
	}
	if len(result.Suggestions) != 2 {
		t.Errorf("expected 2 role suggestions, got %d", len(result.Suggestions))
	}
	if result.IsPaid {
		t.Error("expected is_paid false for service key")
	}
}

func TestStartChatPaidUser(t *testing.T) {
	srv, st := newTestServer()
	userID, err := st.AddUser(models.User{Email: "paid@example.com"})
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	if err := st.AddPurchase(userID); err != nil {
		t.Fatalf("AddPurchase failed: %v", err)
	}

	result := startChat(t, srv.Handler(), "flow=awesome&email=paid@example.com")
	if !result.IsPaid {
		t.Error("expected is_paid true after purchase")
	}
}

func TestSendMessageLifecycle(t *testing.T) {
	srv, _ := newTestServer()
	handler := srv.Handler()

	started := startChat(t, handler, "flow=questions_and_playbook&api_key="+testServiceKey)
	if started.Suggestions != nil {
		t.Fatalf("expected running flow, got suggestions %+v", started.Suggestions)
	}

	body, _ := json.Marshal(models.SendMessageRequest{Content: "I work remotely"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats/"+started.ChatID+"/messages", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("send message returned status %d: %s", rec.Code, rec.Body.String())
	}
	var result models.SendMessageResponse
	decodeResult(t, rec.Body.Bytes(), &result)
	if len(result.Messages) == 0 || result.Messages[0] != "model reply" {
		t.Errorf("unexpected messages %q", result.Messages)
	}

	// Delete ends the session; further messages are 404.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/chats/"+started.ChatID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete chat returned status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats/"+started.ChatID+"/messages", bytes.NewReader(body)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/chats/"+started.ChatID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestSendMessageValidation(t *testing.T) {
	srv, _ := newTestServer()
	handler := srv.Handler()
	started := startChat(t, handler, "flow=questions_and_playbook&api_key="+testServiceKey)

	// Empty content.
	body, _ := json.Marshal(models.SendMessageRequest{Content: ""})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats/"+started.ChatID+"/messages", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty content, got %d", rec.Code)
	}

	// Oversized content.
	body, _ = json.Marshal(models.SendMessageRequest{Content: strings.Repeat("a", models.MaxUserMessageLength+1)})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats/"+started.ChatID+"/messages", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for oversized content, got %d", rec.Code)
	}

	// Invalid JSON.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats/"+started.ChatID+"/messages", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid JSON, got %d", rec.Code)
	}
}

func TestSendMessageUnknownChat(t *testing.T) {
	srv, _ := newTestServer()
	body, _ := json.Marshal(models.SendMessageRequest{Content: "hello"})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chats/does-not-exist/messages", bytes.NewReader(body)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown chat, got %d", rec.Code)
	}
}

func TestFlowSuggestions(t *testing.T) {
	srv, _ := newTestServer()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/flow-suggestions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("flow suggestions returned status %d", rec.Code)
	}
	var result models.FlowSuggestionsResponse
	decodeResult(t, rec.Body.Bytes(), &result)
	if len(result.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(result.Suggestions))
	}
	if result.Suggestions[0].ID != string(models.FlowKindScoreIntro) {
		t.Errorf("unexpected first suggestion %q", result.Suggestions[0].ID)
	}
}

func TestUserManagement(t *testing.T) {
	srv, st := newTestServer()
	handler := srv.Handler()

	addBody := func(key string) *bytes.Reader {
		body, _ := json.Marshal(models.AddUserRequest{
			APIKey:     key,
			Email:      "new@example.com",
			Country:    "PL",
			Industry:   "IT",
			Profession: "Engineer",
		})
		return bytes.NewReader(body)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", addBody("wrong")))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong service key, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", addBody(testServiceKey)))
	if rec.Code != http.StatusOK {
		t.Fatalf("add user returned status %d: %s", rec.Code, rec.Body.String())
	}
	u, err := st.GetUser("new@example.com")
	if err != nil || u == nil {
		t.Fatalf("expected stored user, got %v (%v)", u, err)
	}

	// Adding the same email again is accepted silently.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", addBody(testServiceKey)))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for duplicate user, got %d", rec.Code)
	}

	deleteBody, _ := json.Marshal(models.DeleteUserRequest{APIKey: testServiceKey, Email: "new@example.com"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users", bytes.NewReader(deleteBody)))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete user returned status %d", rec.Code)
	}
	u, err = st.GetUser("new@example.com")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if u != nil {
		t.Errorf("expected user removed, got %+v", u)
	}
}

func TestAddUserValidation(t *testing.T) {
	srv, _ := newTestServer()
	body, _ := json.Marshal(models.AddUserRequest{
		APIKey: testServiceKey,
		Email:  "not-an-email",
	})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid email, got %d", rec.Code)
	}
}

func TestIndex(t *testing.T) {
	srv, _ := newTestServer()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from index, got %d", rec.Code)
	}
}
