// Package session tracks active conversations and serializes access to them.
//
// Each session owns one flow. Flows are single-threaded by design, so a
// submit that arrives while a previous one is still running is rejected
// immediately rather than queued.
package session

import (
	"context"
	"encoding/hex"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/remote-first-institute/aiwo/internal/flow"
	"github.com/remote-first-institute/aiwo/internal/models"
)

// Session pairs a running flow with its busy flag.
type Session struct {
	flow flow.Flow
	busy atomic.Bool
}

// Registry holds the active sessions keyed by chat id. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// newChatID returns an opaque session identifier.
func newChatID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// Start creates the flow for the given kind, runs its opening turn, and
// registers the session. Flows that end at Start (terminal opening response)
// are not registered; their chat id is returned but cannot be submitted to.
func (r *Registry) Start(ctx context.Context, kind models.FlowKind, deps flow.Deps) (string, *models.FlowResponse, error) {
	f, err := flow.New(kind, deps)
	if err != nil {
		return "", nil, err
	}

	resp, err := f.Start(ctx)
	if err != nil {
		return "", nil, err
	}

	chatID := newChatID()
	if !resp.Terminal() {
		r.mu.Lock()
		r.sessions[chatID] = &Session{flow: f}
		r.mu.Unlock()
	}
	slog.Debug("Registry.Start: session opened", "chatID", chatID, "kind", kind, "registered", !resp.Terminal())
	return chatID, resp, nil
}

// Submit forwards a user message to the session's flow. It fails fast with
// models.ErrSessionBusy when a previous submit is still running, and removes
// the session once the flow reports a terminal response.
func (r *Registry) Submit(ctx context.Context, chatID, text string) (*models.FlowResponse, error) {
	r.mu.Lock()
	session, ok := r.sessions[chatID]
	r.mu.Unlock()
	if !ok {
		return nil, models.ErrSessionNotFound
	}

	if !session.busy.CompareAndSwap(false, true) {
		return nil, models.ErrSessionBusy
	}
	defer session.busy.Store(false)

	resp, err := session.flow.Submit(ctx, text)
	if err != nil {
		return nil, err
	}

	if resp.Terminal() {
		r.mu.Lock()
		delete(r.sessions, chatID)
		r.mu.Unlock()
		slog.Debug("Registry.Submit: session ended", "chatID", chatID)
	}
	return resp, nil
}

// Delete removes a session. It returns models.ErrSessionNotFound when the
// chat id is not registered.
func (r *Registry) Delete(chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[chatID]; !ok {
		return models.ErrSessionNotFound
	}
	delete(r.sessions, chatID)
	return nil
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
