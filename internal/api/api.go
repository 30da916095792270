// Package api provides the HTTP gateway for aiwo.
//
// It exposes RESTful endpoints for starting conversations, exchanging
// messages, and managing users. The gateway maps core errors onto HTTP
// status codes and post-processes outgoing messages.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/remote-first-institute/aiwo/internal/genai"
	"github.com/remote-first-institute/aiwo/internal/playbook"
	"github.com/remote-first-institute/aiwo/internal/sentiment"
	"github.com/remote-first-institute/aiwo/internal/session"
	"github.com/remote-first-institute/aiwo/internal/store"
	"github.com/remote-first-institute/aiwo/internal/textutil"
)

// DefaultAddr is the default listen address for the API server.
const DefaultAddr = ":8080"

// Opts holds configuration for the API server.
type Opts struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string
	// ServiceKey authorizes service-to-service endpoints.
	ServiceKey string
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithServiceKey sets the key required by service-to-service endpoints.
func WithServiceKey(key string) Option {
	return func(o *Opts) { o.ServiceKey = key }
}

// Server wires the session registry and shared services into HTTP handlers.
type Server struct {
	registry  *session.Registry
	st        store.Store
	genai     genai.ClientInterface
	playbook  playbook.Retriever
	sentiment sentiment.Analyzer
	emoji     *textutil.EmojiReplacer

	addr       string
	serviceKey string
}

// NewServer creates an API server over the given services.
func NewServer(st store.Store, client genai.ClientInterface, retriever playbook.Retriever, analyzer sentiment.Analyzer, emoji *textutil.EmojiReplacer, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		registry:   session.NewRegistry(),
		st:         st,
		genai:      client,
		playbook:   retriever,
		sentiment:  analyzer,
		emoji:      emoji,
		addr:       cfg.Addr,
		serviceKey: cfg.ServiceKey,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/", s.indexHandler)
	r.Get("/flow-suggestions", s.flowSuggestionsHandler)
	r.Post("/chats", s.startChatHandler)
	r.Delete("/chats/{chatID}", s.deleteChatHandler)
	r.Post("/chats/{chatID}/messages", s.sendMessageHandler)
	r.Post("/users", s.addUserHandler)
	r.Delete("/users", s.deleteUserHandler)

	return r
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	slog.Info("API server listening", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}
