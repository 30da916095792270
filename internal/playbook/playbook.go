// Package playbook retrieves fragments of the remote work playbook relevant
// to a query. Fragments are embedded into an in-process vector collection and
// searched by semantic similarity.
package playbook

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	_ "embed"

	"github.com/philippgille/chromem-go"
)

// DefaultCollection is the name of the vector collection holding the playbook.
const DefaultCollection = "playbook"

// DefaultTopK is the number of fragments returned per query.
const DefaultTopK = 4

// Embedded fallback used when no playbook file is configured.
//
//go:embed playbook.md
var defaultPlaybook string

// Retriever finds playbook fragments relevant to a query.
type Retriever interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// Opts holds configuration for the chromem-backed retriever.
type Opts struct {
	// Path points at a markdown playbook file. When empty the embedded
	// default playbook is used.
	Path string
	// APIKey is the OpenAI key used for embeddings when no EmbeddingFunc is
	// provided.
	APIKey string
	// EmbeddingFunc overrides the embedding backend.
	EmbeddingFunc chromem.EmbeddingFunc
	// TopK caps the number of fragments per query.
	TopK int
}

// Option configures retriever construction.
type Option func(*Opts)

// WithPath sets the playbook file to index.
func WithPath(path string) Option {
	return func(o *Opts) { o.Path = path }
}

// WithAPIKey sets the OpenAI API key used for embeddings.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithEmbeddingFunc overrides the embedding backend.
func WithEmbeddingFunc(f chromem.EmbeddingFunc) Option {
	return func(o *Opts) { o.EmbeddingFunc = f }
}

// WithTopK sets the number of fragments returned per query.
func WithTopK(k int) Option {
	return func(o *Opts) { o.TopK = k }
}

// ChromemRetriever indexes the playbook in an in-process chromem collection.
type ChromemRetriever struct {
	collection *chromem.Collection
	topK       int
}

// NewChromemRetriever loads the playbook, splits it into fragments, and
// indexes them. The OpenAI key falls back to OPENAI_API_KEY.
func NewChromemRetriever(ctx context.Context, opts ...Option) (*ChromemRetriever, error) {
	cfg := Opts{TopK: DefaultTopK}
	for _, opt := range opts {
		opt(&cfg)
	}

	content := defaultPlaybook
	if cfg.Path != "" {
		data, err := os.ReadFile(cfg.Path)
		if err != nil {
			slog.Error("Failed to read playbook file", "error", err, "path", cfg.Path)
			return nil, fmt.Errorf("failed to read playbook file: %w", err)
		}
		content = string(data)
	}

	fragments := SplitFragments(content)
	if len(fragments) == 0 {
		return nil, fmt.Errorf("playbook has no content")
	}

	embed := cfg.EmbeddingFunc
	if embed == nil {
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			slog.Error("NewChromemRetriever: OpenAI API key not provided")
			return nil, fmt.Errorf("openai API key not set")
		}
		embed = chromem.NewEmbeddingFuncOpenAI(key, chromem.EmbeddingModelOpenAI3Small)
	}

	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(DefaultCollection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	docs := make([]chromem.Document, len(fragments))
	for i, fragment := range fragments {
		docs[i] = chromem.Document{ID: strconv.Itoa(i), Content: fragment}
	}
	if err := collection.AddDocuments(ctx, docs, 4); err != nil {
		return nil, fmt.Errorf("failed to index playbook: %w", err)
	}
	slog.Info("Playbook indexed", "fragments", len(fragments))

	return &ChromemRetriever{collection: collection, topK: cfg.TopK}, nil
}

// Search returns the playbook fragments most relevant to the query, best
// match first.
func (r *ChromemRetriever) Search(ctx context.Context, query string) ([]string, error) {
	n := r.topK
	if count := r.collection.Count(); n > count {
		n = count
	}
	results, err := r.collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("playbook query failed: %w", err)
	}
	fragments := make([]string, len(results))
	for i, res := range results {
		fragments[i] = res.Content
	}
	return fragments, nil
}

// SplitFragments breaks a markdown playbook into indexable fragments. The
// split is on blank lines, with heading-only fragments folded into the
// following paragraph.
func SplitFragments(content string) []string {
	blocks := strings.Split(content, "\n\n")
	var fragments []string
	var pendingHeading string
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if strings.HasPrefix(block, "#") && !strings.Contains(block, "\n") {
			pendingHeading = block
			continue
		}
		if pendingHeading != "" {
			block = pendingHeading + "\n\n" + block
			pendingHeading = ""
		}
		fragments = append(fragments, block)
	}
	if pendingHeading != "" {
		fragments = append(fragments, pendingHeading)
	}
	return fragments
}
