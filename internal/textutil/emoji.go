// Package textutil provides text post-processing for outgoing messages.
package textutil

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EmojiAPIURL is the GitHub emoji listing used to build the replacement table.
const EmojiAPIURL = "https://api.github.com/emojis"

// codepointRe extracts the unicode codepoints from a GitHub emoji image URL.
var codepointRe = regexp.MustCompile(`/unicode/([0-9a-f-]+)\.png`)

// EmojiReplacer rewrites :shortcode: emoji names into their unicode
// characters. The replacement table is loaded from the GitHub emoji API;
// until Load succeeds Replace is a no-op. Safe for concurrent use.
type EmojiReplacer struct {
	mu     sync.RWMutex
	emojis map[string]string

	url  string
	http *http.Client
}

// EmojiOption configures an EmojiReplacer.
type EmojiOption func(*EmojiReplacer)

// WithEmojiURL overrides the emoji listing endpoint.
func WithEmojiURL(url string) EmojiOption {
	return func(r *EmojiReplacer) { r.url = url }
}

// WithEmojiHTTPClient sets the HTTP client used to fetch the listing.
func WithEmojiHTTPClient(c *http.Client) EmojiOption {
	return func(r *EmojiReplacer) { r.http = c }
}

// NewEmojiReplacer creates a replacer with an empty table.
func NewEmojiReplacer(opts ...EmojiOption) *EmojiReplacer {
	r := &EmojiReplacer{
		url:  EmojiAPIURL,
		http: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load fetches the emoji listing and builds the replacement table. Entries
// whose image URL does not encode unicode codepoints (custom GitHub emojis)
// are skipped.
func (r *EmojiReplacer) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build emoji request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch emoji listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("emoji listing request failed with status %d", resp.StatusCode)
	}

	var listing map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return fmt.Errorf("failed to decode emoji listing: %w", err)
	}

	emojis := make(map[string]string, len(listing))
	for name, url := range listing {
		match := codepointRe.FindStringSubmatch(url)
		if match == nil {
			continue
		}
		var emoji strings.Builder
		valid := true
		for _, cp := range strings.Split(match[1], "-") {
			n, err := strconv.ParseInt(cp, 16, 32)
			if err != nil {
				valid = false
				break
			}
			emoji.WriteRune(rune(n))
		}
		if valid {
			emojis[":"+name+":"] = emoji.String()
		}
	}

	r.mu.Lock()
	r.emojis = emojis
	r.mu.Unlock()
	slog.Info("EmojiReplacer.Load: emoji table loaded", "loaded", len(emojis), "total", len(listing))
	return nil
}

// Replace rewrites all known :shortcode: names in the text.
func (r *EmojiReplacer) Replace(text string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.emojis) == 0 || !strings.Contains(text, ":") {
		return text
	}
	for name, emoji := range r.emojis {
		text = strings.ReplaceAll(text, name, emoji)
	}
	return text
}

// ReplaceAll rewrites emoji names in every message of the slice.
func (r *EmojiReplacer) ReplaceAll(messages []string) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = r.Replace(m)
	}
	return out
}
