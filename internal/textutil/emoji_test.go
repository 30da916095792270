package textutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const emojiListing = `{
	"tada": "https://github.githubassets.com/images/icons/emoji/unicode/1f389.png?v8",
	"plus1": "https://github.githubassets.com/images/icons/emoji/unicode/1f44d.png?v8",
	"flag-pl": "https://github.githubassets.com/images/icons/emoji/unicode/1f1f5-1f1f1.png?v8",
	"octocat": "https://github.githubassets.com/images/icons/emoji/octocat.png?v8"
}`

func TestEmojiReplacerLoadAndReplace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(emojiListing))
	}))
	defer srv.Close()

	r := NewEmojiReplacer(WithEmojiURL(srv.URL))
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got := r.Replace("Well done :tada: :plus1:")
	if got != "Well done 🎉 👍" {
		t.Errorf("unexpected replacement result %q", got)
	}

	// Multi-codepoint emojis are assembled from all segments.
	got = r.Replace(":flag-pl:")
	if got != "🇵🇱" {
		t.Errorf("unexpected multi-codepoint result %q", got)
	}

	// Custom emojis without codepoints are skipped.
	got = r.Replace(":octocat:")
	if got != ":octocat:" {
		t.Errorf("expected custom emoji untouched, got %q", got)
	}
}

func TestEmojiReplacerNoOpBeforeLoad(t *testing.T) {
	r := NewEmojiReplacer()
	text := "Keep rocking :tada:"
	if got := r.Replace(text); got != text {
		t.Errorf("expected unchanged text before load, got %q", got)
	}
}

func TestEmojiReplacerReplaceAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tada": "https://example.com/unicode/1f389.png"}`))
	}))
	defer srv.Close()

	r := NewEmojiReplacer(WithEmojiURL(srv.URL))
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got := r.ReplaceAll([]string{"one :tada:", "two"})
	if got[0] != "one 🎉" || got[1] != "two" {
		t.Errorf("unexpected result %q", got)
	}
}

func TestEmojiReplacerLoadErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	r := NewEmojiReplacer(WithEmojiURL(srv.URL))
	if err := r.Load(context.Background()); err == nil {
		t.Error("expected error on non-OK status, got nil")
	}
}
