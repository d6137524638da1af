package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestListThreads_IncludesSeededThread(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada")
	resp := env.reflectOnce(t, "ada", "seeded by a check-in")

	w := env.do(t, http.MethodGet, "/threads", "ada", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list threads = %d body=%s", w.Code, w.Body.String())
	}

	var page ListThreadsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Threads) != 1 || page.Pagination.Total != 1 {
		t.Fatalf("unexpected threads page: %+v", page.Pagination)
	}
	th := page.Threads[0]
	if th.ID != resp.Entry.ChatID() {
		t.Fatalf("thread id = %q, want %q", th.ID, resp.Entry.ChatID())
	}
	if th.MessageCount != 2 || th.Preview == "" {
		t.Fatalf("unexpected summary: count=%d preview=%q", th.MessageCount, th.Preview)
	}
}

func TestListThreadMessages_TranscriptAndETag(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada")
	resp := env.reflectOnce(t, "ada", "transcript test")
	threadID := resp.Entry.ChatID()

	w := env.do(t, http.MethodGet, "/threads/"+threadID+"/messages", "ada", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("transcript = %d body=%s", w.Code, w.Body.String())
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}

	var tr ThreadMessagesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &tr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tr.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(tr.Messages))
	}
	if tr.Messages[0].Role != "user" || tr.Messages[1].Role != "assistant" {
		t.Fatalf("unexpected roles: %q %q", tr.Messages[0].Role, tr.Messages[1].Role)
	}

	w2 := env.do(t, http.MethodGet, "/threads/"+threadID+"/messages", "ada", nil, map[string]string{"If-None-Match": etag})
	if w2.Code != http.StatusNotModified {
		t.Fatalf("conditional transcript = %d, want 304", w2.Code)
	}
}

func TestListThreadMessages_UnknownThread404(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada")

	w := env.do(t, http.MethodGet, "/threads/2026-01-01_09:00/messages", "ada", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("transcript = %d, want 404", w.Code)
	}
}

func TestPostThreadMessage_AppendsTurn(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada")
	resp := env.reflectOnce(t, "ada", "conversation starter")
	threadID := resp.Entry.ChatID()

	w := env.do(t, http.MethodPost, "/threads/"+threadID+"/messages", "ada", PostThreadMessageRequest{
		Content: "I keep waking up at 3am and can't fall back asleep.",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("post message = %d body=%s", w.Code, w.Body.String())
	}

	var mr PostThreadMessageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &mr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if mr.Message == nil || mr.Message.Role != "assistant" || mr.Message.Content == "" {
		t.Fatalf("unexpected reply: %+v", mr.Message)
	}

	// Transcript now holds the seed pair plus the new turn.
	w = env.do(t, http.MethodGet, "/threads/"+threadID+"/messages", "ada", nil, nil)
	var tr ThreadMessagesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &tr); err != nil {
		t.Fatalf("decode transcript: %v", err)
	}
	if len(tr.Messages) != 4 {
		t.Fatalf("messages = %d, want 4", len(tr.Messages))
	}
}

func TestPostThreadMessage_Validation(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada")
	resp := env.reflectOnce(t, "ada", "validation")
	threadID := resp.Entry.ChatID()

	// Whitespace-only content fails after sanitization.
	w := env.do(t, http.MethodPost, "/threads/"+threadID+"/messages", "ada", PostThreadMessageRequest{Content: "   \n  "}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank message = %d, want 400", w.Code)
	}

	// Oversized content is rejected at the edge.
	w = env.do(t, http.MethodPost, "/threads/"+threadID+"/messages", "ada", PostThreadMessageRequest{
		Content: strings.Repeat("a", 4001),
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversized message = %d, want 400", w.Code)
	}

	// Unknown thread is a 404.
	w = env.do(t, http.MethodPost, "/threads/2020-01-01_00:00/messages", "ada", PostThreadMessageRequest{Content: "hello"}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown thread = %d, want 404", w.Code)
	}
}

func TestUpdateThreadSettings_AppliesAndValidates(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada")
	resp := env.reflectOnce(t, "ada", "settings")
	threadID := resp.Entry.ChatID()

	w := env.do(t, http.MethodPut, "/threads/"+threadID+"/settings", "ada", ThreadSettingsRequest{
		Style:      "Mindfulness-Based",
		Length:     "Brief",
		FocusAreas: []string{"Stress management", "Sleep improvement"},
	}, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("settings = %d body=%s", w.Code, w.Body.String())
	}

	// The settings turn is recorded as a hidden system message.
	w = env.do(t, http.MethodGet, "/threads/"+threadID+"/messages", "ada", nil, nil)
	var tr ThreadMessagesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &tr); err != nil {
		t.Fatalf("decode transcript: %v", err)
	}
	last := tr.Messages[len(tr.Messages)-1]
	if last.Role != "system" || !strings.Contains(strings.ToLower(last.Content), "mindfulness-based") {
		t.Fatalf("unexpected settings message: %+v", last)
	}

	// Unknown style is rejected.
	w = env.do(t, http.MethodPut, "/threads/"+threadID+"/settings", "ada", ThreadSettingsRequest{
		Style:      "Psychoanalytic",
		Length:     "Brief",
		FocusAreas: []string{"Stress management"},
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad style = %d, want 400", w.Code)
	}

	// Unknown thread is a 404.
	w = env.do(t, http.MethodPut, "/threads/1999-01-01_00:00/settings", "ada", ThreadSettingsRequest{
		Style:      "Balanced (Default)",
		Length:     "Brief",
		FocusAreas: []string{"Stress management"},
	}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown thread = %d, want 404", w.Code)
	}
}
