// Package assistant wraps the hosted chat-completion API behind the four
// call shapes the product uses: entry reflection, conversational turn, mood
// classification, and multi-entry insight.
//
// Failure policy (deliberate, inherited from the product): every call is a
// single shot — no retry, no backoff, no streaming. Any transport error or
// non-200 status is logged and swallowed; the caller receives a canned
// fallback string (or the default mood score) together with ok=false, never
// a distinguishable error value. A client without an API key behaves the
// same way without issuing requests, so a missing key degrades the feature
// instead of crashing the process.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mindease/go-journal-backend/internal/journal"
)

// Message is one element of the conversation sent to the remote API.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	// DefaultBaseURL is the hosted messages endpoint.
	DefaultBaseURL = "https://api.anthropic.com/v1/messages"
	// DefaultModel is the completion model used for every shape.
	DefaultModel = "claude-3-5-sonnet-20241022"

	apiVersion = "2023-06-01"

	// FallbackReply is returned verbatim when a reflection or conversational
	// turn cannot reach the remote service.
	FallbackReply = "I'm having trouble connecting right now. Please try again later."
	// FallbackInsight is the insight-shape equivalent.
	FallbackInsight = "Unable to generate insights at this time."
)

// Response-size ceilings per call shape, in tokens.
const (
	maxTokensReflection = 600
	maxTokensTurn       = 600
	maxTokensMood       = 5
	maxTokensInsight    = 400
)

// Client issues requests to the remote assistant. The zero value is not
// usable; construct with New.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	httpc   *http.Client
	log     zerolog.Logger
}

// New builds a Client. An empty apiKey yields a disabled client whose calls
// all return their fallbacks; baseURL and model fall back to the defaults
// when blank.
func New(apiKey, baseURL, model string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpc:   &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// payload is the request body of the messages endpoint.
type payload struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

// completion is the subset of the response body the product reads: the
// generated text lives in the first content block.
type completion struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// complete performs one request and returns the generated text. ok is false
// on any failure; the error detail is logged, not returned.
func (c *Client) complete(ctx context.Context, maxTokens int, system string, msgs []Message) (string, bool) {
	if !c.Enabled() {
		return "", false
	}

	body, err := json.Marshal(payload{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  msgs,
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("assistant: encode request")
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		c.log.Warn().Err(err).Msg("assistant: build request")
		return "", false
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("assistant: request failed")
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("body", string(snippet)).
			Msg("assistant: non-200 response")
		return "", false
	}

	var out completion
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.log.Warn().Err(err).Msg("assistant: decode response")
		return "", false
	}
	if len(out.Content) == 0 {
		return "", false
	}
	return out.Content[0].Text, true
}

// Reflect requests the three-part empathic reply (reflection, positive
// observations, suggestions) plus a closing question for a fresh check-in.
// On failure it returns FallbackReply and ok=false.
func (c *Client) Reflect(ctx context.Context, moodInput, journalText string) (string, bool) {
	text, ok := c.complete(ctx, maxTokensReflection, "", []Message{
		{Role: "user", Content: reflectionPrompt(moodInput, journalText)},
	})
	if !ok {
		return FallbackReply, false
	}
	return text, true
}

// Converse requests the next assistant message given the full prior
// sequence plus the new user message. Stored system messages (therapy-mode
// instructions) are folded into the top-level system field together with
// the base persona prompt; the remote API only accepts user/assistant roles
// in the messages array. On failure it returns FallbackReply and ok=false.
func (c *Client) Converse(ctx context.Context, history []Message, userMessage string) (string, bool) {
	system := personaPrompt
	msgs := make([]Message, 0, len(history)+1)
	for _, m := range history {
		if m.Role == "system" {
			system += "\n\n" + m.Content
			continue
		}
		msgs = append(msgs, m)
	}
	msgs = append(msgs, Message{Role: "user", Content: userMessage})

	text, ok := c.complete(ctx, maxTokensTurn, system, msgs)
	if !ok {
		return FallbackReply, false
	}
	return text, true
}

// MoodScore asks the classifier to rate the journal text 1-10 and parses the
// reply with the concatenated-digit rule. Any failure yields the default
// score of 5 and ok=false.
func (c *Client) MoodScore(ctx context.Context, journalText string) (int, bool) {
	text, ok := c.complete(ctx, maxTokensMood, "", []Message{
		{Role: "user", Content: moodPrompt(journalText)},
	})
	if !ok {
		return journal.DefaultTextScore, false
	}
	return journal.ParseTextScore(text), true
}

// Insights requests three bullet-point pattern observations over the
// combined recent journal text. On failure it returns FallbackInsight and
// ok=false.
func (c *Client) Insights(ctx context.Context, combinedText string) (string, bool) {
	text, ok := c.complete(ctx, maxTokensInsight, "", []Message{
		{Role: "user", Content: insightPrompt(combinedText)},
	})
	if !ok {
		return FallbackInsight, false
	}
	return text, true
}
