package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mindease/go-journal-backend/internal/assistant"
	"github.com/mindease/go-journal-backend/internal/domain"
	"github.com/mindease/go-journal-backend/internal/services"
)

// stubAssistant returns canned responses without any network traffic.
type stubAssistant struct {
	up    bool
	score int
	reply string
}

func (s *stubAssistant) Enabled() bool { return s.up }

func (s *stubAssistant) Reflect(context.Context, string, string) (string, bool) {
	return s.reply, s.up
}

func (s *stubAssistant) Converse(context.Context, []assistant.Message, string) (string, bool) {
	return s.reply, s.up
}

func (s *stubAssistant) MoodScore(context.Context, string) (int, bool) {
	return s.score, s.up
}

func (s *stubAssistant) Insights(context.Context, string) (string, bool) {
	return s.reply, s.up
}

// testEnv wires real services over an in-memory database so handler behavior
// covers the full path down to SQL.
type testEnv struct {
	r    *gin.Engine
	db   *gorm.DB
	asst *stubAssistant
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Entry{}, &domain.Thread{}, &domain.ThreadMessage{}, &domain.Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	asst := &stubAssistant{up: true, score: 5, reply: "Thank you for sharing how you feel."}
	h := New(
		services.NewAccountService(db),
		services.NewEntryService(db, asst, nil, zerolog.Nop()),
		services.NewThreadService(db, asst, nil, zerolog.Nop()),
		services.NewInsightService(db, asst),
		services.NewAnalyticsService(db),
		time.Hour,
	)

	r := gin.New()
	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/login", h.Login)
	r.POST("/entries/reflect", h.Reflect)
	r.GET("/entries", h.ListEntries)
	r.DELETE("/entries/:id", h.DeleteEntry)
	r.GET("/entries/export", h.ExportEntries)
	r.GET("/threads", h.ListThreads)
	r.GET("/threads/:id/messages", h.ListThreadMessages)
	r.POST("/threads/:id/messages", h.PostThreadMessage)
	r.PUT("/threads/:id/settings", h.UpdateThreadSettings)
	r.GET("/insights", h.Insights)
	r.GET("/analytics/summary", h.AnalyticsSummary)
	r.GET("/prompts/gratitude", h.GratitudePrompt)

	return &testEnv{r: r, db: db, asst: asst}
}

// do sends a JSON request with the given user and optional extra headers.
func (e *testEnv) do(t *testing.T, method, path, user string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

// escapeQuery encodes a query parameter value (mood labels carry emoji and spaces).
func escapeQuery(v string) string { return url.QueryEscape(v) }

// register creates an account through the signup endpoint.
func (e *testEnv) register(t *testing.T, username string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/auth/signup", "", SignupRequest{
		Username:        username,
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s = %d body=%s", username, w.Code, w.Body.String())
	}
}

// reflectOnce submits a minimal valid check-in and returns the decoded result.
func (e *testEnv) reflectOnce(t *testing.T, username, journal string) ReflectResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/entries/reflect", username, ReflectRequest{
		Mood:    domain.MoodGood,
		Journal: journal,
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("reflect = %d body=%s", w.Code, w.Body.String())
	}
	var resp ReflectResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode reflect response: %v", err)
	}
	return resp
}
