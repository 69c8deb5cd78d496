package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/rag"
)

// fakeChat is a scripted chatter implementation.
type fakeChat struct {
	reply       string
	err         error
	lastSession string
	lastMessage string
}

func (f *fakeChat) Handle(_ context.Context, sessionID, message string) (string, error) {
	f.lastSession = sessionID
	f.lastMessage = message
	return f.reply, f.err
}

// fakeIngestor is a scripted Ingestor implementation.
type fakeIngestor struct {
	chunks int
	err    error
	ready  bool
	docs   []rag.Document
}

func (f *fakeIngestor) Ingest(_ context.Context, docs []rag.Document) (int, error) {
	f.docs = docs
	if f.err != nil {
		return 0, f.err
	}
	f.ready = true
	return f.chunks, nil
}

func (f *fakeIngestor) Ready() bool { return f.ready }
func (f *fakeIngestor) Count() int  { return f.chunks }

// newTestServer builds a Server with quiet logging for handler tests.
func newTestServer(t *testing.T, chat chatter, ing Ingestor, bookings bookingLister, mod func(*Config)) *Server {
	t.Helper()
	cfg := &Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	if mod != nil {
		mod(cfg)
	}
	s, err := New(chat, ing, bookings, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.stopRL)
	return s
}

func postJSON(t *testing.T, h http.Handler, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func Test_Chat_Success(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{reply: "hello there"}
	s := newTestServer(t, chat, &fakeIngestor{}, nil, nil)

	rec := postJSON(t, s.Handler(), "/api/chat", `{"session_id":"s1","message":"hi"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reply != "hello there" || resp.SessionID != "s1" {
		t.Errorf("response = %+v", resp)
	}
	if chat.lastSession != "s1" || chat.lastMessage != "hi" {
		t.Errorf("assistant got session=%q message=%q", chat.lastSession, chat.lastMessage)
	}
}

func Test_Chat_GeneratesSessionID(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &fakeChat{reply: "ok"}, &fakeIngestor{}, nil, nil)

	rec := postJSON(t, s.Handler(), "/api/chat", `{"message":"hi"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("expected a generated session id")
	}
}

func Test_Chat_BadRequests(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &fakeChat{}, &fakeIngestor{}, nil, nil)

	if rec := postJSON(t, s.Handler(), "/api/chat", `{"session_id":"s1"}`, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing message: status = %d", rec.Code)
	}
	if rec := postJSON(t, s.Handler(), "/api/chat", `{not json`, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid json: status = %d", rec.Code)
	}
}

func Test_Chat_AssistantErrorIs500(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &fakeChat{err: errors.New("boom")}, &fakeIngestor{}, nil, nil)

	rec := postJSON(t, s.Handler(), "/api/chat", `{"message":"hi"}`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Error("internal error detail leaked to client")
	}
}

func Test_Chat_RequiresBearerToken(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &fakeChat{reply: "ok"}, &fakeIngestor{}, nil, func(cfg *Config) {
		cfg.APIKey = "sekrit"
	})

	if rec := postJSON(t, s.Handler(), "/api/chat", `{"message":"hi"}`, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d", rec.Code)
	}
	rec := postJSON(t, s.Handler(), "/api/chat", `{"message":"hi"}`, map[string]string{"Authorization": "Bearer wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d", rec.Code)
	}
	rec = postJSON(t, s.Handler(), "/api/chat", `{"message":"hi"}`, map[string]string{"Authorization": "Bearer sekrit"})
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: status = %d", rec.Code)
	}
}

func Test_Chat_RateLimited(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &fakeChat{reply: "ok"}, &fakeIngestor{}, nil, func(cfg *Config) {
		cfg.RateLimit = 1
		cfg.RateBurst = 2
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := postJSON(t, s.Handler(), "/api/chat", `{"message":"hi"}`, nil)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("first two requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request should be limited, got %v", codes)
	}
}
