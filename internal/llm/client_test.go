package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func mockAnthropic(t *testing.T, reply string, capture *Request) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") == "" {
			t.Error("missing x-api-key header")
		}
		if capture != nil {
			json.NewDecoder(r.Body).Decode(capture)
		}
		resp := map[string]interface{}{
			"id":      "msg_test",
			"type":    "message",
			"role":    "assistant",
			"content": []map[string]string{{"type": "text", "text": reply}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestChat(t *testing.T) {
	srv := mockAnthropic(t, "hello there", nil)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	got, err := c.Chat(context.Background(), "system", "hi")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "hello there" {
		t.Errorf("reply = %q", got)
	}
}

func TestComplete_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"overloaded_error"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	if _, err := c.Chat(context.Background(), "", "hi"); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestComplete_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := c.Chat(ctx, "", "hi"); err == nil {
		t.Fatal("expected context deadline error")
	}
}

func TestDeepAnalysis_PromptCarriesProfileAndMemories(t *testing.T) {
	var captured Request
	srv := mockAnthropic(t, "they write warmly", &captured)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	got, err := c.DeepAnalysis(context.Background(), `{"warmth_level":3}`, []string{"bom dia meu amor"})
	if err != nil {
		t.Fatalf("DeepAnalysis: %v", err)
	}
	if got != "they write warmly" {
		t.Errorf("insights = %q", got)
	}
	if len(captured.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(captured.Messages))
	}
	prompt := captured.Messages[0].Content
	if !strings.Contains(prompt, `"warmth_level":3`) || !strings.Contains(prompt, "bom dia meu amor") {
		t.Errorf("prompt missing inputs:\n%s", prompt)
	}
	if captured.System == "" {
		t.Error("system prompt not set")
	}
}

func TestIsConfigured(t *testing.T) {
	if NewClient(Config{}).IsConfigured() {
		t.Error("empty key should not be configured")
	}
	if !NewClient(Config{APIKey: "k"}).IsConfigured() {
		t.Error("key set should be configured")
	}
}
