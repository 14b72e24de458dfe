package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"analyst-backend/internal/llm"
)

func TestCompleteSendsSingleUserMessage(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"`+"```json\\n{\\\"a\\\":1}\\n```"+`"}}]}`)
	}))
	defer srv.Close()

	client, err := NewClient("test-key", "gpt-4o-mini", srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	out, err := client.Complete(context.Background(), "Data:\nx")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "```json\n{\"a\":1}\n```" {
		t.Fatalf("unexpected reply %q", out)
	}
	if got.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model %q", got.Model)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "Data:\nx" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
}

func TestCompleteMapsAPIError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	}))
	defer srv.Close()

	client, err := NewClient("bad", "gpt-4o-mini", srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Complete(context.Background(), "hi")
	var statusErr *llm.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Status != http.StatusUnauthorized || statusErr.Message != "Incorrect API key provided" {
		t.Fatalf("unexpected error %+v", statusErr)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(" ", "gpt-4o-mini", ""); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestCompleteKeepsWhitespaceReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" \n "}}]}`)
	}))
	defer srv.Close()

	client, err := NewClient("test-key", "gpt-4o-mini", srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	out, err := client.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("whitespace reply should not fail: %v", err)
	}
	if out != " \n " {
		t.Fatalf("unexpected reply %q", out)
	}
}
