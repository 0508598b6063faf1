package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"digest-stack/shared/config"
)

func TestOpenAIProviderComplete(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"A summary."}}],"usage":{"prompt_tokens":11,"completion_tokens":4,"total_tokens":15}}`))
	}))
	defer srv.Close()

	p := newOpenAIProvider(srv.URL+"/v1/", "sk-test", srv.Client())
	resp, err := p.Complete(context.Background(), &CompletionRequest{
		Model:       "gpt-4o-mini",
		Messages:    []Message{{Role: "user", Content: "hi"}},
		MaxTokens:   100,
		Temperature: 0.5,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if resp.Content != "A summary." {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
	if auth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.Model != "gpt-4o-mini" || got.MaxTokens != 100 || got.Temperature != 0.5 || len(got.Messages) != 1 {
		t.Errorf("request body = %+v", got)
	}
}

func TestOpenAIProviderLocalModelOmitsKey(t *testing.T) {
	var auth, model string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		model = req.Model
		w.Write([]byte(`{"choices":[{"message":{"content":"local"}}]}`))
	}))
	defer srv.Close()

	p := newOpenAIProvider(srv.URL, "", srv.Client())
	resp, err := p.Complete(context.Background(), &CompletionRequest{Model: "ollama/llama3"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if auth != "" {
		t.Errorf("Authorization should be omitted, got %q", auth)
	}
	if model != "llama3" {
		t.Errorf("wire model = %q, want llama3", model)
	}
	if resp.Usage != nil {
		t.Error("Usage should be nil when not reported")
	}
}

func TestOpenAIProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"auth failure", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, "Incorrect API key provided"},
		{"rate limit without body", http.StatusTooManyRequests, ``, "status 429"},
		{"malformed json", http.StatusOK, `{"choices":`, "malformed completion response"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := newOpenAIProvider(srv.URL, "sk", srv.Client())
			_, err := p.Complete(context.Background(), &CompletionRequest{Model: "gpt-4o"})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestSummarizerEndToEndOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"Two channels posted updates."}}]}`))
	}))
	defer srv.Close()

	cfg := config.LLMConfig{Model: "ollama/llama3", BaseURL: srv.URL, MaxTokens: 50, TimeoutSeconds: 5}
	s := NewSummarizer(context.Background(), cfg, nil)

	result := s.Summarize(context.Background(), "- Channel: A, Title: B (Type: upload)", ContentGeneric)
	if !result.Success || result.Summary != "Two channels posted updates." {
		t.Errorf("result = %+v", result)
	}
}

func TestSummarizerLocalModelNeverSendsKey(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	cfg := config.LLMConfig{
		Model:          "ollama/llama3",
		APIKey:         config.RealCredential("sk-real"),
		BaseURL:        srv.URL,
		MaxTokens:      50,
		TimeoutSeconds: 5,
	}
	s := NewSummarizer(context.Background(), cfg, nil)

	result := s.Summarize(context.Background(), "text", ContentGeneric)
	if !result.Success {
		t.Fatalf("Summarize() failed: %s", result.Error)
	}
	if auth != "" {
		t.Errorf("Authorization = %q, want none for a local model", auth)
	}
}
