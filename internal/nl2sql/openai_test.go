package nl2sql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAITranslatorReturnsRawContent(t *testing.T) {
	const fenced = "```sql\nSELECT COUNT(*) FROM videos;\n```"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
			t.Fatalf("Authorization = %q", got)
		}
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.Model != "test-model" {
			t.Fatalf("model = %q", payload.Model)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" {
			t.Fatalf("messages = %+v", payload.Messages)
		}
		if !strings.Contains(payload.Messages[0].Content, "videos") {
			t.Fatal("system prompt missing schema")
		}
		if payload.Messages[1].Content != "How many videos are there?" {
			t.Fatalf("user message = %q", payload.Messages[1].Content)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": fenced}},
			},
		})
	}))
	defer server.Close()

	translator, err := NewOpenAITranslator(OpenAIConfig{
		BaseURL:      server.URL,
		APIKey:       "key-1",
		Model:        "test-model",
		SystemPrompt: "Schema: videos, video_snapshots.",
	})
	if err != nil {
		t.Fatalf("NewOpenAITranslator() error = %v", err)
	}

	result, err := translator.Translate(context.Background(), Request{Question: "How many videos are there?"})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if result.Raw != fenced {
		t.Fatalf("Raw = %q, want fenced content passed through untouched", result.Raw)
	}
	if result.Model != "test-model" {
		t.Fatalf("Model = %q", result.Model)
	}
}

func TestOpenAITranslatorSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	translator, err := NewOpenAITranslator(OpenAIConfig{
		BaseURL:      server.URL,
		APIKey:       "key-1",
		SystemPrompt: "prompt",
	})
	if err != nil {
		t.Fatalf("NewOpenAITranslator() error = %v", err)
	}

	if _, err := translator.Translate(context.Background(), Request{Question: "q"}); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestOpenAITranslatorRejectsEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	translator, err := NewOpenAITranslator(OpenAIConfig{
		BaseURL:      server.URL,
		APIKey:       "key-1",
		SystemPrompt: "prompt",
	})
	if err != nil {
		t.Fatalf("NewOpenAITranslator() error = %v", err)
	}

	if _, err := translator.Translate(context.Background(), Request{Question: "q"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNewOpenAITranslatorValidatesConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  OpenAIConfig
	}{
		{"missing base url", OpenAIConfig{APIKey: "k", SystemPrompt: "p"}},
		{"missing api key", OpenAIConfig{BaseURL: "http://localhost", SystemPrompt: "p"}},
		{"missing system prompt", OpenAIConfig{BaseURL: "http://localhost", APIKey: "k"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewOpenAITranslator(tc.cfg); err == nil {
				t.Fatal("expected config error")
			}
		})
	}
}
