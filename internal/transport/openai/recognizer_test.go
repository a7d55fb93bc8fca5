package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfocr/internal/domain"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "test-vision",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
		"usage": map[string]any{"prompt_tokens": 900, "completion_tokens": 4, "total_tokens": 904},
	}
}

func testImage() domain.RasterImage {
	return domain.RasterImage{PNG: []byte("png-bytes"), Width: 10, Height: 10, DPI: domain.RenderDPI}
}

func TestRecognizer_Recognize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []struct {
					Type     string `json:"type"`
					ImageURL struct {
						URL string `json:"url"`
					} `json:"image_url"`
				} `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Model != "test-vision" {
			t.Errorf("model = %q", body.Model)
		}
		found := false
		for _, part := range body.Messages[0].Content {
			if part.Type == "image_url" && strings.HasPrefix(part.ImageURL.URL, "data:image/png;base64,") {
				found = true
			}
		}
		if !found {
			t.Error("request has no PNG data URL part")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse("HELLO WORLD\n\n  second line  \n"))
	}))
	defer server.Close()

	rec := NewRecognizer(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-vision",
		Logger:  zap.NewNop(),
	})

	got, err := rec.Recognize(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	want := []string{"HELLO WORLD", "second line"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Recognize() = %q, want %q", got, want)
	}
}

func TestRecognizer_BlankReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(""))
	}))
	defer server.Close()

	rec := NewRecognizer(&Config{APIKey: "k", BaseURL: server.URL, Model: "m"})

	got, err := rec.Recognize(context.Background(), testImage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no fragments, got %q", got)
	}
}

func TestRecognizer_EmptyImageSkipsCall(t *testing.T) {
	rec := NewRecognizer(&Config{APIKey: "k", BaseURL: "http://unused", Model: "m"})

	got, err := rec.Recognize(context.Background(), domain.RasterImage{})
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil), got (%q, %v)", got, err)
	}
}

func TestRecognizer_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer server.Close()

	rec := NewRecognizer(&Config{APIKey: "k", BaseURL: server.URL, Model: "m"})

	_, err := rec.Recognize(context.Background(), testImage())
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry status code: %v", err)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"\n\n", nil},
		{"a", []string{"a"}},
		{" a \r\nb\n", []string{"a", "b"}},
	}
	for _, tc := range tests {
		if got := splitLines(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitLines(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail":"model not found"}`)); got != "model not found" {
		t.Errorf("extractDetail = %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("extractDetail on junk = %q", got)
	}
}
