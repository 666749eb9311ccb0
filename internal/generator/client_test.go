package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// generateRequest is the part of a generateContent body the tests inspect.
type generateRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseMIMEType string          `json:"responseMimeType"`
		ResponseSchema   json.RawMessage `json:"responseSchema"`
	} `json:"generationConfig"`
}

// modelReply wraps text the way the content API returns a single candidate.
func modelReply(text string) []byte {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role":  "model",
				"parts": []map[string]any{{"text": text}},
			},
			"finishReason": "STOP",
		}},
	})
	return body
}

func newTestClient(t *testing.T, srv *httptest.Server, timeout time.Duration) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), Config{
		APIKey:  "secret",
		BaseURL: srv.URL,
		Timeout: timeout,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestGenerate(t *testing.T) {
	var (
		path string
		got  generateRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(modelReply(`[{"text":"Q","options":["a","b","c","d"],"correctAnswerIndex":2,"topic":"Operating Systems","explanation":"E"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, time.Second)
	qs, err := c.Generate(context.Background(), Request{Exam: "UGC NET", Count: 20, Topics: []string{"Operating Systems", "Computer Networks"}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(path, DefaultModel) || !strings.HasSuffix(path, ":generateContent") {
		t.Errorf("path = %q", path)
	}
	if got.GenerationConfig.ResponseMIMEType != "application/json" {
		t.Errorf("responseMimeType = %q", got.GenerationConfig.ResponseMIMEType)
	}
	if !strings.Contains(string(got.GenerationConfig.ResponseSchema), "correctAnswerIndex") {
		t.Errorf("responseSchema = %s", got.GenerationConfig.ResponseSchema)
	}
	if len(got.Contents) != 1 || len(got.Contents[0].Parts) != 1 {
		t.Fatalf("contents = %+v", got.Contents)
	}
	prompt := got.Contents[0].Parts[0].Text
	if !strings.Contains(prompt, "Generate 20 multiple-choice questions for the UGC NET exam") ||
		!strings.Contains(prompt, "Operating Systems, Computer Networks") {
		t.Errorf("prompt = %q", prompt)
	}

	if len(qs) != 1 || qs[0].CorrectAnswerIndex == nil || *qs[0].CorrectAnswerIndex != 2 {
		t.Fatalf("questions = %+v", qs)
	}
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   []byte
	}{
		{"api error", http.StatusBadRequest, []byte(`{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`)},
		{"forbidden", http.StatusForbidden, []byte(`{"error":{"code":403,"message":"key rejected","status":"PERMISSION_DENIED"}}`)},
		{"malformed json", http.StatusOK, modelReply(`[{"text":`)},
		{"empty array", http.StatusOK, modelReply(`[]`)},
		{"no candidates", http.StatusOK, []byte(`{}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write(tt.body)
			}))
			defer srv.Close()

			if _, err := newTestClient(t, srv, time.Second).Generate(context.Background(), Request{Count: 2}); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestGenerateHonoursTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	start := time.Now()
	if _, err := newTestClient(t, srv, 50*time.Millisecond).Generate(context.Background(), Request{Count: 1}); err == nil {
		t.Fatal("expected a timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("Generate took %v, timeout not applied", time.Since(start))
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"array", `[{"text":"Q","options":["a","b","c","d"],"correctAnswerIndex":0}]`, 1, false},
		{"wrapped object", `{"questions":[{"text":"Q"},{"text":"R"}]}`, 2, false},
		{"surrounding whitespace", "\n [] \n", 0, false},
		{"empty", "", 0, true},
		{"garbage", "not json", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs, err := decode([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(qs) != tt.want {
				t.Errorf("len = %d, want %d", len(qs), tt.want)
			}
		})
	}
}

func TestPrompt(t *testing.T) {
	p := Prompt(Request{Exam: "UGC NET", Count: 5, Topics: []string{"A", "B"}, Style: `"Previous Year Question" style`})
	for _, want := range []string{
		"Generate 5 multiple-choice questions for the UGC NET exam.",
		"cover these topics: A, B.",
		`Focus on "Previous Year Question" style.`,
		"exactly 4 strings",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}
