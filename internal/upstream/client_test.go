package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/projectmoil/gateway/internal/upstream"
)

func TestSend_EmptyKeyIsInvalidKey(t *testing.T) {
	c := upstream.New()
	_, err := c.Send(context.Background(), "http://example.invalid", "", "gpt-3.5-turbo", nil, 1)
	if err != upstream.ErrInvalidKey {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestSend_ParsesContentAndUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["model"] != "gpt-3.5-turbo" {
			t.Errorf("unexpected model: %v", body["model"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hola"}}],"usage":{"prompt_tokens":3,"completion_tokens":1}}`))
	}))
	defer srv.Close()

	c := upstream.New()
	res, err := c.Send(context.Background(), srv.URL, "sk-test", "gpt-3.5-turbo",
		[]upstream.ChatMessage{{Role: "user", Content: "hi"}}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != "hola" {
		t.Errorf("expected content %q, got %q", "hola", res.Content)
	}
	if res.Usage == nil || res.Usage.PromptTokens != 3 || res.Usage.CompletionTokens != 1 {
		t.Errorf("unexpected usage: %+v", res.Usage)
	}
}

func TestSend_MalformedJSONIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := upstream.New()
	_, err := c.Send(context.Background(), srv.URL, "sk-test", "m", nil, 1)
	if !strings.Contains(err.Error(), "json parse error") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestSend_NoChoicesIsFormatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := upstream.New()
	_, err := c.Send(context.Background(), srv.URL, "sk-test", "m", nil, 1)
	if err != upstream.ErrFormat {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestSend_OuterCancellationIsCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	c := upstream.New()

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Send(ctx, srv.URL, "sk-test", "m", nil, 1)
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != upstream.ErrCancelled {
			t.Fatalf("expected ErrCancelled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Send did not return promptly after cancellation")
	}
}
