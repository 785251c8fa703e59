// Package upstream sends one chat-completion request to the configured
// OpenAI-shaped endpoint and parses its response. It owns the 45s transfer
// timeout, the 40s outer wait, and the 100ms cancellation poll the spec
// requires to be observable even though resty's context plumbing already
// aborts the transport on cancellation.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Sentinel attempt-failure causes, per spec §4.F / §7. None of these ever
// cross the process boundary as structured values — the retry loop (4.H)
// only cares that Send failed, and logs the cause via the event sink.
var (
	ErrInvalidKey = errors.New("upstream: invalid api key")
	ErrTimeout    = errors.New("upstream: timeout")
	ErrCancelled  = errors.New("upstream: cancelled")
	ErrFormat     = errors.New("upstream: invalid response format")
	ErrParse      = errors.New("upstream: json parse error")
)

const (
	transferTimeout = 45 * time.Second
	outerWait       = 40 * time.Second
	pollInterval    = 100 * time.Millisecond
)

// ChatMessage is one entry of the "messages" array sent upstream.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage mirrors the optional "usage" object in an OpenAI-shaped response.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Result is a successfully parsed upstream response.
type Result struct {
	Content string
	Usage   *Usage
}

// Client sends chat-completion requests over HTTP via resty, grounded on
// the teacher's internal/adapters/llm/httpclient construction, collapsed
// to the single wire shape spec.md defines.
type Client struct {
	http *resty.Client
}

// New returns a Client with the transfer timeout spec.md §4.F mandates.
func New() *Client {
	return &Client{http: resty.New().SetTimeout(transferTimeout)}
}

type requestBody struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type responseBody struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Send posts one chat-completion request. ctx is the process-wide
// cancellation context (cancelled on server stop); Send itself imposes
// the 40s outer wait on top of it. apiKey == "" is reported as
// ErrInvalidKey without attempting the network call.
func (c *Client) Send(ctx context.Context, baseURL, apiKey, model string, messages []ChatMessage, temperature float64) (Result, error) {
	if apiKey == "" {
		return Result{}, ErrInvalidKey
	}

	reqCtx, cancel := context.WithTimeout(ctx, outerWait)
	defer cancel()

	type outcome struct {
		resp *resty.Response
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		resp, err := c.http.R().
			SetContext(reqCtx).
			SetHeader("Authorization", "Bearer "+apiKey).
			SetHeader("Content-Type", "application/json").
			SetBody(requestBody{Model: model, Messages: messages, Temperature: temperature}).
			Post(strings.TrimRight(baseURL, "/") + "/chat/completions")
		done <- outcome{resp, err}
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case o := <-done:
			return parseOutcome(o.resp, o.err)
		case <-reqCtx.Done():
			<-done // the in-flight request observes reqCtx cancellation and returns
			if ctx.Err() != nil {
				return Result{}, ErrCancelled
			}
			return Result{}, ErrTimeout
		case <-ticker.C:
			// Cooperative cancellation poll: reqCtx.Done() already unblocks
			// promptly on ctx cancellation, but the spec's observable
			// contract is a <=100ms cancellation latency, so we check here
			// too rather than relying solely on context plumbing.
			if ctx.Err() != nil {
				<-done
				return Result{}, ErrCancelled
			}
		}
	}
}

func parseOutcome(resp *resty.Response, err error) (Result, error) {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{}, ErrTimeout
		}
		if errors.Is(err, context.Canceled) {
			return Result{}, ErrCancelled
		}
		return Result{}, fmt.Errorf("upstream: network error: %w", err)
	}

	var parsed responseBody
	if jsonErr := json.Unmarshal(resp.Body(), &parsed); jsonErr != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrParse, jsonErr)
	}
	if len(parsed.Choices) == 0 {
		return Result{}, ErrFormat
	}

	res := Result{Content: parsed.Choices[0].Message.Content}
	if parsed.Usage != nil && (parsed.Usage.PromptTokens > 0 || parsed.Usage.CompletionTokens > 0) {
		res.Usage = &Usage{PromptTokens: parsed.Usage.PromptTokens, CompletionTokens: parsed.Usage.CompletionTokens}
	}
	return res, nil
}
