package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no API key is available; handlers map it
// to a failed-precondition response.
var ErrNotConfigured = errors.New("assistant api key not configured")

// Canned user-facing messages. Internal failures are downgraded to one of
// these instead of leaking raw upstream error text.
const (
	msgGeneric   = "Sorry, I couldn't process your request right now. Please try again."
	msgTimeout   = "The response is taking too long. Please try again."
	msgAuth      = "Authentication with the assistant provider failed."
	msgRateLimit = "Too many requests to the assistant. Please wait a moment."
	msgUpstream  = "The assistant provider had an internal error. Please try again later."
)

const systemPrompt = "You are Klink AI, a smart and friendly assistant built into the " +
	"Klink messaging app. Your goal is to help users with any question or " +
	"task they need. Be concise, helpful and conversational. Reply in the " +
	"same language you are spoken to."

// requestTimeout is the hard wall-clock bound on the upstream call; past it
// the request is aborted and reported as retryable to the user.
const requestTimeout = 25 * time.Second

// historyLimit caps conversation context to keep token usage bounded.
const historyLimit = 10

// Turn is one prior exchange in the conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Reply is what the handler returns to the app. On failure Response carries
// a canned user-facing message and Err the truncated internal cause.
type Reply struct {
	Response string
	Success  bool
	Err      string
}

// Client proxies chat-completion requests to the upstream provider.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs the assistant client.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL:     apiURL,
		apiKey:     strings.Join(strings.Fields(apiKey), ""),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type completionRequest struct {
	Model            string  `json:"model"`
	Messages         []Turn  `json:"messages"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	PresencePenalty  float64 `json:"presence_penalty"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat sends the message with capped history to the upstream provider and
// returns the assistant reply. Failures are downgraded into canned
// user-facing messages; ErrNotConfigured is the only error returned.
func (c *Client) Chat(ctx context.Context, message string, history []Turn) (Reply, error) {
	if !c.Configured() {
		return Reply{}, ErrNotConfigured
	}

	messages := make([]Turn, 0, historyLimit+2)
	messages = append(messages, Turn{Role: "system", Content: systemPrompt})
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	messages = append(messages, history...)
	messages = append(messages, Turn{Role: "user", Content: message})

	body, err := json.Marshal(completionRequest{
		Model:            "gpt-4o-mini",
		Messages:         messages,
		Temperature:      0.7,
		MaxTokens:        500,
		PresencePenalty:  0.6,
		FrequencyPenalty: 0.3,
	})
	if err != nil {
		return failure(msgGeneric, err), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return failure(msgGeneric, err), nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return failure(msgTimeout, err), nil
		}
		return failure(msgGeneric, err), nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(msgGeneric, err), nil
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("upstream status %d: %s", resp.StatusCode, truncate(string(data), 200))
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return failure(msgAuth, statusErr), nil
		case http.StatusTooManyRequests:
			return failure(msgRateLimit, statusErr), nil
		case http.StatusInternalServerError:
			return failure(msgUpstream, statusErr), nil
		default:
			return failure(msgGeneric, statusErr), nil
		}
	}

	var parsed completionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return failure(msgGeneric, err), nil
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return failure(msgGeneric, errors.New("no assistant message in response")), nil
	}

	return Reply{
		Response: strings.TrimSpace(parsed.Choices[0].Message.Content),
		Success:  true,
	}, nil
}

func failure(userMessage string, cause error) Reply {
	return Reply{
		Response: userMessage,
		Success:  false,
		Err:      truncate(cause.Error(), 200),
	}
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
