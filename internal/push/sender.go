package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sender delivers one payload to one device token.
type Sender interface {
	Send(ctx context.Context, token string, payload Payload) error
}

// SendError carries the transport's stable error code for a failed delivery,
// e.g. UNREGISTERED for a stale token.
type SendError struct {
	Code string
}

func (e *SendError) Error() string {
	return "push send failed: " + e.Code
}

// ErrorCode extracts the delivery error code, falling back to INTERNAL for
// errors the transport did not classify.
func ErrorCode(err error) string {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Code
	}
	return "INTERNAL"
}

// FCMSender posts individual sends to the push transport's v1 messages:send
// endpoint. Deliveries are always per-token; the batch endpoint is avoided
// deliberately so one stale token cannot poison the rest.
type FCMSender struct {
	sendURL    string
	authToken  string
	httpClient *http.Client
}

// NewFCMSender constructs the sender.
func NewFCMSender(sendURL, authToken string) *FCMSender {
	return &FCMSender{
		sendURL:    sendURL,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type fcmMessage struct {
	Token string `json:"token"`
	Payload
}

type fcmErrorResponse struct {
	Error struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Send delivers the payload to a single token.
func (s *FCMSender) Send(ctx context.Context, token string, payload Payload) error {
	body, err := json.Marshal(map[string]fcmMessage{"message": {Token: token, Payload: payload}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.authToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &SendError{Code: "UNAVAILABLE"}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	data, _ := io.ReadAll(resp.Body)
	var fcmErr fcmErrorResponse
	if err := json.Unmarshal(data, &fcmErr); err == nil && fcmErr.Error.Status != "" {
		return &SendError{Code: fcmErr.Error.Status}
	}
	return &SendError{Code: fmt.Sprintf("HTTP_%d", resp.StatusCode)}
}
