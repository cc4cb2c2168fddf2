package models

import "encoding/json"

// Notification request types.
const (
	NotificationTypeMessage = "message"
	NotificationTypeCall    = "call"
)

// NotificationRequest is built once per dispatch call. DeviceToken targets a
// single device directly and takes precedence over ToUserID lookup.
type NotificationRequest struct {
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	ToUserID    string          `json:"toUserId,omitempty"`
	ChatID      string          `json:"chatId,omitempty"`
	MessageID   string          `json:"messageId,omitempty"`
	SenderID    string          `json:"senderId,omitempty"`
	DeviceToken string          `json:"deviceToken,omitempty"`
	Call        json.RawMessage `json:"call,omitempty"`
}

// DeliveryFailure records one failed per-token send.
type DeliveryFailure struct {
	Token string `json:"token"`
	Code  string `json:"error"`
}

// DispatchResult aggregates a best-effort fan-out. Success means at least one
// token was delivered to.
type DispatchResult struct {
	SuccessCount int               `json:"successCount"`
	FailureCount int               `json:"failureCount"`
	Failures     []DeliveryFailure `json:"failures"`
}
