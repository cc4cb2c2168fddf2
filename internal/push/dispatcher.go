package push

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"go.opentelemetry.io/otel"

	"klink-backend/internal/models"
	"klink-backend/internal/observability"
	"klink-backend/internal/presence"
	"klink-backend/internal/repositories"
)

// ErrNoTargets is returned when neither a direct token nor any registered
// device token exists for the recipient. It is a non-error condition for the
// caller, reported as "no targets" rather than a failure.
var ErrNoTargets = errors.New("no device tokens found")

// Dispatcher resolves targets and fans a notification out per device.
type Dispatcher struct {
	users    repositories.UserRepository
	presence presence.Oracle
	sender   Sender
}

// NewDispatcher builds a Dispatcher.
func NewDispatcher(users repositories.UserRepository, oracle presence.Oracle, sender Sender) *Dispatcher {
	return &Dispatcher{
		users:    users,
		presence: oracle,
		sender:   sender,
	}
}

// Validate checks required fields before any I/O happens.
func Validate(req models.NotificationRequest) error {
	if req.Type == "" || req.Title == "" || req.Body == "" {
		return fmt.Errorf("missing required fields: type, title, body")
	}
	if req.Type == models.NotificationTypeMessage && req.DeviceToken == "" &&
		(req.ToUserID == "" || req.ChatID == "" || req.MessageID == "") {
		return fmt.Errorf("missing required fields for message: toUserId, chatId, messageId")
	}
	if req.Type == models.NotificationTypeCall && (req.DeviceToken == "" || len(req.Call) == 0) {
		return fmt.Errorf("missing required fields for call: deviceToken, call")
	}
	return nil
}

// Dispatch resolves the token set and delivers to each token independently,
// aggregating per-token outcomes. One token's failure never affects another:
// individual tokens can be stale and must not poison the batch. Overall
// success means at least one token succeeded.
func (d *Dispatcher) Dispatch(ctx context.Context, req models.NotificationRequest) (models.DispatchResult, error) {
	ctx, span := otel.Tracer("klink-backend/push").Start(ctx, "push.dispatch")
	defer span.End()

	tokens, err := d.resolveTokens(ctx, req)
	if err != nil {
		return models.DispatchResult{}, err
	}
	if len(tokens) == 0 {
		return models.DispatchResult{}, ErrNoTargets
	}

	isActive := false
	if req.Type == models.NotificationTypeMessage && req.ToUserID != "" && req.ChatID != "" {
		isActive = d.presence.IsActiveInChat(ctx, req.ToUserID, req.ChatID)
	}

	payload := BuildPayload(req, isActive)

	// Per-token deliveries are mutually independent, so they are issued
	// concurrently and awaited jointly.
	sendErrs := make([]error, len(tokens))
	var wg sync.WaitGroup
	for i, token := range tokens {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			sendErrs[i] = d.sender.Send(ctx, token, payload)
		}(i, token)
	}
	wg.Wait()

	result := models.DispatchResult{Failures: []models.DeliveryFailure{}}
	for i, sendErr := range sendErrs {
		if sendErr == nil {
			result.SuccessCount++
			observability.IncPushDelivery("success")
			continue
		}
		code := ErrorCode(sendErr)
		result.FailureCount++
		result.Failures = append(result.Failures, models.DeliveryFailure{Token: tokens[i], Code: code})
		observability.IncPushDelivery("failure")
		log.Printf("push: delivery failed token_prefix=%s code=%s", tokenPrefix(tokens[i]), code)
	}

	return result, nil
}

// resolveTokens picks the target set: a direct device token takes precedence
// over the recipient's registered tokens.
func (d *Dispatcher) resolveTokens(ctx context.Context, req models.NotificationRequest) ([]string, error) {
	if req.DeviceToken != "" {
		return []string{req.DeviceToken}, nil
	}
	if req.ToUserID == "" {
		return nil, nil
	}
	tokens, err := d.users.GetPushTokens(ctx, req.ToUserID)
	if err != nil {
		return nil, fmt.Errorf("load push tokens: %w", err)
	}
	return tokens, nil
}

func tokenPrefix(token string) string {
	if len(token) > 20 {
		return token[:20]
	}
	return token
}
