package translation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"

	"klink-backend/internal/crypto"
	"klink-backend/internal/language"
	"klink-backend/internal/models"
	"klink-backend/internal/observability"
	"klink-backend/internal/repositories"
	"klink-backend/internal/telemetry"
)

// Orchestrator runs the per-message translation pipeline:
// decrypt -> detect -> resolve target -> translate -> persist to both mirrors.
type Orchestrator struct {
	resolver   *language.Resolver
	detector   language.Detector
	translator language.Translator
	messages   repositories.MessageRepository
	audit      *telemetry.AuditEmitter
}

// NewOrchestrator builds an Orchestrator.
func NewOrchestrator(resolver *language.Resolver, detector language.Detector, translator language.Translator, messages repositories.MessageRepository, audit *telemetry.AuditEmitter) *Orchestrator {
	return &Orchestrator{
		resolver:   resolver,
		detector:   detector,
		translator: translator,
		messages:   messages,
		audit:      audit,
	}
}

// HandleMessageCreated processes one message-creation event. It never
// returns an error: every failure is logged and absorbed here so the event
// source is never asked to retry a non-critical enhancement.
func (o *Orchestrator) HandleMessageCreated(ctx context.Context, event models.MessageCreatedEvent) {
	ctx, span := otel.Tracer("klink-backend/translation").Start(ctx, "translation.message_created")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("translation: pipeline panic message_id=%s: %v", event.MessageID, r)
			observability.IncTranslation("panic")
		}
	}()

	if event.Type != models.MessageTypeText || strings.TrimSpace(event.TextMsg) == "" {
		observability.IncTranslation("skipped")
		return
	}
	if event.IsDeleted {
		observability.IncTranslation("skipped")
		return
	}

	plaintext := event.TextMsg
	if crypto.LooksEncrypted(plaintext) {
		plaintext = crypto.Decrypt(plaintext, event.MessageID)
	}

	sourceLanguage := o.resolver.DetectLanguage(ctx, plaintext)

	// The receiver is the other party of the 1-to-1 chat, identified
	// structurally: the chat id under the sender's tree is the receiver's
	// user id.
	receiverLanguage := o.resolver.PreferredLanguage(ctx, event.ChatID)

	if sourceLanguage == receiverLanguage {
		observability.IncTranslation("same_language")
		return
	}

	translations := o.resolver.Translate(ctx, plaintext, []string{receiverLanguage})
	if _, ok := translations[receiverLanguage]; !ok {
		// Translation is best-effort; nothing to store.
		observability.IncTranslation("unavailable")
		return
	}

	o.persistMirrors(ctx, event, translations, sourceLanguage)

	observability.IncTranslation("translated")
	o.audit.Emit(ctx, "message_translated", event.MessageID, telemetry.AuditPayload{
		UserID:    event.OwnerUserID,
		ChatID:    event.ChatID,
		MessageID: event.MessageID,
		Detail:    fmt.Sprintf("%s->%s", sourceLanguage, receiverLanguage),
	})
}

// persistMirrors applies the same logical update to both physical copies of
// the message. The writes are independent idempotent updates issued
// concurrently; if one fails the event still completes, and a later
// duplicate delivery converges both copies.
func (o *Orchestrator) persistMirrors(ctx context.Context, event models.MessageCreatedEvent, translations models.TranslationMap, detectedLanguage string) {
	mirrors := []struct {
		owner string
		chat  string
	}{
		{owner: event.OwnerUserID, chat: event.ChatID}, // sender-side copy
		{owner: event.ChatID, chat: event.OwnerUserID}, // receiver-side copy
	}

	var wg sync.WaitGroup
	for _, mirror := range mirrors {
		wg.Add(1)
		go func(owner, chat string) {
			defer wg.Done()
			if err := o.messages.ApplyTranslation(ctx, owner, chat, event.MessageID, translations, detectedLanguage); err != nil {
				log.Printf("translation: mirror write failed owner=%s chat=%s message_id=%s: %v", owner, chat, event.MessageID, err)
			}
		}(mirror.owner, mirror.chat)
	}
	wg.Wait()
}

// OnDemandResult is the response of the interactive translation path.
type OnDemandResult struct {
	OriginalText   string `json:"originalText"`
	TranslatedText string `json:"translatedText"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	WasTranslated  bool   `json:"wasTranslated"`
}

// TranslateOnDemand serves the synchronous request/response variant. Unlike
// the event-driven path it has an interactive caller waiting, so detection
// and translation failures surface as errors instead of being absorbed.
func (o *Orchestrator) TranslateOnDemand(ctx context.Context, messageText, targetLanguage string) (OnDemandResult, error) {
	sourceLanguage, err := o.detector.DetectLanguage(ctx, messageText)
	if err != nil {
		return OnDemandResult{}, fmt.Errorf("language detection failed: %w", err)
	}

	if sourceLanguage == targetLanguage {
		return OnDemandResult{
			OriginalText:   messageText,
			TranslatedText: messageText,
			SourceLanguage: sourceLanguage,
			TargetLanguage: targetLanguage,
			WasTranslated:  false,
		}, nil
	}

	translatedText, err := o.translator.TranslateText(ctx, messageText, targetLanguage)
	if err != nil {
		return OnDemandResult{}, fmt.Errorf("translation failed: %w", err)
	}

	return OnDemandResult{
		OriginalText:   messageText,
		TranslatedText: translatedText,
		SourceLanguage: sourceLanguage,
		TargetLanguage: targetLanguage,
		WasTranslated:  true,
	}, nil
}
