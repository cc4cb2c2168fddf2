package language

import (
	"context"
	"log"

	"klink-backend/internal/models"
	"klink-backend/internal/repositories"
)

// Resolver wraps language detection and recipient-preference lookup with the
// defaults the pipeline relies on. Detection or store failures never
// propagate to the caller; the pipeline must not be blocked by them.
type Resolver struct {
	detector   Detector
	translator Translator
	users      repositories.UserRepository
}

// NewResolver builds a Resolver.
func NewResolver(detector Detector, translator Translator, users repositories.UserRepository) *Resolver {
	return &Resolver{
		detector:   detector,
		translator: translator,
		users:      users,
	}
}

// DetectLanguage returns the detected language of text, or "en" on any
// failure.
func (r *Resolver) DetectLanguage(ctx context.Context, text string) string {
	lang, err := r.detector.DetectLanguage(ctx, text)
	if err != nil {
		log.Printf("language: detect failed, defaulting to %s: %v", models.DefaultLanguage, err)
		return models.DefaultLanguage
	}
	if lang == "" {
		return models.DefaultLanguage
	}
	return lang
}

// PreferredLanguage returns the user's preferred language, or "en" when the
// profile is missing, has no preference, or the store read fails.
func (r *Resolver) PreferredLanguage(ctx context.Context, userID string) string {
	profile, err := r.users.GetProfile(ctx, userID)
	if err != nil {
		log.Printf("language: preferred-language lookup failed user_id=%s, defaulting to %s: %v", userID, models.DefaultLanguage, err)
		return models.DefaultLanguage
	}
	if profile.PreferredLanguage == "" {
		return models.DefaultLanguage
	}
	return profile.PreferredLanguage
}

// Translate translates text into each target independently. A failed target
// maps to the original text; partial success is a normal outcome, not an
// error.
func (r *Resolver) Translate(ctx context.Context, text string, targets []string) map[string]string {
	translations := make(map[string]string, len(targets))
	for _, target := range targets {
		translated, err := r.translator.TranslateText(ctx, text, target)
		if err != nil {
			log.Printf("language: translate to %s failed, falling back to original: %v", target, err)
			translations[target] = text
			continue
		}
		translations[target] = translated
	}
	return translations
}
