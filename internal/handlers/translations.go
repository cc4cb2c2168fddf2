package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"klink-backend/internal/translation"
)

// OnDemandTranslator is the interactive translation contract.
type OnDemandTranslator interface {
	TranslateOnDemand(ctx context.Context, messageText, targetLanguage string) (translation.OnDemandResult, error)
}

// TranslationHandler serves the on-demand translation RPC, used for old
// messages or after the user changes their preferred language.
type TranslationHandler struct {
	translator OnDemandTranslator
}

// NewTranslationHandler builds a TranslationHandler.
func NewTranslationHandler(translator OnDemandTranslator) *TranslationHandler {
	return &TranslationHandler{translator: translator}
}

// TranslateOnDemand translates a single text synchronously. Unlike the
// event-driven pipeline, failures here surface to the caller.
func (h *TranslationHandler) TranslateOnDemand(c *gin.Context) {
	var req struct {
		MessageText    string `json:"messageText"`
		TargetLanguage string `json:"targetLanguage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		rpcError(c, CodeInvalidArgument, err.Error())
		return
	}
	if req.MessageText == "" || req.TargetLanguage == "" {
		rpcError(c, CodeInvalidArgument, "Missing messageText or targetLanguage")
		return
	}

	result, err := h.translator.TranslateOnDemand(c.Request.Context(), req.MessageText, req.TargetLanguage)
	if err != nil {
		rpcError(c, CodeInternal, err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}
