package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"klink-backend/internal/assistant"
	"klink-backend/internal/observability"
)

// AssistantClient is the chat-completion contract consumed by the handler.
type AssistantClient interface {
	Chat(ctx context.Context, message string, history []assistant.Turn) (assistant.Reply, error)
}

// AssistantHandler proxies assistant conversations to the upstream provider.
type AssistantHandler struct {
	client AssistantClient
}

// NewAssistantHandler builds an AssistantHandler.
func NewAssistantHandler(client AssistantClient) *AssistantHandler {
	return &AssistantHandler{client: client}
}

// Chat forwards one user message plus capped history. Upstream failures are
// downgraded to canned user-facing messages with success=false rather than
// leaking raw provider errors.
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req struct {
		Message             string           `json:"message"`
		ConversationHistory []assistant.Turn `json:"conversationHistory"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		rpcError(c, CodeInvalidArgument, err.Error())
		return
	}
	if req.Message == "" {
		rpcError(c, CodeInvalidArgument, "message is required and must be text")
		return
	}

	reply, err := h.client.Chat(c.Request.Context(), req.Message, req.ConversationHistory)
	if err != nil {
		if errors.Is(err, assistant.ErrNotConfigured) {
			observability.IncAssistantRequest("unconfigured")
			rpcError(c, CodeFailedPrecondition, "The assistant is not available right now")
			return
		}
		observability.IncAssistantRequest("error")
		rpcError(c, CodeInternal, "failed to reach the assistant")
		return
	}

	if !reply.Success {
		observability.IncAssistantRequest("failure")
		c.JSON(http.StatusOK, gin.H{
			"response": reply.Response,
			"success":  false,
			"error":    reply.Err,
		})
		return
	}

	observability.IncAssistantRequest("success")
	c.JSON(http.StatusOK, gin.H{
		"response": reply.Response,
		"success":  true,
	})
}
