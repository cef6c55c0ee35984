package handlers

import (
	"context"
	"net/http"
	"time"

	"sherpa/config"
	"sherpa/models"
	"sherpa/services/conversation"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// dedupTTL bounds how long a processed message id is remembered.
const dedupTTL = 24 * time.Hour

// DedupStore remembers processed message ids so provider redeliveries are
// acked without being dispatched twice. *redis.Client satisfies it.
type DedupStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// WebhookHandler receives WhatsApp Cloud API deliveries and the verification
// handshake.
type WebhookHandler struct {
	Conversation conversation.ConversationService
	Dedup        DedupStore
	Logger       *zap.Logger
}

func NewWebhookHandler(svc conversation.ConversationService, dedup DedupStore, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{Conversation: svc, Dedup: dedup, Logger: logger}
}

// Verify answers the provider's GET handshake: echo the challenge when the
// mode is subscribe and the token matches, reject otherwise.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == config.AppConfig.WhatsAppVerifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	c.Status(http.StatusForbidden)
}

// Receive processes one webhook delivery. It always acknowledges with 200:
// a non-2xx would make the provider retry-storm, and deliveries without a
// message (status updates, malformed bodies) are simply skipped.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.Logger.Warn("malformed webhook payload", zap.Error(err))
		c.Status(http.StatusOK)
		return
	}

	msg := payload.FirstMessage()
	if msg == nil {
		c.Status(http.StatusOK)
		return
	}

	if h.alreadyProcessed(c, msg.ID) {
		h.Logger.Debug("duplicate delivery skipped", zap.String("messageId", msg.ID))
		c.Status(http.StatusOK)
		return
	}

	ev, ok := conversation.EventFromMessage(msg)
	if !ok {
		c.Status(http.StatusOK)
		return
	}

	h.Conversation.Handle(c.Request.Context(), msg.From, ev)
	c.Status(http.StatusOK)
}

// alreadyProcessed marks the message id as seen and reports whether it had
// been seen before. Redis trouble fails open; the engine's step guards make
// a duplicate harmless anyway.
func (h *WebhookHandler) alreadyProcessed(c *gin.Context, messageID string) bool {
	if messageID == "" || h.Dedup == nil {
		return false
	}
	fresh, err := h.Dedup.SetNX(c.Request.Context(), "wh:msg:"+messageID, 1, dedupTTL).Result()
	if err != nil {
		h.Logger.Warn("dedup check failed", zap.String("messageId", messageID), zap.Error(err))
		return false
	}
	return !fresh
}
