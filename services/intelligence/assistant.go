// File: services/intelligence/assistant.go
package ai

import (
	"context"
	"strings"
	"time"

	"sherpa/models"

	"go.uber.org/zap"
)

// apology is the canned reply for assistant timeouts and errors.
const apology = "🤖 Sorry, I couldn't answer that right now. Please try again later."

const persona = "You are the WhatsApp assistant of Sherpa Hyundai, a used-car " +
	"dealership. Answer briefly and politely. If the question is unrelated to " +
	"cars, respond politely and guide the conversation back to browsing cars, " +
	"test drives, or dealership services."

// FallbackAssistant answers free text that matched no structured funnel step.
// It applies a bounded timeout to the generation call and degrades to a fixed
// apology; it never surfaces an error and never touches session state.
type FallbackAssistant struct {
	Generator Generator
	Context   *RedisContextStore
	Timeout   time.Duration
	Logger    *zap.Logger
}

func (a *FallbackAssistant) Ask(ctx context.Context, userID, question string) string {
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	aiCtx, err := a.Context.Get(ctx, userID)
	if err != nil {
		a.Logger.Warn("ai context fetch failed", zap.String("userId", userID), zap.Error(err))
		aiCtx = &models.AIContext{}
	}

	answer, err := a.Generator.GenerateContent(ctx, buildPrompt(aiCtx, question))
	if err != nil {
		a.Logger.Warn("assistant unavailable", zap.String("userId", userID), zap.Error(err))
		return apology
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return apology
	}

	aiCtx.History = append(aiCtx.History, models.AIExchange{Question: question, Answer: answer})
	if err := a.Context.Set(ctx, userID, aiCtx); err != nil {
		a.Logger.Warn("ai context save failed", zap.String("userId", userID), zap.Error(err))
	}
	return answer
}

func buildPrompt(aiCtx *models.AIContext, question string) string {
	var sb strings.Builder
	sb.WriteString(persona)
	sb.WriteString("\n\n")
	for _, ex := range aiCtx.History {
		sb.WriteString("User: ")
		sb.WriteString(ex.Question)
		sb.WriteString("\nAssistant: ")
		sb.WriteString(ex.Answer)
		sb.WriteString("\n")
	}
	sb.WriteString("User: ")
	sb.WriteString(question)
	sb.WriteString("\nAssistant:")
	return sb.String()
}
