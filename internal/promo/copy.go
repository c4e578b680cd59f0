package promo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pandapos/internal/models"
	"pandapos/internal/store"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// TemplateCopywriter fills a fixed email template
type TemplateCopywriter struct{}

// Draft returns the templated subject and body
func (TemplateCopywriter) Draft(_ context.Context, promo *models.Promotion, customer store.Customer) (string, string, error) {
	return subjectFor(promo), templateBody(promo, customer), nil
}

func subjectFor(promo *models.Promotion) string {
	return fmt.Sprintf("%.0f%% off your next order with %s", promo.PercentOff, promo.Code)
}

func templateBody(promo *models.Promotion, customer store.Customer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thanks for ordering with us %d times!\n\n", customer.Orders)
	if promo.Description != "" {
		fmt.Fprintf(&b, "%s.\n", strings.TrimSuffix(promo.Description, "."))
	}
	fmt.Fprintf(&b, "Use code %s at checkout to take %.0f%% off.", promo.Code, promo.PercentOff)
	if promo.ExpiresAt != nil {
		fmt.Fprintf(&b, " Valid until %s.", promo.ExpiresAt.Format("January 2, 2006"))
	}
	b.WriteString("\n")
	return b.String()
}

const promptTemplate = `Write a short, friendly promotional email body (no subject line, under 120 words) for a fast-food restaurant.
The customer has ordered %d times. Offer: %s. The code %s takes %.0f%% off their next order.%s
Mention the code exactly as written. Do not invent other offers.`

// LLMCopywriter asks a language model for the body and falls back to the
// template when the model fails or drops the code
type LLMCopywriter struct {
	model    llms.Model
	fallback TemplateCopywriter
	logger   *slog.Logger
}

// NewLLMCopywriter wraps a langchaingo model
func NewLLMCopywriter(model llms.Model, logger *slog.Logger) *LLMCopywriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMCopywriter{model: model, logger: logger}
}

// NewOpenAICopywriter builds an LLM copywriter on the OpenAI backend
func NewOpenAICopywriter(token, model string, logger *slog.Logger) (*LLMCopywriter, error) {
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}
	return NewLLMCopywriter(llm, logger), nil
}

// Draft returns a model-written body, or the template body on any failure
func (w *LLMCopywriter) Draft(ctx context.Context, promo *models.Promotion, customer store.Customer) (string, string, error) {
	expiry := ""
	if promo.ExpiresAt != nil {
		expiry = " It expires on " + promo.ExpiresAt.Format("January 2, 2006") + "."
	}
	description := promo.Description
	if description == "" {
		description = "a discount"
	}
	prompt := fmt.Sprintf(promptTemplate, customer.Orders, description, promo.Code, promo.PercentOff, expiry)

	body, err := llms.GenerateFromSinglePrompt(ctx, w.model, prompt,
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(300),
	)
	body = strings.TrimSpace(body)
	switch {
	case err != nil:
		w.logger.Warn("promo copy generation failed, using template", "promo", promo.Code, "error", err)
	case !strings.Contains(body, promo.Code):
		w.logger.Warn("generated promo copy dropped the code, using template", "promo", promo.Code)
	default:
		return subjectFor(promo), body + "\n", nil
	}
	return w.fallback.Draft(ctx, promo, customer)
}
