package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/navikt/brd-backend/pkg/errs"
	"github.com/navikt/brd-backend/pkg/service"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = openai.GPT4o

type openAIAPI struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

var _ service.NarrativeAPI = &openAIAPI{}

func (a *openAIAPI) Draft(ctx context.Context, prompt string) (*service.Draft, error) {
	const op errs.Op = "openAIAPI.Draft"

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return nil, errs.E(errs.IO, op, err)
	}

	if len(resp.Choices) == 0 {
		return nil, errs.E(errs.IO, op, fmt.Errorf("model %s returned no choices", a.model))
	}

	a.log.Debug().Str("model", resp.Model).Int("total_tokens", resp.Usage.TotalTokens).Msg("narrative drafted")

	return &service.Draft{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
	}, nil
}

func NewOpenAIAPI(apiKey, baseURL, model string, timeout time.Duration, log zerolog.Logger) *openAIAPI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	cfg.HTTPClient = &http.Client{
		Timeout: timeout,
	}

	if model == "" {
		model = DefaultOpenAIModel
	}

	return &openAIAPI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log,
	}
}
