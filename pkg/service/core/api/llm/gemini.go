package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/navikt/brd-backend/pkg/errs"
	"github.com/navikt/brd-backend/pkg/service"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

type geminiAPI struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

var _ service.NarrativeAPI = &geminiAPI{}

func (a *geminiAPI) Draft(ctx context.Context, prompt string) (*service.Draft, error) {
	const op errs.Op = "geminiAPI.Draft"

	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, errs.E(errs.IO, op, err)
	}

	text := resp.Text()
	if text == "" {
		return nil, errs.E(errs.IO, op, fmt.Errorf("model %s returned no text", a.model))
	}

	a.log.Debug().Str("model", a.model).Msg("narrative drafted")

	return &service.Draft{
		Text:  text,
		Model: a.model,
	}, nil
}

func NewGeminiAPI(ctx context.Context, apiKey, baseURL, model string, timeout time.Duration, log zerolog.Logger) (*geminiAPI, error) {
	const op errs.Op = "llm.NewGeminiAPI"

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}

	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{
			BaseURL: baseURL,
		}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, errs.E(errs.Internal, op, fmt.Errorf("creating genai client: %w", err))
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	return &geminiAPI{
		client: client,
		model:  model,
		log:    log,
	}, nil
}
