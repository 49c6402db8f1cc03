package api

import (
	"context"
	"fmt"

	"github.com/navikt/brd-backend/pkg/brd"
	"github.com/navikt/brd-backend/pkg/config/v2"
	"github.com/navikt/brd-backend/pkg/mailer"
	"github.com/navikt/brd-backend/pkg/service"
	"github.com/navikt/brd-backend/pkg/service/core/api/llm"
	slackapi "github.com/navikt/brd-backend/pkg/service/core/api/slack"
	"github.com/navikt/brd-backend/pkg/service/core/api/smtp"
	"github.com/navikt/brd-backend/pkg/service/core/api/static"
	"github.com/rs/zerolog"
)

// Clients holds the collaborators selected by the pipeline configuration, a
// stage that is not configured is left nil.
type Clients struct {
	BRDAPI       service.BRDAPI
	NarrativeAPI service.NarrativeAPI
	DeliveryAPI  service.DeliveryAPI
	NotifierAPI  service.NotifierAPI
}

func NewClients(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Clients, error) {
	c := &Clients{
		BRDAPI: brd.NewRenderer(
			cfg.DocumentCreator,
			log.With().Str("component", "renderer").Logger(),
		),
	}

	switch cfg.Pipeline.Delivery {
	case config.DeliverySMTP:
		client, err := mailer.New(mailer.Options{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			TLSPolicy: cfg.SMTP.TLSPolicy,
			SSL:       cfg.SMTP.SSL,
			Timeout:   cfg.SMTP.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("creating mail client: %w", err)
		}

		c.DeliveryAPI = smtp.NewDeliveryAPI(client, cfg.SMTP.Sender, cfg.SMTP.Recipient)
	case config.DeliveryStatic:
		c.DeliveryAPI = static.NewDeliveryAPI(
			cfg.SMTP.Recipient,
			log.With().Str("component", "delivery").Logger(),
		)
	}

	narrativeLog := log.With().Str("component", "narrative").Logger()

	switch cfg.Pipeline.Narrative {
	case config.NarrativeOpenAI:
		c.NarrativeAPI = llm.NewOpenAIAPI(
			cfg.Narrative.OpenAI.APIKey,
			cfg.Narrative.OpenAI.BaseURL,
			cfg.Narrative.OpenAI.Model,
			cfg.Narrative.Timeout(),
			narrativeLog,
		)
	case config.NarrativeGemini:
		gemini, err := llm.NewGeminiAPI(
			ctx,
			cfg.Narrative.Gemini.APIKey,
			cfg.Narrative.Gemini.BaseURL,
			cfg.Narrative.Gemini.Model,
			cfg.Narrative.Timeout(),
			narrativeLog,
		)
		if err != nil {
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}

		c.NarrativeAPI = gemini
	case config.NarrativeStatic:
		c.NarrativeAPI = static.NewNarrativeAPI(narrativeLog)
	}

	switch cfg.Pipeline.Notify {
	case config.NotifySlack:
		c.NotifierAPI = slackapi.NewNotifierAPI(
			cfg.Slack.WebhookURL,
			cfg.Slack.Channel,
			cfg.Slack.Username,
		)
	case config.NotifyStatic:
		c.NotifierAPI = static.NewNotifierAPI(log.With().Str("component", "notifier").Logger())
	}

	return c, nil
}
