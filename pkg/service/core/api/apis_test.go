package api_test

import (
	"context"
	"testing"

	"github.com/navikt/brd-backend/pkg/config/v2"
	"github.com/navikt/brd-backend/pkg/service/core/api"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClients(t *testing.T) {
	testCases := []struct {
		name          string
		pipeline      config.Pipeline
		expectDeliver bool
		expectDraft   bool
		expectNotify  bool
	}{
		{
			name: "render only",
		},
		{
			name: "static stages",
			pipeline: config.Pipeline{
				Delivery:  config.DeliveryStatic,
				Narrative: config.NarrativeStatic,
				Notify:    config.NotifyStatic,
			},
			expectDeliver: true,
			expectDraft:   true,
			expectNotify:  true,
		},
		{
			name: "external stages",
			pipeline: config.Pipeline{
				Delivery:  config.DeliverySMTP,
				Narrative: config.NarrativeOpenAI,
				Notify:    config.NotifySlack,
			},
			expectDeliver: true,
			expectDraft:   true,
			expectNotify:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Config{
				Pipeline: tc.pipeline,
				SMTP: config.SMTP{
					Host:      "smtp.example.com",
					Port:      587,
					Username:  "brd",
					Password:  "fake_password",
					Sender:    "brd@example.com",
					Recipient: "analytics@example.com",
				},
				Narrative: config.Narrative{
					OpenAI: config.LLMProvider{APIKey: "fake"},
				},
				Slack: config.Slack{
					WebhookURL: "http://localhost/webhook",
				},
				DocumentCreator: "test",
			}

			clients, err := api.NewClients(context.Background(), cfg, zerolog.Nop())
			require.NoError(t, err)

			assert.NotNil(t, clients.BRDAPI)
			assert.Equal(t, tc.expectDeliver, clients.DeliveryAPI != nil)
			assert.Equal(t, tc.expectDraft, clients.NarrativeAPI != nil)
			assert.Equal(t, tc.expectNotify, clients.NotifierAPI != nil)

			if tc.expectDeliver {
				assert.Equal(t, "analytics@example.com", clients.DeliveryAPI.Recipient())
			}
		})
	}
}

func TestNewClients_InvalidTLSPolicy(t *testing.T) {
	cfg := config.Config{
		Pipeline: config.Pipeline{Delivery: config.DeliverySMTP},
		SMTP: config.SMTP{
			Host:      "smtp.example.com",
			Port:      587,
			Username:  "brd",
			Password:  "fake_password",
			TLSPolicy: "sometimes",
		},
	}

	_, err := api.NewClients(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewClients_MissingSMTPCredentials(t *testing.T) {
	cfg := config.Config{
		Pipeline: config.Pipeline{Delivery: config.DeliverySMTP},
		SMTP: config.SMTP{
			Host:      "smtp.example.com",
			Port:      587,
			Sender:    "brd@example.com",
			Recipient: "analytics@example.com",
		},
	}

	_, err := api.NewClients(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
