package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/navikt/brd-backend/pkg/errs"
	"github.com/navikt/brd-backend/pkg/service"
	slackapi "github.com/slack-go/slack"
)

const defaultUsername = "BRD Bot"

type notifierAPI struct {
	webhookURL string
	channel    string
	username   string
}

var _ service.NotifierAPI = &notifierAPI{}

func (a *notifierAPI) NotifySubmission(ctx context.Context, receipt *service.SubmissionReceipt) error {
	const op errs.Op = "notifierAPI.NotifySubmission"

	err := slackapi.PostWebhookContext(ctx, a.webhookURL, &slackapi.WebhookMessage{
		Username: a.username,
		Channel:  a.channel,
		Text:     SubmissionMessage(receipt),
	})
	if err != nil {
		return errs.E(errs.IO, op, err)
	}

	return nil
}

// SubmissionMessage formats the announcement of a delivered submission.
func SubmissionMessage(receipt *service.SubmissionReceipt) string {
	project := receipt.ProjectName
	if project == "" {
		project = "(unnamed project)"
	}

	message := fmt.Sprintf(
		"New BRD submitted for *%s*\nDocument: %s\nSent to: %s",
		project,
		receipt.Document,
		receipt.Recipient,
	)

	if len(receipt.Attachments) > 0 {
		message += "\nAttachments: " + strings.Join(receipt.Attachments, ", ")
	}

	return message + "\nSubmission: " + receipt.ID.String()
}

func NewNotifierAPI(webhookURL, channel, username string) *notifierAPI {
	if username == "" {
		username = defaultUsername
	}

	return &notifierAPI{
		webhookURL: webhookURL,
		channel:    channel,
		username:   username,
	}
}
