package smtp

import (
	"context"

	"github.com/navikt/brd-backend/pkg/errs"
	"github.com/navikt/brd-backend/pkg/mailer"
	"github.com/navikt/brd-backend/pkg/service"
)

type deliveryAPI struct {
	ops       mailer.Operations
	sender    string
	recipient string
}

var _ service.DeliveryAPI = &deliveryAPI{}

func (a *deliveryAPI) Deliver(ctx context.Context, delivery *service.Delivery) error {
	const op errs.Op = "deliveryAPI.Deliver"

	msg := &mailer.Message{
		From:    a.sender,
		To:      []string{a.recipient},
		Subject: delivery.Subject,
		Body:    delivery.Body,
	}

	for _, att := range delivery.Attachments {
		msg.Attachments = append(msg.Attachments, &mailer.Attachment{
			FileName:    att.FileName,
			ContentType: att.ContentType,
			Data:        att.Data,
		})
	}

	err := a.ops.Send(ctx, msg)
	if err != nil {
		return errs.E(errs.IO, op, err)
	}

	return nil
}

func (a *deliveryAPI) Recipient() string {
	return a.recipient
}

func NewDeliveryAPI(ops mailer.Operations, sender, recipient string) *deliveryAPI {
	return &deliveryAPI{
		ops:       ops,
		sender:    sender,
		recipient: recipient,
	}
}
