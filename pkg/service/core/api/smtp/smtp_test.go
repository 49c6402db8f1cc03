package smtp_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/navikt/brd-backend/pkg/errs"
	"github.com/navikt/brd-backend/pkg/mailer"
	"github.com/navikt/brd-backend/pkg/service"
	"github.com/navikt/brd-backend/pkg/service/core/api/smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mailerMock struct {
	sent []*mailer.Message
	err  error
}

func (m *mailerMock) Send(_ context.Context, msg *mailer.Message) error {
	if m.err != nil {
		return m.err
	}

	m.sent = append(m.sent, msg)

	return nil
}

func TestDeliveryAPI_Deliver(t *testing.T) {
	ops := &mailerMock{}
	api := smtp.NewDeliveryAPI(ops, "brd@example.com", "analytics@example.com")

	err := api.Deliver(context.Background(), &service.Delivery{
		Subject: "New BRD Submission: Q4 Report",
		Body:    "body",
		Attachments: []*service.Attachment{
			{FileName: "Q4_Report_BRD.docx", ContentType: service.ContentTypeDocx, Data: []byte("docx")},
			{FileName: "notes.txt", ContentType: "text/plain", Data: []byte("notes")},
		},
	})
	require.NoError(t, err)
	require.Len(t, ops.sent, 1)

	msg := ops.sent[0]
	assert.Equal(t, "brd@example.com", msg.From)
	assert.Equal(t, []string{"analytics@example.com"}, msg.To)
	assert.Equal(t, "New BRD Submission: Q4 Report", msg.Subject)
	require.Len(t, msg.Attachments, 2)
	assert.Equal(t, "Q4_Report_BRD.docx", msg.Attachments[0].FileName)
	assert.Equal(t, []byte("notes"), msg.Attachments[1].Data)
	assert.Equal(t, "analytics@example.com", api.Recipient())
}

func TestDeliveryAPI_DeliverFails(t *testing.T) {
	api := smtp.NewDeliveryAPI(&mailerMock{err: fmt.Errorf("535 authentication failed")}, "brd@example.com", "analytics@example.com")

	err := api.Deliver(context.Background(), &service.Delivery{Subject: "s"})
	require.Error(t, err)
	assert.True(t, errs.KindIs(errs.IO, err))
}
