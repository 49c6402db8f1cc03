package mock

import (
	"context"

	"github.com/navikt/brd-backend/pkg/service"
	"github.com/stretchr/testify/mock"
)

var (
	_ service.BRDAPI       = &BRDAPIMock{}
	_ service.NarrativeAPI = &NarrativeAPIMock{}
	_ service.DeliveryAPI  = &DeliveryAPIMock{}
	_ service.NotifierAPI  = &NotifierAPIMock{}
)

type BRDAPIMock struct {
	mock.Mock
}

func (m *BRDAPIMock) Render(record *service.FormRecord) (*service.RenderedDocument, error) {
	args := m.Called(record)
	return args.Get(0).(*service.RenderedDocument), args.Error(1)
}

func (m *BRDAPIMock) Summary(record *service.FormRecord) string {
	args := m.Called(record)
	return args.String(0)
}

func (m *BRDAPIMock) Prompt(record *service.FormRecord) string {
	args := m.Called(record)
	return args.String(0)
}

type NarrativeAPIMock struct {
	mock.Mock
}

func (m *NarrativeAPIMock) Draft(ctx context.Context, prompt string) (*service.Draft, error) {
	args := m.Called(ctx, prompt)
	return args.Get(0).(*service.Draft), args.Error(1)
}

type DeliveryAPIMock struct {
	mock.Mock
}

func (m *DeliveryAPIMock) Deliver(ctx context.Context, delivery *service.Delivery) error {
	args := m.Called(ctx, delivery)
	return args.Error(0)
}

func (m *DeliveryAPIMock) Recipient() string {
	args := m.Called()
	return args.String(0)
}

type NotifierAPIMock struct {
	mock.Mock
}

func (m *NotifierAPIMock) NotifySubmission(ctx context.Context, receipt *service.SubmissionReceipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}
