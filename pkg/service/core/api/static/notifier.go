package static

import (
	"context"

	"github.com/navikt/brd-backend/pkg/service"
	"github.com/rs/zerolog"
)

type notifierAPI struct {
	log zerolog.Logger
}

var _ service.NotifierAPI = &notifierAPI{}

func (a *notifierAPI) NotifySubmission(_ context.Context, receipt *service.SubmissionReceipt) error {
	a.log.Info().Msgf("Sending submission notification for project %v: document: %v", receipt.ProjectName, receipt.Document)

	return nil
}

func NewNotifierAPI(log zerolog.Logger) *notifierAPI {
	return &notifierAPI{
		log: log,
	}
}
