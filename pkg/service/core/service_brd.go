package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/navikt/brd-backend/pkg/errs"
	"github.com/navikt/brd-backend/pkg/service"
	"github.com/rs/zerolog"
)

var _ service.BRDService = &brdService{}

// brdService runs the submission pipeline. The narrative, delivery and
// notifier stages are optional, a nil API disables the stage.
type brdService struct {
	brdAPI       service.BRDAPI
	narrativeAPI service.NarrativeAPI
	deliveryAPI  service.DeliveryAPI
	notifierAPI  service.NotifierAPI
	metrics      *Metrics
	log          zerolog.Logger
}

func (s *brdService) Schema(_ context.Context) []service.TableDefinition {
	return service.TableDefinitions()
}

func (s *brdService) Render(_ context.Context, record *service.FormRecord) (*service.RenderedDocument, error) {
	const op errs.Op = "brdService.Render"

	doc, err := s.render(record)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return doc, nil
}

func (s *brdService) Summary(_ context.Context, record *service.FormRecord) (string, error) {
	const op errs.Op = "brdService.Summary"

	record, err := prepare(record)
	if err != nil {
		return "", errs.E(op, err)
	}

	return s.brdAPI.Summary(record), nil
}

func (s *brdService) Draft(ctx context.Context, record *service.FormRecord) (*service.Draft, error) {
	const op errs.Op = "brdService.Draft"

	if s.narrativeAPI == nil {
		return nil, errs.E(errs.Unavailable, op, fmt.Errorf("narrative drafting is not configured"))
	}

	record, err := prepare(record)
	if err != nil {
		return nil, errs.E(op, err)
	}

	draft, err := s.draft(ctx, record)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return draft, nil
}

func (s *brdService) Submit(ctx context.Context, record *service.FormRecord) (*service.SubmissionReceipt, error) {
	const op errs.Op = "brdService.Submit"

	if s.deliveryAPI == nil {
		s.metrics.Submissions.WithLabelValues(OutcomeUnavailable).Inc()
		return nil, errs.E(errs.Unavailable, op, fmt.Errorf("delivery is not configured"))
	}

	record, err := prepare(record)
	if err != nil {
		s.metrics.Submissions.WithLabelValues(OutcomeInvalid).Inc()
		return nil, errs.E(op, err)
	}

	doc, err := s.render(record)
	if err != nil {
		s.metrics.Submissions.WithLabelValues(OutcomeFailed).Inc()
		return nil, errs.E(op, err)
	}

	var draft *service.Draft
	if s.narrativeAPI != nil {
		draft, err = s.draft(ctx, record)
		if err != nil {
			s.metrics.Submissions.WithLabelValues(OutcomeFailed).Inc()
			return nil, errs.E(op, err)
		}
	}

	delivery := service.NewSubmissionDelivery(record.ProjectName, doc, record.Attachments)

	err = s.deliveryAPI.Deliver(ctx, delivery)
	if err != nil {
		s.metrics.ExternalErrors.WithLabelValues(LocationDelivery).Inc()
		s.metrics.Submissions.WithLabelValues(OutcomeFailed).Inc()

		return nil, errs.E(errs.IO, op, err)
	}

	s.metrics.Submissions.WithLabelValues(OutcomeDelivered).Inc()

	receipt := &service.SubmissionReceipt{
		ID:          uuid.New(),
		ProjectName: record.ProjectName,
		Document:    doc.FileName,
		Attachments: delivery.FileNames(),
		Recipient:   s.deliveryAPI.Recipient(),
		Draft:       draft,
	}

	s.log.Info().
		Str("submission", receipt.ID.String()).
		Str("document", receipt.Document).
		Int("attachments", len(receipt.Attachments)).
		Msg("submission delivered")

	if s.notifierAPI != nil {
		err = s.notifierAPI.NotifySubmission(ctx, receipt)
		if err != nil {
			s.metrics.ExternalErrors.WithLabelValues(LocationNotify).Inc()
			s.log.Warn().Err(err).Str("submission", receipt.ID.String()).Msg("notifying about submission")
		}
	}

	return receipt, nil
}

func (s *brdService) render(record *service.FormRecord) (*service.RenderedDocument, error) {
	record, err := prepare(record)
	if err != nil {
		return nil, err
	}

	doc, err := s.brdAPI.Render(record)
	if err != nil {
		return nil, err
	}

	s.metrics.DocumentsRendered.Inc()

	return doc, nil
}

func (s *brdService) draft(ctx context.Context, record *service.FormRecord) (*service.Draft, error) {
	draft, err := s.narrativeAPI.Draft(ctx, s.brdAPI.Prompt(record))
	if err != nil {
		s.metrics.ExternalErrors.WithLabelValues(LocationNarrative).Inc()
		return nil, errs.E(errs.IO, err)
	}

	return draft, nil
}

// prepare validates the record and returns a normalized copy.
func prepare(record *service.FormRecord) (*service.FormRecord, error) {
	if record == nil {
		record = service.NewFormRecord()
	}

	err := record.Validate()
	if err != nil {
		return nil, errs.E(errs.Validation, err)
	}

	return record.Clone(), nil
}

func NewBRDService(
	brdAPI service.BRDAPI,
	narrativeAPI service.NarrativeAPI,
	deliveryAPI service.DeliveryAPI,
	notifierAPI service.NotifierAPI,
	metrics *Metrics,
	log zerolog.Logger,
) *brdService {
	return &brdService{
		brdAPI:       brdAPI,
		narrativeAPI: narrativeAPI,
		deliveryAPI:  deliveryAPI,
		notifierAPI:  notifierAPI,
		metrics:      metrics,
		log:          log,
	}
}
