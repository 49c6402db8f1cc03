package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/navikt/brd-backend/pkg/errs"
	"github.com/navikt/brd-backend/pkg/service"
	"github.com/rs/zerolog"
)

var _ service.SessionService = &sessionService{}

type sessionService struct {
	sessionStorage service.SessionStorage
	brdService     service.BRDService
	maxIdle        time.Duration
	now            func() time.Time
	log            zerolog.Logger
}

func (s *sessionService) CreateSession(ctx context.Context) (*service.Session, error) {
	const op errs.Op = "sessionService.CreateSession"

	sess, err := s.sessionStorage.CreateSession(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return sess, nil
}

func (s *sessionService) GetSession(ctx context.Context, id uuid.UUID) (*service.Session, error) {
	const op errs.Op = "sessionService.GetSession"

	sess, err := s.sessionStorage.GetOrCreateSession(ctx, id)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return sess, nil
}

func (s *sessionService) UpdateFields(ctx context.Context, id uuid.UUID, fields service.FormFields) (*service.Session, error) {
	const op errs.Op = "sessionService.UpdateFields"

	err := fields.Validate()
	if err != nil {
		return nil, errs.E(errs.Validation, op, err)
	}

	sess, err := s.sessionStorage.UpdateSession(ctx, id, func(record *service.FormRecord) error {
		record.FormFields = fields
		return nil
	})
	if err != nil {
		return nil, errs.E(op, err)
	}

	return sess, nil
}

func (s *sessionService) AppendRow(ctx context.Context, id uuid.UUID, kind service.TableKind) (*service.TableUpdate, error) {
	const op errs.Op = "sessionService.AppendRow"

	kind, err := service.ParseTableKind(string(kind))
	if err != nil {
		return nil, errs.E(op, err)
	}

	index := -1

	sess, err := s.sessionStorage.UpdateSession(ctx, id, func(record *service.FormRecord) error {
		index = record.Table(kind).AppendRow()
		return nil
	})
	if err != nil {
		return nil, errs.E(op, err)
	}

	return tableUpdate(sess, kind, index), nil
}

func (s *sessionService) UpdateRow(ctx context.Context, id uuid.UUID, kind service.TableKind, index int, values map[string]string) (*service.TableUpdate, error) {
	const op errs.Op = "sessionService.UpdateRow"

	kind, err := service.ParseTableKind(string(kind))
	if err != nil {
		return nil, errs.E(op, err)
	}

	columns := make([]string, 0, len(values))
	for c := range values {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	sess, err := s.sessionStorage.UpdateSession(ctx, id, func(record *service.FormRecord) error {
		table := record.Table(kind)
		if index < 0 || index >= table.Len() {
			return errs.E(errs.InvalidRequest, errs.Parameter("index"), fmt.Errorf("row %d out of range, %s has %d rows", index, kind, table.Len()))
		}

		for _, c := range columns {
			err := table.SetValue(index, c, values[c])
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, errs.E(op, err)
	}

	return tableUpdate(sess, kind, index), nil
}

func (s *sessionService) ImportRows(ctx context.Context, id uuid.UUID, kind service.TableKind, csv string) (*service.TableUpdate, error) {
	const op errs.Op = "sessionService.ImportRows"

	kind, err := service.ParseTableKind(string(kind))
	if err != nil {
		return nil, errs.E(op, err)
	}

	rows, err := service.ParseCSVRows(kind, csv)
	if err != nil {
		return nil, errs.E(op, err)
	}

	index := -1

	sess, err := s.sessionStorage.UpdateSession(ctx, id, func(record *service.FormRecord) error {
		table := record.Table(kind)
		for _, r := range rows {
			index = table.AppendValues(r...)
		}

		return nil
	})
	if err != nil {
		return nil, errs.E(op, err)
	}

	return tableUpdate(sess, kind, index), nil
}

func (s *sessionService) RenderDocument(ctx context.Context, id uuid.UUID) (*service.RenderedDocument, error) {
	const op errs.Op = "sessionService.RenderDocument"

	sess, err := s.sessionStorage.GetOrCreateSession(ctx, id)
	if err != nil {
		return nil, errs.E(op, err)
	}

	doc, err := s.brdService.Render(ctx, sess.Record)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return doc, nil
}

func (s *sessionService) DraftNarrative(ctx context.Context, id uuid.UUID) (*service.Draft, error) {
	const op errs.Op = "sessionService.DraftNarrative"

	sess, err := s.sessionStorage.GetOrCreateSession(ctx, id)
	if err != nil {
		return nil, errs.E(op, err)
	}

	draft, err := s.brdService.Draft(ctx, sess.Record)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return draft, nil
}

// Submit sends the current draft together with the uploaded files. The
// session is only reset once the submission has been delivered.
func (s *sessionService) Submit(ctx context.Context, id uuid.UUID, attachments []*service.Attachment) (*service.SubmissionReceipt, error) {
	const op errs.Op = "sessionService.Submit"

	sess, err := s.sessionStorage.GetOrCreateSession(ctx, id)
	if err != nil {
		return nil, errs.E(op, err)
	}

	record := sess.Record
	record.Attachments = attachments

	receipt, err := s.brdService.Submit(ctx, record)
	if err != nil {
		return nil, errs.E(op, err)
	}

	err = s.sessionStorage.ResetSession(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("session", id.String()).Msg("resetting session after submission")
	}

	return receipt, nil
}

func (s *sessionService) ExpireIdleSessions(ctx context.Context) (int, error) {
	const op errs.Op = "sessionService.ExpireIdleSessions"

	if s.maxIdle <= 0 {
		return 0, nil
	}

	n, err := s.sessionStorage.DeleteIdleSessions(ctx, s.now().Add(-s.maxIdle))
	if err != nil {
		return 0, errs.E(op, err)
	}

	return n, nil
}

func tableUpdate(sess *service.Session, kind service.TableKind, index int) *service.TableUpdate {
	return &service.TableUpdate{
		SessionID: sess.ID,
		Kind:      kind,
		Index:     index,
		Rows:      sess.Record.Table(kind),
	}
}

func NewSessionService(
	sessionStorage service.SessionStorage,
	brdService service.BRDService,
	maxIdle time.Duration,
	log zerolog.Logger,
) *sessionService {
	return &sessionService{
		sessionStorage: sessionStorage,
		brdService:     brdService,
		maxIdle:        maxIdle,
		now:            time.Now,
		log:            log,
	}
}
