package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/navikt/brd-backend/pkg/errs"
	"github.com/navikt/brd-backend/pkg/service"
	"github.com/navikt/brd-backend/pkg/service/core/transport"
	"github.com/rs/zerolog"
)

const (
	URLParamSessionID = "id"
	URLParamTableKind = "kind"
	URLParamRowIndex  = "index"
)

type SessionHandler struct {
	service        service.SessionService
	maxUploadBytes int64
	log            zerolog.Logger
}

func (h *SessionHandler) CreateSession(ctx context.Context, _ *http.Request, _ any) (*transport.Created[*service.Session], error) {
	sess, err := h.service.CreateSession(ctx)
	if err != nil {
		return nil, err
	}

	return transport.NewCreated(sess), nil
}

func (h *SessionHandler) GetSession(ctx context.Context, _ *http.Request, _ any) (*service.Session, error) {
	const op errs.Op = "SessionHandler.GetSession"

	id, err := sessionIDFromCtx(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	sess, err := h.service.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	return sess, nil
}

func (h *SessionHandler) UpdateFields(ctx context.Context, _ *http.Request, in service.FormFields) (*service.Session, error) {
	const op errs.Op = "SessionHandler.UpdateFields"

	id, err := sessionIDFromCtx(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	sess, err := h.service.UpdateFields(ctx, id, in)
	if err != nil {
		return nil, err
	}

	return sess, nil
}

func (h *SessionHandler) AppendRow(ctx context.Context, _ *http.Request, _ any) (*transport.Created[*service.TableUpdate], error) {
	const op errs.Op = "SessionHandler.AppendRow"

	id, err := sessionIDFromCtx(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	update, err := h.service.AppendRow(ctx, id, service.TableKind(chi.URLParamFromCtx(ctx, URLParamTableKind)))
	if err != nil {
		return nil, err
	}

	return transport.NewCreated(update), nil
}

func (h *SessionHandler) UpdateRow(ctx context.Context, _ *http.Request, in map[string]string) (*service.TableUpdate, error) {
	const op errs.Op = "SessionHandler.UpdateRow"

	id, err := sessionIDFromCtx(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	index, err := strconv.Atoi(chi.URLParamFromCtx(ctx, URLParamRowIndex))
	if err != nil {
		return nil, errs.E(errs.InvalidRequest, op, errs.Parameter(URLParamRowIndex), err)
	}

	update, err := h.service.UpdateRow(ctx, id, service.TableKind(chi.URLParamFromCtx(ctx, URLParamTableKind)), index, in)
	if err != nil {
		return nil, err
	}

	return update, nil
}

func (h *SessionHandler) ImportRows(ctx context.Context, _ *http.Request, in string) (*service.TableUpdate, error) {
	const op errs.Op = "SessionHandler.ImportRows"

	id, err := sessionIDFromCtx(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	update, err := h.service.ImportRows(ctx, id, service.TableKind(chi.URLParamFromCtx(ctx, URLParamTableKind)), in)
	if err != nil {
		return nil, err
	}

	return update, nil
}

func (h *SessionHandler) Document(ctx context.Context, _ *http.Request, _ any) (*transport.ByteWriter, error) {
	const op errs.Op = "SessionHandler.Document"

	id, err := sessionIDFromCtx(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	doc, err := h.service.RenderDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	return transport.NewDownload(doc.FileName, doc.ContentType, doc.Data), nil
}

func (h *SessionHandler) Draft(ctx context.Context, _ *http.Request, _ any) (*service.Draft, error) {
	const op errs.Op = "SessionHandler.Draft"

	id, err := sessionIDFromCtx(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	draft, err := h.service.DraftNarrative(ctx, id)
	if err != nil {
		return nil, err
	}

	return draft, nil
}

// Submit expects a multipart form holding only the files to attach, the
// record is taken from the session.
func (h *SessionHandler) Submit(ctx context.Context, r *http.Request, _ any) (*service.SubmissionReceipt, error) {
	const op errs.Op = "SessionHandler.Submit"

	id, err := sessionIDFromCtx(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	var attachments []*service.Attachment

	// A submission without files may be sent with an empty body
	if r.ContentLength != 0 {
		form, err := processUpload(r, h.maxUploadBytes)
		if err != nil {
			return nil, errs.E(op, err)
		}
		defer form.Close()

		attachments, err = attachmentsFromForm(form)
		if err != nil {
			return nil, errs.E(op, err)
		}
	}

	receipt, err := h.service.Submit(ctx, id, attachments)
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

func sessionIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	const op errs.Op = "handlers.sessionIDFromCtx"

	raw := chi.URLParamFromCtx(ctx, URLParamSessionID)

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.E(errs.InvalidRequest, op, errs.Parameter(URLParamSessionID), fmt.Errorf("invalid session id %q: %w", raw, err))
	}

	return id, nil
}

func NewSessionHandler(service service.SessionService, maxUploadBytes int64, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}
