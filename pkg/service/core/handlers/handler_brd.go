package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/navikt/brd-backend/pkg/errs"
	"github.com/navikt/brd-backend/pkg/service"
	"github.com/navikt/brd-backend/pkg/service/core/parser"
	"github.com/navikt/brd-backend/pkg/service/core/transport"
	"github.com/rs/zerolog"
)

const FormNameRecord = "record"

type BRDHandler struct {
	service        service.BRDService
	maxUploadBytes int64
	log            zerolog.Logger
}

type SchemaResult struct {
	Tables      []service.TableDefinition `json:"tables"`
	Frequencies []service.Frequency       `json:"frequencies"`
}

type SummaryResult struct {
	Summary string `json:"summary"`
}

func (h *BRDHandler) Schema(ctx context.Context, _ *http.Request, _ any) (*SchemaResult, error) {
	return &SchemaResult{
		Tables:      h.service.Schema(ctx),
		Frequencies: service.Frequencies(),
	}, nil
}

func (h *BRDHandler) Render(ctx context.Context, _ *http.Request, in *service.FormRecord) (*transport.ByteWriter, error) {
	doc, err := h.service.Render(ctx, in)
	if err != nil {
		return nil, err
	}

	return transport.NewDownload(doc.FileName, doc.ContentType, doc.Data), nil
}

func (h *BRDHandler) Summary(ctx context.Context, _ *http.Request, in *service.FormRecord) (*SummaryResult, error) {
	summary, err := h.service.Summary(ctx, in)
	if err != nil {
		return nil, err
	}

	return &SummaryResult{
		Summary: summary,
	}, nil
}

func (h *BRDHandler) Draft(ctx context.Context, _ *http.Request, in *service.FormRecord) (*service.Draft, error) {
	draft, err := h.service.Draft(ctx, in)
	if err != nil {
		return nil, err
	}

	return draft, nil
}

// Submit expects a multipart form with the record as JSON in the "record"
// part and any number of files.
func (h *BRDHandler) Submit(ctx context.Context, r *http.Request, _ any) (*service.SubmissionReceipt, error) {
	const op errs.Op = "BRDHandler.Submit"

	form, err := processUpload(r, h.maxUploadBytes, FormNameRecord)
	if err != nil {
		return nil, errs.E(op, err)
	}
	defer form.Close()

	record := service.NewFormRecord()

	err = form.DeserializedObject(FormNameRecord, record)
	if err != nil {
		if err == parser.ErrNotExist {
			return nil, errs.E(errs.InvalidRequest, op, errs.Parameter(FormNameRecord), fmt.Errorf("missing %s part", FormNameRecord))
		}

		return nil, errs.E(errs.InvalidRequest, op, errs.Parameter(FormNameRecord), err)
	}

	record.Attachments, err = attachmentsFromForm(form)
	if err != nil {
		return nil, errs.E(op, err)
	}

	receipt, err := h.service.Submit(ctx, record)
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

func NewBRDHandler(service service.BRDService, maxUploadBytes int64, log zerolog.Logger) *BRDHandler {
	return &BRDHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}
