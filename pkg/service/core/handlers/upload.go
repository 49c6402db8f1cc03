package handlers

import (
	"net/http"

	"github.com/navikt/brd-backend/pkg/errs"
	"github.com/navikt/brd-backend/pkg/service"
	"github.com/navikt/brd-backend/pkg/service/core/parser"
)

func processUpload(r *http.Request, maxBytes int64, objectNames ...string) (*parser.MultipartForm, error) {
	const op errs.Op = "handlers.processUpload"

	form, err := parser.MultipartFormFromRequest(r, maxBytes)
	if err != nil {
		return nil, errs.E(errs.InvalidRequest, op, err)
	}

	err = form.Process(objectNames)
	if err != nil {
		form.Close()

		return nil, errs.E(errs.InvalidRequest, op, err)
	}

	return form, nil
}

// attachmentsFromForm reads the uploaded files in the order they were sent.
func attachmentsFromForm(form *parser.MultipartForm) ([]*service.Attachment, error) {
	const op errs.Op = "handlers.attachmentsFromForm"

	var attachments []*service.Attachment

	for _, f := range form.Files() {
		data, err := f.ReadAll()
		if err != nil {
			return nil, errs.E(errs.InvalidRequest, op, errs.Parameter(f.FormName), err)
		}

		attachments = append(attachments, &service.Attachment{
			FileName:    f.FileName,
			ContentType: f.ContentType,
			Data:        data,
		})
	}

	return attachments, nil
}
