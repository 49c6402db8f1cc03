// Package brd lays out a form record as a Business Requirements Document.
package brd

import (
	"fmt"
	"strings"

	"github.com/navikt/brd-backend/pkg/docx"
	"github.com/navikt/brd-backend/pkg/errs"
	"github.com/navikt/brd-backend/pkg/service"
	"github.com/rs/zerolog"
)

const (
	DocumentTitle = "Business Requirements Document (Dashboard Request)"

	HeadingOverview = "1️⃣ Business Overview"
	HeadingNotes    = "8️⃣ Notes / Attachments"

	LabelProjectName     = "Project / Dashboard Name:"
	LabelDateCreated     = "Date Created:"
	LabelRequestedBy     = "Requested By (Business Team):"
	LabelPreparedBy      = "Prepared By (Analyst):"
	LabelVersion         = "Version:"
	LabelBusinessProblem = "Business Problem / Need:"
	LabelBusinessGoal    = "Business Goal / Outcome:"
	LabelInScope         = "Scope (In-Scope):"
	LabelOutOfScope      = "Out of Scope:"
	LabelFrequency       = "Expected Frequency:"

	DefaultFileName = "BRD.docx"
	fileNameSuffix  = "_BRD.docx"

	titleLevel   = 1
	sectionLevel = 2
)

var _ service.BRDAPI = &Renderer{}

type Renderer struct {
	creator string
	log     zerolog.Logger
}

// FileName derives the document file name from the project name.
func FileName(projectName string) string {
	name := strings.TrimSpace(projectName)
	if name == "" {
		return DefaultFileName
	}

	name = strings.NewReplacer(" ", "_", "/", "_").Replace(name)

	return name + fileNameSuffix
}

func (r *Renderer) Render(record *service.FormRecord) (*service.RenderedDocument, error) {
	const op errs.Op = "brd.Render"

	doc := r.Layout(record)

	data, err := doc.Bytes()
	if err != nil {
		return nil, errs.E(errs.Internal, op, err)
	}

	return &service.RenderedDocument{
		FileName:    FileName(record.ProjectName),
		ContentType: service.ContentTypeDocx,
		Data:        data,
	}, nil
}

// Layout builds the document body for the record. Images that cannot be
// embedded are left out of the document.
func (r *Renderer) Layout(record *service.FormRecord) *docx.Document {
	if record == nil {
		record = service.NewFormRecord()
	}

	doc := docx.New()
	doc.Title = DocumentTitle
	if record.ProjectName != "" {
		doc.Title = fmt.Sprintf("%s - %s", DocumentTitle, record.ProjectName)
	}
	doc.Creator = r.creator

	doc.AddHeading(DocumentTitle, titleLevel)
	doc.AddParagraph(labeled(LabelProjectName, record.ProjectName))
	doc.AddParagraph(labeled(LabelDateCreated, record.DateCreated))
	doc.AddParagraph(labeled(LabelRequestedBy, record.RequestedBy))
	doc.AddParagraph(labeled(LabelPreparedBy, record.PreparedBy))
	doc.AddParagraph(labeled(LabelVersion, record.Version))
	doc.AddParagraph("")

	doc.AddHeading(HeadingOverview, sectionLevel)
	for i, f := range overviewFields(record) {
		label := f.label
		if i > 0 {
			label = "\n" + label
		}

		doc.AddParagraph(label)
		doc.AddParagraph(f.value)
	}

	for _, def := range service.TableDefinitions() {
		if def.Kind == service.TableKindControlData {
			r.addNotes(doc, record)
		}

		doc.AddHeading(def.Heading, sectionLevel)
		doc.AddTable(def.Schema.Titles(), record.TableValues(def.Kind))
	}

	return doc
}

func (r *Renderer) addNotes(doc *docx.Document, record *service.FormRecord) {
	doc.AddHeading(HeadingNotes, sectionLevel)
	doc.AddParagraph(record.Notes)

	for _, img := range record.Images() {
		if !docx.SupportsImage(img.ContentType) {
			r.log.Warn().Str("file", img.FileName).Str("content_type", img.ContentType).Msg("image type can not be embedded, skipping")
			continue
		}

		err := doc.AddImage(img.FileName, img.ContentType, img.Data)
		if err != nil {
			r.log.Warn().Err(err).Str("file", img.FileName).Msg("embedding image, skipping")
		}
	}
}

type field struct {
	label string
	value string
}

func overviewFields(record *service.FormRecord) []field {
	return []field{
		{label: LabelBusinessProblem, value: record.BusinessProblem},
		{label: LabelBusinessGoal, value: record.BusinessGoal},
		{label: LabelInScope, value: record.InScope},
		{label: LabelOutOfScope, value: record.OutOfScope},
		{label: LabelFrequency, value: string(record.Frequency)},
	}
}

func labeled(label, value string) string {
	return label + " " + value
}

func NewRenderer(creator string, log zerolog.Logger) *Renderer {
	return &Renderer{
		creator: creator,
		log:     log,
	}
}
