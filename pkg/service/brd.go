package service

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	ContentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	DateLayout      = "2006-01-02"
	DefaultVersion  = "1.0"
)

type BRDAPI interface {
	// Render turns a form record into a word processing document.
	Render(record *FormRecord) (*RenderedDocument, error)
	// Summary returns a plain text rendition of the record.
	Summary(record *FormRecord) string
	// Prompt returns the narrative drafting instructions for the record.
	Prompt(record *FormRecord) string
}

type NarrativeAPI interface {
	Draft(ctx context.Context, prompt string) (*Draft, error)
}

type DeliveryAPI interface {
	Deliver(ctx context.Context, delivery *Delivery) error
	Recipient() string
}

type NotifierAPI interface {
	NotifySubmission(ctx context.Context, receipt *SubmissionReceipt) error
}

type BRDService interface {
	Schema(ctx context.Context) []TableDefinition
	Render(ctx context.Context, record *FormRecord) (*RenderedDocument, error)
	Summary(ctx context.Context, record *FormRecord) (string, error)
	Draft(ctx context.Context, record *FormRecord) (*Draft, error)
	Submit(ctx context.Context, record *FormRecord) (*SubmissionReceipt, error)
}

type Frequency string

const (
	FrequencyDaily   Frequency = "Daily"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyMonthly Frequency = "Monthly"
	FrequencyAdHoc   Frequency = "Ad hoc"
)

// Frequencies returns the selectable frequencies in display order.
func Frequencies() []Frequency {
	return []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyAdHoc}
}

// FormFields holds the scalar fields of a BRD.
type FormFields struct {
	ProjectName     string    `json:"project_name"`
	RequestedBy     string    `json:"requested_by"`
	PreparedBy      string    `json:"prepared_by"`
	Version         string    `json:"version"`
	DateCreated     string    `json:"date_created"`
	BusinessProblem string    `json:"business_problem"`
	BusinessGoal    string    `json:"business_goal"`
	InScope         string    `json:"in_scope"`
	OutOfScope      string    `json:"out_of_scope"`
	Frequency       Frequency `json:"frequency"`
	Notes           string    `json:"notes"`
}

func (f FormFields) Validate() error {
	frequencies := make([]interface{}, 0, len(Frequencies()))
	for _, fr := range Frequencies() {
		frequencies = append(frequencies, fr)
	}

	return validation.ValidateStruct(&f,
		validation.Field(&f.Frequency, validation.In(frequencies...)),
		validation.Field(&f.DateCreated, validation.Date(DateLayout)),
	)
}

// Attachment is a user supplied file that travels with the submission.
type Attachment struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

func (a *Attachment) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(a.ContentType), "image/")
}

// FormRecord is the complete in-memory representation of one submission.
type FormRecord struct {
	FormFields
	Tables      Tables        `json:"tables"`
	Attachments []*Attachment `json:"attachments,omitempty"`
}

// NewFormRecord returns a record with every table present and empty.
func NewFormRecord() *FormRecord {
	return &FormRecord{
		Tables: NewTables(),
	}
}

func (r *FormRecord) Validate() error {
	return r.FormFields.Validate()
}

// Table returns the section for the kind, creating it when missing.
func (r *FormRecord) Table(kind TableKind) *TableSection {
	if r.Tables == nil {
		r.Tables = NewTables()
	}

	t, ok := r.Tables[kind]
	if !ok || t == nil {
		t = NewTableSection(kind)
		r.Tables[kind] = t
	}

	return t
}

// TableValues returns the cell values of the kind's rows without adding a
// missing section to the record.
func (r *FormRecord) TableValues(kind TableKind) [][]string {
	t, ok := r.Tables[kind]
	if !ok || t == nil {
		return nil
	}

	return t.Values()
}

// Normalize makes sure every table kind has a section.
func (r *FormRecord) Normalize() {
	for _, k := range TableKinds() {
		r.Table(k)
	}
}

// Images returns the attachments with an image media type, in order.
func (r *FormRecord) Images() []*Attachment {
	var images []*Attachment
	for _, a := range r.Attachments {
		if a.IsImage() {
			images = append(images, a)
		}
	}

	return images
}

// Clone returns a deep copy of the record. Attachment payloads are shared
// since they are never modified.
func (r *FormRecord) Clone() *FormRecord {
	cp := &FormRecord{
		FormFields: r.FormFields,
		Tables:     make(Tables, len(r.Tables)),
	}

	for k, t := range r.Tables {
		cp.Tables[k] = t.Clone()
	}

	for _, a := range r.Attachments {
		ac := *a
		cp.Attachments = append(cp.Attachments, &ac)
	}

	cp.Normalize()

	return cp
}

// RenderedDocument is the serialized BRD.
type RenderedDocument struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Draft is advisory narrative text, never merged into the rendered document.
type Draft struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// Delivery is one outgoing email.
type Delivery struct {
	Subject     string
	Body        string
	Attachments []*Attachment
}

// NewSubmissionDelivery addresses a submitted document and the user supplied
// files. The rendered document is always the first attachment.
func NewSubmissionDelivery(projectName string, doc *RenderedDocument, files []*Attachment) *Delivery {
	attachments := make([]*Attachment, 0, len(files)+1)
	attachments = append(attachments, &Attachment{
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		Data:        doc.Data,
	})
	attachments = append(attachments, files...)

	return &Delivery{
		Subject: fmt.Sprintf("New BRD Submission: %s", projectName),
		Body: fmt.Sprintf(
			"A new Business Requirements Document has been submitted for project: %s.\n"+
				"The generated BRD and any supporting files are attached.",
			projectName,
		),
		Attachments: attachments,
	}
}

// FileNames returns the attachment file names in delivery order.
func (d *Delivery) FileNames() []string {
	names := make([]string, len(d.Attachments))
	for i, a := range d.Attachments {
		names[i] = a.FileName
	}

	return names
}

// SubmissionReceipt describes a delivered submission.
type SubmissionReceipt struct {
	ID          uuid.UUID `json:"id"`
	ProjectName string    `json:"project_name"`
	Document    string    `json:"document"`
	Attachments []string  `json:"attachments"`
	Recipient   string    `json:"recipient"`
	Draft       *Draft    `json:"draft,omitempty"`
}
