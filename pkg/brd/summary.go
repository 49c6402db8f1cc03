package brd

import (
	"strings"

	"github.com/navikt/brd-backend/pkg/service"
)

const (
	cellSeparator = " | "
	noRows        = "(none)"
)

// Summary writes the record as plain text in document order. It is used as
// the data section of narrative prompts.
func (r *Renderer) Summary(record *service.FormRecord) string {
	if record == nil {
		record = service.NewFormRecord()
	}

	var b strings.Builder

	line := func(s string) {
		b.WriteString(s)
		b.WriteString("\n")
	}

	line(DocumentTitle)
	line(labeled(LabelProjectName, record.ProjectName))
	line(labeled(LabelDateCreated, record.DateCreated))
	line(labeled(LabelRequestedBy, record.RequestedBy))
	line(labeled(LabelPreparedBy, record.PreparedBy))
	line(labeled(LabelVersion, record.Version))
	line("")

	line(HeadingOverview)
	for _, f := range overviewFields(record) {
		line(labeled(f.label, f.value))
	}

	for _, def := range service.TableDefinitions() {
		if def.Kind == service.TableKindControlData {
			line("")
			line(HeadingNotes)
			line(record.Notes)

			if len(record.Attachments) > 0 {
				names := make([]string, len(record.Attachments))
				for i, a := range record.Attachments {
					names[i] = a.FileName
				}
				line("Attachments: " + strings.Join(names, ", "))
			}
		}

		line("")
		line(def.Heading)
		line(strings.Join(def.Schema.Titles(), cellSeparator))

		values := record.TableValues(def.Kind)
		if len(values) == 0 {
			line(noRows)
		}

		for _, row := range values {
			line(strings.Join(row, cellSeparator))
		}
	}

	return b.String()
}
