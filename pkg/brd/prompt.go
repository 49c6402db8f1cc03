package brd

import (
	"strings"

	"github.com/navikt/brd-backend/pkg/service"
)

const promptIntro = `You are an expert Business Systems Analyst.

Generate a Business Requirements Document (BRD) for a dashboard
using the EXACT structure and section names below:

------------------------------------------
`

const promptOutro = `------------------------------------------

Use this DATA to populate each section:

`

const promptInstruction = `
Return only structured text that matches the template.
`

// Outline returns the section outline narrative drafts must follow.
func Outline() string {
	var b strings.Builder

	b.WriteString(DocumentTitle + "\n\n")
	for _, l := range []string{LabelProjectName, LabelDateCreated, LabelRequestedBy, LabelPreparedBy, LabelVersion} {
		b.WriteString(l + "\n")
	}

	b.WriteString("\n" + HeadingOverview + "\n")
	for _, f := range overviewFields(service.NewFormRecord()) {
		b.WriteString("• " + strings.TrimSuffix(f.label, ":") + "\n")
	}

	for _, def := range service.TableDefinitions() {
		if def.Kind == service.TableKindControlData {
			b.WriteString("\n" + HeadingNotes + "\n")
		}

		b.WriteString("\n" + def.Heading + "\n")
		b.WriteString("(Table with: " + strings.Join(def.Schema.Titles(), ", ") + ")\n")
	}

	return b.String()
}

func (r *Renderer) Prompt(record *service.FormRecord) string {
	return promptIntro + Outline() + promptOutro + r.Summary(record) + promptInstruction
}
