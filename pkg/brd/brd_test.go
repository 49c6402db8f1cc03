package brd_test

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/navikt/brd-backend/pkg/brd"
	"github.com/navikt/brd-backend/pkg/docx"
	"github.com/navikt/brd-backend/pkg/service"
	"github.com/rs/zerolog"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))

	return buf.Bytes()
}

func salesDashboard() *service.FormRecord {
	r := service.NewFormRecord()
	r.ProjectName = "Sales Dashboard"
	r.DateCreated = "2024-05-01"
	r.RequestedBy = "Sales Ops"
	r.PreparedBy = "Jane Analyst"
	r.Version = "1.0"
	r.BusinessProblem = "No single view of sales"
	r.BusinessGoal = "Weekly revenue tracking"
	r.InScope = "Revenue by region"
	r.OutOfScope = "Forecasting"
	r.Frequency = service.FrequencyWeekly

	r.Table(service.TableKindStakeholders).AppendValues("Owner", "Jane", "Sales")

	return r
}

func tableParagraphs(heading string, titles []string, rows ...[]string) []string {
	out := []string{heading}
	out = append(out, titles...)
	for _, r := range rows {
		out = append(out, r...)
	}

	return out
}

func TestRenderer_Layout(t *testing.T) {
	r := brd.NewRenderer("test", zerolog.Nop())

	doc, err := r.Render(salesDashboard())
	require.NoError(t, err)

	assert.Equal(t, "Sales_Dashboard_BRD.docx", doc.FileName)
	assert.Equal(t, service.ContentTypeDocx, doc.ContentType)

	got, err := docx.Paragraphs(doc.Data)
	require.NoError(t, err)

	want := []string{
		"Business Requirements Document (Dashboard Request)",
		"Project / Dashboard Name: Sales Dashboard",
		"Date Created: 2024-05-01",
		"Requested By (Business Team): Sales Ops",
		"Prepared By (Analyst): Jane Analyst",
		"Version: 1.0",
		"",
		"1️⃣ Business Overview",
		"Business Problem / Need:",
		"No single view of sales",
		"\nBusiness Goal / Outcome:",
		"Weekly revenue tracking",
		"\nScope (In-Scope):",
		"Revenue by region",
		"\nOut of Scope:",
		"Forecasting",
		"\nExpected Frequency:",
		"Weekly",
	}
	want = append(want, tableParagraphs("2️⃣ Key Stakeholders",
		[]string{"Role", "Name", "Department / Notes"},
		[]string{"Owner", "Jane", "Sales"})...)
	want = append(want, tableParagraphs("3️⃣ Data Inputs",
		[]string{"Source System/Table", "Description", "Frequency", "Owner"})...)
	want = append(want, tableParagraphs("4️⃣ Dashboard Requirements",
		[]string{"Dashboard Section", "Description / Purpose", "Key Metrics / Fields", "Filters Required", "Drilldown Needed?"})...)
	want = append(want, tableParagraphs("5️⃣ Business Rules / Calculations",
		[]string{"Metric", "Definition / Formula", "Notes"})...)
	want = append(want, tableParagraphs("6️⃣ Expected Outputs",
		[]string{"Deliverable", "Format / Platform", "Frequency", "Audience"})...)
	want = append(want, tableParagraphs("7️⃣ Validation & Sign-off",
		[]string{"Step", "Responsible", "Criteria", "Status"})...)
	want = append(want, "8️⃣ Notes / Attachments", "")
	want = append(want, tableParagraphs("9️⃣ Control Data & Validation Sources",
		[]string{"Control Report / Source", "Description / Purpose", "Business Owner", "Validation Method", "Frequency"})...)
	want = append(want, "")

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_AdHocFrequency(t *testing.T) {
	r := brd.NewRenderer("test", zerolog.Nop())

	record := salesDashboard()
	record.Frequency = service.FrequencyAdHoc

	doc, err := r.Render(record)
	require.NoError(t, err)

	got, err := docx.Paragraphs(doc.Data)
	require.NoError(t, err)

	idx := -1
	for i, p := range got {
		if p == "\nExpected Frequency:" {
			idx = i
		}
	}

	require.NotEqual(t, -1, idx)
	assert.Equal(t, "Ad hoc", got[idx+1])
}

func TestRenderer_EmptyNotesNoImages(t *testing.T) {
	r := brd.NewRenderer("test", zerolog.Nop())

	doc, err := r.Render(service.NewFormRecord())
	require.NoError(t, err)

	assert.Equal(t, brd.DefaultFileName, doc.FileName)

	for _, b := range r.Layout(service.NewFormRecord()).Blocks() {
		_, isImage := b.(docx.Image)
		assert.False(t, isImage)
	}

	_, err = docx.ReadPart(doc.Data, "word/media/image1.png")
	assert.Error(t, err)
}

func TestRenderer_Images(t *testing.T) {
	r := brd.NewRenderer("test", zerolog.Nop())

	record := salesDashboard()
	record.Notes = "See attached mockup"
	record.Attachments = []*service.Attachment{
		{FileName: "scope.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
		{FileName: "mockup.png", ContentType: "image/png", Data: pngOf(t, 800, 600)},
		{FileName: "logo.svg", ContentType: "image/svg+xml", Data: []byte("<svg/>")},
		{FileName: "broken.png", ContentType: "image/png", Data: []byte("garbage")},
	}

	var images []docx.Image
	for _, b := range r.Layout(record).Blocks() {
		if img, ok := b.(docx.Image); ok {
			images = append(images, img)
		}
	}

	require.Len(t, images, 1)
	assert.Equal(t, "mockup.png", images[0].Name)
	assert.Equal(t, int64(docx.MaxImageWidthEMU), images[0].WidthEMU)
	assert.Equal(t, int64(4114800), images[0].HeightEMU)

	doc, err := r.Render(record)
	require.NoError(t, err)

	media, err := docx.ReadPart(doc.Data, "word/media/image1.png")
	require.NoError(t, err)
	assert.Equal(t, record.Attachments[1].Data, media)
}

func TestRenderer_AppendedRowRendered(t *testing.T) {
	r := brd.NewRenderer("test", zerolog.Nop())

	record := salesDashboard()
	before := len(r.Layout(record).Blocks())

	stakeholders := record.Table(service.TableKindStakeholders)
	idx := stakeholders.AppendRow()
	require.NoError(t, stakeholders.SetValue(idx, "name", "Kari"))

	blocks := r.Layout(record).Blocks()
	assert.Equal(t, before, len(blocks))

	var table docx.Table
	for i, b := range blocks {
		if h, ok := b.(docx.Heading); ok && h.Text == "2️⃣ Key Stakeholders" {
			table = blocks[i+1].(docx.Table)
		}
	}

	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"", "Kari", ""}, table.Rows[1])
}

func TestRenderer_MissingTablesUntouched(t *testing.T) {
	r := brd.NewRenderer("test", zerolog.Nop())

	record := &service.FormRecord{
		FormFields: service.FormFields{ProjectName: "Sales Dashboard"},
		Tables:     service.Tables{},
	}

	var tables []docx.Table
	for _, b := range r.Layout(record).Blocks() {
		if tbl, ok := b.(docx.Table); ok {
			tables = append(tables, tbl)
		}
	}

	require.Len(t, tables, len(service.TableKinds()))
	for _, tbl := range tables {
		assert.NotEmpty(t, tbl.Header)
		assert.Empty(t, tbl.Rows)
	}

	_, err := r.Render(record)
	require.NoError(t, err)

	assert.Contains(t, r.Summary(record), "Sales Dashboard")
	assert.Empty(t, record.Tables)
}

func TestRenderer_Deterministic(t *testing.T) {
	r := brd.NewRenderer("test", zerolog.Nop())

	record := salesDashboard()
	record.Attachments = []*service.Attachment{
		{FileName: "mockup.png", ContentType: "image/png", Data: pngOf(t, 20, 10)},
	}

	first, err := r.Render(record)
	require.NoError(t, err)

	second, err := r.Render(record.Clone())
	require.NoError(t, err)

	assert.Equal(t, first.Data, second.Data)
}

func TestRenderer_Summary(t *testing.T) {
	r := brd.NewRenderer("test", zerolog.Nop())

	record := salesDashboard()
	record.Notes = "See attached mockup"
	record.Table(service.TableKindBusinessRules).AppendValues("Revenue", "sum(amount)", "Excludes tax")
	record.Attachments = []*service.Attachment{
		{FileName: "mockup.png", ContentType: "image/png"},
		{FileName: "scope.pdf", ContentType: "application/pdf"},
	}

	g := goldie.New(t)
	g.Assert(t, "summary", []byte(r.Summary(record)))
}

func TestFileName(t *testing.T) {
	testCases := []struct {
		project string
		expect  string
	}{
		{project: "Q4 Report", expect: "Q4_Report_BRD.docx"},
		{project: "Sales/Ops Daily", expect: "Sales_Ops_Daily_BRD.docx"},
		{project: "", expect: "BRD.docx"},
		{project: "   ", expect: "BRD.docx"},
	}

	for _, tc := range testCases {
		t.Run(tc.expect, func(t *testing.T) {
			assert.Equal(t, tc.expect, brd.FileName(tc.project))
		})
	}
}

func TestRenderer_Prompt(t *testing.T) {
	r := brd.NewRenderer("test", zerolog.Nop())

	prompt := r.Prompt(salesDashboard())

	assert.Contains(t, prompt, "• Business Problem / Need\n")
	assert.Contains(t, prompt, "(Table with: Role, Name, Department / Notes)")
	assert.Contains(t, prompt, "8️⃣ Notes / Attachments\n\n9️⃣ Control Data & Validation Sources\n")
	assert.Contains(t, prompt, "Project / Dashboard Name: Sales Dashboard\n")
	assert.True(t, strings.HasSuffix(prompt, "Return only structured text that matches the template.\n"))
}
