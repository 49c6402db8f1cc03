package service_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/navikt/brd-backend/pkg/errs"
	"github.com/navikt/brd-backend/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableKinds(t *testing.T) {
	kinds := service.TableKinds()

	require.Len(t, kinds, 7)
	assert.Equal(t, service.TableKindStakeholders, kinds[0])
	assert.Equal(t, service.TableKindControlData, kinds[len(kinds)-1])

	for _, k := range kinds {
		assert.True(t, k.Valid())
		assert.NotEmpty(t, k.Schema())
	}

	_, err := service.ParseTableKind("audit")
	assert.True(t, errs.KindIs(errs.InvalidRequest, err))
}

func TestTableSection_AppendRow(t *testing.T) {
	for _, kind := range service.TableKinds() {
		t.Run(string(kind), func(t *testing.T) {
			table := service.NewTableSection(kind)
			table.AppendValues("a")

			idx := table.AppendRow()
			assert.Equal(t, 1, idx)
			assert.Equal(t, 2, table.Len())

			row := table.Rows()[idx]
			assert.Len(t, row, len(kind.Schema()))

			for _, key := range kind.Schema().Keys() {
				v, ok := row[key]
				assert.True(t, ok, key)
				assert.Empty(t, v)
			}
		})
	}
}

func TestTableSection_SetValue(t *testing.T) {
	table := service.NewTableSection(service.TableKindStakeholders)
	table.AppendRow()

	require.NoError(t, table.SetValue(0, "name", "Jane"))
	assert.Equal(t, [][]string{{"", "Jane", ""}}, table.Values())

	err := table.SetValue(1, "name", "John")
	assert.True(t, errs.KindIs(errs.InvalidRequest, err))

	err = table.SetValue(0, "email", "jane@example.com")
	assert.True(t, errs.KindIs(errs.InvalidRequest, err))

	rows := table.Rows()
	rows[0]["name"] = "changed"
	assert.Equal(t, "Jane", table.Rows()[0]["name"])
}

func TestParseCSVRows(t *testing.T) {
	testCases := []struct {
		name      string
		kind      service.TableKind
		text      string
		expect    [][]string
		expectErr errs.Kind
	}{
		{
			name: "Trims fields and skips blank lines",
			kind: service.TableKindBusinessRules,
			text: "Revenue , sum(amount),  Excludes tax\n\n  \nMargin,revenue - cost,\n",
			expect: [][]string{
				{"Revenue", "sum(amount)", "Excludes tax"},
				{"Margin", "revenue - cost", ""},
			},
		},
		{
			name:      "Too few fields",
			kind:      service.TableKindBusinessRules,
			text:      "Revenue,sum(amount),Excludes tax\nRevenue,sum(amount)",
			expectErr: errs.Validation,
		},
		{
			name:      "Too many fields",
			kind:      service.TableKindStakeholders,
			text:      "Owner,Jane,Finance,Oslo",
			expectErr: errs.Validation,
		},
		{
			name:      "Unknown kind",
			kind:      "audit",
			text:      "a,b",
			expectErr: errs.InvalidRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := service.ParseCSVRows(tc.kind, tc.text)

			if tc.expectErr != errs.Other {
				require.Error(t, err)
				assert.True(t, errs.KindIs(tc.expectErr, err), err.Error())
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tc.expect, got))
		})
	}
}

func TestFormRecord_JSON(t *testing.T) {
	data := []byte(`{
		"project_name": "Sales Dashboard",
		"frequency": "Weekly",
		"tables": {
			"stakeholders": [{"role": "Owner", "email": "dropped"}]
		}
	}`)

	record := &service.FormRecord{}
	require.NoError(t, json.Unmarshal(data, record))

	assert.Equal(t, "Sales Dashboard", record.ProjectName)
	assert.Len(t, record.Tables, 7)
	assert.Equal(t, []service.Row{{"role": "Owner", "name": "", "dept": ""}}, record.Table(service.TableKindStakeholders).Rows())
	assert.Zero(t, record.Table(service.TableKindValidation).Len())

	err := json.Unmarshal([]byte(`{"tables": {"audit": []}}`), &service.FormRecord{})
	assert.Error(t, err)
}

func TestFormRecord_Validate(t *testing.T) {
	record := service.NewFormRecord()
	assert.NoError(t, record.Validate())

	record.Frequency = service.FrequencyAdHoc
	record.DateCreated = "2024-05-01"
	assert.NoError(t, record.Validate())

	record.Frequency = "Hourly"
	assert.Error(t, record.Validate())

	record.Frequency = service.FrequencyDaily
	record.DateCreated = "01.05.2024"
	assert.Error(t, record.Validate())
}

func TestFormRecord_TableValues(t *testing.T) {
	record := &service.FormRecord{Tables: service.Tables{}}

	assert.Nil(t, record.TableValues(service.TableKindValidation))
	assert.Empty(t, record.Tables)

	record.Table(service.TableKindValidation).AppendValues("UAT", "Jane", "Numbers match", "Open")
	assert.Equal(t, [][]string{{"UAT", "Jane", "Numbers match", "Open"}}, record.TableValues(service.TableKindValidation))
	assert.Len(t, record.Tables, 1)
}

func TestFormRecord_Clone(t *testing.T) {
	record := service.NewFormRecord()
	record.ProjectName = "Q4 Report"
	record.Table(service.TableKindValidation).AppendValues("UAT", "Jane", "Numbers match", "Open")
	record.Attachments = []*service.Attachment{
		{FileName: "mockup.png", ContentType: "image/png", Data: []byte{1}},
		{FileName: "scope.pdf", ContentType: "application/pdf"},
	}

	cp := record.Clone()
	require.NoError(t, cp.Table(service.TableKindValidation).SetValue(0, "status", "Done"))
	cp.ProjectName = "Q1 Report"
	cp.Attachments[0].FileName = "renamed.png"

	assert.Equal(t, "Q4 Report", record.ProjectName)
	assert.Equal(t, "Open", record.Table(service.TableKindValidation).Rows()[0]["status"])
	assert.Equal(t, "mockup.png", record.Attachments[0].FileName)
	assert.Len(t, record.Images(), 1)
}

func TestNewDraftRecord(t *testing.T) {
	record := service.NewDraftRecord(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, service.DefaultVersion, record.Version)
	assert.Equal(t, "2024-05-01", record.DateCreated)
	assert.Equal(t, service.FrequencyDaily, record.Frequency)
	assert.Len(t, record.Tables, 7)
}

func TestNewSubmissionDelivery(t *testing.T) {
	doc := &service.RenderedDocument{FileName: "Q4_Report_BRD.docx", ContentType: service.ContentTypeDocx, Data: []byte("PK")}

	delivery := service.NewSubmissionDelivery("Q4 Report", doc, []*service.Attachment{
		{FileName: "scope.pdf", ContentType: "application/pdf"},
	})

	assert.Equal(t, "New BRD Submission: Q4 Report", delivery.Subject)
	assert.Equal(t,
		"A new Business Requirements Document has been submitted for project: Q4 Report.\n"+
			"The generated BRD and any supporting files are attached.",
		delivery.Body,
	)
	assert.Equal(t, []string{"Q4_Report_BRD.docx", "scope.pdf"}, delivery.FileNames())
}
