package integration

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/navikt/brd-backend/pkg/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type session struct {
	ID     string `json:"id"`
	Record struct {
		ProjectName string                         `json:"project_name"`
		Frequency   string                         `json:"frequency"`
		Tables      map[string][]map[string]string `json:"tables"`
	} `json:"record"`
}

type tableUpdate struct {
	Kind  string              `json:"kind"`
	Index int                 `json:"index"`
	Rows  []map[string]string `json:"rows"`
}

func attachmentsBody(t *testing.T, name, contentType, data string) (string, *bytes.Buffer) {
	t.Helper()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	require.NoError(t, err)

	_, err = part.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return w.FormDataContentType(), &b
}

func TestBRDSession(t *testing.T) {
	log := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).Level(zerolog.WarnLevel)

	fakes := NewFakes(t)
	defer fakes.Close()

	cfg := LoadConfig(t, fakes)
	assert.Equal(t, Recipient, cfg.SMTP.Recipient)

	server := NewServer(t, cfg, log)
	defer server.Close()

	sess := &session{}

	t.Run("Create session", func(t *testing.T) {
		NewTester(t, server).
			Post(nil, "/api/sessions").
			HasStatusCode(http.StatusCreated).
			Value(sess)

		require.NotEmpty(t, sess.ID)
		assert.Equal(t, "Daily", sess.Record.Frequency)
		assert.Len(t, sess.Record.Tables, 7)
	})

	base := "/api/sessions/" + sess.ID

	t.Run("Update fields", func(t *testing.T) {
		got := &session{}

		NewTester(t, server).
			Put(map[string]string{
				"project_name": "Churn Model",
				"requested_by": "Finance",
				"frequency":    "Monthly",
				"date_created": "2024-05-01",
			}, base+"/fields").
			HasStatusCode(http.StatusOK).
			Value(got)

		assert.Equal(t, "Churn Model", got.Record.ProjectName)
		assert.Equal(t, "Monthly", got.Record.Frequency)
	})

	t.Run("Append and edit stakeholder", func(t *testing.T) {
		NewTester(t, server).
			Post(nil, base+"/tables/stakeholders/rows").
			HasStatusCode(http.StatusCreated).
			Expect(&tableUpdate{
				Kind:  string(service.TableKindStakeholders),
				Index: 0,
				Rows:  []map[string]string{{"role": "", "name": "", "dept": ""}},
			}, &tableUpdate{})

		NewTester(t, server).
			Patch(map[string]string{"role": "Sponsor", "name": "Kari", "dept": "Finance"}, base+"/tables/stakeholders/rows/0").
			HasStatusCode(http.StatusOK).
			Expect(&tableUpdate{
				Kind:  string(service.TableKindStakeholders),
				Index: 0,
				Rows:  []map[string]string{{"role": "Sponsor", "name": "Kari", "dept": "Finance"}},
			}, &tableUpdate{})
	})

	t.Run("Import business rules", func(t *testing.T) {
		NewTester(t, server).
			PostBody("text/plain", strings.NewReader("Churn,count(customer),Within 90 days"), base+"/tables/business_rules/csv").
			HasStatusCode(http.StatusOK).
			Expect(&tableUpdate{
				Kind: string(service.TableKindBusinessRules),
				Rows: []map[string]string{{"metric": "Churn", "formula": "count(customer)", "notes": "Within 90 days"}},
			}, &tableUpdate{}, cmpopts.IgnoreFields(tableUpdate{}, "Index"))
	})

	t.Run("Download document", func(t *testing.T) {
		r := NewTester(t, server).
			Get(base + "/document").
			HasStatusCode(http.StatusOK)

		assert.Equal(t, service.ContentTypeDocx, r.Header("Content-Type"))
		assert.Equal(t, "attachment; filename=Churn_Model_BRD.docx", r.Header("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(r.Bytes(), []byte("PK")))
	})

	t.Run("Draft narrative", func(t *testing.T) {
		NewTester(t, server).
			Post(nil, base+"/draft").
			HasStatusCode(http.StatusOK).
			Expect(&service.Draft{Text: OpenAIResponse, Model: OpenAIModel}, &service.Draft{})

		prompts := fakes.Prompts()
		require.Len(t, prompts, 1)
		assert.Contains(t, prompts[0], "Churn Model")
	})

	t.Run("Submit", func(t *testing.T) {
		contentType, body := attachmentsBody(t, "churn.csv", "text/csv", "customer,churned\n1,true\n")

		receipt := &service.SubmissionReceipt{}

		NewTester(t, server).
			PostBody(contentType, body, base+"/submit").
			HasStatusCode(http.StatusOK).
			Value(receipt)

		assert.Equal(t, "Churn Model", receipt.ProjectName)
		assert.Equal(t, "Churn_Model_BRD.docx", receipt.Document)
		assert.Equal(t, []string{"Churn_Model_BRD.docx", "churn.csv"}, receipt.Attachments)
		assert.Equal(t, Recipient, receipt.Recipient)
		require.NotNil(t, receipt.Draft)
		assert.Equal(t, OpenAIResponse, receipt.Draft.Text)

		messages := fakes.SlackMessages()
		require.Len(t, messages, 1)
		assert.Equal(t, "#brd", messages[0]["channel"])
		assert.Equal(t, "BRD Bot", messages[0]["username"])
		assert.Contains(t, messages[0]["text"], "Churn Model")
		assert.Contains(t, messages[0]["text"], receipt.ID.String())
	})

	t.Run("Session is reset after submit", func(t *testing.T) {
		got := &session{}

		NewTester(t, server).
			Get(base).
			HasStatusCode(http.StatusOK).
			Value(got)

		assert.Equal(t, sess.ID, got.ID)
		assert.Empty(t, got.Record.ProjectName)
		assert.Empty(t, got.Record.Tables[string(service.TableKindStakeholders)])
	})

	t.Run("Metrics", func(t *testing.T) {
		r := NewTester(t, server).
			Get("/internal/metrics").
			HasStatusCode(http.StatusOK)

		assert.Contains(t, string(r.Bytes()), `brd_integration_submissions_total{outcome="delivered"} 1`)
	})
}

func TestBRDSubmitInvalidRecord(t *testing.T) {
	fakes := NewFakes(t)
	defer fakes.Close()

	server := NewServer(t, LoadConfig(t, fakes), zerolog.Nop())
	defer server.Close()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	require.NoError(t, w.WriteField("record", `{"project_name": "Churn", "frequency": "Hourly"}`))
	require.NoError(t, w.Close())

	NewTester(t, server).
		PostBody(w.FormDataContentType(), &b, "/api/brd/submit").
		HasStatusCode(http.StatusBadRequest)

	assert.Empty(t, fakes.SlackMessages())
	assert.Empty(t, fakes.Prompts())
}
