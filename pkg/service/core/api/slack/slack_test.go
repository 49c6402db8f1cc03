package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/navikt/brd-backend/pkg/errs"
	"github.com/navikt/brd-backend/pkg/service"
	"github.com/navikt/brd-backend/pkg/service/core/api/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receipt() *service.SubmissionReceipt {
	return &service.SubmissionReceipt{
		ID:          uuid.MustParse("7b2b6c2e-4d0c-4ae1-9b4c-1c6b1a2f3e4d"),
		ProjectName: "Q4 Report",
		Document:    "Q4_Report_BRD.docx",
		Attachments: []string{"Q4_Report_BRD.docx", "mockup.png"},
		Recipient:   "analytics@example.com",
	}
}

func TestSubmissionMessage(t *testing.T) {
	expect := "New BRD submitted for *Q4 Report*\n" +
		"Document: Q4_Report_BRD.docx\n" +
		"Sent to: analytics@example.com\n" +
		"Attachments: Q4_Report_BRD.docx, mockup.png\n" +
		"Submission: 7b2b6c2e-4d0c-4ae1-9b4c-1c6b1a2f3e4d"

	assert.Equal(t, expect, slack.SubmissionMessage(receipt()))
}

func TestNotifierAPI_NotifySubmission(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	api := slack.NewNotifierAPI(srv.URL, "#brd", "")

	err := api.NotifySubmission(context.Background(), receipt())
	require.NoError(t, err)
	assert.Equal(t, "BRD Bot", got["username"])
	assert.Equal(t, "#brd", got["channel"])
	assert.Equal(t, slack.SubmissionMessage(receipt()), got["text"])
}

func TestNotifierAPI_NotifySubmissionFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	api := slack.NewNotifierAPI(srv.URL, "", "")

	err := api.NotifySubmission(context.Background(), receipt())
	require.Error(t, err)
	assert.True(t, errs.KindIs(errs.IO, err))
}
