package requestlogger_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	md "github.com/go-chi/chi/middleware"
	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mileusna/useragent"
	"github.com/navikt/brd-backend/pkg/requestlogger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type LogFormat struct {
	Level     string    `json:"level"`
	RequestID string    `json:"request_id"`
	Time      time.Time `json:"time"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	Status    int       `json:"status"`
	UserAgent string    `json:"user_agent"`
	Client    string    `json:"client"`
	ClientOS  string    `json:"client_os"`
	BytesIn   int       `json:"bytes_in"`
	BytesOut  int       `json:"bytes_out"`
	Latency   float64   `json:"latency_ms"`
	Message   string    `json:"message"`
}

const userAgent = "Mozilla/5.0 (Windows NT 6.1; WOW64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/59.0.3071.115 Safari/537.36"

func TestLoggerMiddleware(t *testing.T) {
	testCases := []struct {
		name    string
		method  string
		target  string
		body    []byte
		status  int
		filters []string
		expect  *LogFormat
	}{
		{
			name:   "Should work",
			method: http.MethodGet,
			target: "http://example.com/api/brd/schema",
			status: http.StatusOK,
			expect: &LogFormat{
				Level:     "info",
				URL:       "/api/brd/schema",
				Method:    http.MethodGet,
				Status:    http.StatusOK,
				UserAgent: userAgent,
				Client:    useragent.Chrome,
				ClientOS:  useragent.Windows,
				BytesIn:   0,
				BytesOut:  2,
				Message:   "incoming_request",
			},
		},
		{
			name:   "Should warn on server errors",
			method: http.MethodPost,
			target: "http://example.com/api/brd/submit",
			body:   []byte(`{"project_name": "Q4 Report"}`),
			status: http.StatusBadGateway,
			expect: &LogFormat{
				Level:     "warn",
				URL:       "/api/brd/submit",
				Method:    http.MethodPost,
				Status:    http.StatusBadGateway,
				UserAgent: userAgent,
				Client:    useragent.Chrome,
				ClientOS:  useragent.Windows,
				BytesIn:   29,
				BytesOut:  2,
				Message:   "incoming_request",
			},
		},
		{
			name:    "Should work with filters",
			method:  http.MethodGet,
			target:  "http://example.com/internal/isalive",
			status:  http.StatusOK,
			filters: []string{"/internal/isalive", "/internal/metrics"},
			expect:  nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := zerolog.New(&buf)
			middleware := requestlogger.Middleware(logger, tc.filters...)

			req := httptest.NewRequest(tc.method, tc.target, bytes.NewReader(tc.body))
			req.Header.Set("User-Agent", userAgent)
			if len(tc.body) > 0 {
				req.Header.Set("Content-Length", "29")
			}
			w := httptest.NewRecorder()

			handler := md.RequestID(middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte("OK"))
			})))

			handler.ServeHTTP(w, req)

			if tc.expect == nil {
				assert.Empty(t, buf.String())
				return
			}

			got := &LogFormat{}
			err := json.Unmarshal(buf.Bytes(), got)
			require.NoError(t, err)

			diff := cmp.Diff(tc.expect, got, cmpopts.IgnoreFields(LogFormat{}, "Time", "Latency", "RequestID"))
			assert.Empty(t, diff)
			assert.GreaterOrEqual(t, got.Latency, 0.0)
			assert.False(t, got.Time.IsZero())
			assert.NotEqual(t, "n/a", got.RequestID)
			assert.NotEmpty(t, got.RequestID)
		})
	}
}
