package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/google/go-cmp/cmp"
	"github.com/navikt/brd-backend/pkg/config/v2"
	"github.com/navikt/brd-backend/pkg/requestlogger"
	"github.com/navikt/brd-backend/pkg/service/core"
	"github.com/navikt/brd-backend/pkg/service/core/api"
	"github.com/navikt/brd-backend/pkg/service/core/handlers"
	"github.com/navikt/brd-backend/pkg/service/core/routes"
	"github.com/navikt/brd-backend/pkg/service/core/storage/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	Recipient         = "analytics@example.com"
	OpenAIModel       = "gpt-4o"
	OpenAIResponse    = "1. Business Overview"
	defaultConfigName = "config"
)

// configTemplate wires every optional stage, the urls are filled in with the
// fake servers started by the test.
const configTemplate = `server:
    hostname: localhost
    address: 127.0.0.1
    port: "8080"
    max_upload_mb: 1
pipeline:
    delivery: static
    narrative: openai
    notify: slack
smtp:
    recipient: %s
narrative:
    openai:
        api_key: fake_openai_key
        base_url: %s
        model: %s
    timeout_seconds: 5
slack:
    webhook_url: %s
    channel: '#brd'
    username: BRD Bot
session:
    max_idle_minutes: 60
    sweep_interval_minutes: 1
document_creator: brd-integration
log_level: debug
`

// Fakes holds the external services the backend talks to.
type Fakes struct {
	OpenAI *httptest.Server
	Slack  *httptest.Server

	mu       sync.Mutex
	prompts  []string
	messages []map[string]any
}

func (f *Fakes) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.prompts...)
}

func (f *Fakes) SlackMessages() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]map[string]any(nil), f.messages...)
}

func (f *Fakes) Close() {
	f.OpenAI.Close()
	f.Slack.Close()
}

func NewFakes(t *testing.T) *Fakes {
	t.Helper()

	f := &Fakes{}

	f.OpenAI = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}{}

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		for _, m := range req.Messages {
			f.prompts = append(f.prompts, m.Content)
		}
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w,
			`{"id":"1","object":"chat.completion","model":%q,"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`,
			OpenAIModel, OpenAIResponse,
		)
	}))

	f.Slack = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		msg := map[string]any{}

		err := json.NewDecoder(r.Body).Decode(&msg)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.messages = append(f.messages, msg)
		f.mu.Unlock()

		_, _ = w.Write([]byte("ok"))
	}))

	return f
}

// LoadConfig writes a config file pointing at the fakes and loads it the
// same way the server binary does.
func LoadConfig(t *testing.T, fakes *Fakes) config.Config {
	t.Helper()

	dir := t.TempDir()

	content := fmt.Sprintf(configTemplate, Recipient, fakes.OpenAI.URL, OpenAIModel, fakes.Slack.URL)

	err := os.WriteFile(filepath.Join(dir, defaultConfigName+".yaml"), []byte(content), 0o600)
	if err != nil {
		t.Fatalf("writing config: %s", err)
	}

	cfg, err := config.NewFileSystemLoader().Load(defaultConfigName, dir, "BRD", config.NewDefaultEnvBinder())
	if err != nil {
		t.Fatalf("loading config: %s", err)
	}

	err = cfg.Validate()
	if err != nil {
		t.Fatalf("validating config: %s", err)
	}

	return cfg
}

// NewServer assembles the backend from its configuration.
func NewServer(t *testing.T, cfg config.Config, log zerolog.Logger) *httptest.Server {
	t.Helper()

	clients, err := api.NewClients(t.Context(), cfg, log)
	if err != nil {
		t.Fatalf("creating api clients: %s", err)
	}

	metrics := core.NewMetrics("brd_integration")

	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.Collectors()...)

	services := core.NewServices(
		&core.APIs{
			BRDAPI:       clients.BRDAPI,
			NarrativeAPI: clients.NarrativeAPI,
			DeliveryAPI:  clients.DeliveryAPI,
			NotifierAPI:  clients.NotifierAPI,
		},
		memory.NewSessionStorage(),
		cfg.Session.MaxIdle(),
		metrics,
		log,
	)

	h := handlers.NewHandlers(services, int64(cfg.Server.MaxUploadMB)<<20, log)

	r := TestRouter(log)
	r.Use(middleware.RequestID)
	r.Use(requestlogger.Middleware(log, "/internal/isalive"))

	routes.Add(r,
		routes.NewBRDRoutes(routes.NewBRDEndpoints(log, h.BRDHandler)),
		routes.NewSessionRoutes(routes.NewSessionEndpoints(log, h.SessionHandler)),
		routes.NewMetricsRoutes(routes.NewMetricsEndpoints(reg)),
	)

	return httptest.NewServer(r)
}

func Marshal(t *testing.T, v interface{}) []byte {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling: %s", err)
	}

	return b
}

func Unmarshal(t *testing.T, r io.Reader, v interface{}) {
	t.Helper()

	d, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading: %s", err)
	}

	err = json.Unmarshal(d, v)
	if err != nil {
		t.Fatalf("unmarshaling: %s", err)
	}
}

type TestRunner interface {
	Post(input any, path string, params ...string) TestRunnerStatus
	PostBody(contentType string, body io.Reader, path string) TestRunnerStatus
	Get(path string, params ...string) TestRunnerStatus
	Put(input any, path string, params ...string) TestRunnerStatus
	Patch(input any, path string, params ...string) TestRunnerStatus
}

type TestRunnerStatus interface {
	Debug(out io.Writer) TestRunnerStatus
	HasStatusCode(code int) TestRunnerEnder
}

type TestRunnerEnder interface {
	Value(into any)
	Bytes() []byte
	Header(key string) string
	Expect(expect, into any, opts ...cmp.Option)
}

type testRunner struct {
	t *testing.T
	s *httptest.Server

	response *http.Response
}

func (r *testRunner) HasStatusCode(code int) TestRunnerEnder {
	r.t.Helper()

	if r.response.StatusCode != code {
		body, _ := io.ReadAll(r.response.Body)
		r.t.Errorf("expected status code %d, got %d: %s", code, r.response.StatusCode, body)
		r.response.Body = io.NopCloser(bytes.NewReader(body))
	}

	return r
}

func (r *testRunner) Debug(out io.Writer) TestRunnerStatus {
	r.t.Helper()

	data, err := httputil.DumpRequest(r.response.Request, true)
	if err != nil {
		r.t.Fatalf("dumping request: %s", err)
	}

	_, err = io.Copy(out, bytes.NewReader(data))
	if err != nil {
		r.t.Fatalf("writing request: %s", err)
	}

	data, err = httputil.DumpResponse(r.response, true)
	if err != nil {
		r.t.Fatalf("dumping response: %s", err)
	}

	_, err = io.Copy(out, bytes.NewReader(data))
	if err != nil {
		r.t.Fatalf("writing response: %s", err)
	}

	return r
}

func (r *testRunner) Expect(expect, into any, opts ...cmp.Option) {
	r.t.Helper()

	Unmarshal(r.t, r.response.Body, into)
	diff := cmp.Diff(expect, into, opts...)
	if diff != "" {
		r.t.Errorf("unexpected response: %s", diff)
	}
}

func (r *testRunner) Value(into any) {
	r.t.Helper()

	Unmarshal(r.t, r.response.Body, into)
}

func (r *testRunner) Bytes() []byte {
	r.t.Helper()

	data, err := io.ReadAll(r.response.Body)
	if err != nil {
		r.t.Fatalf("reading: %s", err)
	}

	return data
}

func (r *testRunner) Header(key string) string {
	return r.response.Header.Get(key)
}

func (r *testRunner) parseQueryParams(params ...string) string {
	r.t.Helper()

	if len(params) == 0 {
		return ""
	}

	if len(params)%2 != 0 {
		r.t.Fatalf("invalid number of query parameters")
	}

	var p []string
	for i := 0; i < len(params); i += 2 {
		p = append(p, fmt.Sprintf("%s=%s", params[i], params[i+1]))
	}

	return "?" + strings.Join(p, "&")
}

func (r *testRunner) buildURL(path string, params ...string) string {
	return fmt.Sprintf("%s%s%s", r.s.URL, path, r.parseQueryParams(params...))
}

func (r *testRunner) Get(path string, params ...string) TestRunnerStatus {
	r.t.Helper()

	url := r.buildURL(path, params...)
	r.response = SendRequest(r.t, http.MethodGet, url, "", nil)

	return r
}

func (r *testRunner) Put(input any, path string, params ...string) TestRunnerStatus {
	r.t.Helper()

	url := r.buildURL(path, params...)
	r.response = SendRequest(r.t, http.MethodPut, url, "application/json", bytes.NewReader(Marshal(r.t, input)))

	return r
}

func (r *testRunner) Patch(input any, path string, params ...string) TestRunnerStatus {
	r.t.Helper()

	url := r.buildURL(path, params...)
	r.response = SendRequest(r.t, http.MethodPatch, url, "application/json", bytes.NewReader(Marshal(r.t, input)))

	return r
}

func (r *testRunner) Post(input any, path string, params ...string) TestRunnerStatus {
	r.t.Helper()

	url := r.buildURL(path, params...)
	r.response = SendRequest(r.t, http.MethodPost, url, "application/json", bytes.NewReader(Marshal(r.t, input)))

	return r
}

func (r *testRunner) PostBody(contentType string, body io.Reader, path string) TestRunnerStatus {
	r.t.Helper()

	r.response = SendRequest(r.t, http.MethodPost, r.buildURL(path), contentType, body)

	return r
}

func NewTester(t *testing.T, s *httptest.Server) *testRunner {
	return &testRunner{
		t: t,
		s: s,
	}
}

func SendRequest(t *testing.T, method, url, contentType string, body io.Reader) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("creating request: %s", err)
	}

	if len(contentType) > 0 {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("sending request: %s", err)
	}

	t.Cleanup(func() {
		_ = resp.Body.Close()
	})

	return resp
}

func TestRouter(log zerolog.Logger) chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		log.Error().Str("method", r.Method).Str("path", r.URL.Path).Msg("not found")
		w.WriteHeader(http.StatusNotFound)
	})

	return r
}
