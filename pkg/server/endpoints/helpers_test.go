package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sridhar-Quarlets/model-registry/pkg/audit"
	"github.com/Sridhar-Quarlets/model-registry/pkg/config"
	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store/memory"
)

// syncBuffer collects audit lines written from handler goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testServer struct {
	*server.Server
	Memory   *memory.Store
	AuditLog *syncBuffer
	handler  http.Handler
}

func testConfig() *config.RegistryConfig {
	cfg := config.Default()
	cfg.SecretKey = "endpoint-test-secret"
	return cfg
}

// newTestServer builds a fully routed server over stores, defaulting every
// nil store to a fresh in-memory one.
func newTestServer(t *testing.T, stores server.Stores, opts ...server.Option) *testServer {
	t.Helper()
	mem := memory.New()
	if stores.Entries == nil {
		stores.Entries = mem
	}
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Policies == nil {
		stores.Policies = mem
	}
	if stores.Health == nil {
		stores.Health = mem
	}

	auditLog := &syncBuffer{}
	auditLogger := audit.NewLogger()
	auditLogger.SetWriter(auditLog)

	s, err := server.NewServer(
		testConfig(),
		stores,
		audit.NewAuditor(auditLogger, nil, zerolog.Nop()),
		zerolog.Nop(),
		"127.0.0.1", "0",
		append([]server.Option{server.WithAccessLog(io.Discard)}, opts...)...,
	)
	require.NoError(t, err)
	s.Passwords.WithCost(bcrypt.MinCost)
	RegisterAll(s)

	return &testServer{Server: s, Memory: mem, AuditLog: auditLog, handler: s.Handler()}
}

func (ts *testServer) do(t *testing.T, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) postForm(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// login creates an account and returns a bearer token for it.
func (ts *testServer) login(t *testing.T, email string) string {
	t.Helper()
	_, err := ts.Passwords.Register(context.Background(), email, "password")
	require.NoError(t, err)
	token, _, err := ts.Tokens.Issue(email)
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type errorResponse struct {
	Error ErrorBody `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body errorResponse
	decode(t, rec, &body)
	return body.Error
}

func fraudDetector() map[string]interface{} {
	return map[string]interface{}{
		"model_name":    "fraud-detector",
		"display_name":  "Fraud Detector v1",
		"version":       "1.0.0",
		"model_type":    "Regression",
		"domain":        "finance",
		"artifact_path": "s3://bucket/m1",
		"model_format":  "onnx",
		"checksum":      "abc123",
		"tags":          "fraud,tabular",
		"metrics":       map[string]interface{}{"auc": 0.93},
	}
}

// MockEntriesStore implements store.EntriesStore for testing using testify/mock
type MockEntriesStore struct {
	mock.Mock
}

func (m *MockEntriesStore) CreateEntry(ctx context.Context, entry model.RegistryEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockEntriesStore) GetEntry(ctx context.Context, id uuid.UUID) (model.RegistryEntry, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.RegistryEntry), args.Error(1)
}

func (m *MockEntriesStore) LatestEntry(ctx context.Context, filter store.EntryFilter) (model.RegistryEntry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(model.RegistryEntry), args.Error(1)
}

func (m *MockEntriesStore) ListEntries(ctx context.Context, filter store.EntryFilter) ([]model.RegistryEntry, int64, error) {
	args := m.Called(ctx, filter)
	var entries []model.RegistryEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]model.RegistryEntry)
	}
	return entries, args.Get(1).(int64), args.Error(2)
}

func (m *MockEntriesStore) UpdateEntry(ctx context.Context, id uuid.UUID, fn func(*model.RegistryEntry) error) (model.RegistryEntry, error) {
	args := m.Called(ctx, id, fn)
	return args.Get(0).(model.RegistryEntry), args.Error(1)
}

func (m *MockEntriesStore) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEntriesStore) IncrementAccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
