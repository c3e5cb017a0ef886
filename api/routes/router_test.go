package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/splitwallet-backend/api/middleware"
	"github.com/angelmondragon/splitwallet-backend/internal/ledgers"
	"github.com/angelmondragon/splitwallet-backend/internal/reporting"
	"github.com/angelmondragon/splitwallet-backend/internal/settlement"
	"github.com/angelmondragon/splitwallet-backend/pkg/config"
	"github.com/angelmondragon/splitwallet-backend/pkg/db"
	"github.com/angelmondragon/splitwallet-backend/pkg/enums"
	"github.com/angelmondragon/splitwallet-backend/pkg/logger"
	"github.com/angelmondragon/splitwallet-backend/pkg/metrics"
	"github.com/angelmondragon/splitwallet-backend/pkg/migrate"
)

type testServer struct {
	*httptest.Server
	owner string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migrate.Up(context.Background(), sqlDB, "sqlite3"))
	client := db.FromGorm(conn)

	registry := prometheus.NewRegistry()
	svc, err := ledgers.NewService(ledgers.ServiceParams{
		Repo:    ledgers.NewRepository(client.DB()),
		Tx:      client,
		Engine:  settlement.NewEngine(enums.RemainderPolicyMemberOrder, settlement.DefaultTolerance),
		Metrics: metrics.NewEngineMetrics(registry),
	})
	require.NoError(t, err)

	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	handler := NewRouter(Deps{
		Config:   cfg,
		Logger:   logger.Nop(),
		DB:       client,
		Gatherer: registry,
		Ledgers:  svc,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, owner: uuid.NewString()}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (int, json.RawMessage) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set(middleware.OwnerHeader, s.owner)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) == 0 {
		return resp.StatusCode, nil
	}
	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error json.RawMessage `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope), string(raw))
	if envelope.Error != nil {
		return resp.StatusCode, envelope.Error
	}
	return resp.StatusCode, envelope.Data
}

func decodeID(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out.ID
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"database":"up"`)
	assert.Contains(t, string(body), `"redis":"disabled"`)

	// a computation so the vectors have children to export
	status, raw := srv.do(t, http.MethodPost, "/api/v1/events", map[string]any{
		"title": "Metrics", "start_date": "2024-01-01", "end_date": "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = srv.do(t, http.MethodGet, "/api/v1/events/"+decodeID(t, raw)+"/balances", nil)
	require.Equal(t, http.StatusOK, status)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "splitwallet_computation_success_total")
}

func TestAPIRequiresOwner(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/events")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestSettlementFlow(t *testing.T) {
	srv := newTestServer(t)

	status, raw := srv.do(t, http.MethodPost, "/api/v1/events", map[string]any{
		"title": "Goa", "start_date": "2024-03-01", "end_date": "2024-03-03", "currency": "INR",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	eventPath := "/api/v1/events/" + decodeID(t, raw)

	ids := map[string]string{}
	for _, name := range []string{"Asha", "Bilal", "Chen"} {
		status, raw = srv.do(t, http.MethodPost, eventPath+"/members", map[string]any{"name": name})
		require.Equal(t, http.StatusCreated, status, string(raw))
		ids[name] = decodeID(t, raw)
	}

	status, raw = srv.do(t, http.MethodPost, eventPath+"/expenses", map[string]any{
		"description":     "Dinner",
		"date":            "2024-03-02",
		"amount":          "30.00",
		"payer_id":        ids["Asha"],
		"contributor_ids": []string{ids["Asha"], ids["Bilal"], ids["Chen"]},
		"category":        "food",
		"approval_status": "approved",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, raw = srv.do(t, http.MethodGet, eventPath+"/settlement", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var plan settlement.Result
	require.NoError(t, json.Unmarshal(raw, &plan))
	require.Len(t, plan.Transactions, 2)
	for _, txn := range plan.Transactions {
		assert.Equal(t, ids["Asha"], txn.PayeeID.String())
		assert.Equal(t, "10", txn.Amount.String())
	}
	asha, ok := plan.Sheet.Member(uuid.MustParse(ids["Asha"]))
	require.True(t, ok)
	assert.Equal(t, "20", asha.Net.String())

	status, raw = srv.do(t, http.MethodPost, eventPath+"/settlement", nil)
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, raw = srv.do(t, http.MethodGet, eventPath+"/transactions", nil)
	require.Equal(t, http.StatusOK, status)
	var txns []ledgers.TransactionDTO
	require.NoError(t, json.Unmarshal(raw, &txns))
	assert.Len(t, txns, 2)

	status, raw = srv.do(t, http.MethodGet, eventPath+"/reports/monthly?granularity=day", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.True(t, strings.Contains(string(raw), `"period":"2024-03-02"`), string(raw))

	status, _ = srv.do(t, http.MethodGet, eventPath+"/reports/members/"+ids["Bilal"]+"/categories", nil)
	assert.Equal(t, http.StatusOK, status)

	status, raw = srv.do(t, http.MethodGet, eventPath+"/summary", nil)
	require.Equal(t, http.StatusOK, status, string(raw))

	status, raw = srv.do(t, http.MethodGet, "/api/v1/events/analytics/by-year", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Contains(t, string(raw), `2024`)

	status, _ = srv.do(t, http.MethodDelete, eventPath+"/members/"+ids["Bilal"], nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = srv.do(t, http.MethodDelete, eventPath, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = srv.do(t, http.MethodGet, eventPath, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOtherOwnersCannotSeeEvents(t *testing.T) {
	srv := newTestServer(t)

	status, raw := srv.do(t, http.MethodPost, "/api/v1/events", map[string]any{
		"title": "Private", "start_date": "2024-03-01", "end_date": "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, status)
	eventPath := "/api/v1/events/" + decodeID(t, raw)

	srv.owner = uuid.NewString()
	status, _ = srv.do(t, http.MethodGet, eventPath, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = srv.do(t, http.MethodGet, eventPath+"/balances", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestEventUpdateAndOwnerAnalytics(t *testing.T) {
	srv := newTestServer(t)

	status, raw := srv.do(t, http.MethodPost, "/api/v1/events", map[string]any{
		"title": "Goa", "location": "Goa", "start_date": "2024-03-01", "end_date": "2024-03-03",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	eventPath := "/api/v1/events/" + decodeID(t, raw)
	status, raw = srv.do(t, http.MethodPost, "/api/v1/events", map[string]any{
		"title": "Pune", "start_date": "2023-06-01", "end_date": "2023-06-01",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, raw = srv.do(t, http.MethodPatch, eventPath, map[string]any{
		"title": "Goa 2024", "location": "Panaji, Goa", "start_date": "2024-03-01", "end_date": "2024-03-05",
	})
	require.Equal(t, http.StatusOK, status, string(raw))
	var event ledgers.EventDTO
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, "Goa 2024", event.Title)
	assert.Equal(t, "Panaji, Goa", event.Location)
	assert.Equal(t, "2024-03-05", event.EndDate)

	status, _ = srv.do(t, http.MethodPatch, eventPath, map[string]any{
		"title": "Pune", "start_date": "2024-03-01", "end_date": "2024-03-01",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, raw = srv.do(t, http.MethodPost, eventPath+"/members", map[string]any{"name": "Asha"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	asha := decodeID(t, raw)
	status, raw = srv.do(t, http.MethodPost, eventPath+"/expenses", map[string]any{
		"description": "Boat", "date": "2024-03-04", "amount": "25.00",
		"payer_id": asha, "contributor_ids": []string{asha}, "category": "travel",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, raw = srv.do(t, http.MethodPost, eventPath+"/expenses", map[string]any{
		"description": "Yacht", "date": "2024-03-04", "amount": "10000000000.00",
		"payer_id": asha, "contributor_ids": []string{asha},
	})
	assert.Equal(t, http.StatusBadRequest, status, string(raw))

	status, raw = srv.do(t, http.MethodGet, "/api/v1/events/analytics", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var analytics reporting.OwnerAnalytics
	require.NoError(t, json.Unmarshal(raw, &analytics))
	assert.Equal(t, 2, analytics.EventCount)
	assert.Equal(t, 1, analytics.ExpenseCount)
	assert.Equal(t, "25", analytics.Total.String())
	require.Len(t, analytics.Years, 2)
	assert.Equal(t, 2023, analytics.Years[0].Year)
	// the boat trip falls inside the extended dates
	require.Len(t, analytics.ExpensesByDay.Rows, 1)
	assert.Equal(t, "2024-03-04", analytics.ExpensesByDay.Rows[0].Period)
}
