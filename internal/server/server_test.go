package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pujana-systems/stockwatch/internal/server"
	"github.com/pujana-systems/stockwatch/pkg/alerting"
	"github.com/pujana-systems/stockwatch/pkg/model"
	"github.com/pujana-systems/stockwatch/pkg/notify"
	"github.com/pujana-systems/stockwatch/pkg/storage"
)

type testEnv struct {
	store  *storage.SQLite
	server *httptest.Server
	user   *model.User
	item   *model.Item
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := storage.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gateway := notify.NewGateway(nil, logger)
	evaluator := alerting.NewEvaluator(db, gateway, logger)

	srv := server.NewServer(db, evaluator, gateway, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ctx := context.Background()
	user := &model.User{
		Email:               "owner@example.com",
		NotificationEnabled: true,
		NotificationEmail:   "owner@example.com",
		AlertThreshold:      model.DefaultAlertThreshold,
	}
	require.NoError(t, db.CreateUser(ctx, user))

	item := &model.Item{Name: "Breaker", ModelNumber: "BRK-16A", Quantity: 2}
	require.NoError(t, db.CreateItem(ctx, item))

	return &testEnv{store: db, server: ts, user: user, item: item}
}

func (e *testEnv) createAlert(t *testing.T, resolved bool) *model.StockAlert {
	t.Helper()
	alert := &model.StockAlert{
		ItemID:          e.item.ID,
		UserID:          e.user.ID,
		QuantityAtAlert: 2,
		Channel:         model.ChannelBoth,
		IsResolved:      resolved,
	}
	require.NoError(t, e.store.CreateAlert(context.Background(), alert))
	return alert
}

// url builds a request URL for the default user, appending user_id to
// whatever query parameters the path already carries.
func (e *testEnv) url(path string) string {
	sep := "?"
	if strings.ContainsRune(path, '?') {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%suser_id=%d", e.server.URL, path, sep, e.user.ID)
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestServer_Health(t *testing.T) {
	e := newTestEnv(t)

	resp, err := http.Get(e.server.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeJSON(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_ListAlerts(t *testing.T) {
	e := newTestEnv(t)
	open := e.createAlert(t, false)
	e.createAlert(t, true)

	resp, err := http.Get(e.url("/api/v1/alerts"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var alerts []model.StockAlert
	decodeJSON(t, resp, &alerts)
	require.Len(t, alerts, 1)
	assert.Equal(t, open.ID, alerts[0].ID)

	resp, err = http.Get(e.url("/api/v1/alerts?show_resolved=true"))
	require.NoError(t, err)
	decodeJSON(t, resp, &alerts)
	assert.Len(t, alerts, 2)
}

func TestServer_ListAlerts_MissingUser(t *testing.T) {
	e := newTestEnv(t)

	resp, err := http.Get(e.server.URL + "/api/v1/alerts")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_AlertStats(t *testing.T) {
	e := newTestEnv(t)
	e.createAlert(t, false)
	e.createAlert(t, true)

	resp, err := http.Get(e.url("/api/v1/alerts/stats"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats model.AlertStats
	decodeJSON(t, resp, &stats)
	assert.Equal(t, int64(2), stats.TotalAlerts)
	assert.Equal(t, int64(1), stats.ActiveAlerts)
	assert.Equal(t, int64(1), stats.ResolvedAlerts)
	assert.Equal(t, int64(1), stats.LowStockItems) // the 2-unit breaker
}

func TestServer_GetAlert(t *testing.T) {
	e := newTestEnv(t)
	alert := e.createAlert(t, false)

	resp, err := http.Get(e.url(fmt.Sprintf("/api/v1/alerts/%d", alert.ID)))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got model.StockAlert
	decodeJSON(t, resp, &got)
	assert.Equal(t, alert.ID, got.ID)
}

func TestServer_GetAlert_WrongUser(t *testing.T) {
	e := newTestEnv(t)
	alert := e.createAlert(t, false)

	other := &model.User{Email: "other@example.com"}
	require.NoError(t, e.store.CreateUser(context.Background(), other))

	url := fmt.Sprintf("%s/api/v1/alerts/%d?user_id=%d", e.server.URL, alert.ID, other.ID)
	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ResolveAlert(t *testing.T) {
	e := newTestEnv(t)
	alert := e.createAlert(t, false)

	resp, err := http.Post(e.url(fmt.Sprintf("/api/v1/alerts/%d/resolve", alert.ID)), "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got model.StockAlert
	decodeJSON(t, resp, &got)
	assert.True(t, got.IsResolved)

	stored, err := e.store.GetAlert(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsResolved)
}

func TestServer_DeleteAlert(t *testing.T) {
	e := newTestEnv(t)
	alert := e.createAlert(t, false)

	req, err := http.NewRequest(http.MethodDelete, e.url(fmt.Sprintf("/api/v1/alerts/%d", alert.ID)), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, err = e.store.GetAlert(context.Background(), alert.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestServer_GetAlert_NotFound(t *testing.T) {
	e := newTestEnv(t)

	resp, err := http.Get(e.url("/api/v1/alerts/9999"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Preferences(t *testing.T) {
	e := newTestEnv(t)

	resp, err := http.Get(e.url("/api/v1/preferences"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var prefs map[string]any
	decodeJSON(t, resp, &prefs)
	assert.Equal(t, true, prefs["notification_enabled"])
	assert.Equal(t, float64(model.DefaultAlertThreshold), prefs["alert_threshold"])
}

func TestServer_UpdatePreferences(t *testing.T) {
	e := newTestEnv(t)

	body, _ := json.Marshal(map[string]any{
		"alert_threshold": 12,
		"phone_number":    "+15550001111",
	})
	req, err := http.NewRequest(http.MethodPut, e.url("/api/v1/preferences"), bytes.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var prefs map[string]any
	decodeJSON(t, resp, &prefs)
	assert.Equal(t, float64(12), prefs["alert_threshold"])
	assert.Equal(t, "+15550001111", prefs["phone_number"])

	user, err := e.store.GetUser(context.Background(), e.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, user.AlertThreshold)
	// Untouched fields survive partial updates.
	assert.True(t, user.NotificationEnabled)
}

func TestServer_UpdatePreferences_Invalid(t *testing.T) {
	e := newTestEnv(t)

	body, _ := json.Marshal(map[string]any{"alert_threshold": -3})
	req, err := http.NewRequest(http.MethodPut, e.url("/api/v1/preferences"), bytes.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_TriggerCheck(t *testing.T) {
	e := newTestEnv(t)

	resp, err := http.Post(e.url("/api/v1/check"), "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]any
	decodeJSON(t, resp, &result)
	assert.Equal(t, float64(1), result["items_checked"]) // the 2-unit breaker
	assert.Equal(t, float64(1), result["alerts_sent"])

	// The check opened an alert for the low item.
	_, err = e.store.FindUnresolvedAlert(context.Background(), e.item.ID, e.user.ID)
	assert.NoError(t, err)
}

func TestServer_TestEmail_NoRecipient(t *testing.T) {
	e := newTestEnv(t)

	resp, err := http.Post(e.server.URL+"/api/v1/test-email", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_TestEmail_NoChannel(t *testing.T) {
	e := newTestEnv(t)

	body := []byte(`{"recipient": "dest@example.com"}`)
	resp, err := http.Post(e.server.URL+"/api/v1/test-email", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]any
	decodeJSON(t, resp, &result)
	assert.Equal(t, false, result["sent"]) // no email channel configured
}
