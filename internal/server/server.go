package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pujana-systems/stockwatch/pkg/alerting"
	"github.com/pujana-systems/stockwatch/pkg/model"
	"github.com/pujana-systems/stockwatch/pkg/notify"
	"github.com/pujana-systems/stockwatch/pkg/storage"
)

// Server exposes the alert and preference API. Authentication is
// handled upstream; callers identify themselves with the user_id
// parameter.
type Server struct {
	store     storage.Store
	evaluator *alerting.Evaluator
	gateway   *notify.Gateway
	mux       *http.ServeMux
	logger    *slog.Logger
}

// NewServer creates an API server.
func NewServer(store storage.Store, evaluator *alerting.Evaluator, gateway *notify.Gateway, logger *slog.Logger) *Server {
	s := &Server{
		store:     store,
		evaluator: evaluator,
		gateway:   gateway,
		mux:       http.NewServeMux(),
		logger:    logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/alerts", s.handleListAlerts)
	s.mux.HandleFunc("GET /api/v1/alerts/stats", s.handleAlertStats)
	s.mux.HandleFunc("GET /api/v1/alerts/{id}", s.handleGetAlert)
	s.mux.HandleFunc("POST /api/v1/alerts/{id}/resolve", s.handleResolveAlert)
	s.mux.HandleFunc("DELETE /api/v1/alerts/{id}", s.handleDeleteAlert)
	s.mux.HandleFunc("GET /api/v1/preferences", s.handleGetPreferences)
	s.mux.HandleFunc("PUT /api/v1/preferences", s.handleUpdatePreferences)
	s.mux.HandleFunc("POST /api/v1/check", s.handleTriggerCheck)
	s.mux.HandleFunc("POST /api/v1/test-email", s.handleTestEmail)
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	showResolved := r.URL.Query().Get("show_resolved") == "true"

	alerts, err := s.store.ListAlerts(ctx, userID, showResolved)
	if err != nil {
		s.fail(w, "list alerts", err)
		return
	}
	if alerts == nil {
		alerts = []model.StockAlert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleAlertStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		s.fail(w, "load user", err)
		return
	}

	stats, err := s.store.CountAlerts(ctx, userID, user.AlertThreshold)
	if err != nil {
		s.fail(w, "count alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	alert, ok := s.ownedAlert(ctx, w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	alert, ok := s.ownedAlert(ctx, w, r)
	if !ok {
		return
	}
	if err := s.store.ResolveAlert(ctx, alert.ID); err != nil {
		s.fail(w, "resolve alert", err)
		return
	}
	alert.IsResolved = true
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	alert, ok := s.ownedAlert(ctx, w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteAlert(ctx, alert.ID); err != nil {
		s.fail(w, "delete alert", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		s.fail(w, "load user", err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesView(user))
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var prefs model.PreferencesUpdate
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := prefs.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.UpdatePreferences(ctx, userID, prefs); err != nil {
		s.fail(w, "update preferences", err)
		return
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		s.fail(w, "reload user", err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesView(user))
}

func (s *Server) handleTriggerCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	checked, acted, err := s.evaluator.CheckUser(ctx, userID)
	if err != nil {
		s.fail(w, "trigger check", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "low stock check completed",
		"items_checked": checked,
		"alerts_sent":   acted,
	})
}

func (s *Server) handleTestEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	var req struct {
		Recipient string `json:"recipient"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Recipient == "" {
		http.Error(w, "recipient is required", http.StatusBadRequest)
		return
	}

	sent := s.gateway.SendEmail(ctx, req.Recipient,
		"Stockwatch Test Email",
		"<p>This is a test email from your inventory management system.</p>")
	writeJSON(w, http.StatusOK, map[string]any{"sent": sent})
}

// ownedAlert loads the alert in the path and verifies it belongs to the
// calling user. On failure it writes the response itself.
func (s *Server) ownedAlert(ctx context.Context, w http.ResponseWriter, r *http.Request) (*model.StockAlert, bool) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return nil, false
	}
	alertID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid alert id", http.StatusBadRequest)
		return nil, false
	}

	alert, err := s.store.GetAlert(ctx, alertID)
	if err != nil {
		s.fail(w, "load alert", err)
		return nil, false
	}
	if alert.UserID != userID {
		http.Error(w, "alert not found", http.StatusNotFound)
		return nil, false
	}
	return alert, true
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, model.ErrConflict):
		http.Error(w, "already exists", http.StatusConflict)
	default:
		s.logger.Error(op, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func preferencesView(user *model.User) map[string]any {
	return map[string]any{
		"notification_enabled": user.NotificationEnabled,
		"notification_email":   user.NotificationEmail,
		"phone_number":         user.PhoneNumber,
		"alert_threshold":      user.AlertThreshold,
	}
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 30*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
