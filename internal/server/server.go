// Package server exposes the HTTP surface: the webhook intake, the
// analytics read API, health and metrics.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dailybot/internal/analytics"
	"dailybot/internal/metrics"
	"dailybot/internal/model"
)

const serviceVersion = "1.0.0"

// UpdateHandler consumes one inbound platform update.
type UpdateHandler interface {
	Handle(ctx context.Context, upd tgbotapi.Update) error
}

// UserFinder resolves profiles for the analytics read API.
type UserFinder interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

// WebhookSetter registers the webhook URL with the platform.
type WebhookSetter interface {
	SetWebhook(url string) error
}

// Server wires the routes over the injected dependencies.
type Server struct {
	dispatcher UpdateHandler
	users      UserFinder
	aggregator *analytics.Aggregator
	webhooks   WebhookSetter
	webhookURL string
	metrics    *metrics.Set
	gatherer   prometheus.Gatherer
	log        *zap.Logger
	now        func() time.Time
}

func New(dispatcher UpdateHandler, users UserFinder, aggregator *analytics.Aggregator, webhooks WebhookSetter, webhookURL string, m *metrics.Set, gatherer prometheus.Gatherer, log *zap.Logger) *Server {
	return &Server{
		dispatcher: dispatcher,
		users:      users,
		aggregator: aggregator,
		webhooks:   webhooks,
		webhookURL: webhookURL,
		metrics:    m,
		gatherer:   gatherer,
		log:        log,
		now:        time.Now,
	}
}

// Router builds the chi mux with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHealth)
	r.Post("/webhook", s.handleWebhook)
	r.Get("/set_webhook", s.handleSetWebhook)
	r.Post("/set_webhook", s.handleSetWebhook)
	r.Get("/analytics/user", s.handleUserAnalytics)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Warn("response encode failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"status": "error", "error": msg})
}
