package server

import (
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"dailybot/internal/model"
)

const (
	defaultAnalyticsDays = 7
	maxAnalyticsDays     = 365
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "DailyBot",
		"version": serviceVersion,
		"endpoints": map[string]string{
			"webhook":     "POST /webhook",
			"set_webhook": "GET /set_webhook",
			"analytics":   "GET /analytics/user?user_id=<id>&days=<n>",
			"metrics":     "GET /metrics",
		},
	})
}

// handleWebhook decodes one platform update and hands it to the
// dispatcher. A dispatch error returns 500 so the platform redelivers;
// everything committed answers 200 even when the reply send failed.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var upd tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		s.log.Warn("webhook payload decode failed", zap.Error(err))
		s.writeError(w, http.StatusBadRequest, "malformed update payload")
		return
	}

	if err := s.dispatcher.Handle(r.Context(), upd); err != nil {
		s.log.Error("update dispatch failed",
			zap.Int("update_id", upd.UpdateID),
			zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "update not processed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSetWebhook(w http.ResponseWriter, r *http.Request) {
	if s.webhookURL == "" {
		s.writeError(w, http.StatusBadRequest, "webhook url not configured")
		return
	}

	target := s.webhookURL + "/webhook"
	if err := s.webhooks.SetWebhook(target); err != nil {
		s.log.Error("webhook registration failed", zap.String("url", target), zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "webhook registration failed")
		return
	}
	s.log.Info("webhook registered", zap.String("url", target))
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "webhook_url": target})
}

// handleUserAnalytics serves per-user daily metrics over the last N
// calendar days, today inclusive.
func (s *Server) handleUserAnalytics(w http.ResponseWriter, r *http.Request) {
	s.metrics.AnalyticsRequests.Inc()

	telegramID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || telegramID <= 0 {
		s.writeError(w, http.StatusBadRequest, "user_id must be a positive integer")
		return
	}

	days := defaultAnalyticsDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 || days > maxAnalyticsDays {
			s.writeError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
	}

	user, err := s.users.FindByTelegramID(r.Context(), telegramID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "user not found")
		return
	}

	to := s.now().UTC()
	from := to.AddDate(0, 0, -(days - 1))
	report, err := s.aggregator.Report(r.Context(), user.ID, from, to)
	if err != nil {
		s.log.Error("analytics aggregation failed",
			zap.String("user_id", user.ID),
			zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "analytics unavailable")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"user_info": userInfo(user),
		"analytics_period": map[string]any{
			"from": from.Format("2006-01-02"),
			"to":   to.Format("2006-01-02"),
			"days": days,
		},
		"totals": map[string]int{
			"messages":       report.TotalMessages,
			"commands":       report.TotalCommands,
			"astro_requests": report.AstroRequests,
			"moon_requests":  report.MoonRequests,
		},
		"most_used_commands": report.MostUsed,
		"daily_records":      dailyRecords(report.Days),
	})
}

func userInfo(user *model.User) map[string]any {
	info := map[string]any{
		"telegram_user_id":      user.TelegramUserID,
		"name":                  user.Name,
		"registration_complete": user.RegistrationComplete,
	}
	if user.RegisteredAt != nil {
		info["registered_at"] = user.RegisteredAt.UTC().Format(time.RFC3339)
	}
	return info
}

type dailyRecord struct {
	Date            string         `json:"date"`
	TotalMessages   int            `json:"total_messages"`
	TotalCommands   int            `json:"total_commands"`
	AstroRequests   int            `json:"astro_requests"`
	MoonRequests    int            `json:"moon_requests"`
	SessionMinutes  int            `json:"session_duration_min"`
	CommandsUsed    map[string]int `json:"commands_used"`
	EngagementScore float64        `json:"engagement_score"`
}

func dailyRecords(rows []model.UserAnalytics) []dailyRecord {
	out := make([]dailyRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, dailyRecord{
			Date:            row.Date.Format("2006-01-02"),
			TotalMessages:   row.TotalMessages,
			TotalCommands:   row.TotalCommands,
			AstroRequests:   row.AstroRequests,
			MoonRequests:    row.MoonRequests,
			SessionMinutes:  row.SessionDurationMin,
			CommandsUsed:    row.CommandsUsed,
			EngagementScore: row.EngagementScore,
		})
	}
	return out
}
