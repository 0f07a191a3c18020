// Package api поднимает служебный HTTP: health, метрики и read-only выборки
// для админских интеграций.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"barberbot/internal/config"
	"barberbot/internal/database"
	"barberbot/internal/metrics"
	"barberbot/internal/models"
	"barberbot/internal/schedule"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type HTTPServer struct {
	cfg    config.APIConfig
	db     *database.DB
	server *http.Server
	auth   *HTTPAuth
	logger *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, db *database.DB, metricsEnabled bool, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{cfg: cfg, db: db, logger: logger}
	srv.auth = NewHTTPAuth(cfg)

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/v1/appointments/today", srv.handleTodayAppointments)
	apiMux.HandleFunc("/api/v1/appointments", srv.handleAppointments)
	apiMux.HandleFunc("/api/v1/clients", srv.handleClients)
	apiMux.HandleFunc("/api/v1/slots", srv.handleSlots)

	// health и метрики живут вне авторизации
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	if metricsEnabled {
		metrics.Register()
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/api/v1/", srv.auth.Wrap(apiMux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.loggingMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("healthz")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleAppointments(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("appointments")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	if _, err := schedule.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected DD.MM.YYYY")
		return
	}

	appointments, err := s.db.ListAppointmentsForDate(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load appointments")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "appointments": appointments})
}

func (s *HTTPServer) handleTodayAppointments(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("appointments_today")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := time.Now().Format(models.DateLayout)
	appointments, err := s.db.ListAppointmentsForDate(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load appointments")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "appointments": appointments})
}

func (s *HTTPServer) handleClients(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("clients")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	clients, err := s.db.ListClientsByAppointmentCount(r.Context(), models.ClientsLeaderboardLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load clients")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	if _, err := schedule.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected DD.MM.YYYY")
		return
	}

	booked, err := s.db.ListBookedTimes(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load slots")
		return
	}

	slots := schedule.Resolve(booked)
	out := make([]map[string]any, 0, len(slots))
	for _, slot := range slots {
		out = append(out, map[string]any{"time": slot.Time, "booked": slot.Booked})
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "slots": out})
}

// HTTPAuth provides API-key auth and per-key rate limiting for HTTP endpoints.
type HTTPAuth struct {
	cfg      config.APIConfig
	limiters sync.Map // map[string]*rate.Limiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	return &HTTPAuth{cfg: cfg}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.Auth.Enabled {
			if err := a.checkAuth(r); err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
		}

		if err := a.checkRateLimit(r); err != nil {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *HTTPAuth) checkAuth(r *http.Request) error {
	apiKey := strings.TrimSpace(r.Header.Get(a.headerName()))
	if apiKey == "" {
		return fmt.Errorf("missing api key header")
	}

	// Сверка со всеми ключами за константное время, чтобы не светить ключ
	// через тайминг ответа.
	valid := false
	for _, client := range a.cfg.Auth.APIKeys {
		if subtle.ConstantTimeCompare([]byte(client.Key), []byte(apiKey)) == 1 {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("invalid api key")
	}
	return nil
}

func (a *HTTPAuth) headerName() string {
	header := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderAPIKey))
	if header == "" {
		header = "x-api-key"
	}
	return header
}

func (a *HTTPAuth) checkRateLimit(r *http.Request) error {
	if a.cfg.RateLimit.RPS <= 0 {
		return nil
	}

	key := a.clientKey(r)
	lim := a.getLimiter(key)
	if !lim.Allow() {
		return fmt.Errorf("rate limit exceeded")
	}
	return nil
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.headerName())); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (a *HTTPAuth) getLimiter(key string) *rate.Limiter {
	if v, ok := a.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := a.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), burst)
	actual, loaded := a.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
