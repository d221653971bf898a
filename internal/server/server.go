package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/lcastiglione/go-schedule/pkg/schedule"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// TodayResponse is the body served on config.RouteToday.
type TodayResponse struct {
	Now         string `json:"now"`
	Zone        string `json:"zone"`
	BusinessDay bool   `json:"business_day"`
	Holiday     string `json:"holiday,omitempty"`
}

// CalendarServer serves the business calendar feed, the current date and
// Prometheus metrics.
type CalendarServer struct {
	// Feed, calendar and provider are read on every request and replaced only
	// on sync or settings reload, so they are swapped atomically.
	cache    atomic.Pointer[cacheItem]
	calendar atomic.Pointer[schedule.Calendar]
	provider atomic.Pointer[schedule.Provider]

	Port string

	registry *prometheus.Registry
	requests *prometheus.CounterVec
	syncs    *prometheus.CounterVec
	holidays prometheus.Gauge
}

// NewCalendarServer creates a server reporting time through provider.
func NewCalendarServer(port string, provider *schedule.Provider) *CalendarServer {
	s := &CalendarServer{
		Port:     port,
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricRequests,
			Help:      config.MetricRequestsHelp,
		}, []string{config.MetricLabelCode}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricSyncs,
			Help:      config.MetricSyncsHelp,
		}, []string{config.MetricLabelResult}),
		holidays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricHolidays,
			Help:      config.MetricHolidaysHelp,
		}),
	}
	s.registry.MustRegister(s.requests, s.syncs, s.holidays)
	s.calendar.Store(schedule.NewCalendar())
	if provider != nil {
		s.provider.Store(provider)
	}
	return s
}

// Handler returns the routes served by the server.
func (s *CalendarServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleCalendarRequest)
	mux.HandleFunc(config.RouteToday, s.handleTodayRequest)
	mux.Handle(config.RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served feed.
func (s *CalendarServer) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	s.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// SetCalendar replaces the calendar used by the today endpoint. holidays is
// exported as a gauge.
func (s *CalendarServer) SetCalendar(cal *schedule.Calendar, holidays int) {
	if cal == nil {
		cal = schedule.NewCalendar()
	}
	s.calendar.Store(cal)
	s.holidays.Set(float64(holidays))
}

// SetProvider replaces the clock source, e.g. after a time zone change.
func (s *CalendarServer) SetProvider(p *schedule.Provider) {
	s.provider.Store(p)
}

// RecordSync counts a synchronization outcome.
func (s *CalendarServer) RecordSync(err error) {
	result := config.ResultOK
	if err != nil {
		result = config.ResultError
	}
	s.syncs.WithLabelValues(result).Inc()
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
	defer func() {
		s.requests.WithLabelValues(strconv.Itoa(rec.code)).Inc()
	}()
	w = rec

	if !allowMethod(w, r) {
		return
	}

	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// handleTodayRequest reports the current instant and whether it is a business day.
func (s *CalendarServer) handleTodayRequest(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r) {
		return
	}

	p := s.provider.Load()
	if p == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	current, err := p.Now()
	if err != nil {
		slog.Error(config.ErrClockUnavailable,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}

	cal := s.calendar.Load()
	holiday, _ := cal.HolidayName(current)
	resp := TodayResponse{
		Now:         current.Format(time.RFC3339),
		Zone:        p.Location().String(),
		BusinessDay: cal.IsBusinessDay(current),
		Holiday:     holiday,
	}

	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	if r.Method == http.MethodHead {
		return
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set(config.HeaderAllow, config.AllowedMethods)
	http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
	return false
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}
