package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/hanashi-app/backend/internal/logger"
)

// Metrics is an explicit registry handed down through constructors. A nil
// *Metrics is valid and makes every method a no-op, so callers never guard.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	quizAnswers      *CounterVec
	ttsRequests      *CounterVec
	ttsLatency       *HistogramVec
	storiesGenerated *CounterVec

	pgStats *GaugeVec
}

func New() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("hanashi_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"hanashi_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		),
		apiInflight: NewGauge("hanashi_api_inflight_requests", "In-flight API requests."),
		quizAnswers: NewCounterVec("hanashi_quiz_answers_total", "Quiz answers by method/result.", []string{"method", "result"}),
		ttsRequests: NewCounterVec("hanashi_tts_requests_total", "Speech synthesis requests by status.", []string{"status"}),
		ttsLatency: NewHistogramVec(
			"hanashi_tts_request_duration_seconds",
			"Speech synthesis latency in seconds by status.",
			[]string{"status"},
			[]float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		storiesGenerated: NewCounterVec("hanashi_stories_generated_total", "Generated stories by level/status.", []string{"level", "status"}),
		pgStats:          NewGaugeVec("hanashi_postgres_stats", "Postgres connection pool stats.", []string{"metric"}),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	if err := m.apiRequests.WritePrometheus(w); err != nil {
		return err
	}
	if err := m.apiLatency.WritePrometheus(w); err != nil {
		return err
	}
	if err := m.apiInflight.WritePrometheus(w); err != nil {
		return err
	}
	if err := m.quizAnswers.WritePrometheus(w); err != nil {
		return err
	}
	if err := m.ttsRequests.WritePrometheus(w); err != nil {
		return err
	}
	if err := m.ttsLatency.WritePrometheus(w); err != nil {
		return err
	}
	if err := m.storiesGenerated.WritePrometheus(w); err != nil {
		return err
	}
	return m.pgStats.WritePrometheus(w)
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) IncQuizAnswer(method string, isCorrect bool) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	result := "incorrect"
	if isCorrect {
		result = "correct"
	}
	m.quizAnswers.Inc(method, result)
}

func (m *Metrics) ObserveTTS(status string, dur time.Duration) {
	if m == nil {
		return
	}
	status = strings.TrimSpace(strings.ToLower(status))
	if status == "" {
		status = "unknown"
	}
	m.ttsRequests.Inc(status)
	m.ttsLatency.Observe(dur.Seconds(), status)
}

func (m *Metrics) IncStoryGenerated(level, status string) {
	if m == nil {
		return
	}
	if level == "" {
		level = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	m.storiesGenerated.Inc(level, status)
}

// StartPostgresCollector samples sql.DB pool stats until ctx is done.
func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: postgres collector disabled", "error", err)
		}
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := sqlDB.Stats()
				m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
				m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_seconds")
			}
		}
	}()
}
