package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetricsExposition(t *testing.T) {
	m := New()
	m.ObserveAPI("GET", "/api/quizzes", "200", 30*time.Millisecond)
	m.ObserveAPI("GET", "/api/quizzes", "200", 70*time.Millisecond)
	m.ObserveAPI("POST", "/api/quizzes/answer", "400", 5*time.Millisecond)
	m.IncQuizAnswer("テキスト", true)
	m.IncQuizAnswer("テキスト", false)
	m.IncQuizAnswer("テキスト", false)
	m.ObserveTTS("OK", 800*time.Millisecond)
	m.IncStoryGenerated("N4", "ok")
	m.ApiInflightInc()

	var sb strings.Builder
	require.NoError(t, m.WritePrometheus(&sb))
	out := sb.String()

	require.Contains(t, out, `hanashi_api_requests_total{method="GET",route="/api/quizzes",status="200"} 2.000000`)
	require.Contains(t, out, `hanashi_api_requests_total{method="POST",route="/api/quizzes/answer",status="400"} 1.000000`)
	require.Contains(t, out, `hanashi_api_request_duration_seconds_count{method="GET",route="/api/quizzes",status="200"} 2`)
	require.Contains(t, out, `hanashi_api_request_duration_seconds_bucket{method="GET",route="/api/quizzes",status="200",le="+Inf"} 2`)
	require.Contains(t, out, `hanashi_quiz_answers_total{method="テキスト",result="correct"} 1.000000`)
	require.Contains(t, out, `hanashi_quiz_answers_total{method="テキスト",result="incorrect"} 2.000000`)
	// Status labels are normalized to lower case.
	require.Contains(t, out, `hanashi_tts_requests_total{status="ok"} 1.000000`)
	require.Contains(t, out, `hanashi_stories_generated_total{level="N4",status="ok"} 1.000000`)
	require.Contains(t, out, "hanashi_api_inflight_requests 1.000000")

	m.ApiInflightDec()
	sb.Reset()
	require.NoError(t, m.WritePrometheus(&sb))
	require.Contains(t, sb.String(), "hanashi_api_inflight_requests 0.000000")
}

func TestMetricsLabelFallbacks(t *testing.T) {
	m := New()
	m.ObserveAPI("", "", "", time.Millisecond)
	m.IncQuizAnswer("", true)
	m.IncStoryGenerated("", "")

	var sb strings.Builder
	require.NoError(t, m.WritePrometheus(&sb))
	out := sb.String()

	require.Contains(t, out, `method="UNKNOWN",route="unknown",status="0"`)
	require.Contains(t, out, `hanashi_quiz_answers_total{method="unknown",result="correct"} 1.000000`)
	require.Contains(t, out, `hanashi_stories_generated_total{level="unknown",status="unknown"} 1.000000`)
}

func TestNilMetricsIsNoOp(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Second)
	m.IncQuizAnswer("テキスト", true)
	m.ObserveTTS("ok", time.Second)
	m.IncStoryGenerated("N5", "ok")
	m.ApiInflightInc()
	m.ApiInflightDec()

	var sb strings.Builder
	require.NoError(t, m.WritePrometheus(&sb))
	require.Empty(t, sb.String())

	w := httptest.NewRecorder()
	m.WriteHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWriteHTTP(t *testing.T) {
	m := New()
	m.ObserveAPI("GET", "/api/health", "200", time.Millisecond)

	w := httptest.NewRecorder()
	m.WriteHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/plain; version=0.0.4", w.Header().Get("Content-Type"))
	require.Contains(t, w.Body.String(), "hanashi_api_requests_total")
}
