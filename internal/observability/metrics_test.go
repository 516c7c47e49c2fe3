package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoops(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.ObserveSourceTask("prayer_requests", "ok", time.Millisecond)
	m.ObserveAnalysis("profile", "failed", time.Millisecond)
	m.ObservePipeline("family_new", "ok", time.Millisecond, 0.5)
	m.ObserveLLMRequest("gpt", "ok", time.Millisecond, 10, 20)
	m.IncIntake("processed")
	m.IncNotePersisted("local", "ok")

	var buf bytes.Buffer
	require.NoError(t, m.WritePrometheus(&buf))
	assert.Empty(t, buf.String())

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWritePrometheus(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveSourceTask("public_teams", "failed", 20*time.Millisecond)
	m.ObserveSourceTask("public_teams", "failed", 20*time.Millisecond)
	m.ObservePipeline("individual_new", "ok", time.Second, 0.65)
	m.ObserveLLMRequest("gpt-4o-mini", "ok", 300*time.Millisecond, 120, 40)
	m.IncIntake(`bad"json`)

	assert.Equal(t, 2.0, m.sourceTasks.Value("public_teams", "failed"))
	assert.Equal(t, 40.0, m.llmTokens.Value("gpt-4o-mini", "output"))

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()

	for _, want := range []string{
		"# TYPE fu_source_tasks_total counter",
		`fu_source_tasks_total{task="public_teams",status="failed"} 2.000000`,
		`fu_pipeline_runs_total{scenario="individual_new",status="ok"} 1.000000`,
		`fu_note_confidence_bucket{scenario="individual_new",le="0.7"} 1`,
		`fu_intake_messages_total{outcome="bad\"json"} 1.000000`,
	} {
		assert.True(t, strings.Contains(out, want), "missing %q in\n%s", want, out)
	}
}

func TestRejectedPipelineSkipsConfidence(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObservePipeline("invalid", "rejected", time.Millisecond, 0)

	var buf bytes.Buffer
	require.NoError(t, m.WritePrometheus(&buf))
	assert.NotContains(t, buf.String(), `fu_note_confidence_count{scenario="invalid"}`)
}

func TestLabelString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", labelString(nil, nil))
	assert.Equal(t, `{a="x",b="unknown"}`, labelString([]string{"a", "b"}, []string{"x"}))
	assert.Equal(t, `{a="x",le="0.5"}`, withLe(`{a="x"}`, "0.5"))
	assert.Equal(t, `{le="+Inf"}`, withLe("", "+Inf"))
}
