package observability

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/envutil"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	sourceTasks   *CounterVec
	sourceLatency *HistogramVec
	analyses      *CounterVec
	analysisTime  *HistogramVec
	pipelineRuns  *CounterVec
	pipelineTime  *HistogramVec
	confidence    *HistogramVec

	llmRequests *CounterVec
	llmLatency  *HistogramVec
	llmTokens   *CounterVec

	intakeMessages *CounterVec
	notesPersisted *CounterVec

	pgStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

// New builds an unregistered metrics set. Init is the process-wide entry point.
func New() *Metrics {
	latency := []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}
	return &Metrics{
		apiRequests: NewCounterVec("fu_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("fu_api_request_duration_seconds", "API request latency in seconds.", []string{"method", "route", "status"}, latency),
		apiInflight: NewGauge("fu_api_inflight_requests", "In-flight API requests."),

		sourceTasks:   NewCounterVec("fu_source_tasks_total", "Aggregation fetch tasks by task/status.", []string{"task", "status"}),
		sourceLatency: NewHistogramVec("fu_source_task_duration_seconds", "Aggregation fetch task latency.", []string{"task"}, latency),
		analyses:      NewCounterVec("fu_analyses_total", "Synthesis analysis branches by branch/status.", []string{"branch", "status"}),
		analysisTime:  NewHistogramVec("fu_analysis_duration_seconds", "Synthesis analysis branch latency.", []string{"branch"}, latency),
		pipelineRuns:  NewCounterVec("fu_pipeline_runs_total", "Pipeline runs by scenario/status.", []string{"scenario", "status"}),
		pipelineTime:  NewHistogramVec("fu_pipeline_duration_seconds", "End to end pipeline latency.", []string{"scenario"}, latency),
		confidence: NewHistogramVec(
			"fu_note_confidence",
			"Confidence score of generated notes.",
			[]string{"scenario"},
			[]float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95},
		),

		llmRequests: NewCounterVec("fu_llm_requests_total", "LLM requests by model/status.", []string{"model", "status"}),
		llmLatency:  NewHistogramVec("fu_llm_request_duration_seconds", "LLM request latency.", []string{"model"}, latency),
		llmTokens:   NewCounterVec("fu_llm_tokens_total", "LLM tokens by model/kind.", []string{"model", "kind"}),

		intakeMessages: NewCounterVec("fu_intake_messages_total", "Intake stream messages by outcome.", []string{"outcome"}),
		notesPersisted: NewCounterVec("fu_notes_persisted_total", "Note persistence attempts by target/status.", []string{"target", "status"}),

		pgStats:   NewGaugeVec("fu_postgres_pool", "Postgres pool stats.", []string{"stat"}),
		redisUp:   NewGauge("fu_redis_up", "Redis ping status."),
		redisPing: NewGauge("fu_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.sourceTasks, m.sourceLatency, m.analyses, m.analysisTime,
		m.pipelineRuns, m.pipelineTime, m.confidence,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.intakeMessages, m.notesPersisted,
		m.pgStats, m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
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

// ObserveSourceTask records one aggregation fetch. status is "ok" or "failed".
func (m *Metrics) ObserveSourceTask(task, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.sourceTasks.Inc(task, status)
	m.sourceLatency.Observe(dur.Seconds(), task)
}

func (m *Metrics) ObserveAnalysis(branch, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.analyses.Inc(branch, status)
	m.analysisTime.Observe(dur.Seconds(), branch)
}

func (m *Metrics) ObservePipeline(scenario, status string, dur time.Duration, confidence float64) {
	if m == nil {
		return
	}
	m.pipelineRuns.Inc(scenario, status)
	m.pipelineTime.Observe(dur.Seconds(), scenario)
	if confidence > 0 {
		m.confidence.Observe(confidence, scenario)
	}
}

func (m *Metrics) ObserveLLMRequest(model, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = strings.TrimSpace(model)
	m.llmRequests.Inc(model, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), model)
	}
	if inputTokens > 0 {
		m.llmTokens.Add(float64(inputTokens), model, "input")
	}
	if outputTokens > 0 {
		m.llmTokens.Add(float64(outputTokens), model, "output")
	}
}

func (m *Metrics) IncIntake(outcome string) {
	if m == nil {
		return
	}
	m.intakeMessages.Inc(outcome)
}

func (m *Metrics) IncNotePersisted(target, status string) {
	if m == nil {
		return
	}
	m.notesPersisted.Inc(target, status)
}

func scrapeInterval() time.Duration {
	d := envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 15)
	if d <= 0 {
		return 15 * time.Second
	}
	return d
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: postgres stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
				m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	interval := scrapeInterval()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = rdb.Close()
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
