package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getCounterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.(prometheus.Metric).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func getCounterVecValue(cv *prometheus.CounterVec, labels ...string) float64 {
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestMetrics_CategoryFetchesTotal(t *testing.T) {
	before := getCounterVecValue(CategoryFetchesTotal, "new_movies", "success")
	CategoryFetchesTotal.WithLabelValues("new_movies", "success").Inc()
	after := getCounterVecValue(CategoryFetchesTotal, "new_movies", "success")

	if after != before+1 {
		t.Errorf("Expected success counter to increment by 1, got diff %.0f", after-before)
	}
}

func TestMetrics_AuthFailuresTotal(t *testing.T) {
	before := getCounterValue(AuthFailuresTotal)
	AuthFailuresTotal.Inc()
	after := getCounterValue(AuthFailuresTotal)

	if after != before+1 {
		t.Errorf("Expected auth failures to increment by 1, got diff %.0f", after-before)
	}
}

func TestMetrics_PipelineRunsTotal(t *testing.T) {
	before := getCounterVecValue(PipelineRunsTotal, "soft", "error")
	PipelineRunsTotal.WithLabelValues("soft", "error").Inc()
	after := getCounterVecValue(PipelineRunsTotal, "soft", "error")

	if after != before+1 {
		t.Errorf("Expected pipeline error counter to increment by 1, got diff %.0f", after-before)
	}
}

func TestMetrics_PipelineDuration(t *testing.T) {
	PipelineDuration.WithLabelValues("initial").Observe(0.25)

	h, err := PipelineDuration.GetMetricWithLabelValues("initial")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	var m dto.Metric
	if err := h.(prometheus.Metric).Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if m.GetHistogram().GetSampleCount() == 0 {
		t.Error("Expected at least one observation")
	}
}

func TestMetrics_CarouselCounters(t *testing.T) {
	before := getCounterVecValue(CarouselSlideChangesTotal, "manual")
	CarouselSlideChangesTotal.WithLabelValues("manual").Inc()
	if after := getCounterVecValue(CarouselSlideChangesTotal, "manual"); after != before+1 {
		t.Errorf("Expected slide changes to increment by 1, got diff %.0f", after-before)
	}

	before = getCounterVecValue(CarouselContentSwapsTotal, "true")
	CarouselContentSwapsTotal.WithLabelValues("true").Inc()
	if after := getCounterVecValue(CarouselContentSwapsTotal, "true"); after != before+1 {
		t.Errorf("Expected content swaps to increment by 1, got diff %.0f", after-before)
	}
}

func TestMetrics_NewHTTPServer(t *testing.T) {
	srv := NewHTTPServer(ServerOptions{Address: "localhost", Port: 9191})

	if srv.Addr != "localhost:9191" {
		t.Errorf("Expected address 'localhost:9191', got '%s'", srv.Addr)
	}
	if srv.Handler == nil {
		t.Error("Expected handler to be set")
	}
}

func TestMetrics_NewHTTPServer_DefaultPort(t *testing.T) {
	srv := NewHTTPServer(ServerOptions{Address: "0.0.0.0"})

	if srv.Addr != "0.0.0.0:9090" {
		t.Errorf("Expected address '0.0.0.0:9090', got '%s'", srv.Addr)
	}
}

func TestMetrics_HandlerExposesPipelineMetrics(t *testing.T) {
	PipelineRunsTotal.WithLabelValues("hard", "success").Inc()
	CarouselContentSwapsTotal.WithLabelValues("false").Inc()
	srv := NewHTTPServer(ServerOptions{Address: "localhost"})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{"pipeline_runs_total", "carousel_content_swaps_total", "promhttp_metric_handler_requests_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("Expected /metrics to expose %s", name)
		}
	}
}

func TestMetrics_Readyz(t *testing.T) {
	ready := false
	srv := NewHTTPServer(ServerOptions{Address: "localhost", Ready: func() bool { return ready }})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))
	if rec.Code != 503 {
		t.Errorf("Expected 503 before content loads, got %d", rec.Code)
	}

	ready = true
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))
	if rec.Code != 200 {
		t.Errorf("Expected 200 once content loads, got %d", rec.Code)
	}
}

func TestMetrics_Readyz_DefaultsReady(t *testing.T) {
	srv := NewHTTPServer(ServerOptions{Address: "localhost"})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))
	if rec.Code != 200 {
		t.Errorf("Expected 200 without a readiness source, got %d", rec.Code)
	}
}
