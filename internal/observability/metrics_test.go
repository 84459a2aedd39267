package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestNewPipelineCollectorRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewPipelineCollector(reg)
	if err != nil {
		t.Fatalf("NewPipelineCollector error: %v", err)
	}

	c.SetPlanCounts(24, 48, 552, 0, 1.0)

	if got := testutil.ToFloat64(c.Satellites); got != 24 {
		t.Fatalf("satellites gauge = %v, want 24", got)
	}
	if got := testutil.ToFloat64(c.IslLinks); got != 48 {
		t.Fatalf("links gauge = %v, want 48", got)
	}
	if got := testutil.ToFloat64(c.RoutesInstalled); got != 552 {
		t.Fatalf("installed gauge = %v, want 552", got)
	}
	if got := testutil.ToFloat64(c.RoutesSkipped); got != 0 {
		t.Fatalf("skipped gauge = %v, want 0", got)
	}
	if got := testutil.ToFloat64(c.MeshConnectivity); got != 1.0 {
		t.Fatalf("connectivity gauge = %v, want 1.0", got)
	}
}

func TestNewPipelineCollectorIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPipelineCollector(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPipelineCollector(reg); err != nil {
		t.Fatalf("second registration against same registry: %v", err)
	}
}

func TestObserveStage(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewPipelineCollector(reg)
	if err != nil {
		t.Fatalf("NewPipelineCollector error: %v", err)
	}

	c.ObserveStage("topology", 2*time.Millisecond)
	c.ObserveStage("topology", 3*time.Millisecond)
	c.ObserveStage("routing", 10*time.Millisecond)

	if got := histogramSampleCount(t, reg, "isl_pipeline_stage_duration_seconds", "topology"); got != 2 {
		t.Fatalf("topology sample count = %d, want 2", got)
	}
	if got := histogramSampleCount(t, reg, "isl_pipeline_stage_duration_seconds", "routing"); got != 1 {
		t.Fatalf("routing sample count = %d, want 1", got)
	}
}

func TestObserveStageNilCollector(t *testing.T) {
	var c *PipelineCollector
	c.ObserveStage("topology", time.Millisecond)
	c.SetPlanCounts(1, 2, 3, 4, 0.5)
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewPipelineCollector(reg)
	if err != nil {
		t.Fatalf("NewPipelineCollector error: %v", err)
	}
	c.SetPlanCounts(24, 48, 552, 0, 1.0)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "isl_constellation_satellites 24") {
		t.Fatalf("exposition missing satellites gauge:\n%s", body)
	}
}

func histogramSampleCount(t *testing.T, g prometheus.Gatherer, name, stage string) uint64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var family *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == name {
			family = mf
			break
		}
	}
	if family == nil {
		return 0
	}
	for _, m := range family.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "stage" && lp.GetValue() == stage {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}
