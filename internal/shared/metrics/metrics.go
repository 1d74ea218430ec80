package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// Pipeline steps reported in scan_step_failures_total.
const (
	StepUpload  = "upload"
	StepAnalyze = "analyze"
	StepParse   = "parse"
	StepPersist = "persist"
)

var (
	scanStartedTotal atomic.Uint64
	scanSkippedTotal atomic.Uint64
	scanOutcomes     = newCounterVec("outcome")
	scanStepFailures = newCounterVec("step")

	scanDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

func IncScanStarted() {
	scanStartedTotal.Add(1)
}

func IncScanSkipped() {
	scanSkippedTotal.Add(1)
}

// IncScanOutcome counts a scan that produced an analysis.
func IncScanOutcome(outcome string) {
	scanOutcomes.Inc(outcome)
}

// IncStepFailure counts a failed pipeline step.
func IncStepFailure(step string) {
	scanStepFailures.Inc(step)
}

// ObserveScanDurationMs records a pipeline duration in milliseconds.
func ObserveScanDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	scanDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "scan_started_total", "Total scans started", scanStartedTotal.Load())
	writeCounter(&buf, "scan_skipped_total", "Scans skipped for missing image or identity", scanSkippedTotal.Load())
	writeCounterVec(&buf, "scan_outcome_total", "Scans that produced an analysis, by outcome", scanOutcomes)
	writeCounterVec(&buf, "scan_step_failures_total", "Pipeline step failures, by step", scanStepFailures)
	writeHistogram(&buf, "scan_duration_ms", "Pipeline duration in milliseconds", scanDuration.Snapshot())
	return buf.String()
}

type counterVec struct {
	label  string
	mu     sync.Mutex
	values map[string]uint64
}

func newCounterVec(label string) *counterVec {
	return &counterVec{label: label, values: make(map[string]uint64)}
}

func (v *counterVec) Inc(value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values[value]++
}

func (v *counterVec) snapshot() ([]string, map[string]uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]uint64, len(v.values))
	keys := make([]string, 0, len(v.values))
	for k, n := range v.values {
		out[k] = n
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in the first bucket whose bound it fits; counts are
// accumulated at render time.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeCounterVec(buf *bytes.Buffer, name, help string, v *counterVec) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys, values := v.snapshot()
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, v.label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
