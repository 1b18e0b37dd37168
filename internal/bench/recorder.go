// Package bench drives repeated calls through a built client and summarizes
// their latency with an HDR histogram.
package bench

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// histogram range in microseconds: 1us to 1 hour, 3 significant figures
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 3

	maxErrorKinds = 10
)

// Recorder aggregates call outcomes.
//
// Recorder is safe for concurrent use. Counters are atomic and the
// histogram is guarded by a mutex since RecordValue is not thread safe.
type Recorder struct {
	latencyHist   *hdrhistogram.Histogram
	latencyHistMu sync.Mutex

	total     atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64

	mu          sync.Mutex
	statusCodes map[int]int64
	errors      map[string]int64
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		latencyHist: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
		statusCodes: make(map[int]int64),
		errors:      make(map[string]int64),
	}
}

// Record adds one call. A call fails when err is set or status is 400 or
// above; status 0 means the gateway reported none.
func (r *Recorder) Record(duration time.Duration, status int, err error) {
	latencyMicros := duration.Microseconds()
	if latencyMicros < histogramMin {
		latencyMicros = histogramMin
	}
	if latencyMicros > histogramMax {
		latencyMicros = histogramMax
	}

	r.latencyHistMu.Lock()
	// RecordValue only fails outside [histogramMin, histogramMax], which the
	// clamping above rules out.
	_ = r.latencyHist.RecordValue(latencyMicros)
	r.latencyHistMu.Unlock()

	r.total.Add(1)
	if err != nil || status >= 400 {
		r.failed.Add(1)
	} else {
		r.succeeded.Add(1)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if status > 0 {
		r.statusCodes[status]++
	}
	if err != nil {
		msg := err.Error()
		if _, seen := r.errors[msg]; seen || len(r.errors) < maxErrorKinds {
			r.errors[msg]++
		}
	}
}

// Report summarizes everything recorded so far over elapsed wall time.
func (r *Recorder) Report(elapsed time.Duration) *Report {
	r.latencyHistMu.Lock()
	latency := LatencyStats{
		Min:    micros(r.latencyHist.Min()),
		Max:    micros(r.latencyHist.Max()),
		Mean:   micros(int64(r.latencyHist.Mean())),
		StdDev: micros(int64(r.latencyHist.StdDev())),
		P50:    micros(r.latencyHist.ValueAtQuantile(50)),
		P90:    micros(r.latencyHist.ValueAtQuantile(90)),
		P95:    micros(r.latencyHist.ValueAtQuantile(95)),
		P99:    micros(r.latencyHist.ValueAtQuantile(99)),
	}
	r.latencyHistMu.Unlock()

	report := &Report{
		Requests:  r.total.Load(),
		Succeeded: r.succeeded.Load(),
		Failed:    r.failed.Load(),
		ElapsedMs: millis(elapsed),
		Latency:   latency,
	}
	if elapsed > 0 {
		report.Throughput = float64(report.Requests) / elapsed.Seconds()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statusCodes) > 0 {
		report.StatusCodes = make(map[int]int64, len(r.statusCodes))
		for code, count := range r.statusCodes {
			report.StatusCodes[code] = count
		}
	}
	if len(r.errors) > 0 {
		report.Errors = make(map[string]int64, len(r.errors))
		for msg, count := range r.errors {
			report.Errors[msg] = count
		}
	}
	return report
}

// LatencyStats holds latency figures in milliseconds.
type LatencyStats struct {
	Min    float64 `json:"minMs" yaml:"minMs"`
	Max    float64 `json:"maxMs" yaml:"maxMs"`
	Mean   float64 `json:"meanMs" yaml:"meanMs"`
	StdDev float64 `json:"stdDevMs" yaml:"stdDevMs"`
	P50    float64 `json:"p50Ms" yaml:"p50Ms"`
	P90    float64 `json:"p90Ms" yaml:"p90Ms"`
	P95    float64 `json:"p95Ms" yaml:"p95Ms"`
	P99    float64 `json:"p99Ms" yaml:"p99Ms"`
}

// Report is the outcome of a benchmark run.
type Report struct {
	Target      string           `json:"target,omitempty" yaml:"target,omitempty"`
	Requests    int64            `json:"requests" yaml:"requests"`
	Succeeded   int64            `json:"succeeded" yaml:"succeeded"`
	Failed      int64            `json:"failed" yaml:"failed"`
	ElapsedMs   float64          `json:"elapsedMs" yaml:"elapsedMs"`
	Throughput  float64          `json:"throughput" yaml:"throughput"`
	Latency     LatencyStats     `json:"latency" yaml:"latency"`
	StatusCodes map[int]int64    `json:"statusCodes,omitempty" yaml:"statusCodes,omitempty"`
	Errors      map[string]int64 `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// ErrorRate is the failed share of all requests.
func (r *Report) ErrorRate() float64 {
	if r.Requests == 0 {
		return 0
	}
	return float64(r.Failed) / float64(r.Requests)
}

// String renders the report for a terminal.
func (r *Report) String() string {
	var sb strings.Builder

	if r.Target != "" {
		sb.WriteString(fmt.Sprintf("Benchmark: %s\n", r.Target))
	}
	sb.WriteString(fmt.Sprintf("  Requests:   %d (%d ok, %d failed, %.2f%% errors)\n",
		r.Requests, r.Succeeded, r.Failed, r.ErrorRate()*100))
	sb.WriteString(fmt.Sprintf("  Elapsed:    %.2fms\n", r.ElapsedMs))
	sb.WriteString(fmt.Sprintf("  Throughput: %.2f req/s\n", r.Throughput))
	sb.WriteString("  Latency:\n")
	sb.WriteString(fmt.Sprintf("    min %.2fms  mean %.2fms  stddev %.2fms  max %.2fms\n",
		r.Latency.Min, r.Latency.Mean, r.Latency.StdDev, r.Latency.Max))
	sb.WriteString(fmt.Sprintf("    p50 %.2fms  p90 %.2fms  p95 %.2fms  p99 %.2fms\n",
		r.Latency.P50, r.Latency.P90, r.Latency.P95, r.Latency.P99))

	if len(r.StatusCodes) > 0 {
		codes := make([]int, 0, len(r.StatusCodes))
		for code := range r.StatusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		sb.WriteString("  Status codes:\n")
		for _, code := range codes {
			sb.WriteString(fmt.Sprintf("    %d: %d\n", code, r.StatusCodes[code]))
		}
	}

	if len(r.Errors) > 0 {
		messages := make([]string, 0, len(r.Errors))
		for msg := range r.Errors {
			messages = append(messages, msg)
		}
		sort.Strings(messages)
		sb.WriteString("  Errors:\n")
		for _, msg := range messages {
			sb.WriteString(fmt.Sprintf("    %dx %s\n", r.Errors[msg], msg))
		}
	}

	return sb.String()
}

func micros(v int64) float64 {
	return float64(v) / 1000
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
