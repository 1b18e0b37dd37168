package bench

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Record(t *testing.T) {
	recorder := NewRecorder()

	recorder.Record(10*time.Millisecond, 200, nil)
	recorder.Record(20*time.Millisecond, 201, nil)
	recorder.Record(30*time.Millisecond, 503, nil)
	recorder.Record(40*time.Millisecond, 0, errors.New("connection refused"))

	report := recorder.Report(time.Second)

	assert.Equal(t, int64(4), report.Requests)
	assert.Equal(t, int64(2), report.Succeeded)
	assert.Equal(t, int64(2), report.Failed)
	assert.Equal(t, 0.5, report.ErrorRate())
	assert.InDelta(t, 4.0, report.Throughput, 0.001)
	assert.Equal(t, map[int]int64{200: 1, 201: 1, 503: 1}, report.StatusCodes)
	assert.Equal(t, map[string]int64{"connection refused": 1}, report.Errors)
}

func TestRecorder_LatencyPercentiles(t *testing.T) {
	recorder := NewRecorder()
	for i := 1; i <= 100; i++ {
		recorder.Record(time.Duration(i)*time.Millisecond, 200, nil)
	}

	report := recorder.Report(time.Second)

	// HDR histogram keeps 3 significant figures
	assert.InDelta(t, 1.0, report.Latency.Min, 0.01)
	assert.InDelta(t, 100.0, report.Latency.Max, 0.1)
	assert.InDelta(t, 50.0, report.Latency.P50, 0.1)
	assert.InDelta(t, 90.0, report.Latency.P90, 0.1)
	assert.InDelta(t, 99.0, report.Latency.P99, 0.1)
	assert.InDelta(t, 50.5, report.Latency.Mean, 0.1)
}

func TestRecorder_ClampsOutOfRangeLatency(t *testing.T) {
	recorder := NewRecorder()
	recorder.Record(0, 200, nil)
	recorder.Record(2*time.Hour, 200, nil)

	report := recorder.Report(time.Second)
	assert.Equal(t, int64(2), report.Requests)
	assert.InDelta(t, float64(histogramMin)/1000, report.Latency.Min, 0.01)
	assert.InDelta(t, float64(histogramMax)/1000, report.Latency.Max, float64(histogramMax)/1000*0.001)
}

func TestRecorder_CapsErrorKinds(t *testing.T) {
	recorder := NewRecorder()
	for i := 0; i < maxErrorKinds+5; i++ {
		recorder.Record(time.Millisecond, 0, errors.New(strings.Repeat("x", i+1)))
	}
	recorder.Record(time.Millisecond, 0, errors.New("x"))

	report := recorder.Report(time.Second)
	assert.Len(t, report.Errors, maxErrorKinds)
	assert.Equal(t, int64(2), report.Errors["x"])
	assert.Equal(t, int64(maxErrorKinds+6), report.Failed)
}

func TestRecorder_Concurrent(t *testing.T) {
	recorder := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				recorder.Record(time.Millisecond, 200, nil)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), recorder.Report(time.Second).Requests)
}

func TestReport_String(t *testing.T) {
	report := &Report{
		Target:      "User.all",
		Requests:    4,
		Succeeded:   3,
		Failed:      1,
		ElapsedMs:   100,
		Throughput:  40,
		StatusCodes: map[int]int64{500: 1, 200: 3},
		Errors:      map[string]int64{"boom": 1},
	}

	text := report.String()
	for _, part := range []string{
		"Benchmark: User.all",
		"Requests:   4 (3 ok, 1 failed, 25.00% errors)",
		"Throughput: 40.00 req/s",
		"p50",
		"200: 3",
		"500: 1",
		"1x boom",
	} {
		assert.Contains(t, text, part)
	}
	assert.Less(t, strings.Index(text, "200: 3"), strings.Index(text, "500: 1"))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{Requests: 10, Concurrency: 2}, false},
		{"valid with rate", Config{Requests: 10, Concurrency: 2, Rate: 5}, false},
		{"no requests", Config{Requests: 0, Concurrency: 2}, true},
		{"no workers", Config{Requests: 10, Concurrency: 0}, true},
		{"too many workers", Config{Requests: 10, Concurrency: 1001}, true},
		{"negative rate", Config{Requests: 10, Concurrency: 1, Rate: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunner_Run(t *testing.T) {
	runner, err := NewRunner(Config{Requests: 50, Concurrency: 5, Target: "User.all"}, nil)
	require.NoError(t, err)

	var calls atomic.Int64
	var active, maxActive atomic.Int64
	report := runner.Run(context.Background(), func(ctx context.Context) (int, error) {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		defer active.Add(-1)

		if calls.Add(1)%10 == 0 {
			return 500, nil
		}
		time.Sleep(time.Millisecond)
		return 200, nil
	})

	assert.Equal(t, int64(50), calls.Load())
	assert.Equal(t, int64(50), report.Requests)
	assert.Equal(t, int64(5), report.Failed)
	assert.Equal(t, "User.all", report.Target)
	assert.LessOrEqual(t, maxActive.Load(), int64(5))
}

func TestRunner_MoreWorkersThanRequests(t *testing.T) {
	runner, err := NewRunner(Config{Requests: 2, Concurrency: 10}, nil)
	require.NoError(t, err)

	report := runner.Run(context.Background(), func(ctx context.Context) (int, error) {
		return 200, nil
	})
	assert.Equal(t, int64(2), report.Requests)
}

func TestRunner_StopsOnCancel(t *testing.T) {
	runner, err := NewRunner(Config{Requests: 1000, Concurrency: 2}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64
	report := runner.Run(ctx, func(ctx context.Context) (int, error) {
		if calls.Add(1) == 10 {
			cancel()
		}
		return 200, nil
	})

	assert.Less(t, report.Requests, int64(1000))
	assert.GreaterOrEqual(t, report.Requests, int64(10))
}

func TestRunner_Rate(t *testing.T) {
	runner, err := NewRunner(Config{Requests: 5, Concurrency: 5, Rate: 50}, nil)
	require.NoError(t, err)

	start := time.Now()
	report := runner.Run(context.Background(), func(ctx context.Context) (int, error) {
		return 204, nil
	})
	elapsed := time.Since(start)

	assert.Equal(t, int64(5), report.Requests)
	// five starts at 50/s take at least four intervals of 20ms
	assert.GreaterOrEqual(t, elapsed, 70*time.Millisecond)
}

func TestPacer_Next(t *testing.T) {
	pacer := NewPacer(10)
	base := time.Now()
	pacer.now = func() time.Time { return base }
	pacer.lastDrip = base

	first := pacer.Next()
	assert.Equal(t, base, first)

	second := pacer.Next()
	assert.Equal(t, base.Add(100*time.Millisecond), second)

	// behind schedule: a full interval has passed since the reserved slot
	pacer.now = func() time.Time { return base.Add(300 * time.Millisecond) }
	third := pacer.Next()
	assert.Equal(t, base.Add(300*time.Millisecond), third)
}

func TestPacer_InvalidRate(t *testing.T) {
	assert.Equal(t, 1.0, NewPacer(0).Rate())
	assert.Equal(t, 1.0, NewPacer(-3).Rate())
}

func TestPacer_WaitCancelled(t *testing.T) {
	pacer := NewPacer(0.1)
	pacer.Next() // consume the immediate slot

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, pacer.Wait(ctx), context.DeadlineExceeded)
}
