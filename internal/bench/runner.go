package bench

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// CallFunc performs one call and reports the status it observed. Status 0
// means the call has no status to report.
type CallFunc func(ctx context.Context) (status int, err error)

// Config controls a benchmark run.
type Config struct {
	// Requests is the total number of calls
	Requests int

	// Concurrency is the number of workers issuing calls
	Concurrency int

	// Rate caps call starts per second across all workers (0 means unlimited)
	Rate float64

	// Target labels the report
	Target string
}

// Validate checks the run parameters.
func (c Config) Validate() error {
	if c.Requests < 1 {
		return fmt.Errorf("requests must be at least 1")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	if c.Concurrency > 1000 {
		return fmt.Errorf("concurrency cannot exceed 1000")
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate cannot be negative")
	}
	return nil
}

// Runner issues calls with a fixed pool of workers.
type Runner struct {
	config Config
	logger logrus.FieldLogger
}

// NewRunner validates config and creates a runner. A nil logger discards
// progress logs.
func NewRunner(config Config, logger logrus.FieldLogger) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetLevel(logrus.PanicLevel)
		logger = discard
	}
	return &Runner{config: config, logger: logger}, nil
}

// Run issues Requests calls through call and blocks until all of them
// finish or ctx is done. Calls already started when ctx ends are still
// recorded; the report covers the calls that ran.
func (r *Runner) Run(ctx context.Context, call CallFunc) *Report {
	recorder := NewRecorder()

	var pacer *Pacer
	if r.config.Rate > 0 {
		pacer = NewPacer(r.config.Rate)
	}

	workers := r.config.Concurrency
	if workers > r.config.Requests {
		workers = r.config.Requests
	}

	r.logger.WithFields(logrus.Fields{
		"requests":    r.config.Requests,
		"concurrency": workers,
		"rate":        r.config.Rate,
	}).Info("starting benchmark")

	var issued atomic.Int64
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				if issued.Add(1) > int64(r.config.Requests) {
					return
				}
				if pacer != nil {
					if err := pacer.Wait(ctx); err != nil {
						return
					}
				}

				callStart := time.Now()
				status, err := call(ctx)
				recorder.Record(time.Since(callStart), status, err)
			}
		}()
	}

	wg.Wait()
	report := recorder.Report(time.Since(start))
	report.Target = r.config.Target

	r.logger.WithFields(logrus.Fields{
		"requests": report.Requests,
		"failed":   report.Failed,
		"p99Ms":    report.Latency.P99,
	}).Info("benchmark finished")

	return report
}
