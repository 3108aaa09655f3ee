package bench

import (
	"context"
	"crypto/rand"
	"fmt"
	mathrand "math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yndnr/stripemap-go/internal/telemetry/logger"
	"github.com/yndnr/stripemap-go/internal/telemetry/metric"
)

// Result holds the outcome of one benchmark run against one target.
type Result struct {
	RunID       string        `json:"run_id"`
	Target      string        `json:"target"`
	Workers     int           `json:"workers"`
	TotalOps    uint64        `json:"total_ops"`
	Gets        uint64        `json:"gets"`
	Puts        uint64        `json:"puts"`
	Removes     uint64        `json:"removes"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	OpsPerSec   float64       `json:"ops_per_sec"`
	MeanLatency time.Duration `json:"mean_latency_ns"`
	FinalSize   int           `json:"final_size"`
}

// String renders the result in the report layout.
func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n", r.Target)
	fmt.Fprintf(&b, "run id:        %s\n", r.RunID)
	fmt.Fprintf(&b, "workers:       %d\n", r.Workers)
	fmt.Fprintf(&b, "operations:    %d (get %d / put %d / remove %d)\n",
		r.TotalOps, r.Gets, r.Puts, r.Removes)
	fmt.Fprintf(&b, "elapsed:       %s\n", r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "throughput:    %.0f ops/sec\n", r.OpsPerSec)
	fmt.Fprintf(&b, "mean latency:  %s\n", r.MeanLatency)
	fmt.Fprintf(&b, "final size:    %d\n", r.FinalSize)
	return b.String()
}

// Runner executes the configured workload against map targets.
type Runner struct {
	cfg     Config
	log     logger.Logger
	metrics *metric.Registry
	limiter *rate.Limiter
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(l logger.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = l
	}
}

// WithMetrics attaches a metrics registry; per-op counters and latency
// samples are recorded into it during runs.
func WithMetrics(m *metric.Registry) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// NewRunner creates a runner for the given workload.
func NewRunner(cfg Config, opts ...RunnerOption) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		cfg: cfg,
		log: logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if cfg.RateLimit > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	}

	return r, nil
}

// workerStats accumulates per-worker counters so workers never share
// cache lines during the timed section.
type workerStats struct {
	gets, puts, removes uint64
	latency             time.Duration
}

// Run executes the workload against target and returns the measured
// result. The target is cleared and prefilled first; timing covers
// only the operation loop.
func (r *Runner) Run(ctx context.Context, targetName string, target Target) (*Result, error) {
	runID := newRunID()
	ctx = logger.WithRunID(ctx, runID)
	log := r.log.With("run_id", runID, "target", targetName)

	target.Clear()
	Prefill(target, r.cfg.Prefill)

	log.Info("benchmark starting",
		"workers", r.cfg.Workers,
		"ops_per_worker", r.cfg.OpsPerWorker,
		"read_ratio", r.cfg.ReadRatio)

	stats := make([]workerStats, r.cfg.Workers)
	g, ctx := errgroup.WithContext(ctx)

	start := time.Now()
	for w := 0; w < r.cfg.Workers; w++ {
		g.Go(func() error {
			return r.worker(ctx, targetName, target, w, &stats[w])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("benchmark run %s: %w", runID, err)
	}
	elapsed := time.Since(start)

	result := &Result{
		RunID:     runID,
		Target:    targetName,
		Workers:   r.cfg.Workers,
		Elapsed:   elapsed,
		FinalSize: target.Size(),
	}
	var totalLatency time.Duration
	for i := range stats {
		result.Gets += stats[i].gets
		result.Puts += stats[i].puts
		result.Removes += stats[i].removes
		totalLatency += stats[i].latency
	}
	result.TotalOps = result.Gets + result.Puts + result.Removes
	if elapsed > 0 {
		result.OpsPerSec = float64(result.TotalOps) / elapsed.Seconds()
	}
	if result.TotalOps > 0 {
		result.MeanLatency = totalLatency / time.Duration(result.TotalOps)
	}

	log.Info("benchmark finished",
		"total_ops", result.TotalOps,
		"ops_per_sec", result.OpsPerSec,
		"mean_latency", result.MeanLatency.String())

	return result, nil
}

// worker issues the per-worker share of the workload. Each worker owns
// a PRNG seeded from its index so runs are repeatable and workers do
// not contend on a shared source.
func (r *Runner) worker(ctx context.Context, targetName string, target Target, id int, stats *workerStats) error {
	rng := mathrand.New(mathrand.NewSource(r.cfg.Seed + int64(id)))

	if r.metrics != nil {
		r.metrics.WorkersActive.Inc()
		defer r.metrics.WorkersActive.Dec()
	}

	for i := 0; i < r.cfg.OpsPerWorker; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		key := Key(rng.Intn(r.cfg.KeySpace))
		op := nextOp(rng, r.cfg.ReadRatio)

		begin := time.Now()
		switch op {
		case opGet:
			target.Get(key)
			stats.gets++
		case opPut:
			target.Put(key, DerivedValue(key))
			stats.puts++
		case opRemove:
			target.Remove(key)
			stats.removes++
		}
		took := time.Since(begin)
		stats.latency += took

		if r.metrics != nil {
			name := opLabel(op)
			r.metrics.OpsTotal.WithLabelValues(targetName, name).Inc()
			r.metrics.OpDuration.WithLabelValues(targetName, name).Observe(took.Seconds())
		}
	}

	return nil
}

func opLabel(op opKind) string {
	switch op {
	case opGet:
		return metric.OpGet
	case opPut:
		return metric.OpPut
	default:
		return metric.OpRemove
	}
}

// newRunID generates a sortable unique run identifier.
func newRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, _ := ulid.New(ulid.Timestamp(time.Now()), entropy)
	return "bench-" + strings.ToLower(id.String())
}
