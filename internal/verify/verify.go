// Package verify provides the correctness harness for the striped map.
//
// It runs deterministic sequential checks over the public operations,
// then a concurrent pass in which workers insert disjoint key blocks
// and every inserted key is verified afterwards. Each check is recorded
// as a named step; the CLI renders the report and fails the process if
// any step failed.
//
// @req RQ-0202
package verify

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/stripemap-go/pkg/stripemap"
)

// Defaults for the concurrent phase.
const (
	DefaultWorkers       = 8
	DefaultKeysPerWorker = 10000
)

// Config holds correctness harness parameters.
type Config struct {
	// Workers is the number of concurrent inserters.
	Workers int `koanf:"workers"`

	// KeysPerWorker is the size of each worker's disjoint key block.
	KeysPerWorker int `koanf:"keys_per_worker"`

	// Buckets is the bucket count of the map under test.
	Buckets int `koanf:"buckets"`
}

// DefaultConfig returns the default harness parameters.
func DefaultConfig() Config {
	return Config{
		Workers:       DefaultWorkers,
		KeysPerWorker: DefaultKeysPerWorker,
		Buckets:       stripemap.DefaultBucketCount,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("verify: workers must be positive, got %d", c.Workers)
	}
	if c.KeysPerWorker <= 0 {
		return fmt.Errorf("verify: keys_per_worker must be positive, got %d", c.KeysPerWorker)
	}
	return nil
}

// Step is one named check and its outcome.
type Step struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Report collects the outcome of a harness run.
type Report struct {
	Steps []Step `json:"steps"`
}

// Passed reports whether every step passed.
func (r *Report) Passed() bool {
	for _, s := range r.Steps {
		if !s.Passed {
			return false
		}
	}
	return true
}

// Failed returns the failing steps.
func (r *Report) Failed() []Step {
	var failed []Step
	for _, s := range r.Steps {
		if !s.Passed {
			failed = append(failed, s)
		}
	}
	return failed
}

func (r *Report) check(name string, ok bool, format string, args ...any) {
	step := Step{Name: name, Passed: ok}
	if !ok {
		step.Detail = fmt.Sprintf(format, args...)
	}
	r.Steps = append(r.Steps, step)
}

// Run executes the full harness and returns the report. The only error
// returned is config or context failure; check failures live in the
// report.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	report := &Report{}
	sequential(report)
	if err := concurrent(ctx, cfg, report); err != nil {
		return nil, err
	}
	return report, nil
}

// sequential runs the single-goroutine checks over every public
// operation: absent keys, upsert overwrite, removal, size accounting,
// clear, and the canonical operation sequence.
func sequential(report *Report) {
	m := stripemap.New[int, string]()

	_, found := m.Get(999)
	report.check("absent key lookup", !found && !m.Contains(999),
		"Get/Contains on never-inserted key found an entry")

	m.Put(1, "A")
	m.Put(2, "B")
	val, ok := m.Get(1)
	report.check("insert and retrieve", ok && val == "A",
		"Get(1) = (%q, %v), want (\"A\", true)", val, ok)

	m.Put(1, "A2")
	val, ok = m.Get(1)
	report.check("upsert overwrites in place", ok && val == "A2" && m.Size() == 2,
		"after overwrite Get(1) = (%q, %v), Size = %d", val, ok, m.Size())

	report.check("remove absent key", !m.Remove(42) && m.Size() == 2,
		"Remove(42) reported success or changed size (%d)", m.Size())

	removed := m.Remove(1)
	_, found = m.Get(1)
	report.check("remove present key", removed && !found && !m.Contains(1),
		"Remove(1) = %v, entry still visible = %v", removed, found)

	report.check("membership after removal", m.Contains(2),
		"Contains(2) = false, want true")

	const n = 1000
	seq := stripemap.New[int, int]()
	for i := 0; i < n; i++ {
		seq.Put(i, i)
	}
	report.check("size counts distinct keys", seq.Size() == n,
		"Size() = %d after %d distinct inserts", seq.Size(), n)

	seq.Clear()
	_, found = seq.Get(0)
	report.check("clear empties the map", seq.Size() == 0 && !found,
		"after Clear: Size = %d, Get(0) found = %v", seq.Size(), found)
}

// concurrent has cfg.Workers goroutines insert disjoint key blocks
// (worker t owns [t*M, (t+1)*M)), then verifies every key carries its
// expected value.
func concurrent(ctx context.Context, cfg Config, report *Report) error {
	m := stripemap.NewWithBuckets[int, int](cfg.Buckets)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			lo, hi := w*cfg.KeysPerWorker, (w+1)*cfg.KeysPerWorker
			for k := lo; k < hi; k++ {
				if k%4096 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				m.Put(k, expectedValue(k))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	total := cfg.Workers * cfg.KeysPerWorker
	report.check("concurrent insert size", m.Size() == total,
		"Size() = %d after concurrent inserts, want %d", m.Size(), total)

	missing, wrong := 0, 0
	for k := 0; k < total; k++ {
		val, ok := m.Get(k)
		switch {
		case !ok:
			missing++
		case val != expectedValue(k):
			wrong++
		}
	}
	report.check("concurrent insert retrieval", missing == 0 && wrong == 0,
		"%d keys missing, %d keys with wrong values out of %d", missing, wrong, total)

	return nil
}

// expectedValue derives a worker-independent value for key k.
func expectedValue(k int) int {
	return k * 10
}
