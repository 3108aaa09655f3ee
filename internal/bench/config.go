package bench

import "fmt"

// Defaults for the benchmark workload.
const (
	DefaultWorkers      = 8
	DefaultOpsPerWorker = 100000
	DefaultReadRatio    = 0.7
	DefaultKeySpace     = 10000
	DefaultPrefill      = 1000
	DefaultBuckets      = 1024

	// putShare is the fraction of write operations that are puts;
	// the remainder are removes.
	putShare = 0.8
)

// Config holds the benchmark workload parameters.
type Config struct {
	// Workers is the number of concurrent workers.
	Workers int `koanf:"workers"`

	// OpsPerWorker is the number of operations each worker issues.
	OpsPerWorker int `koanf:"ops_per_worker"`

	// ReadRatio is the fraction of operations that are reads, in [0, 1].
	ReadRatio float64 `koanf:"read_ratio"`

	// KeySpace is the number of distinct keys the workload draws from.
	KeySpace int `koanf:"key_space"`

	// Prefill is the number of keys inserted before timing starts.
	Prefill int `koanf:"prefill"`

	// Buckets is the striped map's bucket count.
	Buckets int `koanf:"buckets"`

	// RateLimit caps total operations per second across all workers.
	// Zero means unlimited.
	RateLimit int `koanf:"rate_limit"`

	// Seed offsets the per-worker PRNG seeds, making runs repeatable.
	Seed int64 `koanf:"seed"`
}

// DefaultConfig returns the default workload, matching the classic
// 8-thread 70%-read mixed benchmark.
func DefaultConfig() Config {
	return Config{
		Workers:      DefaultWorkers,
		OpsPerWorker: DefaultOpsPerWorker,
		ReadRatio:    DefaultReadRatio,
		KeySpace:     DefaultKeySpace,
		Prefill:      DefaultPrefill,
		Buckets:      DefaultBuckets,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("bench: workers must be positive, got %d", c.Workers)
	}
	if c.OpsPerWorker <= 0 {
		return fmt.Errorf("bench: ops_per_worker must be positive, got %d", c.OpsPerWorker)
	}
	if c.ReadRatio < 0 || c.ReadRatio > 1 {
		return fmt.Errorf("bench: read_ratio must be in [0, 1], got %v", c.ReadRatio)
	}
	if c.KeySpace <= 0 {
		return fmt.Errorf("bench: key_space must be positive, got %d", c.KeySpace)
	}
	if c.Prefill < 0 || c.Prefill > c.KeySpace {
		return fmt.Errorf("bench: prefill must be in [0, key_space], got %d", c.Prefill)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("bench: rate_limit must be non-negative, got %d", c.RateLimit)
	}
	return nil
}

// TotalOps returns the number of operations a full run issues.
func (c Config) TotalOps() int {
	return c.Workers * c.OpsPerWorker
}
