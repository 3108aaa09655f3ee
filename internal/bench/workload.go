package bench

import (
	"fmt"
	"math/rand"

	"github.com/spaolacci/murmur3"
)

// Key returns the workload key for index i. Keys are reused across
// runs so striped and baseline targets see identical keyspaces.
func Key(i int) string {
	return fmt.Sprintf("key-%d", i)
}

// DerivedValue returns the canonical value for a key. Deriving values
// from keys keeps a randomized run verifiable: whatever keys survive
// the put/remove churn must still carry exactly this value.
func DerivedValue(key string) uint64 {
	return murmur3.Sum64([]byte(key))
}

// opKind is one operation drawn from the workload mix.
type opKind int

const (
	opGet opKind = iota
	opPut
	opRemove
)

// nextOp draws the next operation kind for the configured mix: reads
// with probability ReadRatio, then puts and removes split putShare to
// the rest.
func nextOp(rng *rand.Rand, readRatio float64) opKind {
	if rng.Float64() < readRatio {
		return opGet
	}
	if rng.Float64() < putShare {
		return opPut
	}
	return opRemove
}

// Prefill inserts the first n workload keys with their derived values.
func Prefill(target Target, n int) {
	for i := 0; i < n; i++ {
		key := Key(i)
		target.Put(key, DerivedValue(key))
	}
}

// VerifyDerived checks every key still present in the target against
// its derived value and returns the number of keys inspected. A
// mismatch means an update was lost or misplaced.
func VerifyDerived(target Target, keySpace int) (checked int, err error) {
	for i := 0; i < keySpace; i++ {
		key := Key(i)
		val, ok := target.Get(key)
		if !ok {
			continue
		}
		checked++
		if want := DerivedValue(key); val != want {
			return checked, fmt.Errorf("bench: key %s holds %d, want %d", key, val, want)
		}
	}
	return checked, nil
}
