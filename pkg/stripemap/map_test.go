package stripemap

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	m := New[string, int]()
	if m == nil {
		t.Fatal("New() returned nil")
	}
	if m.BucketCount() != DefaultBucketCount {
		t.Errorf("bucket count = %d, want %d", m.BucketCount(), DefaultBucketCount)
	}
}

func TestNewWithBuckets(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultBucketCount},  // invalid → default
		{-1, DefaultBucketCount}, // invalid → default
		{1, 1},
		{7, 7}, // modulo indexing, no power-of-two requirement
		{16, 16},
		{1000, 1000},
		{1024, 1024},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("buckets=%d", tt.input), func(t *testing.T) {
			m := NewWithBuckets[string, int](tt.input)
			if m.BucketCount() != tt.expected {
				t.Errorf("NewWithBuckets(%d) bucket count = %d, want %d",
					tt.input, m.BucketCount(), tt.expected)
			}
		})
	}
}

func TestPutAndGet(t *testing.T) {
	m := New[string, int]()

	m.Put("key1", 100)
	m.Put("key2", 200)

	val, ok := m.Get("key1")
	if !ok || val != 100 {
		t.Errorf("Get(key1) = (%d, %v), want (100, true)", val, ok)
	}

	val, ok = m.Get("key2")
	if !ok || val != 200 {
		t.Errorf("Get(key2) = (%d, %v), want (200, true)", val, ok)
	}

	val, ok = m.Get("nonexistent")
	if ok {
		t.Errorf("Get(nonexistent) = (%d, %v), want (0, false)", val, ok)
	}
}

func TestPutOverwritesInPlace(t *testing.T) {
	m := New[string, string]()

	m.Put("key1", "first")
	m.Put("key1", "second")

	val, ok := m.Get("key1")
	if !ok || val != "second" {
		t.Errorf("Get(key1) = (%q, %v), want (\"second\", true)", val, ok)
	}
	if m.Size() != 1 {
		t.Errorf("Size() = %d after overwrite, want 1", m.Size())
	}
}

// Exercises the insert branch of upsert in a single bucket: multiple
// distinct keys landing on one chain must all be appended and found.
func TestPutInsertsWhenAbsent(t *testing.T) {
	m := NewWithBuckets[int, int](1) // every key in one bucket

	for i := 0; i < 100; i++ {
		m.Put(i, i*10)
	}

	if m.Size() != 100 {
		t.Fatalf("Size() = %d, want 100", m.Size())
	}
	for i := 0; i < 100; i++ {
		val, ok := m.Get(i)
		if !ok || val != i*10 {
			t.Errorf("Get(%d) = (%d, %v), want (%d, true)", i, val, ok, i*10)
		}
	}
}

func TestRemove(t *testing.T) {
	m := New[string, int]()

	m.Put("key1", 100)

	if !m.Remove("key1") {
		t.Error("Remove(key1) = false, want true")
	}
	if _, ok := m.Get("key1"); ok {
		t.Error("key1 should not exist after removal")
	}
	if m.Contains("key1") {
		t.Error("Contains(key1) = true after removal, want false")
	}

	if m.Remove("nonexistent") {
		t.Error("Remove(nonexistent) = true, want false")
	}
}

func TestRemoveAbsentLeavesSize(t *testing.T) {
	m := New[string, int]()

	m.Put("key1", 1)
	m.Put("key2", 2)

	m.Remove("nonexistent")
	if m.Size() != 2 {
		t.Errorf("Size() = %d after removing absent key, want 2", m.Size())
	}
}

func TestRemoveFromSharedBucket(t *testing.T) {
	m := NewWithBuckets[int, int](1)

	for i := 0; i < 10; i++ {
		m.Put(i, i)
	}

	if !m.Remove(4) {
		t.Fatal("Remove(4) = false, want true")
	}

	// The rest of the chain must survive the swap-removal.
	for i := 0; i < 10; i++ {
		val, ok := m.Get(i)
		if i == 4 {
			if ok {
				t.Errorf("Get(4) = (%d, true) after removal, want absent", val)
			}
			continue
		}
		if !ok || val != i {
			t.Errorf("Get(%d) = (%d, %v), want (%d, true)", i, val, ok, i)
		}
	}
	if m.Size() != 9 {
		t.Errorf("Size() = %d, want 9", m.Size())
	}
}

func TestContains(t *testing.T) {
	m := New[string, int]()

	m.Put("key1", 100)

	if !m.Contains("key1") {
		t.Error("Contains(key1) should return true")
	}
	if m.Contains("nonexistent") {
		t.Error("Contains(nonexistent) should return false")
	}
}

func TestSize(t *testing.T) {
	m := New[string, int]()

	if m.Size() != 0 {
		t.Errorf("Size() = %d, want 0", m.Size())
	}

	const n = 500
	for i := 0; i < n; i++ {
		m.Put(fmt.Sprintf("key-%d", i), i)
	}
	if m.Size() != n {
		t.Errorf("Size() = %d after %d inserts, want %d", m.Size(), n, n)
	}

	m.Remove("key-42")
	if m.Size() != n-1 {
		t.Errorf("Size() = %d, want %d", m.Size(), n-1)
	}
}

func TestClear(t *testing.T) {
	m := New[string, int]()

	m.Put("key1", 1)
	m.Put("key2", 2)
	m.Put("key3", 3)

	m.Clear()

	if m.Size() != 0 {
		t.Errorf("Size() = %d after Clear, want 0", m.Size())
	}
	for _, key := range []string{"key1", "key2", "key3"} {
		if _, ok := m.Get(key); ok {
			t.Errorf("Get(%s) found entry after Clear", key)
		}
	}

	// The map stays usable after Clear.
	m.Put("key1", 10)
	if val, ok := m.Get("key1"); !ok || val != 10 {
		t.Errorf("Get(key1) = (%d, %v) after Clear+Put, want (10, true)", val, ok)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	type payload struct{ n int }

	m := New[string, payload]()
	m.Put("key1", payload{n: 1})

	val, _ := m.Get("key1")
	val.n = 99

	stored, _ := m.Get("key1")
	if stored.n != 1 {
		t.Errorf("stored value mutated through Get copy: n = %d, want 1", stored.n)
	}
}

func TestBucketAssignmentStable(t *testing.T) {
	m := New[string, int]()

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%d", i)
		first := m.bucketFor(key)
		for j := 0; j < 10; j++ {
			if m.bucketFor(key) != first {
				t.Fatalf("bucketFor(%s) not stable across calls", key)
			}
		}
	}
}

// Mirrors the worked example: put, size, remove, get, contains, clear.
func TestOperationSequence(t *testing.T) {
	m := NewWithBuckets[int, string](1024)

	m.Put(1, "A")
	m.Put(2, "B")

	if m.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", m.Size())
	}
	if !m.Remove(1) {
		t.Fatal("Remove(1) = false, want true")
	}
	if _, ok := m.Get(1); ok {
		t.Fatal("Get(1) found entry after removal")
	}
	if !m.Contains(2) {
		t.Fatal("Contains(2) = false, want true")
	}

	m.Clear()
	if m.Size() != 0 {
		t.Fatalf("Size() = %d after Clear, want 0", m.Size())
	}
}

func TestConcurrentDisjointInserts(t *testing.T) {
	const (
		workers       = 16
		keysPerWorker = 1000
	)

	m := New[int, int]()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for k := w * keysPerWorker; k < (w+1)*keysPerWorker; k++ {
				m.Put(k, k*10)
			}
		}(w)
	}
	wg.Wait()

	if m.Size() != workers*keysPerWorker {
		t.Errorf("Size() = %d, want %d", m.Size(), workers*keysPerWorker)
	}
	for k := 0; k < workers*keysPerWorker; k++ {
		val, ok := m.Get(k)
		if !ok || val != k*10 {
			t.Errorf("Get(%d) = (%d, %v), want (%d, true)", k, val, ok, k*10)
		}
	}
}

func TestConcurrentMixedOperations(t *testing.T) {
	const (
		workers = 8
		ops     = 5000
	)

	m := NewWithBuckets[int, int](64)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < ops; i++ {
				key := (w*ops + i) % 1000
				switch i % 4 {
				case 0:
					m.Put(key, key)
				case 1:
					m.Get(key)
				case 2:
					m.Contains(key)
				case 3:
					m.Remove(key)
				}
			}
		}(w)
	}
	wg.Wait()

	// Whatever survived the churn must still be internally consistent.
	total := 0
	for k := 0; k < 1000; k++ {
		if val, ok := m.Get(k); ok {
			total++
			if val != k {
				t.Errorf("Get(%d) = %d, want %d", k, val, k)
			}
		}
	}
	if m.Size() != total {
		t.Errorf("Size() = %d, want %d surviving keys", m.Size(), total)
	}
}

// Holding one bucket's write lock must not block operations on any
// other bucket.
func TestIndependentBucketsDoNotBlock(t *testing.T) {
	m := NewWithBuckets[int, int](8)

	// Find two keys in different buckets.
	k1 := 0
	k2 := -1
	for k := 1; k < 1000; k++ {
		if m.bucketFor(k) != m.bucketFor(k1) {
			k2 = k
			break
		}
	}
	if k2 < 0 {
		t.Fatal("could not find keys in distinct buckets")
	}

	m.bucketFor(k1).mu.Lock()
	defer m.bucketFor(k1).mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Put(k2, 42)
		if val, ok := m.Get(k2); !ok || val != 42 {
			t.Errorf("Get(%d) = (%d, %v), want (42, true)", k2, val, ok)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("operation on an unlocked bucket blocked behind another bucket's lock")
	}
}

func TestConcurrentSizeAndClear(t *testing.T) {
	m := New[int, int]()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				m.Put(i%500, i)
			}
		}
	}()

	// Size and Clear are weakly consistent; they only have to return and
	// never corrupt state while a writer races them.
	for i := 0; i < 100; i++ {
		if n := m.Size(); n < 0 {
			t.Fatalf("Size() = %d, want >= 0", n)
		}
		if i%10 == 0 {
			m.Clear()
		}
	}

	close(stop)
	wg.Wait()

	m.Clear()
	if m.Size() != 0 {
		t.Errorf("Size() = %d after final Clear, want 0", m.Size())
	}
}

func BenchmarkGet(b *testing.B) {
	m := New[string, int]()
	for i := 0; i < 10000; i++ {
		m.Put(fmt.Sprintf("key-%d", i), i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			m.Get(fmt.Sprintf("key-%d", i%10000))
			i++
		}
	})
}

func BenchmarkPut(b *testing.B) {
	m := New[string, int]()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			m.Put(fmt.Sprintf("key-%d", i%10000), i)
			i++
		}
	})
}
