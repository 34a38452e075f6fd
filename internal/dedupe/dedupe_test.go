package dedupe

import (
	"sync"
	"testing"
)

func TestSeenAndRecord(t *testing.T) {
	d := New(10)

	if d.SeenAndRecord(1) {
		t.Fatal("fresh id reported as seen")
	}
	if !d.SeenAndRecord(1) {
		t.Fatal("replayed id not reported as seen")
	}
	if d.Size() != 1 {
		t.Fatalf("size = %d, want 1", d.Size())
	}
}

func TestEvictionOldestFirst(t *testing.T) {
	d := New(3)
	for id := 1; id <= 4; id++ {
		d.SeenAndRecord(id)
	}

	// 1 was evicted, so it reads as fresh again.
	if d.SeenAndRecord(1) {
		t.Fatal("evicted id still reported as seen")
	}
	if !d.SeenAndRecord(4) {
		t.Fatal("recent id lost")
	}
	if d.Size() != 3 {
		t.Fatalf("size = %d, want 3", d.Size())
	}
}

func TestUnrecordAllowsRetry(t *testing.T) {
	d := New(10)
	d.SeenAndRecord(42)
	d.Unrecord(42)

	if d.SeenAndRecord(42) {
		t.Fatal("unrecorded id reported as seen")
	}
	// Unrecord of an unknown id is a no-op.
	d.Unrecord(999)
	if d.Size() != 1 {
		t.Fatalf("size = %d, want 1", d.Size())
	}
}

func TestConcurrentSameID(t *testing.T) {
	d := New(100)

	const workers = 32
	var wg sync.WaitGroup
	fresh := make(chan struct{}, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !d.SeenAndRecord(7) {
				fresh <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(fresh)

	if n := len(fresh); n != 1 {
		t.Fatalf("id recorded as fresh %d times, want exactly 1", n)
	}
}
