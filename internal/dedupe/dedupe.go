// Package dedupe tracks already-processed update IDs so the platform's
// redeliveries become no-ops instead of double transitions.
package dedupe

import "sync"

// Deduper records seen update IDs with bounded memory. Oldest entries
// are evicted first once maxSize is reached.
type Deduper struct {
	mu      sync.Mutex
	seen    map[int]struct{}
	order   []int
	maxSize int
}

// New creates a Deduper keeping at most maxSize IDs. A non-positive
// maxSize falls back to 50000.
func New(maxSize int) *Deduper {
	if maxSize <= 0 {
		maxSize = 50000
	}
	return &Deduper{
		seen:    make(map[int]struct{}, maxSize),
		maxSize: maxSize,
	}
}

// SeenAndRecord atomically checks whether id was seen and records it if
// not. Returns true if the id was already seen.
func (d *Deduper) SeenAndRecord(id int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if len(d.seen) >= d.maxSize {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}

	d.seen[id] = struct{}{}
	d.order = append(d.order, id)
	return false
}

// Unrecord forgets an id so the platform's retry of a failed update is
// processed instead of short-circuited.
func (d *Deduper) Unrecord(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	for i, v := range d.order {
		if v == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Size returns the current number of recorded IDs.
func (d *Deduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
