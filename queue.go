package osm

// featureQueue buffers features for one layer in arrival order.
//
// The queue is the sole owner of buffered features: dequeue nils the
// vacated slot before handing the feature out, and the backing array is
// compacted as soon as the read cursor catches up with the end.
type featureQueue struct {
	items []*Feature
	next  int
	soft  int
	hard  int
}

func newFeatureQueue() featureQueue {
	return featureQueue{soft: SwitchThreshold, hard: MaxThreshold}
}

// buffered returns the number of features waiting to be read.
func (q *featureQueue) buffered() int { return len(q.items) - q.next }

// overfull reports whether the queue has grown past the soft threshold.
func (q *featureQueue) overfull() bool { return q.buffered() > q.soft }

// enqueue appends f and reports whether it was accepted. Once the buffer
// holds hard features further enqueues are refused.
func (q *featureQueue) enqueue(f *Feature) bool {
	if q.buffered() >= q.hard {
		return false
	}
	q.items = append(q.items, f)
	return true
}

// dequeue removes and returns the oldest feature, or nil when empty.
func (q *featureQueue) dequeue() *Feature {
	if q.buffered() == 0 {
		return nil
	}
	f := q.items[q.next]
	q.items[q.next] = nil
	q.next++
	if q.next == len(q.items) {
		q.next = 0
		q.items = q.items[:0]
	}
	return f
}

// reset drops all buffered features and releases the backing array.
func (q *featureQueue) reset() {
	q.items = nil
	q.next = 0
}
