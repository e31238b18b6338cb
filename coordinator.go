package osm

// layerQueues is the coordinator's view of the layers it arbitrates
// between.
type layerQueues interface {
	NumLayers() int

	// Buffered returns the number of features waiting in layer i's queue.
	Buffered(i int) int
}

// coordinator decides which layer owns the turn to consume the shared
// upstream while reading interleaved. At most one layer holds the turn at
// a time; a pull on any other layer yields immediately.
type coordinator struct {
	soft int

	// current is the index of the layer holding the turn, or -1.
	current int
}

func newCoordinator() coordinator {
	return coordinator{soft: SwitchThreshold, current: -1}
}

// claim is called when layer idx wants to parse upstream data because its
// queue is empty. It reports whether idx may parse. When it may not,
// switchTo carries the layer the turn belongs to instead: the existing
// owner, or a layer whose queue has grown past the soft threshold and
// needs draining before any more input is consumed.
func (c *coordinator) claim(idx int, q layerQueues) (parse bool, switchTo int) {
	if c.current >= 0 && c.current != idx {
		return false, c.current
	}
	c.current = idx
	for i := 0; i < q.NumLayers(); i++ {
		if i != idx && q.Buffered(i) > c.soft {
			c.current = i
			return false, i
		}
	}
	return true, -1
}

// resolve is called after a parse round left layer idx still empty. The
// turn moves to the first other layer with buffered features. A switchTo
// of -1 means the stream is exhausted and nothing is buffered anywhere;
// the turn is cleared.
func (c *coordinator) resolve(idx int, q layerQueues) (switchTo int) {
	for i := 0; i < q.NumLayers(); i++ {
		if i != idx && q.Buffered(i) > 0 {
			c.current = i
			return i
		}
	}
	c.current = -1
	return -1
}

// release clears the turn. Used when the whole data source rewinds.
func (c *coordinator) release() { c.current = -1 }
