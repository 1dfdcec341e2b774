package progress

import "sync"

// Tracker is a node in a weighted progress tree.
//
// A leaf reports its own fraction. A node with children derives its fraction
// from the weighted mean of its children. Whenever any node changes, the
// root's listener receives the overall fraction, provided it has increased
// since the last notification.
//
// All nodes of a tree share one lock, so a Tracker and its children may be
// driven from different goroutines.
type Tracker struct {
	tree *tree
	name string

	own      float64
	finished bool
	weight   float64
	children []*Tracker
	total    float64
}

type tree struct {
	mu       sync.Mutex
	root     *Tracker
	listener func(float64)

	notifyMu sync.Mutex
	last     float64
}

// NewTracker creates the root of a progress tree. listener may be nil.
func NewTracker(name string, listener func(fraction float64)) *Tracker {
	tr := &tree{listener: listener, last: -1}
	t := &Tracker{tree: tr, name: name}
	tr.root = t

	return t
}

// Child adds a sub-task whose share of t is weight relative to its
// siblings. Non-positive weights are treated as 1.
func (t *Tracker) Child(name string, weight float64) *Tracker {
	if weight <= 0 {
		weight = 1
	}

	t.tree.mu.Lock()
	defer t.tree.mu.Unlock()

	c := &Tracker{tree: t.tree, name: name, weight: weight}
	t.children = append(t.children, c)
	t.total += weight

	return c
}

// Name returns the task name.
func (t *Tracker) Name() string { return t.name }

// Report sets the fraction of a leaf task. Values outside [0, 1] are clamped.
// Reports on a finished task are ignored.
func (t *Tracker) Report(fraction float64) {
	t.tree.mu.Lock()
	if t.finished {
		t.tree.mu.Unlock()
		return
	}
	t.own = clamp(fraction)
	t.tree.mu.Unlock()

	t.tree.notify()
}

// Finish marks the task and all of its sub-tasks complete.
func (t *Tracker) Finish() {
	t.tree.mu.Lock()
	t.finishLocked()
	t.tree.mu.Unlock()

	t.tree.notify()
}

func (t *Tracker) finishLocked() {
	t.finished = true
	t.own = 1
	for _, c := range t.children {
		c.finishLocked()
	}
}

// Finished reports whether Finish has been called on t or an ancestor.
func (t *Tracker) Finished() bool {
	t.tree.mu.Lock()
	defer t.tree.mu.Unlock()

	return t.finished
}

// Progress returns the completion fraction of t.
func (t *Tracker) Progress() float64 {
	t.tree.mu.Lock()
	defer t.tree.mu.Unlock()

	return t.progressLocked()
}

func (t *Tracker) progressLocked() float64 {
	if t.finished {
		return 1
	}
	if len(t.children) == 0 {
		return t.own
	}

	var sum float64
	for _, c := range t.children {
		sum += c.progressLocked() * c.weight
	}

	return clamp(sum / t.total)
}

// notify forwards the root fraction to the listener. Notifications are
// serialized and never decrease.
func (tr *tree) notify() {
	if tr.listener == nil {
		return
	}

	tr.notifyMu.Lock()
	defer tr.notifyMu.Unlock()

	f := tr.root.Progress()
	if f <= tr.last {
		return
	}
	tr.last = f
	tr.listener(f)
}
