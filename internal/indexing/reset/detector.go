package reset

import "sync"

// Detector remembers the previously observed node status.
type Detector struct {
	config Config

	mu   sync.Mutex
	last string
	seen bool
}

// Observe records status and reports whether it completes a
// stopped -> running edge.
func (d *Detector) Observe(status string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	fired := d.seen &&
		d.last == d.config.StoppedStatus &&
		status == d.config.RunningStatus

	d.last = status
	d.seen = true
	return fired
}

// ObserveStopped records the stopped sentinel. Used when the node cannot be
// reached at all.
func (d *Detector) ObserveStopped() bool {
	return d.Observe(d.config.StoppedStatus)
}

// Last returns the previously observed status and whether any was observed.
func (d *Detector) Last() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.seen
}

// Forget drops the history so the next observation is treated as the first.
func (d *Detector) Forget() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = ""
	d.seen = false
}

// Config returns the sentinels in use.
func (d *Detector) Config() Config {
	return d.config
}
