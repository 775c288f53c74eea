package board

import "sync"

// health counts consecutive failed commands and decides when the
// board is considered unplugged.
type health struct {
	lock      sync.Mutex
	threshold int
	failures  int
	unplugged bool
	onUnplug  func()
}

func (h *health) setHandler(fn func()) {
	h.lock.Lock()
	h.onUnplug = fn
	h.lock.Unlock()
}

func (h *health) success() {
	h.lock.Lock()
	h.failures = 0
	h.lock.Unlock()
}

// failure records a failed attempt. unplugged is true only when the
// threshold is reached for the first time since the last rearm, and
// handler is the unplug handler to fire, which may be nil.
func (h *health) failure() (handler func(), unplugged bool) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.failures++
	if h.failures < h.threshold {
		return nil, false
	}
	h.failures = 0
	if h.unplugged {
		return nil, false
	}
	h.unplugged = true
	return h.onUnplug, true
}

// rearm is called after a successful handshake.
func (h *health) rearm() {
	h.lock.Lock()
	h.failures, h.unplugged = 0, false
	h.lock.Unlock()
}

func (h *health) snapshot() (failures int, unplugged bool) {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.failures, h.unplugged
}
