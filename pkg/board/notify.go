package board

import "sync"

// notifier calls completion callbacks and the unplug handler in the
// order they are posted. A goroutine drains the queue while it's not
// empty, so callbacks are free to issue further commands.
type notifier struct {
	lock    sync.Mutex
	head    *notification
	tail    *notification
	running bool
}

type notification struct {
	fn   func()
	next *notification
}

func (n *notifier) post(fn func()) {
	item := &notification{fn: fn}
	n.lock.Lock()
	defer n.lock.Unlock()
	if n.head == nil {
		n.head = item
	} else {
		n.tail.next = item
	}
	n.tail = item
	if !n.running {
		n.running = true
		go n.run()
	}
}

func (n *notifier) run() {
	for {
		n.lock.Lock()
		items := n.head
		n.head, n.tail = nil, nil
		if items == nil {
			n.running = false
			n.lock.Unlock()
			return
		}
		n.lock.Unlock()
		for ; items != nil; items = items.next {
			items.fn()
		}
	}
}
