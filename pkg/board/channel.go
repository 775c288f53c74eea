package board

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/horus.go/pkg/serialport"
)

// ReadMode selects how the reply of a command is read.
type ReadMode int

const (
	// ReadLine waits for a single line.
	ReadLine ReadMode = iota
	// ReadLines collects every line available until the port goes quiet.
	ReadLines
)

// Result is the result of a command.
// Response is empty when Err is set.
type Result struct {
	Response string
	Err      error
}

type request struct {
	cmd    string
	mode   ReadMode
	done   func(Result)
	result chan Result
}

// link is the open serial connection and its dispatch goroutine.
// Only the dispatch goroutine touches port and reader once connected.
type link struct {
	port   serialport.Port
	reader *serialport.LineReader
	reqCh  chan *request
	doneCh chan struct{}
}

func newLink(port serialport.Port, reader *serialport.LineReader, queueSize int) *link {
	return &link{
		port:   port,
		reader: reader,
		reqCh:  make(chan *request, queueSize),
		doneCh: make(chan struct{}),
	}
}

// stop queues the end marker and waits until every request queued
// before it has been answered. Must be called with b.lock held, after
// leaving Connected.
func (l *link) stop() {
	l.reqCh <- nil
	<-l.doneCh
}

// SendCommand sends a command and waits for the reply.
// An empty command is a no-op. When not connected, Err is ErrNotConnected
// and no failure is recorded.
func (b *Board) SendCommand(cmd string, mode ReadMode) Result {
	b.lock.Lock()
	req, res := b.submit(cmd, mode, true, nil)
	b.lock.Unlock()
	if req == nil {
		return res
	}
	return <-req.result
}

// SendCommandAsync queues a command and returns immediately.
// done, if not nil, is called with the result on the notification
// goroutine, in the order commands were queued.
func (b *Board) SendCommandAsync(cmd string, mode ReadMode, done func(Result)) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.sendAsync(cmd, mode, done)
}

// send must be called with b.lock held.
func (b *Board) send(cmd string, mode ReadMode) Result {
	req, res := b.submit(cmd, mode, true, nil)
	if req == nil {
		return res
	}
	return <-req.result
}

// sendAsync must be called with b.lock held.
func (b *Board) sendAsync(cmd string, mode ReadMode, done func(Result)) {
	req, res := b.submit(cmd, mode, false, done)
	if req == nil && done != nil {
		b.notify.post(func() { done(res) })
	}
}

// submit queues a request and returns nil if nothing was queued.
// Requests are only queued while connected and b.lock is held, so none
// can be queued behind the end marker of Disconnect.
func (b *Board) submit(cmd string, mode ReadMode, sync bool, done func(Result)) (*request, Result) {
	if b.state != Connected {
		return nil, Result{Err: ErrNotConnected}
	}
	if cmd == "" {
		return nil, Result{}
	}
	req := &request{cmd: cmd, mode: mode, done: done}
	if sync {
		req.result = make(chan Result, 1)
	}
	b.link.reqCh <- req
	return req, Result{}
}

func (b *Board) serve(l *link) {
	defer close(l.doneCh)
	for req := range l.reqCh {
		if req == nil {
			return
		}
		res := b.exec(l, req)
		if req.result != nil {
			req.result <- res
		}
		if done := req.done; done != nil {
			b.notify.post(func() { done(res) })
		}
	}
}

func (b *Board) exec(l *link, req *request) Result {
	resp, err := b.roundTrip(l, req)
	if err == nil {
		b.health.success()
		return Result{Response: resp}
	}
	glog.V(2).Infof("%s: %q failed: %v", b.conf.Port, req.cmd, err)
	if handler, unplugged := b.health.failure(); unplugged {
		glog.Warningf("%s: board unplugged", b.conf.Port)
		if handler != nil {
			b.notify.post(handler)
		}
	}
	return Result{Err: err}
}

func (b *Board) roundTrip(l *link, req *request) (string, error) {
	if err := l.port.ResetInputBuffer(); err != nil {
		return "", &TransportError{Op: "flush", Err: err}
	}
	l.reader.Reset()
	if err := l.port.ResetOutputBuffer(); err != nil {
		return "", &TransportError{Op: "flush", Err: err}
	}
	glog.V(2).Infof("SND %s %q", b.conf.Port, req.cmd)
	if _, err := l.port.Write([]byte(req.cmd + Terminator)); err != nil {
		return "", &TransportError{Op: "write", Err: err}
	}
	deadline := time.Now().Add(b.conf.ResponseTimeout)
	for {
		var resp string
		var err error
		if req.mode == ReadLines {
			resp, err = l.reader.ReadLines()
		} else {
			resp, err = l.reader.ReadLine()
		}
		if err != nil {
			return "", &TransportError{Op: "read", Err: err}
		}
		if resp != "" {
			glog.V(2).Infof("RCV %s %q", b.conf.Port, resp)
			return resp, nil
		}
		if !time.Now().Before(deadline) {
			return "", ErrNoResponse
		}
		time.Sleep(b.conf.PollInterval)
	}
}
