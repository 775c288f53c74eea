package board

import (
	"strings"
	"sync"
	"time"
)

// fakePort emulates the firmware: the reset sequence is echoed and
// followed by banner, other commands are answered from replies, or
// with "ok" if there is no entry. An empty entry means no reply.
// Reads never block; no pending data is a read timeout.
type fakePort struct {
	lock     sync.Mutex
	banner   string
	replies  map[string]string
	pending  []byte
	writes   []string
	timeouts []time.Duration
	writeErr error
	readErr  error
	closeErr error
	closed   bool
}

func newFakePort() *fakePort {
	return &fakePort{
		banner:  Banner,
		replies: make(map[string]string),
	}
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.readErr != nil {
		return 0, p.readErr
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	line := strings.TrimSuffix(string(b), Terminator)
	p.writes = append(p.writes, line)
	if line == "\x18" {
		p.pending = append(p.pending, resetSequence+p.banner...)
		return len(b), nil
	}
	reply, ok := p.replies[line]
	if !ok {
		reply = "ok\r\n"
	}
	p.pending = append(p.pending, reply...)
	return len(b), nil
}

func (p *fakePort) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.closed = true
	return p.closeErr
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.lock.Lock()
	p.timeouts = append(p.timeouts, t)
	p.lock.Unlock()
	return nil
}

func (p *fakePort) ResetInputBuffer() error {
	p.lock.Lock()
	p.pending = nil
	p.lock.Unlock()
	return nil
}

func (p *fakePort) ResetOutputBuffer() error {
	return nil
}

func (p *fakePort) setReply(cmd, reply string) {
	p.lock.Lock()
	p.replies[cmd] = reply
	p.lock.Unlock()
}

func (p *fakePort) setWriteErr(err error) {
	p.lock.Lock()
	p.writeErr = err
	p.lock.Unlock()
}

func (p *fakePort) isClosed() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.closed
}

// commands returns the commands written, without the reset sequence.
func (p *fakePort) commands() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	var cmds []string
	for _, w := range p.writes {
		if w != "\x18" {
			cmds = append(cmds, w)
		}
	}
	return cmds
}

func (p *fakePort) count(cmd string) int {
	var n int
	for _, c := range p.commands() {
		if c == cmd {
			n++
		}
	}
	return n
}

func (p *fakePort) clearWrites() {
	p.lock.Lock()
	p.writes = nil
	p.lock.Unlock()
}
