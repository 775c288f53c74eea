package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/horus.go/pkg/board"
	"github.com/robotalks/horus.go/pkg/events"
)

type stubDevice struct {
	lock     sync.Mutex
	calls    []string
	err      error
	moveErr  error
	reading  int
	onUnplug func()
}

func (d *stubDevice) record(format string, args ...interface{}) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
	return d.err
}

func (d *stubDevice) recorded() []string {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *stubDevice) Connect() error    { return d.record("connect") }
func (d *stubDevice) Disconnect() error { return d.record("disconnect") }
func (d *stubDevice) Status() board.Status {
	return board.Status{Port: "/dev/stub", State: board.Connected, Lasers: []bool{false, false}}
}
func (d *stubDevice) SetUnplugHandler(fn func()) {
	d.lock.Lock()
	d.onUnplug = fn
	d.lock.Unlock()
}
func (d *stubDevice) unplug() {
	d.lock.Lock()
	fn := d.onUnplug
	d.lock.Unlock()
	if fn != nil {
		fn()
	}
}
func (d *stubDevice) LaserOn(index int) error         { return d.record("laser.on %d", index) }
func (d *stubDevice) LaserOff(index int) error        { return d.record("laser.off %d", index) }
func (d *stubDevice) LasersOn() error                 { return d.record("lasers.on") }
func (d *stubDevice) LasersOff() error                { return d.record("lasers.off") }
func (d *stubDevice) InvertMotor(inverted bool)       { d.record("invert %v", inverted) }
func (d *stubDevice) SetRelative(delta int)           { d.record("relative %d", delta) }
func (d *stubDevice) SetAbsolute(pos int)             { d.record("absolute %d", pos) }
func (d *stubDevice) SetSpeed(speed int) error        { return d.record("speed %d", speed) }
func (d *stubDevice) SetAcceleration(accel int) error { return d.record("accel %d", accel) }
func (d *stubDevice) EnableMotor() error              { return d.record("enable") }
func (d *stubDevice) DisableMotor() error             { return d.record("disable") }
func (d *stubDevice) MoveAsync(done func(board.Result)) {
	d.record("move")
	go done(board.Result{Response: "ok\r\n", Err: d.moveErr})
}
func (d *stubDevice) ReadSensor(pin string) (int, error) {
	return d.reading, d.record("ldr %s", pin)
}

func nextEvent(t *testing.T, sub *events.Subscription) *events.BoardEvent {
	select {
	case ev := <-sub.C():
		return ev
	case <-time.After(time.Second):
		t.Fatal("event timeout")
	}
	return nil
}

func TestExecute(t *testing.T) {
	testCases := []struct {
		op   string
		arg  string
		call string
		kind string
	}{
		{"board/connect", "", "connect", events.KindConnected},
		{"board/disconnect", "", "disconnect", events.KindDisconnected},
		{"laser/on", "1", "laser.on 1", events.KindStatus},
		{"laser/off", "0", "laser.off 0", events.KindStatus},
		{"laser/on", "all", "lasers.on", events.KindStatus},
		{"laser/off", "", "lasers.off", events.KindStatus},
		{"motor/enable", "", "enable", events.KindStatus},
		{"motor/disable", "", "disable", events.KindStatus},
		{"motor/invert", "true", "invert true", events.KindStatus},
		{"motor/speed", "200", "speed 200", events.KindStatus},
		{"motor/accel", "300", "accel 300", events.KindStatus},
		{"motor/relative", "-50", "relative -50", events.KindStatus},
		{"motor/absolute", "0", "absolute 0", events.KindStatus},
		{"motor/move", "", "move", events.KindStatus},
		{"ldr/read", "0", "ldr 0", events.KindStatus},
	}
	for _, tc := range testCases {
		t.Run(tc.op+" "+tc.arg, func(t *testing.T) {
			dev := &stubDevice{}
			b := New("scanner", dev, nil)
			sub := b.Hub.Subscribe(4)
			require.NoError(t, b.Execute(tc.op, tc.arg))
			ev := nextEvent(t, sub)
			require.Equal(t, tc.kind, ev.Kind)
			require.Equal(t, "scanner", ev.Id)
			require.Equal(t, tc.op, ev.Message)
			require.Equal(t, []string{tc.call}, dev.recorded())
		})
	}
}

func TestExecuteErrors(t *testing.T) {
	testCases := []struct {
		op  string
		arg string
		err error
	}{
		{"laser/on", "x", nil},
		{"motor/speed", "fast", nil},
		{"motor/invert", "maybe", nil},
		{"motor/jump", "", ErrUnknownCommand},
		{"motor/enable", "", board.ErrNotConnected},
	}
	for _, tc := range testCases {
		t.Run(tc.op, func(t *testing.T) {
			dev := &stubDevice{err: board.ErrNotConnected}
			b := New("scanner", dev, nil)
			sub := b.Hub.Subscribe(4)
			err := b.Execute(tc.op, tc.arg)
			require.Error(t, err)
			if tc.err != nil {
				require.Equal(t, tc.err, err)
			}
			ev := nextEvent(t, sub)
			require.Equal(t, events.KindError, ev.Kind)
			require.Contains(t, ev.Message, tc.op)
		})
	}
}

func TestMoveError(t *testing.T) {
	dev := &stubDevice{moveErr: board.ErrNoResponse}
	b := New("scanner", dev, nil)
	sub := b.Hub.Subscribe(4)
	require.NoError(t, b.Execute("motor/move", ""))
	ev := nextEvent(t, sub)
	require.Equal(t, events.KindError, ev.Kind)
	require.Equal(t, "motor/move: no response", ev.Message)
}

func TestRun(t *testing.T) {
	dev := &stubDevice{}
	b := New("scanner", dev, nil)
	sub := b.Hub.Subscribe(4)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- b.Run(ctx) }()

	b.handleMsg("scanner/cmd/laser/on", []byte(" 1\n"))
	ev := nextEvent(t, sub)
	require.Equal(t, "laser/on", ev.Message)
	require.Equal(t, []string{"laser.on 1"}, dev.recorded())

	// the unplug handler is installed by Run
	dev.unplug()
	require.Equal(t, events.KindUnplugged, nextEvent(t, sub).Kind)

	cancel()
	require.True(t, errors.Is(<-errCh, context.Canceled))
	_, ok := <-sub.C()
	require.False(t, ok)
}
