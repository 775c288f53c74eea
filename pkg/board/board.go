// Package board drives the Horus scanner board over a serial port.
//
// The board speaks a small line oriented G-code dialect: every command is
// a single line and the firmware replies with one or more lines. Commands
// are dispatched one at a time by a goroutine owning the serial port, so
// synchronous and asynchronous commands never interleave on the wire.
// Consecutive failed commands are counted, and once FailureThreshold is
// reached the board is considered unplugged and the unplug handler fires
// once until the next successful Connect.
package board

import (
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/horus.go/pkg/framework"
	"github.com/robotalks/horus.go/pkg/serialport"
)

// State is the connection state of a Board.
type State int

const (
	// Disconnected is the initial state, and the state after Disconnect.
	Disconnected State = iota
	// Connected is entered after a successful handshake.
	Connected
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Config defines the serial endpoint and driver tunables.
// Zero values are replaced by defaults in New.
type Config struct {
	Port     string
	BaudRate int

	LaserCount       int
	FailureThreshold int

	// OpenTimeout is the read timeout during the handshake.
	OpenTimeout time.Duration
	// ReadTimeout is the read timeout once connected.
	ReadTimeout time.Duration
	// ResponseTimeout bounds the wait for a reply to a command.
	ResponseTimeout time.Duration
	PollInterval    time.Duration
	// EnableSettle is how long the motor is left at minimum speed after
	// being enabled.
	EnableSettle time.Duration
	QueueSize    int
}

// Defaults.
const (
	DefaultPort             = "/dev/ttyUSB0"
	DefaultBaudRate         = 115200
	DefaultLaserCount       = 2
	DefaultFailureThreshold = 3
	DefaultOpenTimeout      = 2 * time.Second
	DefaultReadTimeout      = 50 * time.Millisecond
	DefaultResponseTimeout  = 2 * time.Second
	DefaultPollInterval     = 10 * time.Millisecond
	DefaultEnableSettle     = 300 * time.Millisecond
	DefaultQueueSize        = 16
)

func (c Config) withDefaults() Config {
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.BaudRate <= 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.LaserCount <= 0 {
		c.LaserCount = DefaultLaserCount
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = DefaultOpenTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.ResponseTimeout <= 0 {
		c.ResponseTimeout = DefaultResponseTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.EnableSettle < 0 {
		c.EnableSettle = 0
	} else if c.EnableSettle == 0 {
		c.EnableSettle = DefaultEnableSettle
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	return c
}

type motorState struct {
	enabled      bool
	position     int
	relative     int
	direction    int
	speed        int
	acceleration int
}

// Board is the handle of one physical board.
type Board struct {
	// Opener opens the serial port, serialport.Open by default.
	Opener serialport.Opener

	conf   Config
	health health
	notify notifier

	lock   sync.Mutex
	state  State
	link   *link
	motor  motorState
	lasers []bool
}

// New creates a disconnected Board.
func New(conf Config) *Board {
	conf = conf.withDefaults()
	b := &Board{
		Opener: serialport.Open,
		conf:   conf,
		health: health{threshold: conf.FailureThreshold},
	}
	b.resetState()
	return b
}

// Config returns the effective configuration.
func (b *Board) Config() Config {
	return b.conf
}

// SetUnplugHandler registers the handler called when the board is
// considered unplugged. It runs in order with completion callbacks.
func (b *Board) SetUnplugHandler(fn func()) {
	b.health.setHandler(fn)
}

// State returns the connection state.
func (b *Board) State() State {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.state
}

func (b *Board) resetState() {
	b.motor = motorState{direction: 1}
	b.lasers = make([]bool, b.conf.LaserCount)
}

// Connect opens the serial port and verifies the firmware banner.
// It's a no-op if already connected. Errors are *HandshakeError with
// kind ErrNotConnected or ErrWrongFirmware.
func (b *Board) Connect() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.state == Connected {
		return nil
	}

	glog.Infof("connecting board %s %d", b.conf.Port, b.conf.BaudRate)
	port, err := b.Opener(b.conf.Port, b.conf.BaudRate)
	if err != nil {
		glog.Errorf("open %s failed: %v", b.conf.Port, err)
		return &HandshakeError{Port: b.conf.Port, Kind: ErrNotConnected, Err: err}
	}
	reader := serialport.NewLineReader(port)
	if err = b.handshake(port, reader); err != nil {
		glog.Errorf("handshake %s failed: %v", b.conf.Port, err)
		port.Close()
		return err
	}

	l := newLink(port, reader, b.conf.QueueSize)
	go b.serve(l)
	b.link, b.state = l, Connected
	b.resetState()
	b.health.rearm()

	if err = b.setSpeed(1); err != nil {
		glog.Warningf("%s: set default speed: %v", b.conf.Port, err)
	}
	b.setAbsolute(0)
	glog.Infof("board %s connected", b.conf.Port)
	return nil
}

func (b *Board) handshake(port serialport.Port, reader *serialport.LineReader) error {
	notConnected := func(op string, err error) error {
		return &HandshakeError{
			Port: b.conf.Port,
			Kind: ErrNotConnected,
			Err:  &TransportError{Op: op, Err: err},
		}
	}
	if err := port.SetReadTimeout(b.conf.OpenTimeout); err != nil {
		return notConnected("set timeout", err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		return notConnected("flush", err)
	}
	if err := port.ResetOutputBuffer(); err != nil {
		return notConnected("flush", err)
	}
	if _, err := port.Write([]byte(resetSequence)); err != nil {
		return notConnected("write", err)
	}
	// the reset sequence is echoed back.
	if _, err := reader.ReadLine(); err != nil {
		return notConnected("read", err)
	}
	banner, err := reader.ReadLine()
	if err != nil {
		return notConnected("read", err)
	}
	if banner != Banner {
		return &HandshakeError{
			Port: b.conf.Port,
			Kind: ErrWrongFirmware,
			Err:  &BannerError{Banner: banner},
		}
	}
	if err := port.SetReadTimeout(b.conf.ReadTimeout); err != nil {
		return notConnected("set timeout", err)
	}
	return nil
}

// Disconnect turns the lasers off, disables the motor and closes the
// port. Commands queued before Disconnect are still sent and their
// callbacks called. Every step is attempted; the board is Disconnected
// afterwards even if an error is returned. It's a no-op if not connected.
func (b *Board) Disconnect() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.state != Connected {
		return nil
	}

	glog.Infof("disconnecting board %s", b.conf.Port)
	var errs fx.AggregatedError
	errs.Add(b.lasersOff(), b.disableMotor())
	if err := errs.Aggregate(); err != nil {
		glog.Warningf("%s: shutdown commands failed: %v", b.conf.Port, err)
	}

	l := b.link
	b.link, b.state = nil, Disconnected
	l.stop()

	if err := l.port.Close(); err != nil {
		glog.Warningf("close %s failed: %v", b.conf.Port, err)
		return &TransportError{Op: "close", Err: err}
	}
	glog.Infof("board %s disconnected", b.conf.Port)
	return nil
}

// MotorStatus is a snapshot of the motor state.
type MotorStatus struct {
	Enabled      bool `json:"enabled"`
	Position     int  `json:"position"`
	Relative     int  `json:"relative"`
	Direction    int  `json:"direction"`
	Speed        int  `json:"speed"`
	Acceleration int  `json:"acceleration"`
}

// Status is a snapshot of the board state.
type Status struct {
	Port      string      `json:"port"`
	State     State       `json:"state"`
	Motor     MotorStatus `json:"motor"`
	Lasers    []bool      `json:"lasers"`
	Failures  int         `json:"failures"`
	Unplugged bool        `json:"unplugged"`
}

// Status returns a snapshot of the board state.
// It waits for any command in progress.
func (b *Board) Status() Status {
	b.lock.Lock()
	s := Status{
		Port:  b.conf.Port,
		State: b.state,
		Motor: MotorStatus{
			Enabled:      b.motor.enabled,
			Position:     b.motor.position,
			Relative:     b.motor.relative,
			Direction:    b.motor.direction,
			Speed:        b.motor.speed,
			Acceleration: b.motor.acceleration,
		},
		Lasers: append([]bool(nil), b.lasers...),
	}
	b.lock.Unlock()
	s.Failures, s.Unplugged = b.health.snapshot()
	return s
}
