// Package bridge exposes a board over MQTT and streams its events.
//
// Commands are received on <id>/cmd/<group>/<op> with the argument as
// payload, and executed one at a time. After every command a BoardEvent
// is published on <id>/event, and to websocket clients of /events.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/horus.go/pkg/board"
	"github.com/robotalks/horus.go/pkg/events"
	"github.com/robotalks/horus.go/pkg/mqtt"
)

// Device is the board operated by the bridge.
type Device interface {
	Connect() error
	Disconnect() error
	Status() board.Status
	SetUnplugHandler(func())

	LaserOn(index int) error
	LaserOff(index int) error
	LasersOn() error
	LasersOff() error

	InvertMotor(inverted bool)
	SetRelative(delta int)
	SetAbsolute(pos int)
	SetSpeed(speed int) error
	SetAcceleration(accel int) error
	EnableMotor() error
	DisableMotor() error
	MoveAsync(done func(board.Result))

	ReadSensor(pin string) (int, error)
}

// ErrUnknownCommand indicates the command is not supported.
var ErrUnknownCommand = errors.New("unknown command")

// Bridge connects a Device to MQTT and websocket clients.
type Bridge struct {
	ID     string
	Device Device
	// Queue is optional; without it events only go to Hub.
	Queue *mqtt.Queue
	Hub   *events.Hub

	cmdCh chan command
}

type command struct {
	op  string
	arg string
}

// New creates a Bridge.
func New(id string, dev Device, q *mqtt.Queue) *Bridge {
	return &Bridge{
		ID:     id,
		Device: dev,
		Queue:  q,
		Hub:    events.NewHub(),
		cmdCh:  make(chan command, 16),
	}
}

// NewMQTTQueue creates a Queue whose will clears the retained meta topic
// of board id.
func NewMQTTQueue(brokerURL, id string) (*mqtt.Queue, error) {
	opts, topicPrefix, err := mqtt.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+id+"/meta", nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("horus:" + id)
	}
	return mqtt.NewQueue(opts, topicPrefix), nil
}

// Name implements framework.Named.
func (b *Bridge) Name() string {
	return "bridge"
}

func (b *Bridge) topic(suffix string) string {
	return b.ID + "/" + suffix
}

// Run implements framework.Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	b.Device.SetUnplugHandler(b.onUnplug)
	defer b.Device.SetUnplugHandler(nil)
	defer b.Hub.Close()

	if q := b.Queue; q != nil {
		sub := q.Sub(b.topic("cmd/#"), b.handleMsg)
		defer sub.Close()
		q.OnConnect = func(*mqtt.Queue) { b.publishMeta() }
		if token := q.Connect(); token.Wait() && token.Error() != nil {
			return token.Error()
		}
		defer q.Close()
		defer func() {
			q.PubWith(b.topic("meta"), nil, 1, true).WaitTimeout(time.Second)
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-b.cmdCh:
			b.Execute(cmd.op, cmd.arg)
		}
	}
}

func (b *Bridge) handleMsg(topic string, payload []byte) {
	cmd := command{
		op:  strings.TrimPrefix(topic, b.topic("cmd/")),
		arg: strings.TrimSpace(string(payload)),
	}
	select {
	case b.cmdCh <- cmd:
	default:
		glog.Warningf("command queue full, %s dropped", cmd.op)
	}
}

// Execute runs a command and publishes the resulting event.
func (b *Bridge) Execute(op, arg string) error {
	kind := events.KindStatus
	err := b.execute(op, arg, &kind)
	if err != nil {
		glog.Warningf("%s %q: %v", op, arg, err)
		b.publish(events.New(events.KindError, b.ID, b.Device.Status()).
			WithMessage(fmt.Sprintf("%s: %v", op, err)))
		return err
	}
	if kind != "" {
		b.publish(events.New(kind, b.ID, b.Device.Status()).WithMessage(op))
	}
	return nil
}

func (b *Bridge) execute(op, arg string, kind *string) error {
	d := b.Device
	switch op {
	case "board/connect":
		*kind = events.KindConnected
		return d.Connect()
	case "board/disconnect":
		*kind = events.KindDisconnected
		return d.Disconnect()
	case "board/status":
		return nil
	case "laser/on", "laser/off":
		on := op == "laser/on"
		if arg == "all" || arg == "" {
			if on {
				return d.LasersOn()
			}
			return d.LasersOff()
		}
		index, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid laser %q", arg)
		}
		if on {
			return d.LaserOn(index)
		}
		return d.LaserOff(index)
	case "motor/enable":
		return d.EnableMotor()
	case "motor/disable":
		return d.DisableMotor()
	case "motor/invert":
		inverted, err := strconv.ParseBool(arg)
		if err != nil {
			return fmt.Errorf("invalid bool %q", arg)
		}
		d.InvertMotor(inverted)
		return nil
	case "motor/speed", "motor/accel", "motor/relative", "motor/absolute":
		val, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid number %q", arg)
		}
		switch op {
		case "motor/speed":
			return d.SetSpeed(val)
		case "motor/accel":
			return d.SetAcceleration(val)
		case "motor/relative":
			d.SetRelative(val)
		default:
			d.SetAbsolute(val)
		}
		return nil
	case "motor/move":
		// published when the move completes.
		*kind = ""
		d.MoveAsync(func(res board.Result) {
			if res.Err != nil {
				b.publish(events.New(events.KindError, b.ID, d.Status()).
					WithMessage(fmt.Sprintf("%s: %v", op, res.Err)))
				return
			}
			b.publish(events.New(events.KindStatus, b.ID, d.Status()).WithMessage(op))
		})
		return nil
	case "ldr/read":
		val, err := d.ReadSensor(arg)
		if err != nil {
			return err
		}
		if q := b.Queue; q != nil {
			q.Pub(b.topic("ldr/"+arg), []byte(strconv.Itoa(val)))
		}
		return nil
	}
	return ErrUnknownCommand
}

func (b *Bridge) onUnplug() {
	b.publish(events.New(events.KindUnplugged, b.ID, b.Device.Status()))
}

func (b *Bridge) publish(ev *events.BoardEvent) {
	b.Hub.Publish(ev)
	q := b.Queue
	if q == nil {
		return
	}
	data, err := ev.Encode()
	if err != nil {
		glog.Errorf("encode %s event: %v", ev.Kind, err)
		return
	}
	q.Pub(b.topic("event"), data)
}

type meta struct {
	Port   string `json:"port"`
	Lasers int    `json:"lasers"`
}

func (b *Bridge) publishMeta() {
	s := b.Device.Status()
	data, err := json.Marshal(&meta{Port: s.Port, Lasers: len(s.Lasers)})
	if err != nil {
		panic(err)
	}
	b.Queue.PubWith(b.topic("meta"), data, 1, true)
}
