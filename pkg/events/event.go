// Package events defines board state events and their fan-out.
package events

import (
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/horus.go/pkg/board"
)

// Event kinds.
const (
	KindConnected    = "connected"
	KindDisconnected = "disconnected"
	KindUnplugged    = "unplugged"
	KindStatus       = "status"
	KindError        = "error"
)

// BoardEvent is the wire form of a board state change.
type BoardEvent struct {
	Kind         string `protobuf:"bytes,1,opt,name=kind,proto3" json:"kind,omitempty"`
	Id           string `protobuf:"bytes,2,opt,name=id,proto3" json:"id,omitempty"`
	Port         string `protobuf:"bytes,3,opt,name=port,proto3" json:"port,omitempty"`
	Message      string `protobuf:"bytes,4,opt,name=message,proto3" json:"message,omitempty"`
	Connected    bool   `protobuf:"varint,5,opt,name=connected,proto3" json:"connected,omitempty"`
	MotorEnabled bool   `protobuf:"varint,6,opt,name=motor_enabled,json=motorEnabled,proto3" json:"motor_enabled,omitempty"`
	Position     int64  `protobuf:"varint,7,opt,name=position,proto3" json:"position,omitempty"`
	Speed        int64  `protobuf:"varint,8,opt,name=speed,proto3" json:"speed,omitempty"`
	Acceleration int64  `protobuf:"varint,9,opt,name=acceleration,proto3" json:"acceleration,omitempty"`
	Lasers       []bool `protobuf:"varint,10,rep,packed,name=lasers,proto3" json:"lasers,omitempty"`
	Failures     int32  `protobuf:"varint,11,opt,name=failures,proto3" json:"failures,omitempty"`
	Unplugged    bool   `protobuf:"varint,12,opt,name=unplugged,proto3" json:"unplugged,omitempty"`
	// Timestamp is in Unix nanoseconds.
	Timestamp            int64    `protobuf:"varint,13,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

// Reset implements proto.Message.
func (m *BoardEvent) Reset() { *m = BoardEvent{} }

// String implements proto.Message.
func (m *BoardEvent) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*BoardEvent) ProtoMessage() {}

func init() {
	proto.RegisterType((*BoardEvent)(nil), "horus.board.v1.BoardEvent")
}

// New creates an event of kind from a board status.
func New(kind, id string, s board.Status) *BoardEvent {
	return &BoardEvent{
		Kind:         kind,
		Id:           id,
		Port:         s.Port,
		Connected:    s.State == board.Connected,
		MotorEnabled: s.Motor.Enabled,
		Position:     int64(s.Motor.Position),
		Speed:        int64(s.Motor.Speed),
		Acceleration: int64(s.Motor.Acceleration),
		Lasers:       s.Lasers,
		Failures:     int32(s.Failures),
		Unplugged:    s.Unplugged,
		Timestamp:    time.Now().UnixNano(),
	}
}

// WithMessage sets Message.
func (m *BoardEvent) WithMessage(msg string) *BoardEvent {
	m.Message = msg
	return m
}

// Encode encodes the event.
func (m *BoardEvent) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// Decode decodes an event.
func Decode(data []byte) (*BoardEvent, error) {
	var m BoardEvent
	if err := proto.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
