package board

import (
	"time"

	fx "github.com/robotalks/horus.go/pkg/framework"
)

// InvertMotor sets the direction multiplier to -1 if inverted, +1 otherwise.
func (b *Board) InvertMotor(inverted bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if inverted {
		b.motor.direction = -1
	} else {
		b.motor.direction = 1
	}
}

// SetRelative sets the delta applied by the following moves.
// The delta is kept until SetRelative or SetAbsolute is called again.
func (b *Board) SetRelative(delta int) {
	b.lock.Lock()
	b.motor.relative = delta
	b.lock.Unlock()
}

// SetAbsolute resets the relative delta and sets the current position.
// Nothing is sent to the board.
func (b *Board) SetAbsolute(pos int) {
	b.lock.Lock()
	b.setAbsolute(pos)
	b.lock.Unlock()
}

func (b *Board) setAbsolute(pos int) {
	b.motor.relative, b.motor.position = 0, pos
}

// SetSpeed sets the feed rate. The command is only sent if speed differs
// from the last speed sent.
func (b *Board) SetSpeed(speed int) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.setSpeed(speed)
}

func (b *Board) setSpeed(speed int) error {
	if b.state != Connected {
		return ErrNotConnected
	}
	if b.motor.speed == speed {
		return nil
	}
	res := b.send(feedRateCmd(speed), ReadLine)
	b.motor.speed = speed
	return res.Err
}

// SetAcceleration sets the acceleration parameter. The command is only
// sent if accel differs from the last value sent.
func (b *Board) SetAcceleration(accel int) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.state != Connected {
		return ErrNotConnected
	}
	if b.motor.acceleration == accel {
		return nil
	}
	res := b.send(accelerationCmd(accel), ReadLine)
	b.motor.acceleration = accel
	return res.Err
}

// EnableMotor enables the motor at minimum speed, waits for it to settle
// and restores the previous speed.
func (b *Board) EnableMotor() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.state != Connected {
		return ErrNotConnected
	}
	if b.motor.enabled {
		return nil
	}
	var errs fx.AggregatedError
	speed := b.motor.speed
	errs.Add(b.setSpeed(1))
	errs.Add(b.send(cmdMotorEnable, ReadLine).Err)
	time.Sleep(b.conf.EnableSettle)
	errs.Add(b.setSpeed(speed))
	b.motor.enabled = true
	return errs.Aggregate()
}

// DisableMotor disables the motor if enabled.
func (b *Board) DisableMotor() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.disableMotor()
}

func (b *Board) disableMotor() error {
	if b.state != Connected {
		return ErrNotConnected
	}
	if !b.motor.enabled {
		return nil
	}
	res := b.send(cmdMotorDisable, ReadLine)
	b.motor.enabled = false
	return res.Err
}

// Move adds relative * direction to the position and moves the motor
// there, waiting for the board to reply.
func (b *Board) Move() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	cmd, err := b.nextMove()
	if err != nil {
		return err
	}
	return b.send(cmd, ReadLine).Err
}

// MoveAsync is the non-blocking form of Move. done, if not nil, receives
// the result.
func (b *Board) MoveAsync(done func(Result)) {
	b.lock.Lock()
	defer b.lock.Unlock()
	cmd, err := b.nextMove()
	if err != nil {
		if done != nil {
			b.notify.post(func() { done(Result{Err: err}) })
		}
		return
	}
	b.sendAsync(cmd, ReadLine, done)
}

func (b *Board) nextMove() (string, error) {
	if b.state != Connected {
		return "", ErrNotConnected
	}
	b.motor.position += b.motor.relative * b.motor.direction
	return moveToCmd(b.motor.position), nil
}
