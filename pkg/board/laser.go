package board

import (
	fx "github.com/robotalks/horus.go/pkg/framework"
)

// LaserCount returns the number of laser channels.
func (b *Board) LaserCount() int {
	return b.conf.LaserCount
}

// LaserOn turns on laser index (0-based). The command is only sent if
// the laser is off, and the laser is only marked on if the board replied.
func (b *Board) LaserOn(index int) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.setLaser(index, true)
}

// LaserOff turns off laser index (0-based).
func (b *Board) LaserOff(index int) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.setLaser(index, false)
}

// LasersOn turns on all lasers in index order.
func (b *Board) LasersOn() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.setLasers(true)
}

// LasersOff turns off all lasers in index order.
func (b *Board) LasersOff() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.lasersOff()
}

func (b *Board) lasersOff() error {
	return b.setLasers(false)
}

func (b *Board) setLasers(on bool) error {
	var errs fx.AggregatedError
	for i := range b.lasers {
		errs.Add(b.setLaser(i, on))
	}
	return errs.Aggregate()
}

func (b *Board) setLaser(index int, on bool) error {
	if index < 0 || index >= len(b.lasers) {
		return &LaserError{Index: index, Count: len(b.lasers)}
	}
	if b.lasers[index] == on {
		return nil
	}
	res := b.send(laserCmd(on, index), ReadLine)
	if res.Response != "" {
		b.lasers[index] = on
	}
	return res.Err
}
