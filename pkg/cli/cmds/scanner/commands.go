package scanner

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/horus.go/pkg/board"
	"github.com/robotalks/horus.go/pkg/cli/sh"
)

func intArg(c *ishell.Context, name string) (int, bool) {
	if len(c.Args) < 1 {
		c.Err(fmt.Errorf("%s required", name))
		return 0, false
	}
	val, err := strconv.Atoi(c.Args[0])
	if err != nil {
		c.Err(fmt.Errorf("Invalid %s: %v", name, err))
		return 0, false
	}
	return val, true
}

// laserFunc returns the operation on laser INDEX, or all lasers
// without argument.
func laserFunc(c *ishell.Context, on bool) (func(*board.Board) error, bool) {
	if len(c.Args) == 0 || c.Args[0] == "all" {
		if on {
			return (*board.Board).LasersOn, true
		}
		return (*board.Board).LasersOff, true
	}
	index, ok := intArg(c, "INDEX")
	if !ok {
		return nil, false
	}
	return func(b *board.Board) error {
		if on {
			return b.LaserOn(index)
		}
		return b.LaserOff(index)
	}, true
}

var (
	// LaserOnCmd turns lasers on.
	LaserOnCmd = ishell.Cmd{
		Name:    "laser.on",
		Aliases: []string{"lon"},
		Help:    "[INDEX|all]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if fn, ok := laserFunc(c, true); ok {
				sh.Do(c, fn)
			}
		}),
	}

	// LaserOffCmd turns lasers off.
	LaserOffCmd = ishell.Cmd{
		Name:    "laser.off",
		Aliases: []string{"loff"},
		Help:    "[INDEX|all]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if fn, ok := laserFunc(c, false); ok {
				sh.Do(c, fn)
			}
		}),
	}

	// MotorEnableCmd enables the motor.
	MotorEnableCmd = ishell.Cmd{
		Name:    "motor.enable",
		Aliases: []string{"men"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.Do(c, (*board.Board).EnableMotor)
		}),
	}

	// MotorDisableCmd disables the motor.
	MotorDisableCmd = ishell.Cmd{
		Name:    "motor.disable",
		Aliases: []string{"mdis"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.Do(c, (*board.Board).DisableMotor)
		}),
	}

	// MotorSpeedCmd sets the feed rate.
	MotorSpeedCmd = ishell.Cmd{
		Name:    "motor.speed",
		Aliases: []string{"ms"},
		Help:    "SPEED",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if val, ok := intArg(c, "SPEED"); ok {
				sh.Do(c, func(b *board.Board) error { return b.SetSpeed(val) })
			}
		}),
	}

	// MotorAccelCmd sets the acceleration.
	MotorAccelCmd = ishell.Cmd{
		Name:    "motor.accel",
		Aliases: []string{"ma"},
		Help:    "ACCEL",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if val, ok := intArg(c, "ACCEL"); ok {
				sh.Do(c, func(b *board.Board) error { return b.SetAcceleration(val) })
			}
		}),
	}

	// MotorInvertCmd inverts the motor direction.
	MotorInvertCmd = ishell.Cmd{
		Name:    "motor.invert",
		Aliases: []string{"minv"},
		Help:    "[true|false]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			inverted := true
			if len(c.Args) > 0 {
				val, err := strconv.ParseBool(c.Args[0])
				if err != nil {
					c.Err(fmt.Errorf("Invalid value: %v", err))
					return
				}
				inverted = val
			}
			sh.Do(c, func(b *board.Board) error {
				b.InvertMotor(inverted)
				return nil
			})
		}),
	}

	// MotorRelativeCmd sets the step of following moves.
	MotorRelativeCmd = ishell.Cmd{
		Name:    "motor.rel",
		Aliases: []string{"mr"},
		Help:    "DELTA",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if val, ok := intArg(c, "DELTA"); ok {
				sh.Do(c, func(b *board.Board) error {
					b.SetRelative(val)
					return nil
				})
			}
		}),
	}

	// MotorAbsoluteCmd sets the current position.
	MotorAbsoluteCmd = ishell.Cmd{
		Name:    "motor.abs",
		Aliases: []string{"mabs"},
		Help:    "POS",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if val, ok := intArg(c, "POS"); ok {
				sh.Do(c, func(b *board.Board) error {
					b.SetAbsolute(val)
					return nil
				})
			}
		}),
	}

	// MotorMoveCmd moves the motor by the relative step and waits.
	MotorMoveCmd = ishell.Cmd{
		Name:    "motor.move",
		Aliases: []string{"mm"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.Do(c, (*board.Board).Move)
		}),
	}

	// LDRCmd reads a light sensor.
	LDRCmd = ishell.Cmd{
		Name:    "ldr",
		Aliases: []string{"sensor"},
		Help:    "PIN",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("PIN required"))
				return
			}
			pin := c.Args[0]
			val, err := sh.ShellFrom(c).Board.ReadSensor(pin)
			if err != nil {
				c.Err(err)
				return
			}
			sh.Print(c, map[string]interface{}{"pin": pin, "value": val}, "%d\n", val)
		}),
	}
)

func init() {
	sh.AddCmds(
		&LaserOnCmd,
		&LaserOffCmd,
		&MotorEnableCmd,
		&MotorDisableCmd,
		&MotorSpeedCmd,
		&MotorAccelCmd,
		&MotorInvertCmd,
		&MotorRelativeCmd,
		&MotorAbsoluteCmd,
		&MotorMoveCmd,
		&LDRCmd,
	)
}
