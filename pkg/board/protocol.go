package board

import "strconv"

const (
	// Banner is the line sent by the Horus firmware after reset.
	Banner = "Horus 0.1 ['$' for help]\r\n"
	// Terminator ends every command line.
	Terminator = "\r\n"

	// Ctrl-X
	resetSequence = "\x18" + Terminator

	cmdFeedRate     = "G1F"
	cmdMoveTo       = "G1X"
	cmdAcceleration = "$120="
	cmdMotorEnable  = "M17"
	cmdMotorDisable = "M18"
	cmdLaserOn      = "M71T"
	cmdLaserOff     = "M70T"
	cmdReadSensor   = "M50T"
)

func feedRateCmd(speed int) string {
	return cmdFeedRate + strconv.Itoa(speed)
}

func moveToCmd(pos int) string {
	return cmdMoveTo + strconv.Itoa(pos)
}

func accelerationCmd(accel int) string {
	return cmdAcceleration + strconv.Itoa(accel)
}

// Laser channels are 1-indexed on the wire.
func laserCmd(on bool, index int) string {
	if on {
		return cmdLaserOn + strconv.Itoa(index+1)
	}
	return cmdLaserOff + strconv.Itoa(index+1)
}

func readSensorCmd(pin string) string {
	return cmdReadSensor + pin
}
