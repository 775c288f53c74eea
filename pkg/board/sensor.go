package board

import (
	"strconv"
	"strings"
)

// ReadSensor reads the light sensor at pin. A reply which isn't an
// integer reads as 0.
func (b *Board) ReadSensor(pin string) (int, error) {
	b.lock.Lock()
	res := b.send(readSensorCmd(pin), ReadLines)
	b.lock.Unlock()
	if res.Err != nil {
		return 0, res.Err
	}
	return parseReading(res.Response), nil
}

func parseReading(resp string) int {
	line := strings.SplitN(resp, "\n", 2)[0]
	val, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0
	}
	return val
}
