// Package env sets up the board and the bridge from flags and
// environment variables.
package env

import (
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/denisbrodbeck/machineid"

	"github.com/robotalks/horus.go/pkg/board"
)

// Config provides common options for the board tools.
type Config struct {
	Board board.Config

	// ID identifies the board on MQTT topics, the machine id by default.
	ID string
	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// WebsocketAddr is the listen address of the event stream,
	// disabled if empty.
	WebsocketAddr string
}

var defaultConfig = Config{
	Board: board.Config{
		Port:             board.DefaultPort,
		BaudRate:         board.DefaultBaudRate,
		LaserCount:       board.DefaultLaserCount,
		FailureThreshold: board.DefaultFailureThreshold,
		ResponseTimeout:  board.DefaultResponseTimeout,
	},
	MQTTBrokerURL: "mqtt://localhost:1883/horus/",
}

func init() {
	if val := os.Getenv("HORUS_SERIAL_PORT"); val != "" {
		defaultConfig.Board.Port = val
	}
	if val := os.Getenv("HORUS_BAUD_RATE"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.Board.BaudRate = baud
		}
	}
	if val := os.Getenv("HORUS_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("HORUS_WS_ADDR"); val != "" {
		defaultConfig.WebsocketAddr = val
	}
	defaultConfig.ID = os.Getenv("HORUS_ID")
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Board.Port, "port", defaultConfig.Board.Port, "Serial port of the board.")
	flag.IntVar(&defaultConfig.Board.BaudRate, "baud", defaultConfig.Board.BaudRate, "Baud rate.")
	flag.IntVar(&defaultConfig.Board.LaserCount, "lasers", defaultConfig.Board.LaserCount, "Number of laser channels.")
	flag.IntVar(&defaultConfig.Board.FailureThreshold, "threshold", defaultConfig.Board.FailureThreshold, "Consecutive failed commands before the board is considered unplugged.")
	flag.DurationVar(&defaultConfig.Board.ResponseTimeout, "response-timeout", defaultConfig.Board.ResponseTimeout, "Max wait for a command reply.")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Board ID used in MQTT topics, machine id if empty.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, disabled if empty.")
	flag.StringVar(&defaultConfig.WebsocketAddr, "ws", defaultConfig.WebsocketAddr, "Listen address of the websocket event stream, disabled if empty.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewBoard creates the board handle.
func (c *Config) NewBoard() *board.Board {
	return board.New(c.Board)
}

// BoardID returns ID, or the machine id if ID is empty.
func (c *Config) BoardID() (string, error) {
	if c.ID != "" {
		return c.ID, nil
	}
	return machineid.ProtectedID("horus")
}

// MustBoardID is BoardID and fails on error.
func (c *Config) MustBoardID() string {
	id, err := c.BoardID()
	if err != nil {
		log.Fatalln(err)
	}
	return id
}
