package env

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/horus.go/pkg/board"
)

func TestNewConfigCopiesDefault(t *testing.T) {
	conf := NewConfig()
	conf.Board.Port = "/dev/ttyACM0"
	require.NotEqual(t, "/dev/ttyACM0", Default().Board.Port)
}

func TestNewBoard(t *testing.T) {
	conf := NewConfig()
	conf.Board.Port = "/dev/ttyACM1"
	conf.Board.LaserCount = 3
	b := conf.NewBoard()
	require.Equal(t, "/dev/ttyACM1", b.Config().Port)
	require.Equal(t, 3, b.LaserCount())
	require.Equal(t, board.Disconnected, b.State())
}

func TestBoardID(t *testing.T) {
	conf := NewConfig()
	conf.ID = "scanner-1"
	id, err := conf.BoardID()
	require.NoError(t, err)
	require.Equal(t, "scanner-1", id)
}
