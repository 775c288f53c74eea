package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/horus.go/pkg/board"
	"github.com/robotalks/horus.go/pkg/env"
	"github.com/robotalks/horus.go/pkg/serialport"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *env.Config
	Board  *board.Board
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly       bool
	outputJSON     bool
	connectOnStart bool

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&StatusCmd,
		&SendCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.BoolVar(&connectOnStart, "c", connectOnStart, "Connect the board on start.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Board == nil {
			c.Err(board.ErrNotConnected)
			return
		}
		fn(c)
	}
}

// Print prints v as JSON in JSON mode, or with format otherwise.
func Print(c *ishell.Context, v interface{}, format string, args ...interface{}) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Printf(format, args...)
}

// Do runs an operation on the board and prints OK or the error.
func Do(c *ishell.Context, fn func(*board.Board) error) error {
	s := ShellFrom(c)
	if s.Board == nil {
		c.Err(board.ErrNotConnected)
		return board.ErrNotConnected
	}
	if err := fn(s.Board); err != nil {
		c.Err(err)
		return err
	}
	if s.OutputJSON {
		Print(c, s.Board.Status(), "")
		return nil
	}
	c.Println("OK")
	return nil
}

// FormatStatus formats Status for display.
func FormatStatus(st board.Status) string {
	str := fmt.Sprintf("%s %s motor(enabled=%v pos=%d rel=%d dir=%d speed=%d accel=%d) lasers%v",
		st.Port, st.State, st.Motor.Enabled, st.Motor.Position, st.Motor.Relative,
		st.Motor.Direction, st.Motor.Speed, st.Motor.Acceleration, st.Lasers)
	if st.Failures > 0 {
		str += fmt.Sprintf(" failures=%d", st.Failures)
	}
	if st.Unplugged {
		str += " UNPLUGGED"
	}
	return str
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect connects the board on port, the configured port if empty.
func (s *Shell) Connect(port string) error {
	s.Disconnect()
	conf := s.Config.Board
	if port != "" {
		conf.Port = port
	}
	b := board.New(conf)
	b.SetUnplugHandler(func() {
		s.Shell.Printf("%s: board unplugged\n", conf.Port)
	})
	if err := b.Connect(); err != nil {
		return err
	}
	s.Board = b
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", conf.Port))
	return nil
}

// Disconnect disconnects current board.
func (s *Shell) Disconnect() error {
	if s.Board == nil {
		return nil
	}
	err := s.Board.Disconnect()
	s.Board = nil
	s.Shell.SetPrompt(unconnectedPrompt)
	return err
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Board.Port)
		}
		if err := s.Connect(""); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Board.Port, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			infoList, err := serialport.List()
			if err != nil {
				c.Err(err)
				return
			}
			if ShellFrom(c).OutputJSON {
				Print(c, infoList, "")
				return
			}
			if len(infoList) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, info := range infoList {
				if info.IsUSB {
					c.Printf("%s: %s %s:%s %s\n", info.Name, info.Product, info.VID, info.PID, info.SerialNumber)
				} else {
					c.Println(info.Name)
				}
			}
		},
	}

	// ConnectCmd connects a board.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[PORT]",
		Func: func(c *ishell.Context) {
			var port string
			if len(c.Args) > 0 {
				port = c.Args[0]
			}
			if err := ShellFrom(c).Connect(port); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current board.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Disconnect(); err != nil {
				c.Err(err)
			}
		},
	}

	// StatusCmd prints board status.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"s"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			st := ShellFrom(c).Board.Status()
			Print(c, st, "%s\n", FormatStatus(st))
		}),
	}

	// SendCmd sends a raw command and prints the reply.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"raw"},
		Help:    "COMMAND...",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("COMMAND required"))
				return
			}
			cmd := c.Args[0]
			for _, arg := range c.Args[1:] {
				cmd += " " + arg
			}
			res := ShellFrom(c).Board.SendCommand(cmd, board.ReadLines)
			if res.Err != nil {
				c.Err(res.Err)
				return
			}
			Print(c, map[string]string{"response": res.Response}, "%s", res.Response)
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	args := flag.Args()
	autoConnect := connectOnStart
	if evalOnly && len(args) > 0 {
		switch args[0] {
		case PortsCmd.Name, ConnectCmd.Name:
		default:
			autoConnect = true
		}
	}
	New(env.NewConfig()).WithAutoConnect(autoConnect).Run(args...)
}
