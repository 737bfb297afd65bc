package sh

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/hostcomm/pkg/fpga/comm"
	"github.com/robotalks/hostcomm/pkg/fpga/models"
)

// Shell provides ishell backed interactive shell over an FPGA session.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell   *ishell.Shell
	Session *comm.Session
}

const (
	shellKey = "$shell"
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&StatusCmd,
		&CommandCmd,
		&DoneCmd,
		&WaitCmd,
		&StartCmd,
		&StopCmd,
		&ClearCmd,
		&ReadCmd,
		&WriteCmd,
		&FIFOCmd,
		&FeaturesCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell driving s.
func New(s *comm.Session) *Shell {
	sh := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:   ishell.New(),
		Session: s,
	}
	sh.Shell.Set(shellKey, sh)
	sh.updatePrompt()
	for _, cmd := range commands {
		sh.Shell.AddCmd(cmd)
	}
	return sh
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

func (s *Shell) updatePrompt() {
	s.Shell.SetPrompt(fmt.Sprintf("[%s] > ", s.Session.State()))
}

// Print prints a result either as JSON or with the plain formatter.
func (s *Shell) Print(c *ishell.Context, v interface{}, plain func() string) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(plain())
}

// Run runs the shell.
func (s *Shell) Run(args ...string) error {
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	if s.Interactive {
		s.Shell.Run()
		return nil
	}
	return errors.New("command expected")
}

// ParseAddress parses a register address, decimal or 0x-prefixed.
func ParseAddress(str string) (uint16, error) {
	v, err := strconv.ParseUint(str, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid ADDRESS %q: %v", str, err)
	}
	return uint16(v), nil
}

func registerCmd(name string, address uint16) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		v, err := comm.Read(s.Session, comm.U8, address)
		if err != nil {
			c.Err(err)
			return
		}
		s.Print(c, map[string]uint8{name: v}, func() string {
			return fmt.Sprintf("%s = 0x%02x (%08b)", name, v, v)
		})
	}
}

func verbCmd(verb func(*comm.Session) error) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		if err := verb(s.Session); err != nil {
			c.Err(err)
			return
		}
		s.updatePrompt()
		c.Println("OK")
	}
}

var (
	// StatusCmd reads the status register.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Help: "read status register",
		Func: registerCmd("status", comm.StatusRegAddress),
	}

	// CommandCmd reads the command register.
	CommandCmd = ishell.Cmd{
		Name:    "command",
		Aliases: []string{"cmd"},
		Help:    "read command register",
		Func:    registerCmd("command", comm.CommandRegAddress),
	}

	// DoneCmd checks the done bit once.
	DoneCmd = ishell.Cmd{
		Name: "done",
		Help: "check whether the calculation is done",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			done, err := s.Session.CalcIsDone()
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, map[string]bool{"done": done}, func() string {
				return strconv.FormatBool(done)
			})
		},
	}

	// WaitCmd polls the done bit.
	WaitCmd = ishell.Cmd{
		Name: "wait",
		Help: "[TIMEOUT] poll until the calculation is done",
		Func: func(c *ishell.Context) {
			timeout := 10 * time.Second
			if len(c.Args) > 0 {
				d, err := time.ParseDuration(c.Args[0])
				if err != nil {
					c.Err(fmt.Errorf("invalid TIMEOUT: %v", err))
					return
				}
				timeout = d
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := models.WaitDone(ctx, ShellFrom(c).Session, 0); err != nil {
				c.Err(err)
				return
			}
			c.Println("done")
		},
	}

	// StartCmd starts acquisition.
	StartCmd = ishell.Cmd{
		Name: "start",
		Help: "start acquisition or calculation",
		Func: verbCmd((*comm.Session).Start),
	}

	// StopCmd stops acquisition.
	StopCmd = ishell.Cmd{
		Name: "stop",
		Help: "stop acquisition",
		Func: verbCmd((*comm.Session).Stop),
	}

	// ClearCmd clears the status register.
	ClearCmd = ishell.Cmd{
		Name: "clear",
		Help: "clear status register",
		Func: verbCmd((*comm.Session).ClearStatus),
	}

	// ReadCmd reads a typed register value.
	ReadCmd = ishell.Cmd{
		Name:    "read",
		Aliases: []string{"r"},
		Help:    "ADDRESS [TYPE] read register, TYPE defaults to u8",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("ADDRESS required"))
				return
			}
			address, err := ParseAddress(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			typeName := "u8"
			if len(c.Args) > 1 {
				typeName = c.Args[1]
			}
			t, err := LookupType(typeName)
			if err != nil {
				c.Err(err)
				return
			}
			s := ShellFrom(c)
			v, err := t.Read(s.Session, address)
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, map[string]string{"address": c.Args[0], "type": typeName, "value": v}, func() string {
				return v
			})
		},
	}

	// WriteCmd writes a typed register value.
	WriteCmd = ishell.Cmd{
		Name:    "write",
		Aliases: []string{"w"},
		Help:    "ADDRESS TYPE VALUE... write register",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 3 {
				c.Err(fmt.Errorf("ADDRESS TYPE VALUE required"))
				return
			}
			address, err := ParseAddress(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			t, err := LookupType(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			if err = t.Write(ShellFrom(c).Session, address, c.Args[2:]); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		},
	}

	// FIFOCmd reads records from a FIFO.
	FIFOCmd = ishell.Cmd{
		Name:    "fifo",
		Aliases: []string{"f"},
		Help:    "[BYTES] [ID] read FIFO records, BYTES defaults to the FIFO depth",
		Func: func(c *ishell.Context) {
			numBytes, id := comm.FIFODepth, uint64(models.SleepFIFOID)
			var err error
			if len(c.Args) > 0 {
				if numBytes, err = strconv.Atoi(c.Args[0]); err != nil {
					c.Err(fmt.Errorf("invalid BYTES: %v", err))
					return
				}
			}
			if len(c.Args) > 1 {
				if id, err = strconv.ParseUint(c.Args[1], 0, 8); err != nil {
					c.Err(fmt.Errorf("invalid ID: %v", err))
					return
				}
			}
			s := ShellFrom(c)
			recs, err := s.Session.ReadFIFO(numBytes, uint8(id))
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, recs, func() string {
				lines := make([]string, len(recs))
				for n, r := range recs {
					lines[n] = fmt.Sprintf("%d, %d", r.Counts, r.Class)
				}
				return strings.Join(lines, "\n")
			})
		},
	}

	// FeaturesCmd writes sleep tracker features.
	FeaturesCmd = ishell.Cmd{
		Name: "features",
		Help: "ACTIVITY HEART_RATE COSINE write sleep tracker inputs",
		Func: func(c *ishell.Context) {
			if len(c.Args) != models.InputNElemSleep {
				c.Err(fmt.Errorf("ACTIVITY HEART_RATE COSINE required"))
				return
			}
			var vals [models.InputNElemSleep]float32
			for n, arg := range c.Args {
				f, err := strconv.ParseFloat(arg, 32)
				if err != nil {
					c.Err(fmt.Errorf("invalid value %q: %v", arg, err))
					return
				}
				vals[n] = float32(f)
			}
			f := models.SleepFeatures{ActivityCount: vals[0], HeartRate: vals[1], SleepCosine: vals[2]}
			if err := models.WriteSleepFeatures(ShellFrom(c).Session, f); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		},
	}
)

// Main is a helper to provide a single call in main.
func Main(s *comm.Session) error {
	return New(s).Run(flag.Args()...)
}
