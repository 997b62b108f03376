package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"github.com/yanet-platform/switchsim/internal/device"
	"github.com/yanet-platform/switchsim/internal/report"
	"github.com/yanet-platform/switchsim/internal/topology"
	"github.com/yanet-platform/switchsim/internal/vlan"
)

// ErrUsage is returned for malformed commands.
var ErrUsage = errors.New("invalid usage")

const helpText = `Commands:
  create switch <name> <ports>                 create a switch
  create pc <name> <switch> <addr> <port>      create a host plugged into a switch port
  show network                                 list switches and their hosts
  show switch <name>                           show VLANs, port counters and the MAC table
  show pc <pattern>                            show hosts matching a glob pattern
  switch vlan <switch> <vlan> [p1,p2,...]      create a VLAN, optionally with ports
  switch assign <switch> <vlan> p1,p2,...      move ports into an existing VLAN
  send <from> <to> [count]                     send frames between hosts
  help                                         show this help
  quit                                         leave the shell
`

type options struct {
	Log    *zap.SugaredLogger
	Prompt string
}

func newOptions() *options {
	return &options{
		Log: zap.NewNop().Sugar(),
	}
}

// Option is a function that configures the shell.
type Option func(*options)

// WithLog sets the logger for the shell.
func WithLog(log *zap.SugaredLogger) Option {
	return func(o *options) {
		o.Log = log
	}
}

// WithPrompt makes the shell print a prompt before reading each command.
func WithPrompt(prompt string) Option {
	return func(o *options) {
		o.Prompt = prompt
	}
}

// Shell is a line-oriented command interpreter over a network.
type Shell struct {
	network *topology.Network
	in      io.Reader
	out     io.Writer
	prompt  string
	log     *zap.SugaredLogger
}

// New creates a shell reading commands from in and writing to out.
func New(network *topology.Network, in io.Reader, out io.Writer, options ...Option) *Shell {
	opts := newOptions()
	for _, o := range options {
		o(opts)
	}

	return &Shell{
		network: network,
		in:      in,
		out:     out,
		prompt:  opts.Prompt,
		log:     opts.Log,
	}
}

// Run executes commands until "quit", end of input or context
// cancellation.
//
// Command errors are reported to the output and do not stop the shell.
//
// On cancellation the pending read of the input is abandoned, not
// interrupted: the reading goroutine exits once the input yields a line or
// is closed. Callers that outlive the shell should close the input.
func (m *Shell) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(m.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(m.out, m.prompt)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}

			quit, err := m.Exec(line)
			if err != nil {
				m.log.Debugw("command failed", zap.String("line", line), zap.Error(err))
				fmt.Fprintf(m.out, "ERROR: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

// Exec executes a single command line. Returns true if the shell should
// stop.
func (m *Shell) Exec(line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}

	switch args[0] {
	case "help":
		_, err := io.WriteString(m.out, helpText)
		return false, err
	case "quit", "exit":
		return true, nil
	case "create":
		return false, m.create(args[1:])
	case "show":
		return false, m.show(args[1:])
	case "switch":
		return false, m.switchCmd(args[1:])
	case "send":
		return false, m.send(args[1:])
	default:
		return false, fmt.Errorf("unrecognized command %q", args[0])
	}
}

func (m *Shell) create(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: create switch|pc ...", ErrUsage)
	}

	switch args[0] {
	case "switch":
		if len(args) != 3 {
			return fmt.Errorf("%w: create switch <name> <ports>", ErrUsage)
		}
		ports, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid number of ports %q: %w", args[2], err)
		}
		return m.network.CreateSwitch(args[1], ports, 0)
	case "pc":
		if len(args) != 5 {
			return fmt.Errorf("%w: create pc <name> <switch> <addr> <port>", ErrUsage)
		}
		port, err := parsePort(args[4])
		if err != nil {
			return err
		}
		return m.network.CreateHost(args[1], args[2], device.Addr(args[3]), port)
	default:
		return fmt.Errorf("%w: cannot create %q", ErrUsage, args[0])
	}
}

func (m *Shell) show(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: show network|switch|pc", ErrUsage)
	}

	switch args[0] {
	case "network":
		return report.Network(m.out, m.network)
	case "switch":
		if len(args) != 2 {
			return fmt.Errorf("%w: show switch <name>", ErrUsage)
		}
		return report.Switch(m.out, m.network, args[1])
	case "pc":
		if len(args) != 2 {
			return fmt.Errorf("%w: show pc <pattern>", ErrUsage)
		}
		return m.showHosts(args[1])
	default:
		return fmt.Errorf("%w: cannot show %q", ErrUsage, args[0])
	}
}

func (m *Shell) showHosts(pattern string) error {
	g, err := glob.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	found := false
	for _, name := range m.network.HostNames() {
		if !g.Match(name) {
			continue
		}

		found = true
		if err := report.Host(m.out, m.network, name); err != nil {
			return err
		}
	}

	if !found {
		return fmt.Errorf("no hosts match %q: %w", pattern, topology.ErrNotFound)
	}

	return nil
}

func (m *Shell) switchCmd(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: switch vlan|assign ...", ErrUsage)
	}

	switch args[0] {
	case "vlan":
		if len(args) != 3 && len(args) != 4 {
			return fmt.Errorf("%w: switch vlan <switch> <vlan> [p1,p2,...]", ErrUsage)
		}
		id, err := parseVLAN(args[2])
		if err != nil {
			return err
		}

		var ports []device.PortID
		if len(args) == 4 {
			if ports, err = parsePorts(args[3]); err != nil {
				return err
			}
		}
		return m.network.CreateVLAN(args[1], id, ports)
	case "assign":
		if len(args) != 4 {
			return fmt.Errorf("%w: switch assign <switch> <vlan> p1,p2,...", ErrUsage)
		}
		id, err := parseVLAN(args[2])
		if err != nil {
			return err
		}
		ports, err := parsePorts(args[3])
		if err != nil {
			return err
		}
		return m.network.AssignPorts(args[1], id, ports)
	default:
		return fmt.Errorf("%w: unknown switch command %q", ErrUsage, args[0])
	}
}

func (m *Shell) send(args []string) error {
	if len(args) != 2 && len(args) != 3 {
		return fmt.Errorf("%w: send <from> <to> [count]", ErrUsage)
	}

	count := 1
	if len(args) == 3 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid frame count %q", args[2])
		}
		count = n
	}

	from, _, ok := m.network.Host(args[0])
	if !ok {
		return fmt.Errorf("host %q: %w", args[0], topology.ErrNotFound)
	}
	to, _, ok := m.network.Host(args[1])
	if !ok {
		return fmt.Errorf("host %q: %w", args[1], topology.ErrNotFound)
	}

	for range count {
		fmt.Fprintf(m.out, "Sending a frame: %s:%s ---> %s:%s\n", args[0], from.Addr(), args[1], to.Addr())
		if _, err := m.network.Send(args[0], args[1], 1); err != nil {
			return err
		}
	}

	return nil
}

func parsePort(s string) (device.PortID, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}

	return device.PortID(v), nil
}

// parsePorts parses a comma-separated list of ports without spaces.
func parsePorts(s string) ([]device.PortID, error) {
	var ports []device.PortID
	for _, field := range strings.Split(s, ",") {
		port, err := parsePort(field)
		if err != nil {
			return nil, err
		}
		ports = append(ports, port)
	}

	return ports, nil
}

func parseVLAN(s string) (vlan.ID, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "vlan"), 10, 16)
	if err != nil {
		return vlan.None, fmt.Errorf("invalid VLAN %q: %w", s, err)
	}
	if vlan.ID(v) == vlan.None {
		return vlan.None, fmt.Errorf("invalid VLAN %q: VLAN 0 is reserved", s)
	}

	return vlan.ID(v), nil
}
