package topology

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/yanet-platform/switchsim/internal/bridge"
	"github.com/yanet-platform/switchsim/internal/device"
	"github.com/yanet-platform/switchsim/internal/frame"
	"github.com/yanet-platform/switchsim/internal/station"
	"github.com/yanet-platform/switchsim/internal/vlan"
)

var (
	// ErrNameTaken is returned when a device name is already in use.
	ErrNameTaken = errors.New("name is already taken")
	// ErrNotFound is returned when a named device does not exist.
	ErrNotFound = errors.New("device not found")
	// ErrNoSwitch is returned when a host is created before any switch.
	ErrNoSwitch = errors.New("no switches created")
	// ErrPortInUse is returned when a host is plugged into an occupied port.
	ErrPortInUse = errors.New("port is already in use")
)

type options struct {
	Log         *zap.SugaredLogger
	Capture     *frame.Capture
	PayloadSize int
}

func newOptions() *options {
	return &options{
		Log:         zap.NewNop().Sugar(),
		PayloadSize: 64 - ethernetHeaderSize,
	}
}

// Option is a function that configures the network.
type Option func(*options)

// WithLog sets the logger for the network and every switch in it.
func WithLog(log *zap.SugaredLogger) Option {
	return func(o *options) {
		o.Log = log
	}
}

// WithCapture makes hosts with MAC addresses send encoded frames and records
// every such frame into the capture.
func WithCapture(capture *frame.Capture) Option {
	return func(o *options) {
		o.Capture = capture
	}
}

// WithPayloadSize sets the payload size of encoded frames.
func WithPayloadSize(size int) Option {
	return func(o *options) {
		o.PayloadSize = size
	}
}

type switchNode struct {
	sw *bridge.Switch
	// hosts maps occupied ports to host names.
	hosts map[device.PortID]string
}

type hostNode struct {
	st         *station.Station
	switchName string
}

// Network is a registry of named switches and hosts.
//
// Switches and hosts share a single namespace. Network is not safe for
// concurrent use.
type Network struct {
	switches    map[string]*switchNode
	hosts       map[string]*hostNode
	capture     *frame.Capture
	payloadSize int
	log         *zap.SugaredLogger
}

// NewNetwork creates an empty network.
func NewNetwork(options ...Option) *Network {
	opts := newOptions()
	for _, o := range options {
		o(opts)
	}

	return &Network{
		switches:    map[string]*switchNode{},
		hosts:       map[string]*hostNode{},
		capture:     opts.Capture,
		payloadSize: opts.PayloadSize,
		log:         opts.Log,
	}
}

func (m *Network) nameTaken(name string) bool {
	_, isSwitch := m.switches[name]
	_, isHost := m.hosts[name]
	return isSwitch || isHost
}

// CreateSwitch creates a switch with |ports| ports.
func (m *Network) CreateSwitch(name string, ports int, maxAge uint32) error {
	if m.nameTaken(name) {
		return fmt.Errorf("failed to create switch %q: %w", name, ErrNameTaken)
	}

	sw := bridge.New(ports,
		bridge.WithLog(m.log.With(zap.String("switch", name))),
		bridge.WithMaxAge(maxAge),
	)
	m.switches[name] = &switchNode{
		sw:    sw,
		hosts: map[device.PortID]string{},
	}

	m.log.Infow("created switch",
		zap.String("name", name),
		zap.Int("ports", sw.NumPorts()),
		zap.Uint32("max_age", sw.MaxAge()),
	)
	return nil
}

// CreateHost creates a host and plugs it into a free port of a switch.
//
// Addresses that look like MAC addresses are stored in canonical form, so
// that encoded frames and the MAC table agree on them.
func (m *Network) CreateHost(name string, switchName string, addr device.Addr, port device.PortID) error {
	if len(m.switches) == 0 {
		return fmt.Errorf("failed to create host %q: %w", name, ErrNoSwitch)
	}
	if m.nameTaken(name) {
		return fmt.Errorf("failed to create host %q: %w", name, ErrNameTaken)
	}

	node, ok := m.switches[switchName]
	if !ok {
		return fmt.Errorf("failed to create host %q: switch %q: %w", name, switchName, ErrNotFound)
	}

	if port < 0 || int(port) >= node.sw.NumPorts() {
		return fmt.Errorf("failed to create host %q: %w", name, &device.InvalidPortError{
			Port:     port,
			NumPorts: node.sw.NumPorts(),
		})
	}
	if owner, ok := node.hosts[port]; ok {
		return fmt.Errorf("failed to create host %q: port %d of %q is used by %q: %w",
			name, port, switchName, owner, ErrPortInUse)
	}

	addr = frame.Canonical(addr)
	node.hosts[port] = name
	m.hosts[name] = &hostNode{
		st:         station.New(addr, node.sw, port),
		switchName: switchName,
	}

	m.log.Infow("created host",
		zap.String("name", name),
		zap.String("addr", string(addr)),
		zap.String("switch", switchName),
		zap.Stringer("port", port),
	)
	return nil
}

// CreateVLAN creates a VLAN on a switch and optionally moves ports into it.
func (m *Network) CreateVLAN(switchName string, id vlan.ID, ports []device.PortID) error {
	node, ok := m.switches[switchName]
	if !ok {
		return fmt.Errorf("failed to create VLAN %d: switch %q: %w", id, switchName, ErrNotFound)
	}

	node.sw.CreateVLAN(id)
	if len(ports) > 0 {
		node.sw.AssignPorts(id, ports)
	}

	m.log.Infow("created VLAN",
		zap.String("switch", switchName),
		zap.Stringer("vlan", id),
		zap.Any("ports", ports),
	)
	return nil
}

// AssignPorts moves ports of a switch into an existing VLAN.
//
// Assigning to a VLAN that does not exist does nothing.
func (m *Network) AssignPorts(switchName string, id vlan.ID, ports []device.PortID) error {
	node, ok := m.switches[switchName]
	if !ok {
		return fmt.Errorf("failed to assign ports to VLAN %d: switch %q: %w", id, switchName, ErrNotFound)
	}

	if !node.sw.AssignPorts(id, ports) {
		m.log.Warnw("VLAN does not exist, ports left in place",
			zap.String("switch", switchName),
			zap.Stringer("vlan", id),
		)
		return nil
	}

	m.log.Infow("assigned ports",
		zap.String("switch", switchName),
		zap.Stringer("vlan", id),
		zap.Any("ports", ports),
	)
	return nil
}

// Send sends count frames from one host to another. After each frame the
// receiving host drains its port.
//
// Returns the number of frames the receiver picked up.
func (m *Network) Send(from string, to string, count int) (int, error) {
	sender, ok := m.hosts[from]
	if !ok {
		return 0, fmt.Errorf("failed to send: host %q: %w", from, ErrNotFound)
	}
	receiver, ok := m.hosts[to]
	if !ok {
		return 0, fmt.Errorf("failed to send: host %q: %w", to, ErrNotFound)
	}

	received := 0
	for range count {
		m.log.Debugw("sending frame",
			zap.String("from", from),
			zap.String("from_addr", string(sender.st.Addr())),
			zap.String("to", to),
			zap.String("to_addr", string(receiver.st.Addr())),
		)

		if err := m.sendOne(sender.st, receiver.st.Addr()); err != nil {
			return received, err
		}

		n, err := receiver.st.Drain()
		if err != nil {
			return received, err
		}
		received += n
	}

	return received, nil
}

func (m *Network) sendOne(sender *station.Station, dst device.Addr) error {
	if m.capture == nil {
		return sender.Send(dst)
	}

	dstMAC, err := frame.ParseMAC(dst)
	if err != nil {
		return sender.Send(dst)
	}
	if _, err := frame.ParseMAC(sender.Addr()); err != nil {
		return sender.Send(dst)
	}

	data, err := sender.SendFrame(dstMAC, m.payloadSize)
	if err != nil {
		return err
	}

	return m.capture.Write(data)
}

// Apply creates every device described in the configuration.
func (m *Network) Apply(cfg *Config) error {
	for _, swCfg := range cfg.Switches {
		if err := m.CreateSwitch(swCfg.Name, swCfg.Ports, swCfg.MaxAge); err != nil {
			return err
		}

		for _, vlanCfg := range swCfg.VLANs {
			if err := m.CreateVLAN(swCfg.Name, vlanCfg.ID, vlanCfg.Ports); err != nil {
				return err
			}
		}
	}

	for _, hostCfg := range cfg.Hosts {
		if err := m.CreateHost(hostCfg.Name, hostCfg.Switch, hostCfg.Addr, hostCfg.Port); err != nil {
			return err
		}
	}

	return nil
}

// RunScenario plays the traffic steps in order until done or the context is
// canceled.
func (m *Network) RunScenario(ctx context.Context, scenario []SendConfig) error {
	for idx, step := range scenario {
		if err := ctx.Err(); err != nil {
			return err
		}

		count := step.Count
		if count == 0 {
			count = 1
		}

		received, err := m.Send(step.From, step.To, count)
		if err != nil {
			return fmt.Errorf("scenario step #%d: %w", idx, err)
		}

		m.log.Infow("sent frames",
			zap.String("from", step.From),
			zap.String("to", step.To),
			zap.Int("count", count),
			zap.Int("received", received),
		)
	}

	return nil
}

// SwitchNames returns names of all switches in ascending order.
func (m *Network) SwitchNames() []string {
	return slices.Sorted(maps.Keys(m.switches))
}

// HostNames returns names of all hosts in ascending order.
func (m *Network) HostNames() []string {
	return slices.Sorted(maps.Keys(m.hosts))
}

// Switch returns the switch with the given name.
func (m *Network) Switch(name string) (*bridge.Switch, bool) {
	node, ok := m.switches[name]
	if !ok {
		return nil, false
	}

	return node.sw, true
}

// Host returns the host with the given name and the name of its switch.
func (m *Network) Host(name string) (*station.Station, string, bool) {
	node, ok := m.hosts[name]
	if !ok {
		return nil, "", false
	}

	return node.st, node.switchName, true
}

// UsedPorts returns occupied ports of a switch in ascending order.
func (m *Network) UsedPorts(switchName string) []device.PortID {
	node, ok := m.switches[switchName]
	if !ok {
		return nil
	}

	return slices.Sorted(maps.Keys(node.hosts))
}

// HostsOn returns names of hosts plugged into a switch, ordered by port.
func (m *Network) HostsOn(switchName string) []string {
	node, ok := m.switches[switchName]
	if !ok {
		return nil
	}

	out := make([]string, 0, len(node.hosts))
	for _, port := range slices.Sorted(maps.Keys(node.hosts)) {
		out = append(out, node.hosts[port])
	}

	return out
}
