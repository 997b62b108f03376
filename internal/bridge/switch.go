package bridge

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/yanet-platform/switchsim/internal/device"
	"github.com/yanet-platform/switchsim/internal/fdb"
	"github.com/yanet-platform/switchsim/internal/frame"
	"github.com/yanet-platform/switchsim/internal/vlan"
)

// PortCounters is a snapshot of a single port's counters.
type PortCounters struct {
	Sent     uint64
	Received uint64
}

// Switch is an unmanaged Ethernet switch.
//
// It learns source addresses, ages them out after a number of forwarding
// steps, and forwards frames within VLAN boundaries. Every forwarding step
// runs under a single lock, so a switch may be shared between stations
// driven from different goroutines.
type Switch struct {
	mu     sync.Mutex
	dev    *device.Device
	macs   *fdb.Table
	vlans  *vlan.Table
	maxAge uint32
	log    *zap.SugaredLogger
}

// New creates a switch with |numPorts| ports, all of them in the default
// VLAN.
func New(numPorts int, options ...Option) *Switch {
	opts := newOptions()
	for _, o := range options {
		o(opts)
	}

	dev := device.New(numPorts)

	return &Switch{
		dev:    dev,
		macs:   fdb.NewTable(),
		vlans:  vlan.NewTable(dev.NumPorts()),
		maxAge: opts.MaxAge,
		log:    opts.Log,
	}
}

// NumPorts returns the number of ports.
func (m *Switch) NumPorts() int {
	return m.dev.NumPorts()
}

// MaxAge returns the eviction threshold in forwarding steps.
func (m *Switch) MaxAge() uint32 {
	return m.maxAge
}

// CreateVLAN creates an empty VLAN. Existing VLANs are left untouched.
func (m *Switch) CreateVLAN(id vlan.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.vlans.Create(id)
}

// AssignPorts moves ports into an existing VLAN.
//
// Unknown VLANs and out-of-range ports are silently ignored. Returns false
// if the VLAN does not exist.
func (m *Switch) AssignPorts(id vlan.ID, ports []device.PortID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.vlans.Assign(id, ports) {
		m.log.Debugw("ignored port assignment to unknown VLAN",
			zap.Stringer("vlan", id),
			zap.Any("ports", ports),
		)
		return false
	}

	return true
}

// Forward performs one forwarding step for a frame from src to dst that
// arrived on the ingress port.
//
// Frames still waiting in port buffers from the previous step are dropped
// first. An invalid ingress port is rejected before any state changes.
func (m *Switch) Forward(src device.Addr, dst device.Addr, ingress device.PortID) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dev.Valid(ingress) {
		return 0, fmt.Errorf("failed to forward frame from %q: %w", src, &device.InvalidPortError{
			Port:     ingress,
			NumPorts: m.dev.NumPorts(),
		})
	}

	m.dev.ClearBuffers()

	if m.macs.Learn(src, ingress, m.vlans.Of(ingress)) {
		m.log.Debugw("learned address",
			zap.String("addr", string(src)),
			zap.Stringer("port", ingress),
			zap.Stringer("vlan", m.vlans.Of(ingress)),
		)
	}

	m.macs.Refresh(src)
	for _, addr := range m.macs.Evict(m.maxAge) {
		m.log.Debugw("evicted address", zap.String("addr", string(addr)))
	}

	// Ingress is valid, so neither this nor the lookups below can fail.
	port, _ := m.dev.Port(ingress)
	port.RecordReceived()

	source, _ := m.macs.Lookup(src)

	decision := m.decide(source, dst, ingress)
	m.log.Debugw("forwarded frame",
		zap.String("src", string(src)),
		zap.String("dst", string(dst)),
		zap.Stringer("ingress", ingress),
		zap.Stringer("decision", decision),
	)

	return decision, nil
}

func (m *Switch) decide(source fdb.Entry, dst device.Addr, ingress device.PortID) Decision {
	if target, ok := m.macs.Lookup(dst); ok {
		if target.VLAN != source.VLAN {
			return DecisionSuppressed
		}

		m.deliver(target.Port, dst)
		return DecisionUnicast
	}

	for _, id := range m.vlans.Members(source.VLAN) {
		if id != ingress {
			m.deliver(id, dst)
		}
	}

	return DecisionFlood
}

func (m *Switch) deliver(id device.PortID, dst device.Addr) {
	port, err := m.dev.Port(id)
	if err != nil {
		// Learned ports and VLAN members always belong to the device.
		panic(err)
	}

	port.RecordSent()
	port.Enqueue(dst)
}

// ForwardFrame decodes an Ethernet frame and forwards it by its MAC
// addresses.
func (m *Switch) ForwardFrame(data []byte, ingress device.PortID) (Decision, error) {
	src, dst, err := frame.Decode(data)
	if err != nil {
		return 0, err
	}

	return m.Forward(src, dst, ingress)
}

// Pickup removes frames addressed to addr from the delivery buffer of the
// given port and returns how many were removed.
func (m *Switch) Pickup(id device.PortID, addr device.Addr) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	port, err := m.dev.Port(id)
	if err != nil {
		return 0, err
	}

	return port.Collect(addr), nil
}

// SentTotal returns the number of frames sent across all ports.
func (m *Switch) SentTotal() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.dev.SentTotal()
}

// ReceivedTotal returns the number of frames received across all ports.
func (m *Switch) ReceivedTotal() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.dev.ReceivedTotal()
}

// PortCounters returns counters of the given port.
func (m *Switch) PortCounters(id device.PortID) (PortCounters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	port, err := m.dev.Port(id)
	if err != nil {
		return PortCounters{}, err
	}

	return PortCounters{Sent: port.Sent(), Received: port.Received()}, nil
}

// Pending returns the delivery buffer of the given port.
func (m *Switch) Pending(id device.PortID) ([]device.Addr, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	port, err := m.dev.Port(id)
	if err != nil {
		return nil, err
	}

	return port.Pending(), nil
}

// MACTable returns a snapshot of learned addresses ordered by address.
func (m *Switch) MACTable() []fdb.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.macs.Entries()
}

// VLANDatabase returns every VLAN with its sorted port list.
func (m *Switch) VLANDatabase() map[vlan.ID][]device.PortID {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.vlans.Database()
}

// VLANs returns identifiers of all VLANs in ascending order.
func (m *Switch) VLANs() []vlan.ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.vlans.IDs()
}
