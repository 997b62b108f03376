package station

import (
	"fmt"
	"net"

	"github.com/yanet-platform/switchsim/internal/bridge"
	"github.com/yanet-platform/switchsim/internal/device"
	"github.com/yanet-platform/switchsim/internal/frame"
)

// Fabric is the part of a switch a station is wired to.
type Fabric interface {
	// Forward runs one forwarding step for a frame arriving on ingress.
	Forward(src device.Addr, dst device.Addr, ingress device.PortID) (bridge.Decision, error)
	// ForwardFrame runs one forwarding step for an encoded frame.
	ForwardFrame(data []byte, ingress device.PortID) (bridge.Decision, error)
	// Pickup removes frames addressed to addr from the port's buffer.
	Pickup(port device.PortID, addr device.Addr) (int, error)
}

// localPort is the only port of a station.
const localPort device.PortID = 0

// Station is a host with a single port plugged into a switch port.
//
// The binding is fixed for the station's lifetime.
type Station struct {
	addr   device.Addr
	dev    *device.Device
	fabric Fabric
	port   device.PortID
}

// New creates a station with the given address wired to a switch port.
func New(addr device.Addr, fabric Fabric, port device.PortID) *Station {
	return &Station{
		addr:   addr,
		dev:    device.New(1),
		fabric: fabric,
		port:   port,
	}
}

// Addr returns the station address.
func (m *Station) Addr() device.Addr {
	return m.addr
}

// Port returns the switch port the station is plugged into.
func (m *Station) Port() device.PortID {
	return m.port
}

// Sent returns the number of frames this station sent.
func (m *Station) Sent() uint64 {
	return m.dev.SentTotal()
}

// Received returns the number of frames this station picked up.
func (m *Station) Received() uint64 {
	return m.dev.ReceivedTotal()
}

// Send sends a frame to dst through the switch.
func (m *Station) Send(dst device.Addr) error {
	if _, err := m.fabric.Forward(m.addr, dst, m.port); err != nil {
		return fmt.Errorf("failed to send to %q: %w", dst, err)
	}

	return m.dev.RecordSent(localPort)
}

// SendFrame encodes an Ethernet frame to dst and sends it through the switch.
//
// The station address must be a MAC address. Returns the frame as it was put
// on the wire.
func (m *Station) SendFrame(dst net.HardwareAddr, payloadSize int) ([]byte, error) {
	src, err := frame.ParseMAC(m.addr)
	if err != nil {
		return nil, err
	}

	data, err := frame.Encode(src, dst, payloadSize)
	if err != nil {
		return nil, err
	}

	if _, err := m.fabric.ForwardFrame(data, m.port); err != nil {
		return nil, fmt.Errorf("failed to send frame to %s: %w", dst, err)
	}

	if err := m.dev.RecordSent(localPort); err != nil {
		return nil, err
	}

	return data, nil
}

// Drain picks up every frame addressed to this station from its switch port
// and returns how many were received.
func (m *Station) Drain() (int, error) {
	n, err := m.fabric.Pickup(m.port, m.addr)
	if err != nil {
		return 0, fmt.Errorf("failed to drain port %d: %w", m.port, err)
	}

	for range n {
		if err := m.dev.RecordReceived(localPort); err != nil {
			return 0, err
		}
	}

	return n, nil
}
