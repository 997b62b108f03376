package device

// Device is a fixed-size collection of ports.
//
// It is the building block shared by switches and stations, which embed it
// by composition.
type Device struct {
	ports []Port
}

// New creates a device with |numPorts| ports.
func New(numPorts int) *Device {
	if numPorts < 0 {
		numPorts = -numPorts
	}

	return &Device{
		ports: make([]Port, numPorts),
	}
}

// NumPorts returns the number of ports of this device.
func (m *Device) NumPorts() int {
	return len(m.ports)
}

// Valid reports whether the given port identifier belongs to this device.
func (m *Device) Valid(id PortID) bool {
	return id >= 0 && int(id) < len(m.ports)
}

// Port returns the port with the given identifier.
func (m *Device) Port(id PortID) (*Port, error) {
	if !m.Valid(id) {
		return nil, &InvalidPortError{Port: id, NumPorts: len(m.ports)}
	}

	return &m.ports[id], nil
}

// RecordSent counts a frame sent out of the given port.
func (m *Device) RecordSent(id PortID) error {
	port, err := m.Port(id)
	if err != nil {
		return err
	}

	port.RecordSent()
	return nil
}

// RecordReceived counts a frame received on the given port.
func (m *Device) RecordReceived(id PortID) error {
	port, err := m.Port(id)
	if err != nil {
		return err
	}

	port.RecordReceived()
	return nil
}

// ClearBuffer empties the delivery buffer of the given port, losing frames
// no station picked up in time.
func (m *Device) ClearBuffer(id PortID) error {
	port, err := m.Port(id)
	if err != nil {
		return err
	}

	port.ClearBuffer()
	return nil
}

// ClearBuffers empties the delivery buffers of all ports.
func (m *Device) ClearBuffers() {
	for idx := range m.ports {
		m.ports[idx].ClearBuffer()
	}
}

// Sent returns the number of frames sent out of the given port.
func (m *Device) Sent(id PortID) (uint64, error) {
	port, err := m.Port(id)
	if err != nil {
		return 0, err
	}

	return port.Sent(), nil
}

// Received returns the number of frames received on the given port.
func (m *Device) Received(id PortID) (uint64, error) {
	port, err := m.Port(id)
	if err != nil {
		return 0, err
	}

	return port.Received(), nil
}

// SentTotal returns the number of frames sent across all ports.
func (m *Device) SentTotal() uint64 {
	total := uint64(0)
	for idx := range m.ports {
		total += m.ports[idx].Sent()
	}

	return total
}

// ReceivedTotal returns the number of frames received across all ports.
func (m *Device) ReceivedTotal() uint64 {
	total := uint64(0)
	for idx := range m.ports {
		total += m.ports[idx].Received()
	}

	return total
}
