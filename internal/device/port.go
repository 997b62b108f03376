package device

import (
	"slices"
	"strconv"
)

// PortID is a port index, unique within its device.
type PortID int

func (m PortID) String() string {
	return "port" + strconv.Itoa(int(m))
}

// Addr is a station address.
//
// It is an opaque identifier: nothing in the forwarding path validates its
// format.
type Addr string

// Port holds frame counters and the delivery buffer of a single port.
type Port struct {
	sent     uint64
	received uint64
	// pending contains destination addresses of frames sent out of this
	// port that are not yet picked up by the attached station.
	pending []Addr
}

// Sent returns the number of frames sent out of this port.
func (m *Port) Sent() uint64 {
	return m.sent
}

// Received returns the number of frames received on this port.
func (m *Port) Received() uint64 {
	return m.received
}

// Pending returns a copy of the delivery buffer.
func (m *Port) Pending() []Addr {
	return slices.Clone(m.pending)
}

// RecordSent counts a frame sent out of this port.
func (m *Port) RecordSent() {
	m.sent++
}

// RecordReceived counts a frame received on this port.
func (m *Port) RecordReceived() {
	m.received++
}

// Enqueue appends a destination address to the delivery buffer.
func (m *Port) Enqueue(addr Addr) {
	m.pending = append(m.pending, addr)
}

// ClearBuffer drops every frame still waiting in the delivery buffer.
func (m *Port) ClearBuffer() {
	m.pending = m.pending[:0]
}

// Collect removes every buffered frame addressed to addr and returns how many
// were removed. Other entries keep their order.
func (m *Port) Collect(addr Addr) int {
	before := len(m.pending)
	m.pending = slices.DeleteFunc(m.pending, func(v Addr) bool {
		return v == addr
	})

	return before - len(m.pending)
}
