package vlan

import (
	"maps"
	"slices"
	"strconv"

	"github.com/yanet-platform/switchsim/common/go/bitset"
	"github.com/yanet-platform/switchsim/internal/device"
)

// ID identifies a VLAN.
type ID uint16

const (
	// None is the VLAN of a port that belongs to no VLAN.
	//
	// It can never be created.
	None ID = 0
	// Default is the VLAN every port starts in.
	Default ID = 1
)

func (m ID) String() string {
	if m == None {
		return ""
	}

	return "vlan" + strconv.Itoa(int(m))
}

// Table tracks VLAN membership of switch ports.
//
// A port belongs to at most one VLAN at any time. A reverse index from port
// to VLAN is kept alongside the per-VLAN port sets so that reassignment does
// not scan every VLAN.
type Table struct {
	numPorts int
	members  map[ID]*bitset.Bitset
	portVLAN []ID
}

// NewTable creates a membership table for a device with the given number of
// ports, all of them in the default VLAN.
func NewTable(numPorts int) *Table {
	if numPorts < 0 {
		numPorts = -numPorts
	}

	all := bitset.New(uint32(numPorts))
	portVLAN := make([]ID, numPorts)
	for idx := range numPorts {
		all.Insert(uint32(idx))
		portVLAN[idx] = Default
	}

	return &Table{
		numPorts: numPorts,
		members:  map[ID]*bitset.Bitset{Default: all},
		portVLAN: portVLAN,
	}
}

// Exists reports whether the VLAN was created.
func (m *Table) Exists(id ID) bool {
	_, ok := m.members[id]
	return ok
}

// Create creates an empty VLAN. Creating an existing VLAN does nothing.
func (m *Table) Create(id ID) {
	if id == None || m.Exists(id) {
		return
	}

	m.members[id] = bitset.New(uint32(m.numPorts))
}

// Assign moves ports into the given VLAN, removing them from whatever VLAN
// they belonged to.
//
// Ports outside of the device are skipped. Returns false without changing
// anything when the VLAN does not exist.
func (m *Table) Assign(id ID, ports []device.PortID) bool {
	target, ok := m.members[id]
	if !ok {
		return false
	}

	for _, port := range ports {
		if port < 0 || int(port) >= m.numPorts {
			continue
		}

		if prev := m.portVLAN[port]; prev != None && prev != id {
			m.members[prev].Remove(uint32(port))
		}

		target.Insert(uint32(port))
		m.portVLAN[port] = id
	}

	return true
}

// Of returns the VLAN the port belongs to, or None.
func (m *Table) Of(port device.PortID) ID {
	if port < 0 || int(port) >= m.numPorts {
		return None
	}

	return m.portVLAN[port]
}

// Members returns ports of the given VLAN in ascending order.
func (m *Table) Members(id ID) []device.PortID {
	set, ok := m.members[id]
	if !ok {
		return nil
	}

	out := make([]device.PortID, 0, set.Count())
	for idx := range set.Iter() {
		out = append(out, device.PortID(idx))
	}

	return out
}

// IDs returns identifiers of all VLANs in ascending order.
func (m *Table) IDs() []ID {
	return slices.Sorted(maps.Keys(m.members))
}

// Database returns every VLAN with its sorted port list, empty VLANs
// included.
func (m *Table) Database() map[ID][]device.PortID {
	out := make(map[ID][]device.PortID, len(m.members))
	for id := range m.members {
		out[id] = m.Members(id)
	}

	return out
}
