package fdb

import (
	"cmp"
	"slices"

	"github.com/yanet-platform/switchsim/internal/device"
	"github.com/yanet-platform/switchsim/internal/vlan"
)

// DefaultMaxAge is the number of forwarding steps an address may stay unseen
// as a frame source before it is evicted.
const DefaultMaxAge = 5

// Entry is a learned station address.
type Entry struct {
	// Addr is the learned source address.
	Addr device.Addr
	// Port is the port the address was first seen on.
	Port device.PortID
	// VLAN is the VLAN the port belonged to when the address was learned.
	VLAN vlan.ID
	// Age is the number of forwarding steps since the address was last seen
	// as a source.
	Age uint32
}

// Table is the forwarding database of a switch.
//
// Aging is counted in forwarding steps rather than wall-clock time. The table
// is not safe for concurrent use; the owning switch serializes access.
type Table struct {
	entries map[device.Addr]*Entry
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries: map[device.Addr]*Entry{},
	}
}

// Len returns the number of learned addresses.
func (m *Table) Len() int {
	return len(m.entries)
}

// Lookup returns the entry for the given address.
func (m *Table) Lookup(addr device.Addr) (Entry, bool) {
	entry, ok := m.entries[addr]
	if !ok {
		return Entry{}, false
	}

	return *entry, true
}

// Learn inserts a new entry unless the address is already known.
//
// Port and VLAN of an existing entry never change. Returns true if the
// address was inserted.
func (m *Table) Learn(addr device.Addr, port device.PortID, id vlan.ID) bool {
	if _, ok := m.entries[addr]; ok {
		return false
	}

	m.entries[addr] = &Entry{
		Addr: addr,
		Port: port,
		VLAN: id,
	}
	return true
}

// Refresh marks the address as just seen and ages every other entry by one
// step.
func (m *Table) Refresh(addr device.Addr) {
	for key, entry := range m.entries {
		if key == addr {
			entry.Age = 0
		} else {
			entry.Age++
		}
	}
}

// Evict removes entries whose age reached maxAge and returns their addresses
// in ascending order.
func (m *Table) Evict(maxAge uint32) []device.Addr {
	var evicted []device.Addr
	for addr, entry := range m.entries {
		if entry.Age >= maxAge {
			evicted = append(evicted, addr)
			delete(m.entries, addr)
		}
	}

	slices.Sort(evicted)
	return evicted
}

// Entries returns a snapshot of the table ordered by address.
func (m *Table) Entries() []Entry {
	out := make([]Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		out = append(out, *entry)
	}

	slices.SortFunc(out, func(a, b Entry) int {
		return cmp.Compare(a.Addr, b.Addr)
	})
	return out
}
