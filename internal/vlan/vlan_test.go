package vlan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanet-platform/switchsim/internal/device"
)

func TestNewTableDefaultVLAN(t *testing.T) {
	table := NewTable(4)

	assert.Equal(t, []ID{Default}, table.IDs())
	assert.Equal(t, []device.PortID{0, 1, 2, 3}, table.Members(Default))
	for port := range device.PortID(4) {
		assert.Equal(t, Default, table.Of(port))
	}
}

func TestCreateIsIdempotent(t *testing.T) {
	table := NewTable(4)

	table.Create(2)
	require.True(t, table.Assign(2, []device.PortID{1}))
	table.Create(2)

	assert.Equal(t, []device.PortID{1}, table.Members(2))
}

func TestCreateNoneIgnored(t *testing.T) {
	table := NewTable(2)

	table.Create(None)

	assert.False(t, table.Exists(None))
	assert.Equal(t, []ID{Default}, table.IDs())
}

func TestAssignUnknownVLAN(t *testing.T) {
	table := NewTable(4)

	assert.False(t, table.Assign(7, []device.PortID{0, 1}))
	assert.Equal(t, []device.PortID{0, 1, 2, 3}, table.Members(Default))
	assert.Nil(t, table.Members(7))
}

func TestAssignSkipsOutOfRangePorts(t *testing.T) {
	table := NewTable(4)
	table.Create(2)

	require.True(t, table.Assign(2, []device.PortID{-1, 3, 4, 100}))

	assert.Equal(t, []device.PortID{3}, table.Members(2))
	assert.Equal(t, []device.PortID{0, 1, 2}, table.Members(Default))
}

func TestPortBelongsToExactlyOneVLAN(t *testing.T) {
	table := NewTable(6)
	table.Create(2)
	table.Create(3)

	require.True(t, table.Assign(2, []device.PortID{0, 1, 2}))
	require.True(t, table.Assign(3, []device.PortID{2, 3}))
	require.True(t, table.Assign(Default, []device.PortID{0}))

	for port := range device.PortID(6) {
		count := 0
		for _, members := range table.Database() {
			for _, p := range members {
				if p == port {
					count++
				}
			}
		}
		assert.Equal(t, 1, count, "port %d", port)
	}

	assert.Equal(t, map[ID][]device.PortID{
		Default: {0, 4, 5},
		2:       {1},
		3:       {2, 3},
	}, table.Database())
	assert.Equal(t, ID(3), table.Of(2))
}

func TestDatabaseIncludesEmptyVLANs(t *testing.T) {
	table := NewTable(2)
	table.Create(5)

	db := table.Database()

	require.Contains(t, db, ID(5))
	assert.Empty(t, db[5])
}

func TestOfOutOfRange(t *testing.T) {
	table := NewTable(2)

	assert.Equal(t, None, table.Of(-1))
	assert.Equal(t, None, table.Of(2))
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "vlan1", Default.String())
	assert.Equal(t, "vlan42", ID(42).String())
	assert.Equal(t, "", None.String())
}
