package station

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanet-platform/switchsim/internal/bridge"
	"github.com/yanet-platform/switchsim/internal/device"
	"github.com/yanet-platform/switchsim/internal/frame"
)

func TestRoundTrip(t *testing.T) {
	sw := bridge.New(4)
	h1 := New("1111", sw, 0)
	h2 := New("2222", sw, 1)

	require.NoError(t, h1.Send("2222"))

	n, err := h2.Drain()
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, uint64(1), h1.Sent())
	assert.Equal(t, uint64(1), h2.Received())
	assert.Equal(t, uint64(0), h2.Sent())
	// Destination is unknown, so the frame is flooded to every other port.
	assert.Equal(t, uint64(3), sw.SentTotal())
}

func TestRoundTripTwoPorts(t *testing.T) {
	sw := bridge.New(2)
	h1 := New("1111", sw, 0)
	h2 := New("2222", sw, 1)

	require.NoError(t, h1.Send("2222"))
	_, err := h2.Drain()
	require.NoError(t, err)

	assert.Equal(t, uint64(1), sw.SentTotal())
	assert.Equal(t, uint64(1), h2.Received())
}

func TestDrainIgnoresOtherAddresses(t *testing.T) {
	sw := bridge.New(3)
	h1 := New("1111", sw, 0)
	h2 := New("2222", sw, 1)
	h3 := New("3333", sw, 2)

	require.NoError(t, h1.Send("2222"))

	n, err := h3.Drain()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, uint64(0), h3.Received())

	n, err = h2.Drain()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUndrainedFrameIsLost(t *testing.T) {
	sw := bridge.New(2)
	h1 := New("1111", sw, 0)
	h2 := New("2222", sw, 1)

	require.NoError(t, h1.Send("2222"))
	require.NoError(t, h1.Send("2222"))

	n, err := h2.Drain()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint64(2), h1.Sent())
}

func TestUnicastAfterLearning(t *testing.T) {
	sw := bridge.New(4)
	h1 := New("1111", sw, 0)
	h2 := New("2222", sw, 1)

	require.NoError(t, h2.Send("1111"))
	require.NoError(t, h1.Send("2222"))

	counters, err := sw.PortCounters(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), counters.Sent)

	n, err := h2.Drain()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSendInvalidPort(t *testing.T) {
	sw := bridge.New(2)
	h := New("1111", sw, 5)

	require.ErrorIs(t, h.Send("2222"), device.ErrInvalidPort)
	assert.Equal(t, uint64(0), h.Sent())

	_, err := h.Drain()
	require.ErrorIs(t, err, device.ErrInvalidPort)
}

func TestSendFrame(t *testing.T) {
	sw := bridge.New(2)
	h1 := New("00:00:5e:00:53:01", sw, 0)
	h2 := New("00:00:5e:00:53:02", sw, 1)

	dst, err := net.ParseMAC(string(h2.Addr()))
	require.NoError(t, err)

	data, err := h1.SendFrame(dst, 64)
	require.NoError(t, err)

	src, gotDst, err := frame.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, h1.Addr(), src)
	assert.Equal(t, h2.Addr(), gotDst)

	n, err := h2.Drain()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint64(1), h1.Sent())
}

func TestSendFrameRequiresMAC(t *testing.T) {
	sw := bridge.New(2)
	h := New("1111", sw, 0)

	_, err := h.SendFrame(net.HardwareAddr{0, 0, 0x5e, 0, 0x53, 1}, 64)
	require.ErrorIs(t, err, frame.ErrNotMAC)
	assert.Equal(t, uint64(0), h.Sent())
}

func TestAccessors(t *testing.T) {
	sw := bridge.New(2)
	h := New("1111", sw, 1)

	assert.Equal(t, device.Addr("1111"), h.Addr())
	assert.Equal(t, device.PortID(1), h.Port())
}
