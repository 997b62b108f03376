package frame

import (
	"bytes"
	"net"
	"testing"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanet-platform/switchsim/internal/device"
)

func mustMAC(t *testing.T, s string) net.HardwareAddr {
	hw, err := net.ParseMAC(s)
	require.NoError(t, err)
	return hw
}

func TestCanonical(t *testing.T) {
	cases := []struct {
		name string
		in   device.Addr
		out  device.Addr
	}{
		{"dotted", "0000.5e00.5301", "00:00:5e:00:53:01"},
		{"dashed", "00-00-5E-00-53-01", "00:00:5e:00:53:01"},
		{"colon", "00:00:5e:00:53:01", "00:00:5e:00:53:01"},
		{"opaque", "1111", "1111"},
		{"eui64", "0000.5e00.5301.0001", "0000.5e00.5301.0001"},
		{"empty", "", ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.out, Canonical(c.in))
		})
	}
}

func TestParseMAC(t *testing.T) {
	_, err := ParseMAC("1111")
	require.ErrorIs(t, err, ErrNotMAC)

	_, err = ParseMAC("0000.5e00.5301.0001")
	require.ErrorIs(t, err, ErrNotMAC)

	_, err = ParseMAC("00:00:00:00:fe:80:00:00:00:00:00:00:02:00:5e:10:00:00:00:01")
	require.ErrorIs(t, err, ErrNotMAC)

	hw, err := ParseMAC("0000.5e00.5301")
	require.NoError(t, err)
	assert.Equal(t, "00:00:5e:00:53:01", hw.String())
}

func TestEncodeDecode(t *testing.T) {
	src := mustMAC(t, "00:00:5e:00:53:01")
	dst := mustMAC(t, "00:00:5e:00:53:02")

	data, err := Encode(src, dst, 100)
	require.NoError(t, err)
	assert.Len(t, data, 14+100)

	pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
	eth, ok := pkt.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
	require.True(t, ok)
	assert.Equal(t, EthernetType, eth.EthernetType)

	gotSrc, gotDst, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, device.Addr("00:00:5e:00:53:01"), gotSrc)
	assert.Equal(t, device.Addr("00:00:5e:00:53:02"), gotDst)
}

func TestEncodePadsShortFrames(t *testing.T) {
	data, err := Encode(mustMAC(t, "00:00:5e:00:53:01"), mustMAC(t, "00:00:5e:00:53:02"), 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(data), 60)
}

func TestEncodeRejectsNegativePayload(t *testing.T) {
	_, err := Encode(mustMAC(t, "00:00:5e:00:53:01"), mustMAC(t, "00:00:5e:00:53:02"), -1)
	require.Error(t, err)
}

func TestDecodeShortFrame(t *testing.T) {
	_, _, err := Decode([]byte{0x00, 0x01})
	require.Error(t, err)
}

func TestCapture(t *testing.T) {
	buf := &bytes.Buffer{}
	capture, err := NewCapture(buf, 0)
	require.NoError(t, err)

	first, err := Encode(mustMAC(t, "00:00:5e:00:53:01"), mustMAC(t, "00:00:5e:00:53:02"), 64)
	require.NoError(t, err)
	second, err := Encode(mustMAC(t, "00:00:5e:00:53:02"), mustMAC(t, "00:00:5e:00:53:01"), 64)
	require.NoError(t, err)

	require.NoError(t, capture.Write(first))
	require.NoError(t, capture.Write(second))
	assert.Equal(t, int64(2), capture.Count())

	r, err := pcapgo.NewReader(buf)
	require.NoError(t, err)
	assert.Equal(t, layers.LinkTypeEthernet, r.LinkType())

	data, ci, err := r.ReadPacketData()
	require.NoError(t, err)
	assert.Equal(t, first, data)
	assert.Equal(t, int64(0), ci.Timestamp.UnixMilli())

	data, ci, err = r.ReadPacketData()
	require.NoError(t, err)
	assert.Equal(t, second, data)
	assert.Equal(t, int64(1), ci.Timestamp.UnixMilli())
}

func TestCaptureTruncatesToSnaplen(t *testing.T) {
	buf := &bytes.Buffer{}
	capture, err := NewCapture(buf, 20)
	require.NoError(t, err)

	data, err := Encode(mustMAC(t, "00:00:5e:00:53:01"), mustMAC(t, "00:00:5e:00:53:02"), 64)
	require.NoError(t, err)
	require.NoError(t, capture.Write(data))

	r, err := pcapgo.NewReader(buf)
	require.NoError(t, err)

	got, ci, err := r.ReadPacketData()
	require.NoError(t, err)
	assert.Len(t, got, 20)
	assert.Equal(t, len(data), ci.Length)
}
