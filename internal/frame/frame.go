package frame

import (
	"errors"
	"fmt"
	"net"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"

	"github.com/yanet-platform/switchsim/internal/device"
)

// EthernetType is the EtherType of simulated frames (IEEE local
// experimental).
const EthernetType = layers.EthernetType(0x88b5)

// macLen is the length of an IEEE 802 MAC-48 address.
const macLen = 6

// ErrNotMAC is returned when an address is not a MAC-48 address.
var ErrNotMAC = errors.New("address is not a MAC address")

// Canonical returns the colon-separated lowercase form of addresses that
// parse as MAC addresses, and the address unchanged otherwise.
//
// Both "0000.5e00.5301" and "00-00-5E-00-53-01" become "00:00:5e:00:53:01".
// EUI-64 and InfiniBand addresses stay opaque.
func Canonical(addr device.Addr) device.Addr {
	hw, err := ParseMAC(addr)
	if err != nil {
		return addr
	}

	return device.Addr(hw.String())
}

// ParseMAC parses an address as a MAC-48 hardware address.
func ParseMAC(addr device.Addr) (net.HardwareAddr, error) {
	hw, err := net.ParseMAC(string(addr))
	if err != nil || len(hw) != macLen {
		return nil, fmt.Errorf("%w: %q", ErrNotMAC, addr)
	}

	return hw, nil
}

// Encode builds an Ethernet II frame carrying payloadSize zero bytes.
//
// Frames shorter than the Ethernet minimum are padded.
func Encode(src net.HardwareAddr, dst net.HardwareAddr, payloadSize int) ([]byte, error) {
	if payloadSize < 0 {
		return nil, fmt.Errorf("invalid payload size %d", payloadSize)
	}

	eth := &layers.Ethernet{
		SrcMAC:       src,
		DstMAC:       dst,
		EthernetType: EthernetType,
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		FixLengths: true,
	}
	if err := gopacket.SerializeLayers(buf, opts, eth, gopacket.Payload(make([]byte, payloadSize))); err != nil {
		return nil, fmt.Errorf("failed to serialize frame: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode returns the source and destination addresses of an Ethernet frame
// in canonical form.
func Decode(data []byte) (device.Addr, device.Addr, error) {
	eth := layers.Ethernet{}
	if err := eth.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return "", "", fmt.Errorf("failed to decode ethernet header: %w", err)
	}

	return device.Addr(eth.SrcMAC.String()), device.Addr(eth.DstMAC.String()), nil
}
