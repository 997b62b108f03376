package frame

import (
	"fmt"
	"io"
	"time"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcapgo"
)

// DefaultSnaplen is the capture length used when none is given.
const DefaultSnaplen = 65535

// Capture writes frames into a pcap stream.
//
// The simulator has no clock, so each frame is stamped with its sequence
// number in milliseconds from the Unix epoch.
type Capture struct {
	w       *pcapgo.Writer
	snaplen uint32
	step    int64
}

// NewCapture writes the pcap file header and returns a capture over w.
func NewCapture(w io.Writer, snaplen uint32) (*Capture, error) {
	if snaplen == 0 {
		snaplen = DefaultSnaplen
	}

	writer := pcapgo.NewWriter(w)
	if err := writer.WriteFileHeader(snaplen, layers.LinkTypeEthernet); err != nil {
		return nil, fmt.Errorf("failed to write pcap header: %w", err)
	}

	return &Capture{
		w:       writer,
		snaplen: snaplen,
	}, nil
}

// Write appends a frame to the capture.
func (m *Capture) Write(data []byte) error {
	captured := data
	if uint32(len(captured)) > m.snaplen {
		captured = captured[:m.snaplen]
	}

	ci := gopacket.CaptureInfo{
		Timestamp:     time.UnixMilli(m.step),
		CaptureLength: len(captured),
		Length:        len(data),
	}
	if err := m.w.WritePacket(ci, captured); err != nil {
		return fmt.Errorf("failed to write frame %d: %w", m.step, err)
	}

	m.step++
	return nil
}

// Count returns the number of frames written.
func (m *Capture) Count() int64 {
	return m.step
}
