package device

import (
	"errors"
	"fmt"
)

// ErrInvalidPort is returned when a port identifier is outside of the device.
var ErrInvalidPort = errors.New("invalid port")

// InvalidPortError describes an out-of-range port identifier.
type InvalidPortError struct {
	// Port is the requested identifier.
	Port PortID
	// NumPorts is the size of the device the port was looked up on.
	NumPorts int
}

func (m *InvalidPortError) Error() string {
	return fmt.Sprintf("invalid port %d: must be in [0, %d)", m.Port, m.NumPorts)
}

// Is makes errors.Is(err, ErrInvalidPort) hold for this error.
func (m *InvalidPortError) Is(target error) bool {
	return target == ErrInvalidPort
}
