package topology

import (
	"errors"
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"

	"github.com/yanet-platform/switchsim/common/go/logging"
	"github.com/yanet-platform/switchsim/internal/device"
	"github.com/yanet-platform/switchsim/internal/vlan"
)

// ethernetHeaderSize is the size of an Ethernet II header without FCS.
const ethernetHeaderSize = 14

// Config describes a simulated network and the traffic to play through it.
type Config struct {
	// Logging configuration.
	Logging logging.Config `yaml:"logging"`
	// FrameSize is the size of frames put on the wire, header included.
	FrameSize datasize.ByteSize `yaml:"frame_size"`
	// Switches to create.
	Switches []SwitchConfig `yaml:"switches"`
	// Hosts to create and plug into switches.
	Hosts []HostConfig `yaml:"hosts"`
	// Scenario is the traffic to send, in order.
	Scenario []SendConfig `yaml:"scenario"`
}

// SwitchConfig describes a switch.
type SwitchConfig struct {
	// Name is the unique device name.
	Name string `yaml:"name"`
	// Ports is the number of ports.
	Ports int `yaml:"ports"`
	// MaxAge is the number of forwarding steps after which unseen addresses
	// are evicted. Zero means the default.
	MaxAge uint32 `yaml:"max_age"`
	// VLANs to create, each with its ports.
	VLANs []VLANConfig `yaml:"vlans"`
}

// VLANConfig describes a VLAN and its ports.
type VLANConfig struct {
	ID    vlan.ID         `yaml:"id"`
	Ports []device.PortID `yaml:"ports"`
}

// HostConfig describes a host plugged into a switch port.
type HostConfig struct {
	Name   string        `yaml:"name"`
	Switch string        `yaml:"switch"`
	Addr   device.Addr   `yaml:"addr"`
	Port   device.PortID `yaml:"port"`
}

// SendConfig is a batch of frames between two hosts.
type SendConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	// Count is the number of frames. Zero means a single frame.
	Count int `yaml:"count"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging:   logging.DefaultConfig(),
		FrameSize: 64 * datasize.B,
		Switches:  []SwitchConfig{},
		Hosts:     []HostConfig{},
		Scenario:  []SendConfig{},
	}
}

// LoadConfig loads configuration from a YAML file at the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML configuration on top of the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// PayloadSize returns the number of payload bytes in a frame.
func (m *Config) PayloadSize() int {
	return int(m.FrameSize.Bytes()) - ethernetHeaderSize
}

// Validate checks the configuration for errors that would make it
// impossible to apply.
//
// Device names, ports and references are checked when the configuration is
// applied.
func (m *Config) Validate() error {
	var errs []error

	if m.FrameSize.Bytes() < ethernetHeaderSize {
		errs = append(errs, fmt.Errorf("frame size %s is less than the ethernet header", m.FrameSize.HR()))
	}

	for idx, sw := range m.Switches {
		if sw.Name == "" {
			errs = append(errs, fmt.Errorf("switch #%d: name is required", idx))
		}
		if sw.Ports == 0 {
			errs = append(errs, fmt.Errorf("switch %q: at least one port is required", sw.Name))
		}
		for _, v := range sw.VLANs {
			if v.ID == vlan.None {
				errs = append(errs, fmt.Errorf("switch %q: VLAN %d is reserved", sw.Name, v.ID))
			}
		}
	}

	for idx, host := range m.Hosts {
		if host.Name == "" {
			errs = append(errs, fmt.Errorf("host #%d: name is required", idx))
		}
		if host.Switch == "" {
			errs = append(errs, fmt.Errorf("host %q: switch is required", host.Name))
		}
		if host.Addr == "" {
			errs = append(errs, fmt.Errorf("host %q: address is required", host.Name))
		}
	}

	for idx, send := range m.Scenario {
		if send.From == "" || send.To == "" {
			errs = append(errs, fmt.Errorf("scenario step #%d: both hosts are required", idx))
		}
		if send.Count < 0 {
			errs = append(errs, fmt.Errorf("scenario step #%d: count must not be negative", idx))
		}
	}

	return errors.Join(errs...)
}
