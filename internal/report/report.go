package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yanet-platform/switchsim/internal/topology"
)

const separator = "=========="

var upper = cases.Upper(language.Und)

// Network writes a brief overview of every switch and the hosts plugged
// into it.
func Network(w io.Writer, n *topology.Network) error {
	names := n.SwitchNames()
	if len(names) == 0 {
		return fmt.Errorf("no switches created yet: %w", topology.ErrNoSwitch)
	}

	out := bufio.NewWriter(w)
	fmt.Fprintln(out, "Switches:")
	for _, name := range names {
		sw, _ := n.Switch(name)
		fmt.Fprintf(out, "Switch name: %s, number of ports: %d, used: %v\n", name, sw.NumPorts(), n.UsedPorts(name))
		fmt.Fprintf(out, "PCs connected: %s\n", strings.Join(n.HostsOn(name), " "))
	}

	return out.Flush()
}

// Switch writes VLAN membership with per-port counters, the MAC table and
// totals of a switch.
func Switch(w io.Writer, n *topology.Network, name string) error {
	sw, ok := n.Switch(name)
	if !ok {
		return fmt.Errorf("switch %q: %w", name, topology.ErrNotFound)
	}

	out := bufio.NewWriter(w)
	fmt.Fprintln(out, "Switch stats:")
	fmt.Fprintf(out, "Name: %s\n", name)
	fmt.Fprintf(out, "Number of ports: %d\n", sw.NumPorts())
	fmt.Fprintln(out, "Ports per VLAN")

	db := sw.VLANDatabase()
	for _, id := range sw.VLANs() {
		fmt.Fprintln(out, upper.String(id.String()))
		for _, port := range db[id] {
			counters, err := sw.PortCounters(port)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Port: %s, frames sent: %d, frames received: %d\n", port, counters.Sent, counters.Received)
		}
	}

	fmt.Fprintln(out, "MAC table")
	fmt.Fprintln(out, separator)
	for _, entry := range sw.MACTable() {
		fmt.Fprintf(out, "Dest. MAC: %s, dest. port: %d, VLAN: %s, age: %d\n", entry.Addr, entry.Port, entry.VLAN, entry.Age)
	}
	fmt.Fprintln(out, separator)

	fmt.Fprintln(out, "Total sent/received:")
	fmt.Fprintf(out, "Total sent: %d, total received: %d\n", sw.SentTotal(), sw.ReceivedTotal())

	return out.Flush()
}

// Host writes the address and counters of a host.
func Host(w io.Writer, n *topology.Network, name string) error {
	st, switchName, ok := n.Host(name)
	if !ok {
		return fmt.Errorf("host %q: %w", name, topology.ErrNotFound)
	}

	out := bufio.NewWriter(w)
	fmt.Fprintln(out, "PC stats:")
	fmt.Fprintf(out, "PC name: %s, MAC address: %s, switch: %s, port: %d\n", name, st.Addr(), switchName, st.Port())
	fmt.Fprintf(out, "Frames sent: %d, frames received: %d\n", st.Sent(), st.Received())

	return out.Flush()
}
