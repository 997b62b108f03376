package bridge

// Decision is the outcome of a single forwarding step.
type Decision int

const (
	// DecisionUnicast means the frame was sent out of the port the
	// destination was learned on.
	DecisionUnicast Decision = iota
	// DecisionFlood means the destination was unknown and the frame was sent
	// out of every other port of the source's VLAN.
	DecisionFlood
	// DecisionSuppressed means the destination is known in another VLAN and
	// the frame went nowhere.
	DecisionSuppressed
)

func (m Decision) String() string {
	switch m {
	case DecisionUnicast:
		return "unicast"
	case DecisionFlood:
		return "flood"
	case DecisionSuppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}
