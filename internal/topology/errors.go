package topology

import (
	"errors"
	"fmt"
)

// TopologyError reports a port whose positional id cannot be reconciled
// with any known or synthesizable ancestor chain.
type TopologyError struct {
	Port   string
	PortID string
	Reason string
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("place port %s (id %q): %s", e.Port, e.PortID, e.Reason)
}

// IsTopologyError reports whether err wraps a TopologyError.
func IsTopologyError(err error) bool {
	var te *TopologyError
	return errors.As(err, &te)
}
