package topology

import "fmt"

// ZoneNotFoundError reports that no hosted zone exists for the domain.
type ZoneNotFoundError struct {
	Domain string
}

func (e *ZoneNotFoundError) Error() string {
	return fmt.Sprintf("hosted zone not found for domain %q", e.Domain)
}

// ProvisioningError wraps a provisioner failure for a single node.
type ProvisioningError struct {
	NodeID string
	Kind   Kind
	Err    error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning %s (%s): %v", e.NodeID, e.Kind, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

// CycleError reports a circular dependency between nodes.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	msg := "circular dependency detected: "
	for i, id := range e.Cycle {
		if i > 0 {
			msg += " -> "
		}
		msg += id
	}
	return msg
}
