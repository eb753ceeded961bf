package mutator

import (
	"fmt"

	"brokerconf/internal/admin"
)

// Validate checks every change against state without contacting the
// cluster. Valid changes come back with their current value and sensitivity
// filled in; invalid ones come back as error results.
func (m *Mutator) Validate(state *State, changes []PlannedChange) (valid []PlannedChange, invalid []ChangeResult) {
	for _, c := range changes {
		checked, err := m.validateOne(state, c)
		if err != nil {
			invalid = append(invalid, failure(checked, err))
			continue
		}
		valid = append(valid, checked)
	}
	return valid, invalid
}

func (m *Mutator) validateOne(state *State, c PlannedChange) (PlannedChange, error) {
	if !state.Cluster.HasNode(c.NodeID) {
		return c, fmt.Errorf("%w: %s", ErrUnknownNode, c.NodeID)
	}
	if ns, ok := state.Nodes[c.NodeID]; !ok {
		return c, fmt.Errorf("broker %s was not described", c.NodeID)
	} else if ns.Err != nil {
		return c, fmt.Errorf("broker %s could not be described: %w", c.NodeID, ns.Err)
	}

	cv, found := state.Config(c.NodeID, c.ConfigName)
	if found {
		c.Sensitive = cv.Sensitive
		c.FromValue = strPtr(cv.Value)
	}

	switch c.Op {
	case OpApply:
		if c.ToValue == nil {
			return c, fmt.Errorf("apply of %s has no value", c.ConfigName)
		}
		if !found {
			if _, allowed := m.allowList[c.ConfigName]; !allowed {
				return c, fmt.Errorf("%w: %s on broker %s", ErrUnknownConfig, c.ConfigName, c.NodeID)
			}
			c.Sensitive = true
			return c, nil
		}
		if cv.ReadOnly {
			return c, fmt.Errorf("%w: %s on broker %s", ErrReadOnlyConfig, c.ConfigName, c.NodeID)
		}
	case OpRemove:
		c.ToValue = nil
		if !found {
			return c, fmt.Errorf("%w: %s on broker %s", ErrUnknownConfig, c.ConfigName, c.NodeID)
		}
		if cv.Source != admin.SourceDynamicBroker {
			return c, fmt.Errorf("%w: %s on broker %s has source %s", ErrNotDynamic, c.ConfigName, c.NodeID, cv.Source)
		}
	default:
		return c, fmt.Errorf("unsupported op %q for %s", c.Op, c.ConfigName)
	}
	return c, nil
}
