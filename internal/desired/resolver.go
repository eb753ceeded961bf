package desired

import (
	"sort"

	"brokerconf/internal/snapshot"
	"brokerconf/pkg/logging"
)

// Diff is the minimal change set that converges one broker onto its declared
// intent.
type Diff struct {
	// Apply maps config names to the value they must be set to.
	Apply map[string]string
	// Remove lists configs whose dynamic override is redundant, sorted.
	Remove []string
	// Undiscovered holds declared names the broker does not report. They are
	// never compared against live state.
	Undiscovered map[string]string
}

// Empty reports whether the diff carries no work at all.
func (d Diff) Empty() bool {
	return len(d.Apply) == 0 && len(d.Remove) == 0 && len(d.Undiscovered) == 0
}

// Resolve merges a broker snapshot with emergency overrides and the declared
// properties.
//
// Overrides always win over properties. A declared name whose active value
// differs from its desired value is applied, unless it is not pinned by an
// override and deleting its dynamic override already lands on the declared
// value. A dynamic override is removed when nothing pins it: it is absent from
// overrides, not being applied, and either its value equals the static value
// or the declared value equals the static value.
func Resolve(snap *snapshot.Snapshot, overrides, properties map[string]string) Diff {
	diff := Diff{
		Apply:        make(map[string]string),
		Undiscovered: make(map[string]string),
	}

	desired := make(map[string]string, len(overrides)+len(properties))
	for name, value := range properties {
		desired[name] = value
	}
	for name, value := range overrides {
		desired[name] = value
	}

	for name, value := range desired {
		entry, ok := snap.Get(name)
		if !ok {
			diff.Undiscovered[name] = value
			continue
		}
		if _, pinned := overrides[name]; !pinned && removalConverges(entry, value) {
			continue
		}
		if entry.ActiveValue != value {
			diff.Apply[name] = value
		}
	}

	for _, entry := range snap.Entries() {
		if _, pinned := overrides[entry.Name]; pinned {
			continue
		}
		if _, applying := diff.Apply[entry.Name]; applying {
			continue
		}
		if redundantOverride(entry, properties) {
			diff.Remove = append(diff.Remove, entry.Name)
		}
	}
	sort.Strings(diff.Remove)

	logging.Debug("Resolver", "Broker %s: %d to apply, %d to remove, %d undiscovered",
		snap.NodeID, len(diff.Apply), len(diff.Remove), len(diff.Undiscovered))
	return diff
}

// removalConverges reports whether deleting the dynamic override would leave
// the broker on value.
func removalConverges(e snapshot.Entry, value string) bool {
	return e.DynamicValue != nil && fallsBackToStatic(e) && *e.StaticValue == value
}

func redundantOverride(e snapshot.Entry, properties map[string]string) bool {
	if e.DynamicValue == nil || !fallsBackToStatic(e) {
		return false
	}
	if *e.DynamicValue == *e.StaticValue {
		return true
	}
	declared, ok := properties[e.Name]
	return ok && declared == *e.StaticValue
}

// fallsBackToStatic reports whether the static value is what takes effect once
// the per-broker override is gone. A differing cluster-wide dynamic default
// would win over it.
func fallsBackToStatic(e snapshot.Entry) bool {
	if e.StaticValue == nil {
		return false
	}
	return e.DynamicDefaultValue == nil || *e.DynamicDefaultValue == *e.StaticValue
}
