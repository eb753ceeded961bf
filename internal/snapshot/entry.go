package snapshot

import "fmt"

// Source is a synonym provenance recognised by the parser.
type Source string

const (
	SourceDynamic        Source = "DYNAMIC_BROKER_CONFIG"
	SourceDynamicDefault Source = "DYNAMIC_DEFAULT_BROKER_CONFIG"
	SourceStatic         Source = "STATIC_BROKER_CONFIG"
	SourceDefault        Source = "DEFAULT_CONFIG"
)

// ParseSource maps a wire source name to a Source. Any name outside the four
// broker-level sources is rejected.
func ParseSource(s string) (Source, error) {
	switch src := Source(s); src {
	case SourceDynamic, SourceDynamicDefault, SourceStatic, SourceDefault:
		return src, nil
	default:
		return "", fmt.Errorf("unknown synonym source %q", s)
	}
}

// Entry is one config key's provenance on one broker at one point in time.
// Nil synonym fields mean the source did not report a value.
type Entry struct {
	Name                string
	ActiveValue         string
	Sensitive           bool
	DynamicValue        *string
	DynamicDefaultValue *string
	StaticValue         *string
	DefaultValue        *string
}

// HasDynamic reports whether the broker currently carries a per-broker
// dynamic override for this key.
func (e Entry) HasDynamic() bool {
	return e.DynamicValue != nil
}

func (e *Entry) setSynonym(src Source, value string) {
	v := value
	switch src {
	case SourceDynamic:
		e.DynamicValue = &v
	case SourceDynamicDefault:
		e.DynamicDefaultValue = &v
	case SourceStatic:
		e.StaticValue = &v
	case SourceDefault:
		e.DefaultValue = &v
	}
}

// Snapshot is the full config set of one broker, in the order it was
// reported. It is never mutated after construction.
type Snapshot struct {
	NodeID string

	entries []Entry
	index   map[string]int
}

// New builds a snapshot from entries. A later entry with the same name
// replaces an earlier one.
func New(nodeID string, entries []Entry) *Snapshot {
	s := &Snapshot{
		NodeID: nodeID,
		index:  make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if i, ok := s.index[e.Name]; ok {
			s.entries[i] = e
			continue
		}
		s.index[e.Name] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return s
}

// Get returns the entry for name.
func (s *Snapshot) Get(name string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Names returns config names in reported order.
func (s *Snapshot) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of all entries in reported order.
func (s *Snapshot) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}
