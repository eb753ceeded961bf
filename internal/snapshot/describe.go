package snapshot

import (
	"fmt"

	"brokerconf/internal/admin"
)

// FromDescribe builds a snapshot from a typed describe response. Synonym
// sources are mapped exactly as the text parser maps them, and an unknown
// source fails the whole snapshot.
func FromDescribe(nodeID string, configs []admin.ConfigValue) (*Snapshot, error) {
	entries := make([]Entry, 0, len(configs))
	for _, cv := range configs {
		e := Entry{
			Name:        cv.Name,
			ActiveValue: cv.Value,
			Sensitive:   cv.Sensitive,
		}
		for _, s := range cv.Synonyms {
			src, err := ParseSource(string(s.Source))
			if err != nil {
				return nil, fmt.Errorf("broker %s config %s: %w", nodeID, cv.Name, err)
			}
			e.setSynonym(src, s.Value)
		}
		entries = append(entries, e)
	}
	return New(nodeID, entries), nil
}
