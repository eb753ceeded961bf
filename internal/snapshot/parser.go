package snapshot

import (
	"fmt"
	"strings"

	"brokerconf/pkg/logging"
)

const (
	sensitiveMarker = " sensitive="
	synonymsMarker  = " synonyms="
)

// Policy decides what ParseOutput does with a line that fails to parse.
type Policy int

const (
	// PolicyStrict aborts on the first bad line.
	PolicyStrict Policy = iota
	// PolicySkip logs and skips bad lines.
	PolicySkip
)

// Output is the result of parsing a full describe dump.
type Output struct {
	Entries []Entry
	Skipped []*ParseError
}

// ParseBool accepts true or false in any letter case.
func ParseBool(token string) (bool, error) {
	switch strings.ToLower(token) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", token)
	}
}

// ParseLine parses one description line of the form
//
//	name=value sensitive=<bool> synonyms={SOURCE:key=value, ...}
//
// Values may contain ':', ',', '=' and ';'. The line is split on the named
// markers only, so such characters survive in both the active value and the
// synonym values.
func ParseLine(line string) (Entry, error) {
	head, sensitive, group, ok := splitMarkers(line)
	if !ok {
		return Entry{}, &ParseError{Line: line, Reason: "missing sensitive= or synonyms= marker"}
	}

	name, value, found := strings.Cut(head, "=")
	if !found || name == "" {
		return Entry{}, &ParseError{Line: line, Reason: "missing config name"}
	}

	isSensitive, err := ParseBool(sensitive)
	if err != nil {
		return Entry{}, &ParseError{Line: line, Reason: "bad sensitive flag", Err: err}
	}

	synonyms, err := parseSynonyms(group)
	if err != nil {
		return Entry{}, &ParseError{Line: line, Reason: "bad synonyms group", Err: err}
	}

	e := Entry{Name: name, ActiveValue: value, Sensitive: isSensitive}
	for _, s := range synonyms {
		e.setSynonym(s.source, s.value)
	}
	return e, nil
}

// splitMarkers finds the first " sensitive=" whose remainder is a single
// token followed by " synonyms=" and the group running to end of line.
func splitMarkers(line string) (head, sensitive, group string, ok bool) {
	offset := 0
	for {
		i := strings.Index(line[offset:], sensitiveMarker)
		if i < 0 {
			return "", "", "", false
		}
		i += offset
		rest := line[i+len(sensitiveMarker):]
		if j := strings.Index(rest, synonymsMarker); j >= 0 {
			token := rest[:j]
			if token != "" && !strings.ContainsAny(token, " \t") {
				return line[:i], token, rest[j+len(synonymsMarker):], true
			}
		}
		offset = i + 1
	}
}

type synonym struct {
	source Source
	key    string
	value  string
}

// parseSynonyms scans a brace group. Items are separated by ", " only at
// brace depth zero and only where the next item starts with a SOURCE: token.
func parseSynonyms(group string) ([]synonym, error) {
	if len(group) < 2 || group[0] != '{' || group[len(group)-1] != '}' {
		return nil, fmt.Errorf("group %q is not enclosed in braces", group)
	}
	inner := group[1 : len(group)-1]
	if inner == "" {
		return nil, nil
	}

	var items []string
	depth, start := 0, 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 && strings.HasPrefix(inner[i:], ", ") && startsSourceToken(inner[i+2:]) {
				items = append(items, inner[start:i])
				start = i + 2
				i++
			}
		}
	}
	items = append(items, inner[start:])

	out := make([]synonym, 0, len(items))
	for _, item := range items {
		rawSource, kv, found := strings.Cut(item, ":")
		if !found {
			return nil, fmt.Errorf("synonym %q has no source", item)
		}
		src, err := ParseSource(rawSource)
		if err != nil {
			return nil, err
		}
		key, value, found := strings.Cut(kv, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("synonym %q is not key=value", item)
		}
		out = append(out, synonym{source: src, key: key, value: value})
	}
	return out, nil
}

// startsSourceToken reports whether s begins with [A-Z_]+ followed by ':'.
func startsSourceToken(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ':':
			return i > 0
		case c == '_' || (c >= 'A' && c <= 'Z'):
		default:
			return false
		}
	}
	return false
}

func isHeader(line string) bool {
	return strings.HasSuffix(line, " are:") &&
		(strings.HasPrefix(line, "All configs for ") ||
			strings.HasPrefix(line, "Dynamic configs for ") ||
			strings.HasPrefix(line, "Default configs for "))
}

// ParseOutput parses the stdout of a describe-all dump. Header and blank lines
// are ignored. With PolicyStrict the first bad line aborts; with PolicySkip bad
// lines are logged and collected in Output.Skipped.
func ParseOutput(lines []string, policy Policy) (*Output, error) {
	out := &Output{}
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || isHeader(line) {
			continue
		}
		e, err := ParseLine(line)
		if err != nil {
			pe := err.(*ParseError)
			if policy == PolicyStrict {
				return nil, pe
			}
			logging.Warn("Snapshot", "Skipping unparseable config line: %v", pe)
			out.Skipped = append(out.Skipped, pe)
			continue
		}
		out.Entries = append(out.Entries, e)
	}
	return out, nil
}
