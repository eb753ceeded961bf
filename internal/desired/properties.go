package desired

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"brokerconf/pkg/logging"
)

// ReadProperties parses a broker properties file into name/value pairs.
// Blank lines and '#' comments are ignored, whitespace around key and value
// is trimmed, and the line is split on its first '=' so values may contain
// further '=' characters. Lines without '=' are skipped with a warning.
func ReadProperties(path string) (map[string]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("properties file not found: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("properties path %s is not a file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open properties file %s: %w", path, err)
	}
	defer f.Close()

	props := make(map[string]string)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			logging.Warn("Resolver", "Skipping malformed line %d in %s: %s", lineNum, path, line)
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		props[key] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read properties file %s: %w", path, err)
	}

	logging.Debug("Resolver", "Read %d properties from %s", len(props), path)
	return props, nil
}

// NodeID returns the broker id declared in props, preferring broker.id over
// the KRaft node.id.
func NodeID(props map[string]string) (string, bool) {
	for _, key := range []string{"broker.id", "node.id"} {
		if v := props[key]; v != "" {
			return v, true
		}
	}
	return "", false
}
