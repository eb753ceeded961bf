package config

import (
	"fmt"

	"brokerconf/pkg/logging"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// so cluster passwords can reference them. Variables already set win.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	logging.Debug("ConfigLoader", "Loaded environment from %s", path)
	return nil
}
