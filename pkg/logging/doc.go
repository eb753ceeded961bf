// Package logging provides subsystem-tagged structured logging for brokerconf.
//
// It is a thin layer over log/slog. Every entry carries a subsystem attribute
// so that cron and journal output can be filtered per component:
//
//   - Snapshot: parsing of broker config descriptions
//   - Resolver: desired-state merging
//   - Mutator: validation and execution of config changes
//   - Records: the emergency override directory
//   - Reconciler: one reconciliation pass
//   - AdminClient: broker admin protocol calls
//   - ConfigLoader: cluster connection files
//   - Health: partition health checks
//
// # Usage
//
//	logging.Init(logging.LevelInfo, logging.FormatJSON, os.Stderr)
//
//	logging.Info("Reconciler", "Starting pass %s for broker %s", passID, nodeID)
//	logging.Error("Mutator", err, "Alter failed for broker %s", nodeID)
//
// Messages below WARN are dropped until Init has been called; warnings and
// errors fall back to stderr so nothing important is lost in library use.
package logging
