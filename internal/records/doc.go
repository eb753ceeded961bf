// Package records persists emergency config overrides for a broker.
//
// The store is a plain directory with one file per config name, so operators
// can inspect and edit it with ordinary tools:
//
//	/etc/kafka/emergency/
//	├── num.network.threads      (contains "1000")
//	└── log.retention.hours      (contains "24")
//
// Recorded values always win over the broker's properties file during
// reconciliation. Store implements mutator.Recorder so successful applies can
// be recorded as they happen.
package records
