// Package reconciler converges one broker's dynamic configuration onto its
// declared intent.
//
// # Overview
//
// A pass reads two desired-state sources, snapshots the broker, computes the
// minimal diff and executes it:
//
//   - Emergency overrides: the record directory, one file per config name.
//     These always win.
//   - Declared properties: the broker's server.properties file.
//   - Snapshot: the broker's live config set with per-source synonyms, from
//     the admin describe response or the kafka-configs tool.
//
// The resolver decides what to apply and which redundant dynamic overrides to
// remove. The mutator validates and executes those changes and returns a full
// success/error partition.
//
// # Usage
//
// Scheduling is external. Each invocation runs exactly one pass:
//
//	r := reconciler.New(reconciler.Config{Client: client, Metrics: reconciler.NewMetrics()})
//	res, err := r.Reconcile(ctx, reconciler.Request{
//	    RecordDir:      "/etc/kafka/emergency",
//	    PropertiesFile: "/etc/kafka/server.properties",
//	})
//	if err != nil {
//	    return fmt.Errorf("reconciliation failed: %w", err)
//	}
//
// Passes re-read every input, so running them repeatedly is safe and a
// converged broker produces an empty diff.
package reconciler
