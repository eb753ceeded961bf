// Package health checks partition replication health: every partition must
// have its full replica set in sync and its preferred replica leading.
package health
