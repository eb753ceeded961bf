// Package mutator validates planned broker config changes against live state
// and executes them through the admin client.
//
// Validation is offline and runs before anything is sent. Valid changes are
// grouped into one incremental alter request per broker, and each broker's
// completion handle is awaited independently with a bounded timeout. A
// failure on one broker marks every change in that broker's request as
// failed and never affects other brokers.
//
// Results are always returned as a full success/error partition, with
// sensitive values masked by Redact.
package mutator
