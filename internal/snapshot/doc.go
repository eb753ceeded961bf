// Package snapshot turns a broker's config description into a typed,
// read-only Snapshot.
//
// Two inputs are supported: the typed admin describe response (FromDescribe)
// and the text dump printed by `kafka-configs --describe --all`
// (ParseLine, ParseOutput, CommandSource). Both produce the same Entry shape:
// the active value plus the per-source synonym values that explain where it
// came from.
package snapshot
