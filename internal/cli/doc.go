// Package cli provides the output and flag helpers shared by brokerconf
// commands.
//
// # Output Formats
//
// Results render in one of three formats:
//   - Table: rounded go-pretty tables; change commands print a Success:
//     section and an Error: section
//   - JSON: indented JSON for programmatic consumption
//   - YAML: the same documents as YAML
//
// Values longer than a table cell are truncated in table output only.
//
// # Errors
//
// ChangesFailedError and UnhealthyError carry no output of their own; the
// results were already printed. The root command maps them to distinct exit
// codes. ClassifyConnectionError turns broker connectivity failures into
// categorized ConnectionErrors for clearer messages.
//
// # Progress
//
// StartProgress shows a spinner on stderr while waiting on the cluster,
// unless --quiet is set or stderr is not a terminal.
package cli
