package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"brokerconf/internal/admin"
	"brokerconf/internal/health"
	"brokerconf/internal/mutator"
	bstrings "brokerconf/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the supported output formats for CLI commands.
type OutputFormat string

const (
	// OutputFormatTable formats output as a rounded table
	OutputFormatTable OutputFormat = "table"
	// OutputFormatJSON formats output as indented JSON
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML formats output as YAML
	OutputFormatYAML OutputFormat = "yaml"
)

// ValidOutputFormats contains all valid output format values.
var ValidOutputFormats = []OutputFormat{
	OutputFormatTable,
	OutputFormatJSON,
	OutputFormatYAML,
}

// ValidateOutputFormat validates that the given format string is a supported output format.
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q (valid: table, json, yaml)", format)
	}
}

// Printer renders command results in one output format.
type Printer struct {
	out    io.Writer
	format OutputFormat
}

// NewPrinter creates a Printer writing to out. A nil out means stdout.
func NewPrinter(out io.Writer, format OutputFormat) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out, format: format}
}

// createTable creates a new table with standard styling
func (p *Printer) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	return t
}

func (p *Printer) encode(v interface{}) error {
	switch p.format {
	case OutputFormatYAML:
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}

// ChangeReport is the serialised form of a change command's results.
type ChangeReport struct {
	DryRun  bool                   `json:"dry_run" yaml:"dry_run"`
	Success []mutator.ChangeResult `json:"success" yaml:"success"`
	Errors  []mutator.ChangeResult `json:"errors" yaml:"errors"`
}

// PrintChanges renders the success and error partitions of a change command.
// Values are expected to be redacted already.
func (p *Printer) PrintChanges(report ChangeReport) error {
	if report.Success == nil {
		report.Success = []mutator.ChangeResult{}
	}
	if report.Errors == nil {
		report.Errors = []mutator.ChangeResult{}
	}
	if p.format != OutputFormatTable {
		return p.encode(report)
	}

	if len(report.Success) > 0 {
		fmt.Fprintln(p.out, text.FgGreen.Sprint("Success:"))
		p.changeTable(report.Success, false)
	}
	if len(report.Errors) > 0 {
		fmt.Fprintln(p.out, text.FgRed.Sprint("Error:"))
		p.changeTable(report.Errors, true)
	}

	switch {
	case len(report.Success) == 0 && len(report.Errors) == 0:
		fmt.Fprintln(p.out, "No config changes needed, all configs are already in desired state")
	case len(report.Errors) > 0:
		// Failure is reported through ChangesFailedError.
	case report.DryRun:
		fmt.Fprintln(p.out, "Dry run completed successfully")
	default:
		fmt.Fprintln(p.out, "All config operations completed successfully")
	}
	return nil
}

func (p *Printer) changeTable(results []mutator.ChangeResult, withError bool) {
	t := p.createTable()
	header := table.Row{"Broker", "Config", "Op", "Old Value", "New Value"}
	if withError {
		header = append(header, "Error")
	}
	t.AppendHeader(header)

	for _, r := range results {
		row := table.Row{r.NodeID, r.ConfigName, string(r.Op), cell(r.FromValue), cell(r.ToValue)}
		if withError {
			row = append(row, r.Error)
		}
		t.AppendRow(row)
	}
	t.Render()
}

func cell(v *string) string {
	if v == nil {
		return "-"
	}
	return truncate(*v)
}

func truncate(s string) string {
	return bstrings.TruncateCell(s, bstrings.DefaultCellMaxLen)
}

// PrintCluster renders cluster membership.
func (p *Printer) PrintCluster(c admin.Cluster) error {
	if p.format != OutputFormatTable {
		return p.encode(c.Nodes)
	}

	t := p.createTable()
	t.AppendHeader(table.Row{"ID", "Host", "Port", "Rack", "Controller"})
	for _, n := range c.Nodes {
		controller := ""
		if n.IsController {
			controller = text.FgHiCyan.Sprint("yes")
		}
		t.AppendRow(table.Row{n.ID, n.Host, n.Port, n.Rack, controller})
	}
	t.Render()
	return nil
}

// PrintTopics renders a topic list.
func (p *Printer) PrintTopics(topics []string) error {
	if p.format != OutputFormatTable {
		if topics == nil {
			topics = []string{}
		}
		return p.encode(topics)
	}
	if len(topics) == 0 {
		fmt.Fprintf(p.out, "%s\n", text.FgYellow.Sprint("No topics found"))
		return nil
	}
	for _, name := range topics {
		fmt.Fprintln(p.out, name)
	}
	return nil
}

// BrokerConfig is one described config of one broker.
type BrokerConfig struct {
	Broker     string             `json:"broker" yaml:"broker"`
	Config     string             `json:"config" yaml:"config"`
	Value      string             `json:"value" yaml:"value"`
	IsDefault  bool               `json:"isDefault" yaml:"isDefault"`
	IsReadOnly bool               `json:"isReadOnly" yaml:"isReadOnly"`
	Sensitive  bool               `json:"sensitive" yaml:"sensitive"`
	Source     admin.ConfigSource `json:"source" yaml:"source"`
}

// BrokerConfigs flattens describe results, sorted by broker then config.
// Sensitive values are redacted. Brokers whose describe failed are skipped
// and returned as errors keyed by broker id.
func BrokerConfigs(described []admin.NodeConfigs) ([]BrokerConfig, map[string]error) {
	var rows []BrokerConfig
	failed := map[string]error{}
	for _, nc := range described {
		if nc.Err != nil {
			failed[nc.NodeID] = nc.Err
			continue
		}
		for _, cv := range nc.Configs {
			value := cv.Value
			if cv.Sensitive && value != "" {
				value = mutator.RedactedValue
			}
			rows = append(rows, BrokerConfig{
				Broker:     nc.NodeID,
				Config:     cv.Name,
				Value:      value,
				IsDefault:  cv.IsDefault,
				IsReadOnly: cv.ReadOnly,
				Sensitive:  cv.Sensitive,
				Source:     cv.Source,
			})
		}
	}

	order := map[string]int{}
	ids := make([]string, 0, len(described))
	for _, nc := range described {
		ids = append(ids, nc.NodeID)
	}
	admin.SortNodeIDs(ids)
	for i, id := range ids {
		order[id] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Broker != rows[j].Broker {
			return order[rows[i].Broker] < order[rows[j].Broker]
		}
		return rows[i].Config < rows[j].Config
	})
	return rows, failed
}

// PrintBrokerConfigs renders flattened broker configs.
func (p *Printer) PrintBrokerConfigs(rows []BrokerConfig) error {
	if p.format != OutputFormatTable {
		if rows == nil {
			rows = []BrokerConfig{}
		}
		return p.encode(rows)
	}

	t := p.createTable()
	t.AppendHeader(table.Row{"Broker", "Config", "Value", "Source", "Read Only"})
	for _, r := range rows {
		readOnly := ""
		if r.IsReadOnly {
			readOnly = "yes"
		}
		t.AppendRow(table.Row{r.Broker, r.Config, truncate(r.Value), string(r.Source), readOnly})
	}
	t.Render()
	return nil
}

// PrintHealth renders a health verdict.
func (p *Printer) PrintHealth(res health.Response) error {
	if p.format != OutputFormatTable {
		return p.encode(res)
	}

	status := text.FgGreen.Sprint("healthy")
	if !res.Healthy {
		status = text.FgRed.Sprint("unhealthy")
	}
	fmt.Fprintf(p.out, "Cluster is %s\n", status)
	for _, reason := range res.Reasons {
		if reason == health.HealthyReason {
			continue
		}
		fmt.Fprintf(p.out, "  - %s\n", reason)
	}
	return nil
}

// PrintRecords renders emergency override records as name=value lines.
func (p *Printer) PrintRecords(records map[string]string) error {
	if p.format != OutputFormatTable {
		if records == nil {
			records = map[string]string{}
		}
		return p.encode(records)
	}

	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		fmt.Fprintf(p.out, "%s\n", text.FgYellow.Sprint("No records found"))
		return nil
	}
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s=%s\n", name, records[name])
	}
	_, err := io.WriteString(p.out, b.String())
	return err
}

// CleanupResult is the outcome of deleting one emergency record.
type CleanupResult struct {
	Config  string `json:"config" yaml:"config"`
	Removed bool   `json:"removed" yaml:"removed"`
}

// PrintCleanup renders record deletions.
func (p *Printer) PrintCleanup(results []CleanupResult) error {
	if p.format != OutputFormatTable {
		if results == nil {
			results = []CleanupResult{}
		}
		return p.encode(results)
	}
	for _, r := range results {
		if r.Removed {
			fmt.Fprintf(p.out, "Removed record %s\n", r.Config)
		} else {
			fmt.Fprintf(p.out, "%s\n", text.FgYellow.Sprintf("No record for %s", r.Config))
		}
	}
	return nil
}
