package cmd

import (
	"fmt"

	"brokerconf/internal/cli"
	"brokerconf/internal/records"

	"github.com/spf13/cobra"
)

func newListRecordedConfigsCmd() *cobra.Command {
	var flags cli.CommandFlags
	var recordDir string

	cmd := &cobra.Command{
		Use:   "list-recorded-configs",
		Short: "Show the emergency override records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter(cmd, &flags)
			if err != nil {
				return err
			}
			recs, err := records.NewStore(recordDir).Read()
			if err != nil {
				return err
			}
			return printer.PrintRecords(recs)
		},
	}
	cli.RegisterOutputFlags(cmd, &flags)
	cmd.Flags().StringVarP(&recordDir, "record-dir", "r", "", "Directory holding emergency override records")
	_ = cmd.MarkFlagRequired("record-dir")
	return cmd
}

func newRemoveRecordedConfigsCmd() *cobra.Command {
	var flags cli.CommandFlags
	var recordDir, configs string

	cmd := &cobra.Command{
		Use:   "remove-recorded-configs",
		Short: "Delete emergency override records",
		Long: `Deletes the named emergency override records. The next
apply-desired-configs pass then converges those configs back to
server.properties. Missing records are reported but are not an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter(cmd, &flags)
			if err != nil {
				return err
			}
			names := cli.ParseList(configs)
			if len(names) == 0 {
				return fmt.Errorf("no config names given")
			}

			store := records.NewStore(recordDir)
			results := make([]cli.CleanupResult, 0, len(names))
			for _, name := range names {
				removed, err := store.Cleanup(name)
				if err != nil {
					return err
				}
				results = append(results, cli.CleanupResult{Config: name, Removed: removed})
			}
			return printer.PrintCleanup(results)
		},
	}
	cli.RegisterOutputFlags(cmd, &flags)
	cmd.Flags().StringVarP(&recordDir, "record-dir", "r", "", "Directory holding emergency override records")
	cmd.Flags().StringVar(&configs, "configs", "", "Comma separated config names whose records to delete")
	_ = cmd.MarkFlagRequired("record-dir")
	_ = cmd.MarkFlagRequired("configs")
	return cmd
}
