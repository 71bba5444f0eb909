// Package cli defines the rollsync command line interface.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the rollsync CLI.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollsync",
		Short: "rollsync - partition synchronization for materialized views",
		Long: `rollsync maintains time-range-partitioned tables and materialized
views whose partitioning rolls the base table's partitioning up to a
coarser granularity. Admin SQL arrives over HTTP; a background loop
keeps every view's partition set in sync with its source table.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCommand())
	return cmd
}
