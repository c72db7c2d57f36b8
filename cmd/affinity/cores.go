package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/egandro/go-affinity/pkg/affinity"
)

func newCoresCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "cores",
		Short: "Show the number of cores available to this process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cores := affinity.GetCoreNum()
			procs := runtime.GOMAXPROCS(0)

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]int{"cores": cores, "gomaxprocs": procs})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Total cores : %d\nGOMAXPROCS  : %d\n", cores, procs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
