package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/egandro/go-affinity/pkg/affinity"
	"github.com/egandro/go-affinity/pkg/cpulist"
)

func printCores(w io.Writer, jsonOutput bool, key string, cores []int) error {
	if jsonOutput {
		return printJSON(w, map[string][]int{key: cores})
	}
	_, err := fmt.Fprintln(w, cpulist.Format(cores))
	return err
}

func newGetCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the affinity of the current thread",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cores []int
			err := onLockedThread(func() error {
				var err error
				cores, err = affinity.GetThreadAffinity()
				return err
			})
			if err != nil {
				return err
			}
			return printCores(cmd.OutOrStdout(), jsonOutput, "thread", cores)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func newSetCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool
	var coresFlag string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Bind a thread to cores and show the affinity read back",
		RunE: func(cmd *cobra.Command, args []string) error {
			cores, err := resolveCores(coresFlag, opts.cfg.DefaultCores)
			if err != nil {
				return err
			}

			var bound []int
			err = onLockedThread(func() error {
				if err := affinity.SetThreadAffinity(cores); err != nil {
					return err
				}
				var err error
				bound, err = affinity.GetThreadAffinity()
				return err
			})
			if err != nil {
				return fmt.Errorf("failed to bind thread to %s: %w", cpulist.Format(cores), err)
			}
			return printCores(cmd.OutOrStdout(), jsonOutput, "thread", bound)
		},
	}
	cmd.Flags().StringVarP(&coresFlag, "cores", "c", "", "Cores in cpulist notation, e.g. 0-3,8")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
