//go:build windows

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/egandro/go-affinity/pkg/affinity"
	"github.com/egandro/go-affinity/pkg/cpulist"
)

func addPlatformCommands(root *cobra.Command, opts *globalOptions) {
	root.AddCommand(newProcessCmd(opts))
}

func newProcessCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Show or set the affinity of the whole process",
	}

	var jsonOutput bool
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show the process affinity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cores, err := affinity.GetProcessAffinity()
			if err != nil {
				return err
			}
			return printCores(cmd.OutOrStdout(), jsonOutput, "process", cores)
		},
	}
	getCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	var coresFlag string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Bind the process to cores. Thread affinities set earlier are replaced",
		RunE: func(cmd *cobra.Command, args []string) error {
			cores, err := resolveCores(coresFlag, opts.cfg.DefaultCores)
			if err != nil {
				return err
			}
			if err := affinity.SetProcessAffinity(cores); err != nil {
				return fmt.Errorf("failed to bind process to %s: %w", cpulist.Format(cores), err)
			}
			bound, err := affinity.GetProcessAffinity()
			if err != nil {
				return err
			}
			return printCores(cmd.OutOrStdout(), jsonOutput, "process", bound)
		},
	}
	setCmd.Flags().StringVarP(&coresFlag, "cores", "c", "", "Cores in cpulist notation, e.g. 0-3,8")
	setCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	cmd.AddCommand(getCmd, setCmd)
	return cmd
}

// demoProcess binds the whole process to core 0, which overrides the thread mask set before.
func demoProcess(w io.Writer) error {
	fmt.Fprintln(w, "Binding process to cores : [0]")
	fmt.Fprintln(w, "(This should overwrite threads affinities previously set)")
	if err := affinity.SetProcessAffinity([]int{0}); err != nil {
		return err
	}

	thread, err := affinity.GetThreadAffinity()
	if err != nil {
		return err
	}
	process, err := affinity.GetProcessAffinity()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\tCurrent thread affinity : %v\n", thread)
	fmt.Fprintf(w, "\tCurrent process affinity : %v\n", process)
	fmt.Fprintf(w, "\tTotal cores : %d\n", affinity.GetCoreNum())
	return nil
}
