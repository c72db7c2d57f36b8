package main

import (
	"github.com/spf13/cobra"

	"github.com/egandro/go-affinity/pkg/executor"
)

func newExecCmd(opts *globalOptions, next executor.Executor) *cobra.Command {
	var coresFlag string

	cmd := &cobra.Command{
		Use:   "exec [--cores LIST] -- COMMAND [ARGS...]",
		Short: "Run a command bound to the given cores",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cores, err := resolveCores(coresFlag, opts.cfg.DefaultCores)
			if err != nil {
				return err
			}
			return executor.NewPinned(next, cores).Run(cmd.Context(), args[0], args[1:]...)
		},
	}
	cmd.Flags().StringVarP(&coresFlag, "cores", "c", "", "Cores in cpulist notation, e.g. 0-3,8")
	cmd.Flags().SetInterspersed(false)
	return cmd
}
