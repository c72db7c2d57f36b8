package main

import (
	"fmt"
	"io"
	"runtime"
	"slices"

	"github.com/spf13/cobra"

	"github.com/egandro/go-affinity/pkg/affinity"
)

// demoTag is the affinity tag used on macOS, where the values are group labels and not cores.
const demoTag = 42

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Bind a thread to every even core and print what the system reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return onLockedThread(func() error {
				return runDemo(cmd.OutOrStdout())
			})
		},
	}
}

func runDemo(w io.Writer) error {
	fmt.Fprintf(w, "Total cores : %d\n", affinity.GetCoreNum())

	cores := evenCores(affinity.GetCoreNum())
	if runtime.GOOS == "darwin" {
		cores = []int{demoTag}
	}
	fmt.Fprintf(w, "Binding thread to cores : %v\n", cores)
	if err := affinity.SetThreadAffinity(cores); err != nil {
		return err
	}

	bound, err := affinity.GetThreadAffinity()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\tCurrent thread affinity : %v\n", bound)
	fmt.Fprintf(w, "\tTotal cores : %d\n", affinity.GetCoreNum())

	if !slices.Equal(bound, cores) {
		return fmt.Errorf("thread reports affinity %v, want %v", bound, cores)
	}
	return demoProcess(w)
}
