package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/egandro/go-affinity/pkg/config"
	"github.com/egandro/go-affinity/pkg/executor"
	"github.com/egandro/go-affinity/pkg/logger"
)

// globalOptions is shared by all subcommands. cfg is set before any RunE executes.
type globalOptions struct {
	configFile string
	logLevel   string

	cfg      *config.Config
	closeLog func() error
	undoProc func()
}

func (o *globalOptions) init(cmd *cobra.Command) error {
	cfg := config.Load(o.configFile)
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	closeLog, err := logger.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.closeLog = closeLog

	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		slog.Debug(fmt.Sprintf(format, args...))
	}))
	if err != nil {
		slog.Warn("Failed to adjust GOMAXPROCS", "error", err)
	}
	o.undoProc = undo
	return nil
}

// close releases what init set up. It is safe to call more than once.
func (o *globalOptions) close() error {
	if o.undoProc != nil {
		o.undoProc()
		o.undoProc = nil
	}
	if o.closeLog != nil {
		err := o.closeLog()
		o.closeLog = nil
		return err
	}
	return nil
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "affinity",
		Short:         "Inspect and set the CPU affinity of threads and processes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", config.ConstantConfigFilename, "Path to config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newCoresCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newSetCmd(opts))
	rootCmd.AddCommand(newDemoCmd())
	rootCmd.AddCommand(newProbeCmd(opts))
	rootCmd.AddCommand(newExecCmd(opts, &executor.DefaultExecutor{}))
	addPlatformCommands(rootCmd, opts)
	return rootCmd
}

// execute runs root and then closes the log file and restores GOMAXPROCS, also when the
// command failed.
func execute(opts *globalOptions, root *cobra.Command) error {
	err := root.Execute()
	if closeErr := opts.close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("failed to close log: %w", closeErr))
	}
	return err
}

func main() {
	opts := &globalOptions{}
	if err := execute(opts, newRootCmd(opts)); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(executor.ExitCode(err))
	}
}
