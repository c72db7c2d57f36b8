package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/egandro/go-affinity/pkg/cpuinfo"
	"github.com/egandro/go-affinity/pkg/svg"
)

type probeFlags struct {
	jsonOutput bool
	svgFile    string
	quiet      bool
	rounds     int
	iterations int
	parallel   int
	timeout    time.Duration
	columns    int
}

func newProbeCmd(opts *globalOptions) *cobra.Command {
	var f probeFlags

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Pin a thread to every CPU in turn and time a busy loop on it",
		RunE: func(cmd *cobra.Command, args []string) error {
			probeOpts := cpuinfo.Options{
				Rounds:     opts.cfg.ProbeRounds,
				Iterations: opts.cfg.ProbeIterations,
				Parallel:   opts.cfg.ProbeParallel,
				Timeout:    opts.cfg.ProbeTimeoutDuration(),
			}
			if cmd.Flags().Changed("rounds") {
				probeOpts.Rounds = f.rounds
			}
			if cmd.Flags().Changed("iterations") {
				probeOpts.Iterations = f.iterations
			}
			if cmd.Flags().Changed("parallel") {
				probeOpts.Parallel = f.parallel
			}
			if cmd.Flags().Changed("timeout") {
				probeOpts.Timeout = f.timeout
			}

			results, err := runProbe(cmd.Context(), cpuinfo.New(), probeOpts, f.quiet || f.jsonOutput)
			if err != nil {
				return err
			}

			if f.svgFile != "" {
				if err := writeProbeSVG(f.svgFile, results, f.columns); err != nil {
					return err
				}
			}
			if f.jsonOutput {
				return printJSON(cmd.OutOrStdout(), struct {
					Results []cpuinfo.CoreResult `json:"results"`
					Summary cpuinfo.ProbeStats   `json:"summary"`
				}{results, cpuinfo.Summarize(results)})
			}
			return renderProbeTable(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().StringVar(&f.svgFile, "svg", "", "Write an SVG report to this file")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Disable progress spinner")
	cmd.Flags().IntVar(&f.rounds, "rounds", 0, "Measurements per CPU (default from AFFINITY_PROBE_ROUNDS)")
	cmd.Flags().IntVar(&f.iterations, "iterations", 0, "Loop iterations per measurement (default from AFFINITY_PROBE_ITERATIONS)")
	cmd.Flags().IntVar(&f.parallel, "parallel", 0, "CPUs probed at the same time (default from AFFINITY_PROBE_PARALLEL)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Abort the probe after this long (default from AFFINITY_PROBE_TIMEOUT)")
	cmd.Flags().IntVar(&f.columns, "columns", 0, "CPUs per row in the SVG report")
	return cmd
}

func runProbe(ctx context.Context, p cpuinfo.Provider, opts cpuinfo.Options, quiet bool) ([]cpuinfo.CoreResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var s *spinner.Spinner
	if !quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = fmt.Sprintf(" Probing CPUs (Rounds: %d, Iterations: %d)...", opts.Rounds, opts.Iterations)
		s.Start()
		opts.OnProgress = func(done, total int) {
			s.Lock()
			s.Suffix = fmt.Sprintf(" Probing CPUs: %d/%d", done, total)
			s.Unlock()
		}
	}

	results, err := p.Probe(ctx, opts)

	if s != nil {
		s.Stop()
	}
	return results, err
}

func renderProbeTable(w io.Writer, results []cpuinfo.CoreResult) error {
	stats := cpuinfo.Summarize(results)

	table := tablewriter.NewWriter(w)
	table.Header("CPU", "Socket", "Core", "Status", "Loop", "StdDev", "Relative")
	for _, r := range results {
		status := color.GreenString("pinned")
		loop, stdDev, relative := "-", "-", "-"
		if r.Pinned {
			if r.Unverified {
				status = color.YellowString("tagged, core unknown")
			}
			loop = time.Duration(r.LoopNS).String()
			stdDev = time.Duration(r.StdDev).String()
			if stats.Fastest.LoopNS > 0 {
				relative = fmt.Sprintf("%.2fx", r.LoopNS/stats.Fastest.LoopNS)
			}
		} else {
			status = color.RedString("failed: %s", r.Error)
		}
		if err := table.Append(r.CPU, r.Socket, r.Core, status, loop, stdDev, relative); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	bold := color.New(color.Bold)
	_, err := bold.Fprintf(w, "%d of %d CPUs pinned, spread %.2fx\n", stats.PinnedCount, stats.CPUCount, stats.Spread)
	return err
}

func writeProbeSVG(filename string, results []cpuinfo.CoreResult, columns int) error {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown host"
	}
	title := fmt.Sprintf("CPU probe: %s (%s/%s)", host, runtime.GOOS, runtime.GOARCH)

	content, err := svg.New(results, title, columns).Generate()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write SVG report: %w", err)
	}
	return nil
}
