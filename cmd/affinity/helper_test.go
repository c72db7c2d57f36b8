package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egandro/go-affinity/pkg/cpuinfo"
	"github.com/egandro/go-affinity/pkg/executor"
)

func TestResolveCores(t *testing.T) {
	tests := []struct {
		name       string
		flag       string
		configured string
		expected   []int
		wantErr    bool
	}{
		{"flag wins", "0-2", "5", []int{0, 1, 2}, false},
		{"config fallback", "", "1,3", []int{1, 3}, false},
		{"nothing given", "", "", nil, true},
		{"malformed", "a-b", "", nil, true},
		{"only whitespace", "  ", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveCores(tt.flag, tt.configured)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvenCores(t *testing.T) {
	assert.Equal(t, []int{}, evenCores(0))
	assert.Equal(t, []int{0}, evenCores(1))
	assert.Equal(t, []int{0, 2, 4, 6}, evenCores(8))
	assert.Equal(t, []int{0, 2, 4}, evenCores(5))
}

func TestPrintCores(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printCores(&buf, false, "thread", []int{3, 0, 1, 2, 8}))
	assert.Equal(t, "0-3,8\n", buf.String())

	buf.Reset()
	require.NoError(t, printCores(&buf, true, "thread", []int{0, 2}))
	assert.JSONEq(t, `{"thread":[0,2]}`, buf.String())
}

func withoutColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestRenderProbeTable(t *testing.T) {
	withoutColor(t)

	results := []cpuinfo.CoreResult{
		{CPU: 0, Pinned: true, LoopNS: 1000},
		{CPU: 1, Pinned: true, LoopNS: 2000},
		{CPU: 2, Error: "errno 22"},
	}
	var buf bytes.Buffer
	require.NoError(t, renderProbeTable(&buf, results))

	out := buf.String()
	assert.Contains(t, out, "pinned")
	assert.Contains(t, out, "failed: errno 22")
	assert.Contains(t, out, "2.00x")
	assert.Contains(t, out, "2 of 3 CPUs pinned, spread 2.00x")
}

func TestRenderProbeTable_TaggedResults(t *testing.T) {
	withoutColor(t)

	results := []cpuinfo.CoreResult{{CPU: 0, Pinned: true, Unverified: true, LoopNS: 1000}}
	var buf bytes.Buffer
	require.NoError(t, renderProbeTable(&buf, results))
	assert.Contains(t, buf.String(), "tagged, core unknown")
}

type fakeProvider struct {
	results []cpuinfo.CoreResult
	err     error
	opts    cpuinfo.Options
}

func (f *fakeProvider) DetectTopology() ([]cpuinfo.CoreInfo, error) { return nil, nil }

func (f *fakeProvider) Probe(_ context.Context, opts cpuinfo.Options) ([]cpuinfo.CoreResult, error) {
	f.opts = opts
	return f.results, f.err
}

func TestRunProbe(t *testing.T) {
	p := &fakeProvider{results: []cpuinfo.CoreResult{{CPU: 0, Pinned: true}}}
	results, err := runProbe(context.Background(), p, cpuinfo.Options{Rounds: 2}, true)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 2, p.opts.Rounds)
	assert.Nil(t, p.opts.OnProgress)

	p.err = errors.New("probe aborted")
	_, err = runProbe(context.Background(), p, cpuinfo.Options{}, true)
	assert.EqualError(t, err, "probe aborted")
}

func TestWriteProbeSVG(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "probe.svg")
	results := []cpuinfo.CoreResult{{CPU: 0, Pinned: true, LoopNS: 1e6}}

	require.NoError(t, writeProbeSVG(filename, results, 4))
	assert.FileExists(t, filename)

	assert.Error(t, writeProbeSVG(filename, nil, 4))
}

func runCLI(t *testing.T, opts *globalOptions, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AFFINITY_DEFAULT_CORES", "")
	t.Setenv("AFFINITY_LOG_LEVEL", "error")

	root := newRootCmd(opts)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing")}, args...))
	err := execute(opts, root)
	return out.String(), err
}

func TestCoresCommand(t *testing.T) {
	out, err := runCLI(t, &globalOptions{}, "cores", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"cores"`)
	assert.Contains(t, out, `"gomaxprocs"`)
}

func TestSetCommand_RequiresCores(t *testing.T) {
	_, err := runCLI(t, &globalOptions{}, "set")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cores given")
}

func TestFailedCommandStillClosesLog(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "affinity.log")
	t.Setenv("AFFINITY_LOG_FILE", logFile)

	opts := &globalOptions{}
	_, err := runCLI(t, opts, "set")
	require.Error(t, err)

	assert.FileExists(t, logFile)
	assert.Nil(t, opts.closeLog, "log file closed after the failing command")
	assert.Nil(t, opts.undoProc, "GOMAXPROCS restored after the failing command")
	assert.NoError(t, opts.close())
}

func TestInvalidConfigIsRejected(t *testing.T) {
	t.Setenv("AFFINITY_PROBE_ROUNDS", "0")
	opts := &globalOptions{}
	root := newRootCmd(opts)
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing"), "cores"})

	err := execute(opts, root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AFFINITY_PROBE_ROUNDS")
}

func TestExecCommand_PassesArguments(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("affinity tags are not supported on every macOS machine")
	}
	var gotName string
	var gotArgs []string
	mock := &executor.MockExecutor{
		RunFunc: func(_ context.Context, name string, args ...string) error {
			gotName, gotArgs = name, args
			return nil
		},
	}

	opts := &globalOptions{}
	cmd := newExecCmd(opts, mock)
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return opts.init(cmd)
	}
	cmd.Flags().StringVar(&opts.configFile, "config", filepath.Join(t.TempDir(), "missing"), "")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "error", "")
	cmd.SetArgs([]string{"--cores", "0", "echo", "-n", "hi"})
	t.Cleanup(func() { _ = opts.close() })

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "echo", gotName)
	assert.Equal(t, []string{"-n", "hi"}, gotArgs)
}

func TestUsageMentionsSubcommands(t *testing.T) {
	root := newRootCmd(&globalOptions{})
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	joined := strings.Join(names, " ")
	for _, want := range []string{"cores", "get", "set", "demo", "probe", "exec"} {
		assert.Contains(t, joined, want)
	}
}
