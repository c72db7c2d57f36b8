package cpuinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/egandro/go-affinity/pkg/affinity"
)

// detectTopologySystem is defined in topology_linux.go for Linux
// and topology_other.go for other platforms.

// Provider defines the interface for topology detection and per-core probing.
type Provider interface {
	DetectTopology() ([]CoreInfo, error)
	Probe(ctx context.Context, opts Options) ([]CoreResult, error)
}

// Pinner is the part of package affinity a probe needs.
type Pinner interface {
	PinThread(cores []int) (func() error, error)
	GetThreadAffinity() ([]int, error)
}

type systemPinner struct{}

func (systemPinner) PinThread(cores []int) (func() error, error) {
	return affinity.PinThread(cores)
}

func (systemPinner) GetThreadAffinity() ([]int, error) {
	return affinity.GetThreadAffinity()
}

// topologyDetector is a function that returns the current CPU topology.
type topologyDetector func() ([]CoreInfo, error)

// loopMeasurer runs a fixed busy loop and returns how long it took.
type loopMeasurer func(iterations int) time.Duration

// CPUInfo detects topology and probes every logical CPU.
type CPUInfo struct {
	detector topologyDetector
	pinner   Pinner
	measurer loopMeasurer
	// tagged is set where affinity values are opaque group tags rather than core indices.
	tagged bool
}

// New creates a new CPUInfo instance.
func New() Provider {
	return &CPUInfo{
		detector: detectTopologySystem,
		pinner:   systemPinner{},
		measurer: spinLoop,
		tagged:   runtime.GOOS == "darwin",
	}
}

// CoreInfo represents the CPU topology using standard Linux terminology
// - CPU: The logical processor ID (used by `taskset -c`).
// - Socket: The physical package ID.
// - Core: The physical core ID within the socket.
type CoreInfo struct {
	CPU    int `json:"cpu"`    // Logical Processor
	Socket int `json:"socket"` // Physical Socket
	Core   int `json:"core"`   // Physical Core
}

// CoreResult is the outcome of probing one logical CPU.
type CoreResult struct {
	CPU      int     `json:"cpu"`
	Socket   int     `json:"socket"`
	Core     int     `json:"core"`
	Pinned   bool    `json:"pinned"`
	Observed []int   `json:"observed,omitempty"` // affinity read back after pinning
	// Unverified is set when the system only accepts affinity tags, so the thread was placed
	// in its own tag group but the core it ran on is unknown.
	Unverified bool `json:"unverified,omitempty"`
	LoopNS   float64 `json:"loop_ns"`
	StdDev   float64 `json:"std_dev"`
	Error    string  `json:"error,omitempty"`
}

// Options controls a probe.
type Options struct {
	Rounds     int
	Iterations int
	// Parallel is the number of CPUs probed at the same time.
	Parallel int
	// Timeout bounds the whole probe. Zero means no timeout.
	Timeout time.Duration
	// OnProgress is called after each CPU with the number of CPUs done. Calls are serialized.
	OnProgress func(done, total int)
}

func (o Options) withDefaults() Options {
	if o.Rounds <= 0 {
		o.Rounds = 1
	}
	if o.Iterations <= 0 {
		o.Iterations = 1
	}
	if o.Parallel <= 0 {
		o.Parallel = 1
	}
	return o
}

// DetectTopology lists the logical CPUs of the host.
func (c *CPUInfo) DetectTopology() ([]CoreInfo, error) {
	return c.detector()
}

// Probe pins a locked goroutine to each logical CPU in turn, checks that the thread reports
// exactly that CPU, and times a busy loop on it. CPUs that cannot be pinned are reported
// with Pinned false and the error, they do not fail the probe. Only cancellation and the
// timeout abort it.
func (c *CPUInfo) Probe(ctx context.Context, opts Options) ([]CoreResult, error) {
	opts = opts.withDefaults()
	start := time.Now()

	topology, err := c.detector()
	if err != nil {
		return nil, fmt.Errorf("error detecting topology: %w", err)
	}
	if len(topology) == 0 {
		return nil, fmt.Errorf("no CPUs detected")
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	slog.Info("Probing CPUs", "cpus", len(topology), "rounds", opts.Rounds, "iterations", opts.Iterations, "parallel", opts.Parallel)

	results := make([]CoreResult, len(topology))
	var done atomic.Int32
	var progressMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)
	for i, core := range topology {
		i, core := i, core
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.probeCore(gctx, core, opts)

			n := int(done.Add(1))
			if opts.OnProgress != nil {
				progressMu.Lock()
				opts.OnProgress(n, len(topology))
				progressMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("probe aborted after %d of %d CPUs: %w", done.Load(), len(topology), err)
	}

	statsJSON, _ := json.Marshal(Summarize(results))
	slog.Info("CPU probe finished", "duration", time.Since(start).Round(time.Millisecond), "summary", string(statsJSON))
	return results, nil
}

func (c *CPUInfo) probeCore(ctx context.Context, core CoreInfo, opts Options) CoreResult {
	res := CoreResult{CPU: core.CPU, Socket: core.Socket, Core: core.Core}

	want := core.CPU
	if c.tagged {
		// Tag 0 means no affinity, so every CPU gets its own non-null group.
		want = core.CPU + 1
		res.Unverified = true
	}

	restore, err := c.pinner.PinThread([]int{want})
	if err != nil {
		slog.Debug("Failed to pin thread", "cpu", core.CPU, "error", err)
		res.Error = err.Error()
		return res
	}
	defer func() {
		if err := restore(); err != nil {
			slog.Warn("Failed to restore thread affinity", "cpu", core.CPU, "error", err)
		}
	}()

	observed, err := c.pinner.GetThreadAffinity()
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Observed = observed
	res.Pinned = len(observed) == 1 && observed[0] == want
	if !res.Pinned {
		res.Error = fmt.Sprintf("thread reports affinity %v", observed)
		return res
	}

	var sum, sqSum float64
	for r := 0; r < opts.Rounds; r++ {
		if err := ctx.Err(); err != nil {
			res.Error = err.Error()
			return res
		}
		ns := float64(c.measurer(opts.Iterations).Nanoseconds())
		sum += ns
		sqSum += ns * ns
	}

	mean := sum / float64(opts.Rounds)
	variance := sqSum/float64(opts.Rounds) - mean*mean
	if variance < 0 {
		variance = 0
	}
	res.LoopNS = mean
	res.StdDev = math.Sqrt(variance)
	return res
}

var spinSink atomic.Uint64

// spinLoop runs iterations of a xorshift step. The result is published so the loop is not
// optimized away.
func spinLoop(iterations int) time.Duration {
	x := uint64(88172645463325252)
	start := time.Now()
	for i := 0; i < iterations; i++ {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
	}
	d := time.Since(start)
	spinSink.Add(x)
	return d
}

// CoreStat identifies one CPU and its loop time.
type CoreStat struct {
	CPU    int     `json:"cpu"`
	LoopNS float64 `json:"loop_ns"`
}

// ProbeStats summarizes a probe.
type ProbeStats struct {
	CPUCount    int      `json:"cpu_count"`
	PinnedCount int      `json:"pinned_count"`
	SocketCount int      `json:"socket_count"`
	Fastest     CoreStat `json:"fastest"`
	Slowest     CoreStat `json:"slowest"`
	MeanLoopNS  float64  `json:"mean_loop_ns"`
	// Spread is Slowest / Fastest. Values well above 1 point at heterogeneous cores.
	Spread float64 `json:"spread"`
}

// Summarize returns statistics over the pinned CPUs of a probe.
func Summarize(results []CoreResult) ProbeStats {
	stats := ProbeStats{CPUCount: len(results)}
	sockets := make(map[int]struct{})

	var total float64
	for _, r := range results {
		sockets[r.Socket] = struct{}{}
		if !r.Pinned {
			continue
		}
		stats.PinnedCount++
		total += r.LoopNS

		if stats.PinnedCount == 1 || r.LoopNS < stats.Fastest.LoopNS {
			stats.Fastest = CoreStat{CPU: r.CPU, LoopNS: r.LoopNS}
		}
		if stats.PinnedCount == 1 || r.LoopNS > stats.Slowest.LoopNS {
			stats.Slowest = CoreStat{CPU: r.CPU, LoopNS: r.LoopNS}
		}
	}
	stats.SocketCount = len(sockets)

	if stats.PinnedCount > 0 {
		stats.MeanLoopNS = total / float64(stats.PinnedCount)
	}
	if stats.Fastest.LoopNS > 0 {
		stats.Spread = stats.Slowest.LoopNS / stats.Fastest.LoopNS
	}
	return stats
}
