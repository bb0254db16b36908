// Command ripple-bench drives synthetic load through the reactive engine and
// reports write throughput and notification latency. It can also expose the
// engine's Prometheus counters over HTTP while the load runs.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ripple-state/ripple/pkg/metrics"
	"github.com/ripple-state/ripple/pkg/ripple"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type profile struct {
	Name      string
	Workers   int
	Duration  time.Duration
	OPS       float64 // target writes/sec per worker
	Keys      int     // properties per worker object
	BatchSize int     // writes grouped per transaction
}

var profiles = map[string]profile{
	"fast": {
		Name:      "fast",
		Workers:   8,
		Duration:  5 * time.Second,
		OPS:       1000,
		Keys:      16,
		BatchSize: 1,
	},
	"standard": {
		Name:      "standard",
		Workers:   32,
		Duration:  30 * time.Second,
		OPS:       2000,
		Keys:      64,
		BatchSize: 8,
	},
	"stress": {
		Name:      "stress",
		Workers:   128,
		Duration:  60 * time.Second,
		OPS:       5000,
		Keys:      256,
		BatchSize: 32,
	},
}

type benchConfig struct {
	Profile    string
	Workers    int
	Duration   time.Duration
	OPS        float64
	Keys       int
	BatchSize  int
	Listen     string
	JSONOutput string
}

type benchCounters struct {
	writes  atomic.Uint64
	batches atomic.Uint64
}

type report struct {
	Profile     string        `json:"profile"`
	Workers     int           `json:"workers"`
	Duration    time.Duration `json:"duration_ns"`
	Writes      uint64        `json:"writes"`
	Batches     uint64        `json:"batches"`
	WritesPerS  float64       `json:"writes_per_sec"`
	EffectRuns  uint64        `json:"effect_runs"`
	Recomputes  uint64        `json:"memo_recomputes"`
	Triggers    uint64        `json:"triggers"`
	Flushes     uint64        `json:"flushes"`
	LatencyP50  time.Duration `json:"latency_p50_ns"`
	LatencyP95  time.Duration `json:"latency_p95_ns"`
	LatencyP99  time.Duration `json:"latency_p99_ns"`
	LatencyMax  time.Duration `json:"latency_max_ns"`
	SampleCount int           `json:"sample_count"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "ripple-bench",
		Short: "Load generator for the ripple reactive engine",
		Long: `ripple-bench runs concurrent writers against reactive objects with
effects and memos subscribed, then reports throughput and the latency of a
write including its synchronous notifications.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(runCmd(), versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var (
		profileFlag string
		workers     int
		duration    time.Duration
		ops         float64
		keys        int
		batchSize   int
		listen      string
		jsonOut     string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a load profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(profileFlag, workers, duration, ops, keys, batchSize, listen, jsonOut)
			if err != nil {
				return err
			}
			return runBench(cfg)
		},
	}

	cmd.Flags().StringVar(&profileFlag, "profile", "standard", "profile: fast|standard|stress")
	cmd.Flags().IntVar(&workers, "workers", -1, "concurrent writer goroutines")
	cmd.Flags().DurationVar(&duration, "duration", 0, "benchmark duration, e.g. 30s")
	cmd.Flags().Float64Var(&ops, "ops", -1, "target writes/sec per worker")
	cmd.Flags().IntVar(&keys, "keys", -1, "properties per worker object")
	cmd.Flags().IntVar(&batchSize, "batch", -1, "writes grouped per transaction")
	cmd.Flags().StringVar(&listen, "listen", "", "serve /metrics on this address while running")
	cmd.Flags().StringVar(&jsonOut, "json", "", "write the JSON report to this path ('-' for stdout)")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ripple-bench %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

func resolveConfig(name string, workers int, duration time.Duration, ops float64, keys, batchSize int, listen, jsonOut string) (benchConfig, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "standard"
	}
	base, ok := profiles[name]
	if !ok {
		return benchConfig{}, fmt.Errorf("unknown profile %q", name)
	}

	cfg := benchConfig{
		Profile:    base.Name,
		Workers:    base.Workers,
		Duration:   base.Duration,
		OPS:        base.OPS,
		Keys:       base.Keys,
		BatchSize:  base.BatchSize,
		Listen:     strings.TrimSpace(listen),
		JSONOutput: strings.TrimSpace(jsonOut),
	}

	if workers != -1 {
		cfg.Workers = workers
	}
	if duration != 0 {
		cfg.Duration = duration
	}
	if ops != -1 {
		cfg.OPS = ops
	}
	if keys != -1 {
		cfg.Keys = keys
	}
	if batchSize != -1 {
		cfg.BatchSize = batchSize
	}

	if cfg.Workers <= 0 {
		return benchConfig{}, errors.New("--workers must be > 0")
	}
	if cfg.Duration <= 0 {
		return benchConfig{}, errors.New("--duration must be > 0")
	}
	if cfg.OPS <= 0 {
		return benchConfig{}, errors.New("--ops must be > 0")
	}
	if cfg.Keys <= 0 {
		return benchConfig{}, errors.New("--keys must be > 0")
	}
	if cfg.BatchSize <= 0 {
		return benchConfig{}, errors.New("--batch must be > 0")
	}
	return cfg, nil
}

func runBench(cfg benchConfig) error {
	var httpServer *http.Server
	if cfg.Listen != "" {
		reg := prometheus.NewRegistry()
		if err := reg.Register(metrics.NewCollector()); err != nil {
			return fmt.Errorf("register collector: %w", err)
		}

		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

		httpServer = &http.Server{Addr: cfg.Listen, Handler: r}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}()
		fmt.Fprintf(os.Stderr, "serving /metrics on %s\n", cfg.Listen)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	samplesCh := make(chan time.Duration, cfg.Workers*4)
	var samples []time.Duration
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for d := range samplesCh {
			samples = append(samples, d)
		}
	}()

	before := ripple.Stats()
	var counters benchCounters

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		seed := int64(i)
		go func() {
			defer wg.Done()
			runWorker(ctx, cfg, seed, &counters, samplesCh)
		}()
	}

	wg.Wait()
	close(samplesCh)
	<-collectorDone
	elapsed := time.Since(start)

	after := ripple.Stats()

	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	rep := report{
		Profile:     cfg.Profile,
		Workers:     cfg.Workers,
		Duration:    elapsed,
		Writes:      counters.writes.Load(),
		Batches:     counters.batches.Load(),
		EffectRuns:  after.EffectRuns - before.EffectRuns,
		Recomputes:  after.MemoRecomputes - before.MemoRecomputes,
		Triggers:    after.Triggers - before.Triggers,
		Flushes:     after.Flushes - before.Flushes,
		LatencyP50:  percentile(samples, 0.50),
		LatencyP95:  percentile(samples, 0.95),
		LatencyP99:  percentile(samples, 0.99),
		LatencyMax:  percentile(samples, 1.0),
		SampleCount: len(samples),
	}
	if elapsed > 0 {
		rep.WritesPerS = float64(rep.Writes) / elapsed.Seconds()
	}

	writeSummary(os.Stderr, rep)
	return writeJSON(cfg.JSONOutput, rep)
}

// runWorker drives one reactive object: an effect subscribed to every key, a
// memo folding them, and a paced write loop. Each sample is the wall time of
// one transaction including the notifications it triggers.
func runWorker(ctx context.Context, cfg benchConfig, seed int64, counters *benchCounters, samples chan<- time.Duration) {
	rng := rand.New(rand.NewSource(seed))

	fields := make(map[string]any, cfg.Keys)
	keyNames := make([]string, cfg.Keys)
	for i := 0; i < cfg.Keys; i++ {
		k := fmt.Sprintf("k%03d", i)
		keyNames[i] = k
		fields[k] = 0
	}
	obj := ripple.WrapObject(fields)

	var observed atomic.Uint64
	e := ripple.CreateEffect(func() ripple.Cleanup {
		var sum int
		for _, k := range keyNames {
			if v, ok := obj.Get(k).(int); ok {
				sum += v
			}
		}
		observed.Store(uint64(sum))
		return nil
	})
	defer e.Dispose()

	total := obj.Compute("\x00total", func() any {
		n := 0
		for _, k := range keyNames {
			if v, ok := obj.Get(k).(int); ok {
				n += v
			}
		}
		return n
	})

	period := time.Duration(float64(time.Second) / cfg.OPS * float64(cfg.BatchSize))
	if period <= 0 {
		period = time.Microsecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	value := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		begin := time.Now()
		ripple.Batch(func() {
			for i := 0; i < cfg.BatchSize; i++ {
				value++
				obj.Set(keyNames[rng.Intn(cfg.Keys)], value)
			}
		})
		_ = total.Get()
		d := time.Since(begin)

		counters.writes.Add(uint64(cfg.BatchSize))
		counters.batches.Add(1)
		select {
		case samples <- d:
		default:
		}
	}
}

func percentile(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(q*float64(len(sorted))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func writeSummary(w *os.File, rep report) {
	fmt.Fprintf(w, "profile:      %s\n", rep.Profile)
	fmt.Fprintf(w, "workers:      %d\n", rep.Workers)
	fmt.Fprintf(w, "duration:     %s\n", rep.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "writes:       %d (%.0f/s)\n", rep.Writes, rep.WritesPerS)
	fmt.Fprintf(w, "batches:      %d\n", rep.Batches)
	fmt.Fprintf(w, "effect runs:  %d\n", rep.EffectRuns)
	fmt.Fprintf(w, "recomputes:   %d\n", rep.Recomputes)
	fmt.Fprintf(w, "triggers:     %d\n", rep.Triggers)
	fmt.Fprintf(w, "flushes:      %d\n", rep.Flushes)
	fmt.Fprintf(w, "latency p50:  %s\n", rep.LatencyP50)
	fmt.Fprintf(w, "latency p95:  %s\n", rep.LatencyP95)
	fmt.Fprintf(w, "latency p99:  %s\n", rep.LatencyP99)
	fmt.Fprintf(w, "latency max:  %s\n", rep.LatencyMax)
}

func writeJSON(path string, rep report) error {
	if path == "" {
		return nil
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
