package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/pior/arith"
	"github.com/pior/arith/ops"
	"github.com/pior/arith/wire"
)

// Workload names a request generator.
type Workload string

const (
	Sum      Workload = "sum"
	Product  Workload = "product"
	Division Workload = "division"
	Roots    Workload = "roots"
	Rejected Workload = "rejected"
	All      Workload = "all"
)

var workloads = map[Workload]func(r *rand.Rand) wire.Request{
	Sum: func(r *rand.Rand) wire.Request {
		return wire.NewRequest(ops.Add, randomArgs(r, 1+r.IntN(8), 1_000_000)...)
	},
	Product: func(r *rand.Rand) wire.Request {
		return wire.NewRequest(ops.Mult, randomArgs(r, 1+r.IntN(4), 1_000)...)
	},
	Division: func(r *rand.Rand) wire.Request {
		return wire.NewRequest(ops.Div, r.Int64N(1_000_000)+1, r.Int64N(100)+1)
	},
	Roots: func(r *rand.Rand) wire.Request {
		return wire.NewRequest(ops.Sqrt, r.Int64())
	},
	Rejected: func(r *rand.Rand) wire.Request {
		return wire.NewRequest(ops.Div, r.Int64N(100), 0)
	},
}

// BenchmarkResult summarizes one workload run.
type BenchmarkResult struct {
	Workload     Workload
	Duration     time.Duration
	TotalOps     int64
	Successes    int64
	Failures     int64
	Mismatches   int64
	AvgLatency   time.Duration
	OpsPerSecond float64
}

func main() {
	flags := pflag.NewFlagSet("arith-bench", pflag.ExitOnError)
	workload := flags.String("workload", string(All), "Workload: sum, product, division, roots, rejected, or all")
	duration := flags.Duration("duration", 5*time.Second, "Duration of each workload")
	concurrency := flags.Int("concurrency", 4, "Number of concurrent sessions")
	server := flags.String("server", "localhost:1234", "Server address")
	flags.Parse(os.Args[1:])

	fmt.Printf("Arith Benchmark Tool\n")
	fmt.Printf("====================\n")
	fmt.Printf("Workload: %s\n", *workload)
	fmt.Printf("Duration: %v\n", *duration)
	fmt.Printf("Concurrency: %d\n", *concurrency)
	fmt.Printf("Server: %s\n", *server)
	fmt.Println()

	ctx := context.Background()

	fmt.Print("Testing connection...")
	probe, err := arith.Dial(ctx, *server, arith.ClientConfig{DialTimeout: 5 * time.Second})
	if err != nil {
		fmt.Printf(" failed: %v\n", err)
		fmt.Printf("Make sure arith-server is running on %s\n", *server)
		os.Exit(1)
	}
	probe.Stop(ctx)
	probe.Close()
	fmt.Println(" success!")

	selected := []Workload{Workload(*workload)}
	if selected[0] == All {
		selected = []Workload{Sum, Product, Division, Roots, Rejected}
	}

	failed := false
	for _, w := range selected {
		if _, ok := workloads[w]; !ok {
			fmt.Fprintf(os.Stderr, "Unknown workload: %s\n", w)
			os.Exit(2)
		}

		fmt.Printf("\n--- Running %s benchmark ---\n", w)
		result, err := runWorkload(ctx, *server, w, *duration, *concurrency)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(result)
		if result.Failures > 0 || result.Mismatches > 0 {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

// runWorkload drives concurrency sessions for duration, checking every reply
// against a local evaluation of the same request.
func runWorkload(ctx context.Context, addr string, w Workload, duration time.Duration, concurrency int) (*BenchmarkResult, error) {
	generate := workloads[w]

	var totalOps, successes, failures, mismatches, totalLatency atomic.Int64

	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	startTime := time.Now()
	g, ctx := errgroup.WithContext(ctx)

	for i := range concurrency {
		g.Go(func() error {
			client, err := arith.Dial(ctx, addr, arith.ClientConfig{DialTimeout: 5 * time.Second})
			if err != nil {
				return fmt.Errorf("worker %d: %w", i, err)
			}
			defer client.Close()
			defer client.Stop(context.Background())

			r := rand.New(rand.NewPCG(uint64(i), uint64(startTime.UnixNano())))

			for ctx.Err() == nil {
				req := generate(r)
				expected := arith.Execute(req)

				opStart := time.Now()
				resp, err := client.Do(ctx, req.Encode())
				latency := time.Since(opStart)

				if err != nil {
					if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
						break
					}
					failures.Add(1)
					totalOps.Add(1)
					continue
				}

				totalOps.Add(1)
				totalLatency.Add(int64(latency))
				successes.Add(1)
				if resp != expected {
					mismatches.Add(1)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &BenchmarkResult{
		Workload:   w,
		Duration:   time.Since(startTime),
		TotalOps:   totalOps.Load(),
		Successes:  successes.Load(),
		Failures:   failures.Load(),
		Mismatches: mismatches.Load(),
	}
	if result.Successes > 0 {
		result.AvgLatency = time.Duration(totalLatency.Load() / result.Successes)
		result.OpsPerSecond = float64(result.TotalOps) / result.Duration.Seconds()
	}
	return result, nil
}

func randomArgs(r *rand.Rand, n int, limit int64) []int64 {
	args := make([]int64, n)
	for i := range args {
		args[i] = r.Int64N(2*limit) - limit
	}
	return args
}

func printResult(result *BenchmarkResult) {
	fmt.Printf("Workload: %s\n", result.Workload)
	fmt.Printf("Duration: %v\n", result.Duration)
	fmt.Printf("Total Operations: %d\n", result.TotalOps)
	fmt.Printf("Successes: %d\n", result.Successes)
	fmt.Printf("Failures: %d\n", result.Failures)
	if result.TotalOps > 0 {
		fmt.Printf("Success Rate: %.2f%%\n", float64(result.Successes)/float64(result.TotalOps)*100)
		fmt.Printf("Ops/sec: %.2f\n", result.OpsPerSecond)
		fmt.Printf("Avg Latency: %v\n", result.AvgLatency)
	}
	fmt.Printf("Correctness: %t\n", result.Mismatches == 0)
	fmt.Println()
}
