// Command bench drives the engine through a round-robin deposit/withdrawal
// workload across a fixed client population, reporting throughput and host
// resource usage the way the teacher's load-test harness reports a run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	gopsnet "github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"ledger-engine/internal/domain/ledger"
)

// report mirrors the teacher's JSON benchmark report shape: a
// configuration section, a performance section, and a system section.
type report struct {
	Clients          int           `json:"clients"`
	Transactions     int           `json:"transactions"`
	Dense            bool          `json:"dense"`
	Duration         time.Duration `json:"duration"`
	TransactionsPerS float64       `json:"transactions_per_second"`
	System           systemStats   `json:"system"`
}

type systemStats struct {
	ProcessCPUPercent float64 `json:"process_cpu_percent"`
	ProcessMemoryMB   float64 `json:"process_memory_mb"`
	HostCPUPercent    float64 `json:"host_cpu_percent"`
	HostMemoryPercent float64 `json:"host_memory_percent"`
}

func main() {
	clients := flag.Int("clients", 65536, "number of distinct client accounts to cycle through")
	transactions := flag.Int("transactions", 65_536_000, "total number of deposit/withdrawal transactions to apply")
	dense := flag.Bool("dense", true, "use the dense storage layout")
	flag.Parse()

	var opts []ledger.Option
	if *dense {
		opts = append(opts, ledger.WithDenseStorage(*transactions))
	}
	engine := ledger.Init(opts...)

	start := time.Now()
	half := *transactions / 2
	for tx := 0; tx < *transactions; tx++ {
		client := ledger.ClientID(tx % *clients)
		var err error
		if tx < half {
			err = engine.Deposit(client, ledger.TransactionID(tx), 1)
		} else {
			err = engine.Withdrawal(client, ledger.TransactionID(tx), 1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "bench: unexpected error at tx %d: %v\n", tx, err)
			os.Exit(1)
		}
	}
	elapsed := time.Since(start)

	stats := collectSystemStats()

	rep := report{
		Clients:          *clients,
		Transactions:     *transactions,
		Dense:            *dense,
		Duration:         elapsed,
		TransactionsPerS: float64(*transactions) / elapsed.Seconds(),
		System:           stats,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(rep)
}

func collectSystemStats() systemStats {
	var stats systemStats

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if cpuPct, err := proc.CPUPercent(); err == nil {
			stats.ProcessCPUPercent = cpuPct
		}
		if memInfo, err := proc.MemoryInfo(); err == nil {
			stats.ProcessMemoryMB = float64(memInfo.RSS) / (1024 * 1024)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if pcts, err := gopsnet.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		stats.HostCPUPercent = pcts[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.HostMemoryPercent = vm.UsedPercent
	}

	return stats
}
