package system

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// FindLatestBoard finds the most recent board snapshot (.yaml/.yml) in dir.
func FindLatestBoard(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := strings.ToLower(f.Name())
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no board files found in %s", dir)
	}
	return latestFile, nil
}

// PerfSnapshot is a point-in-time view of this process, attached to the
// performance report when -stats is on.
type PerfSnapshot struct {
	CPUPercent float64
	RSSMB      float64
	Goroutines int
}

// Snapshot samples the current process via gopsutil. Failures degrade to a
// zeroed snapshot; stats must never break a replay.
func Snapshot() PerfSnapshot {
	snap := PerfSnapshot{Goroutines: runtime.NumGoroutine()}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return snap
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		snap.CPUPercent = cpu
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		snap.RSSMB = float64(mem.RSS) / (1024 * 1024)
	}
	return snap
}

// AppendBenchmarkLog appends one line to benchmark.log in the working
// directory, matching the long-running perf history format.
func AppendBenchmarkLog(line string) error {
	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line)
	return err
}
