package metric

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemSource samples the local host via gopsutil.
type SystemSource struct {
	hostname string
	diskPath string
}

func NewSystemSource(diskPath string) *SystemSource {
	if diskPath == "" {
		diskPath = "/"
		if runtime.GOOS == "windows" {
			diskPath = "C:"
		}
	}
	return &SystemSource{
		hostname: localHostname(),
		diskPath: diskPath,
	}
}

func (s *SystemSource) Sample(ctx context.Context, kind Kind) (Reading, error) {
	var value float64
	switch kind {
	case KindCPU:
		pcts, err := cpu.PercentWithContext(ctx, 100*time.Millisecond, false)
		if err != nil {
			return Reading{}, fmt.Errorf("sample cpu: %w", err)
		}
		if len(pcts) == 0 {
			return Reading{}, fmt.Errorf("sample cpu: no data")
		}
		value = pcts[0]
	case KindMemory:
		vm, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return Reading{}, fmt.Errorf("sample memory: %w", err)
		}
		value = vm.UsedPercent
	case KindDisk:
		du, err := disk.UsageWithContext(ctx, s.diskPath)
		if err != nil {
			return Reading{}, fmt.Errorf("sample disk %s: %w", s.diskPath, err)
		}
		value = du.UsedPercent
	default:
		return Reading{}, fmt.Errorf("system source cannot sample kind %q", kind)
	}

	return Reading{
		Kind:       kind,
		Value:      value,
		Hostname:   s.hostname,
		ObservedAt: time.Now(),
	}, nil
}

func localHostname() string {
	if info, err := host.Info(); err == nil && info.Hostname != "" {
		return info.Hostname
	}
	if name, err := os.Hostname(); err == nil {
		return name
	}
	return "unknown"
}
