package gateway

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"k8s.io/klog/v2"
)

const cpuSampleInterval = time.Second

func (m *Manager) getGatewayCpu() ([]string, error) {
	percents, err := cpu.Percent(cpuSampleInterval, true)
	if err != nil {
		klog.V(2).InfoS("Failed to read cpu usage", "err", err)
		return nil, err
	}
	usage := make([]string, 0, len(percents))
	for _, percent := range percents {
		usage = append(usage, fmt.Sprintf("%.1f%%", percent))
	}
	return usage, nil
}

func (m *Manager) getGatewayMem() (*MemUsageInfo, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		klog.V(2).InfoS("Failed to read memory usage", "err", err)
		return nil, err
	}
	return &MemUsageInfo{
		Total:       humanBytes(vm.Total),
		Used:        humanBytes(vm.Used),
		UsedPercent: fmt.Sprintf("%.1f%%", vm.UsedPercent),
	}, nil
}

func (m *Manager) getGatewayDisk() ([]*DiskUsageInfo, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		klog.V(2).InfoS("Failed to list disk partitions", "err", err)
		return nil, err
	}
	infos := make([]*DiskUsageInfo, 0, len(partitions))
	for _, partition := range partitions {
		usage, err := disk.Usage(partition.Mountpoint)
		if err != nil {
			klog.V(3).InfoS("Failed to read disk usage", "mountpoint", partition.Mountpoint, "err", err)
			continue
		}
		infos = append(infos, &DiskUsageInfo{
			Path:        partition.Mountpoint,
			Total:       humanBytes(usage.Total),
			Used:        humanBytes(usage.Used),
			UsedPercent: fmt.Sprintf("%.1f%%", usage.UsedPercent),
		})
	}
	return infos, nil
}

func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(n)/float64(div), "KMGTPE"[exp])
}
