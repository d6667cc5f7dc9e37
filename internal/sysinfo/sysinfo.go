// Package sysinfo summarizes the host the monitor runs on: machine and
// OS identity, CPU model, uptime, and whether the process holds the
// elevated token needed for kernel driver and WMI management access.
package sysinfo

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

// Info is the host summary returned by the API.
type Info struct {
	Hostname      string  `json:"hostname"`
	OS            string  `json:"os"`
	Platform      string  `json:"platform"`
	KernelVersion string  `json:"kernel_version"`
	UptimeSeconds uint64  `json:"uptime_seconds"`
	CPUModel      string  `json:"cpu_model"`
	CPUCores      int     `json:"cpu_cores"`
	CPUThreads    int     `json:"cpu_threads"`
	CPUMHz        float64 `json:"cpu_mhz"`
	Elevated      bool    `json:"elevated"`
}

// Collect gathers the host summary. CPU detail failures degrade to an
// empty model rather than failing the whole summary.
func Collect(ctx context.Context) (*Info, error) {
	hostInfo, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("read host info: %w", err)
	}

	info := &Info{
		Hostname:      hostInfo.Hostname,
		OS:            hostInfo.OS,
		Platform:      hostInfo.Platform,
		KernelVersion: hostInfo.KernelVersion,
		UptimeSeconds: hostInfo.Uptime,
		Elevated:      processElevated(),
	}

	if cpuInfo, err := cpu.InfoWithContext(ctx); err == nil && len(cpuInfo) > 0 {
		info.CPUModel = cpuInfo[0].ModelName
		info.CPUCores = int(cpuInfo[0].Cores)
		info.CPUThreads = len(cpuInfo)
		info.CPUMHz = cpuInfo[0].Mhz
	}

	return info, nil
}
