package sio

import (
	"io"
	"sync"

	"github.com/openfanhub/asusmon/internal/driver"
)

// Monitor couples the driver channel with the detected chip behind a
// mutex. Concurrent address-then-data port sequences must never
// interleave, so every hardware access holds the lock.
type Monitor struct {
	mu     sync.Mutex
	port   driver.PortIO
	chip   Chip
	closer io.Closer
}

// Init opens the kernel driver channel and detects the Super I/O chip.
// Failure is expected on machines without a supported chip and leaves
// the subsystem unavailable rather than failing the process.
func Init(resourceDir string) (*Monitor, error) {
	channel, err := driver.Open(resourceDir)
	if err != nil {
		return nil, err
	}

	chip, err := Detect(channel)
	if err != nil {
		channel.Close()
		return nil, err
	}

	return &Monitor{port: channel, chip: chip, closer: channel}, nil
}

// newMonitorWithChannel wires an arbitrary port channel in place of the
// kernel driver; used by tests to observe access ordering.
func newMonitorWithChannel(port driver.PortIO, chip Chip) *Monitor {
	return &Monitor{port: port, chip: chip}
}

// ReadAll reads fans and temperatures as one atomic unit under the lock,
// so the values in a snapshot are mutually consistent.
func (m *Monitor) ReadAll() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fans, err := m.chip.ReadFans(m.port)
	if err != nil {
		return Snapshot{}, err
	}
	temps, err := m.chip.ReadTemps(m.port)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Fans: fans, Temps: temps, ChipName: m.chip.Name}, nil
}

// Status reports availability and the chip name without touching
// hardware.
func (m *Monitor) Status() Status {
	return Status{Available: true, ChipName: m.chip.Name}
}

// Close releases the driver channel, stopping and deleting the kernel
// service.
func (m *Monitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closer != nil {
		return m.closer.Close()
	}
	return nil
}
