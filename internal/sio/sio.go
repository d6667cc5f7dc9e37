// Package sio reads fan tachometers and temperature sensors from the
// motherboard's Super I/O chip through the kernel driver channel.
package sio

// FanReading is one fan tachometer sample. RPM 0 means the fan is
// stopped or the header is unpopulated; it is never an error.
type FanReading struct {
	Name    string `json:"name"`
	RPM     uint32 `json:"rpm"`
	Channel uint8  `json:"channel"`
}

// TempReading is one temperature sensor sample in degrees Celsius.
type TempReading struct {
	Name    string  `json:"name"`
	TempC   float32 `json:"temp_c"`
	Channel uint8   `json:"channel"`
}

// Snapshot is one atomic read of every sensor on the detected chip.
// Fan and temperature values in a snapshot are mutually consistent.
type Snapshot struct {
	Fans     []FanReading  `json:"fans"`
	Temps    []TempReading `json:"temps"`
	ChipName string        `json:"chip_name"`
}

// Status reports subsystem availability without touching hardware.
type Status struct {
	Available bool   `json:"available"`
	ChipName  string `json:"chip_name,omitempty"`
	Error     string `json:"error,omitempty"`
}

// UnavailableStatus is the status reported when initialization failed.
func UnavailableStatus(errMsg string) Status {
	return Status{Available: false, Error: errMsg}
}

// Fan tachometer counts are controller clock ticks between revolution
// edges; the clock runs such that RPM = 1,350,000 / count. A count of 0
// or 0xFFFF is the stalled / absent sentinel.
const tachClock = 1_350_000

func tachRPM(count uint16) uint32 {
	if count == 0 || count == 0xFFFF {
		return 0
	}
	return tachClock / uint32(count)
}

// Readings outside this range are garbage from unpopulated channels and
// are dropped rather than reported.
const (
	tempMinC = -40.0
	tempMaxC = 125.0
)

func tempValid(tempC float32) bool {
	return tempC >= tempMinC && tempC <= tempMaxC
}
