// Package lhm reads sensors published by LibreHardwareMonitor through
// its root\LibreHardwareMonitor WMI namespace. The namespace only
// exists while LHM runs elevated, so availability is a reported state.
package lhm

// Sensor is one LibreHardwareMonitor sensor reading. Units depend on
// the type: Temperature °C, Fan RPM, Control %, Voltage V, Clock MHz,
// Load %, Power W.
type Sensor struct {
	Identifier string  `json:"identifier"`
	Name       string  `json:"name"`
	SensorType string  `json:"sensor_type"`
	Value      float64 `json:"value"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Parent     string  `json:"parent"`
}

// Snapshot groups all sensors by type. Types outside the listed seven
// are dropped.
type Snapshot struct {
	Temperatures []Sensor `json:"temperatures"`
	Fans         []Sensor `json:"fans"`
	Controls     []Sensor `json:"controls"`
	Voltages     []Sensor `json:"voltages"`
	Clocks       []Sensor `json:"clocks"`
	Loads        []Sensor `json:"loads"`
	Powers       []Sensor `json:"powers"`
}

// Status reports whether the LHM namespace is usable.
type Status struct {
	Available   bool   `json:"available"`
	SensorCount int    `json:"sensor_count"`
	Detail      string `json:"detail"`
}

// Reader interface for LibreHardwareMonitor sensor access
type Reader interface {
	Snapshot() (*Snapshot, error)
	Status() Status
}

// NewReader creates a reader for the current platform
func NewReader() Reader {
	return newPlatformReader()
}

// groupSensors sorts raw sensor rows into a snapshot by type string.
func groupSensors(sensors []Sensor) *Snapshot {
	snap := &Snapshot{
		Temperatures: []Sensor{},
		Fans:         []Sensor{},
		Controls:     []Sensor{},
		Voltages:     []Sensor{},
		Clocks:       []Sensor{},
		Loads:        []Sensor{},
		Powers:       []Sensor{},
	}
	for _, s := range sensors {
		switch s.SensorType {
		case "Temperature":
			snap.Temperatures = append(snap.Temperatures, s)
		case "Fan":
			snap.Fans = append(snap.Fans, s)
		case "Control":
			snap.Controls = append(snap.Controls, s)
		case "Voltage":
			snap.Voltages = append(snap.Voltages, s)
		case "Clock":
			snap.Clocks = append(snap.Clocks, s)
		case "Load":
			snap.Loads = append(snap.Loads, s)
		case "Power":
			snap.Powers = append(snap.Powers, s)
		}
	}
	return snap
}
