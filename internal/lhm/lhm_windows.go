//go:build windows

package lhm

import (
	"fmt"

	"github.com/StackExchange/wmi"
)

const lhmNamespace = `root\LibreHardwareMonitor`

// lhmSensor maps the LHM Sensor WMI class. Value/Min/Max are published
// as single-precision floats; the query layer widens them.
type lhmSensor struct {
	Identifier string
	Name       string
	SensorType string
	Value      float64
	Min        float64
	Max        float64
	Parent     string
}

// WindowsReader queries the LHM namespace on demand. Stateless; every
// call is a fresh WQL round trip.
type WindowsReader struct{}

func newPlatformReader() Reader {
	return &WindowsReader{}
}

func (r *WindowsReader) querySensors() ([]Sensor, error) {
	var rows []lhmSensor
	err := wmi.QueryNamespace("SELECT * FROM Sensor", &rows, lhmNamespace)
	if err != nil {
		return nil, fmt.Errorf("query LibreHardwareMonitor sensors: %w", err)
	}

	sensors := make([]Sensor, 0, len(rows))
	for _, row := range rows {
		sensors = append(sensors, Sensor{
			Identifier: row.Identifier,
			Name:       row.Name,
			SensorType: row.SensorType,
			Value:      row.Value,
			Min:        row.Min,
			Max:        row.Max,
			Parent:     row.Parent,
		})
	}
	return sensors, nil
}

// Snapshot reads every sensor and groups the result by type.
func (r *WindowsReader) Snapshot() (*Snapshot, error) {
	sensors, err := r.querySensors()
	if err != nil {
		return nil, err
	}
	return groupSensors(sensors), nil
}

// Status probes the namespace. A failed query means LHM is not running
// (or not elevated); an empty result means it runs but publishes
// nothing yet.
func (r *WindowsReader) Status() Status {
	var rows []struct{ Identifier string }
	err := wmi.QueryNamespace("SELECT Identifier FROM Sensor", &rows, lhmNamespace)
	if err != nil {
		return Status{Detail: "LibreHardwareMonitor WMI namespace is not accessible"}
	}
	if len(rows) == 0 {
		return Status{Detail: "LibreHardwareMonitor is running but reports no sensors"}
	}
	return Status{Available: true, SensorCount: len(rows), Detail: "available"}
}
