//go:build !windows

package lhm

import "errors"

// UnsupportedReader is used on platforms without the LHM WMI namespace.
type UnsupportedReader struct{}

func newPlatformReader() Reader {
	return &UnsupportedReader{}
}

func (r *UnsupportedReader) Snapshot() (*Snapshot, error) {
	return nil, errors.New("LibreHardwareMonitor sensors require Windows")
}

func (r *UnsupportedReader) Status() Status {
	return Status{Detail: "LibreHardwareMonitor sensors require Windows"}
}
