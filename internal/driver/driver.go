package driver

import "errors"

// Sentinel errors for the driver channel. Callers classify failures with
// errors.Is and decide whether the SIO subsystem degrades to unavailable.
var (
	// ErrDriverMissing means the kernel driver binary could not be located.
	ErrDriverMissing = errors.New("driver binary not found")

	// ErrService wraps service control manager failures (install/start/stop).
	ErrService = errors.New("driver service error")

	// ErrIO wraps failed port or PCI control requests.
	ErrIO = errors.New("port I/O error")
)

// PortIO is the raw I/O port access surface of the kernel driver channel.
// The SIO chip decoders and the PCI helpers are written against this
// interface so they can run against a fake channel in tests.
type PortIO interface {
	// ReadPortByte reads a single byte from an I/O port.
	ReadPortByte(port uint16) (byte, error)

	// WritePortByte writes a single byte to an I/O port.
	WritePortByte(port uint16, value byte) error

	// ReadPortDword reads a 32-bit value from an I/O port.
	ReadPortDword(port uint16) (uint32, error)

	// WritePortDword writes a 32-bit value to an I/O port.
	WritePortDword(port uint16, value uint32) error
}
