//go:build !windows

package driver

import "fmt"

// Channel is a stub on platforms without the WinRing0 kernel driver.
type Channel struct{}

// Open always fails off Windows.
func Open(resourceDir string) (*Channel, error) {
	return nil, fmt.Errorf("kernel driver channel is only available on Windows")
}

// Close is a no-op on unsupported platforms.
func (c *Channel) Close() error { return nil }

func (c *Channel) ReadPortByte(port uint16) (byte, error) {
	return 0, fmt.Errorf("%w: not available on this platform", ErrIO)
}

func (c *Channel) WritePortByte(port uint16, value byte) error {
	return fmt.Errorf("%w: not available on this platform", ErrIO)
}

func (c *Channel) ReadPortDword(port uint16) (uint32, error) {
	return 0, fmt.Errorf("%w: not available on this platform", ErrIO)
}

func (c *Channel) WritePortDword(port uint16, value uint32) error {
	return fmt.Errorf("%w: not available on this platform", ErrIO)
}
