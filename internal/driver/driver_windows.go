//go:build windows

package driver

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

// WinRing0 identifiers. The signed WinRing0x64.sys binary is shipped next
// to the executable (or in a resource directory) and registered as a
// demand-start kernel service on first open.
const (
	driverFileName = "WinRing0x64.sys"
	serviceName    = "WinRing0_1_2_0"
	devicePath     = `\\.\WinRing0_1_2_0`
)

// WinRing0 OLS control codes.
const (
	ioctlReadIOPortByte   uint32 = 0x9C402480
	ioctlReadIOPortDword  uint32 = 0x9C402484
	ioctlWriteIOPortByte  uint32 = 0x9C402488
	ioctlWriteIOPortDword uint32 = 0x9C40248C
)

// Channel owns the open device handle to the WinRing0 kernel driver and
// the registered service backing it. At most one channel exists per
// process; the SIO monitor serializes all access through it.
type Channel struct {
	device windows.Handle
}

// Open locates the driver binary, installs and starts the kernel service
// if needed, and opens the control device. The service tolerates an
// "already running" state so a leftover instance from a previous run is
// reused rather than treated as an error.
func Open(resourceDir string) (*Channel, error) {
	driverPath, err := locateDriver(resourceDir)
	if err != nil {
		return nil, err
	}

	if err := ensureService(driverPath); err != nil {
		return nil, err
	}

	device, err := openDevice()
	if err != nil {
		// Do not leave a registered service behind on a failed open.
		removeService()
		return nil, err
	}

	return &Channel{device: device}, nil
}

// locateDriver looks for the .sys file in the resource directory first,
// then next to the running executable.
func locateDriver(resourceDir string) (string, error) {
	candidate := filepath.Join(resourceDir, driverFileName)
	if _, err := os.Stat(candidate); err == nil {
		return filepath.Abs(candidate)
	}

	if exe, err := os.Executable(); err == nil {
		alt := filepath.Join(filepath.Dir(exe), driverFileName)
		if _, err := os.Stat(alt); err == nil {
			return alt, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrDriverMissing, candidate)
}

// ensureService registers the driver as a demand-start kernel service if
// it is not registered yet, then starts it.
func ensureService(driverPath string) error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("%w: open service control manager: %v", ErrService, err)
	}
	defer m.Disconnect()

	created := false
	s, err := m.OpenService(serviceName)
	if err != nil {
		s, err = m.CreateService(serviceName, driverPath, mgr.Config{
			ServiceType:  windows.SERVICE_KERNEL_DRIVER,
			StartType:    mgr.StartManual,
			ErrorControl: mgr.ErrorNormal,
			DisplayName:  serviceName,
		})
		if err != nil {
			return fmt.Errorf("%w: create service: %v", ErrService, err)
		}
		created = true
	}
	defer s.Close()

	if err := s.Start(); err != nil && !errors.Is(err, windows.ERROR_SERVICE_ALREADY_RUNNING) {
		// Only remove a registration this run created; a pre-existing
		// service belongs to whoever installed it.
		if created {
			s.Delete()
		}
		return fmt.Errorf("%w: start service: %v", ErrService, err)
	}

	return nil
}

// openDevice opens the driver's control device.
func openDevice() (windows.Handle, error) {
	path, err := windows.UTF16PtrFromString(devicePath)
	if err != nil {
		return windows.InvalidHandle, fmt.Errorf("%w: device path: %v", ErrService, err)
	}

	device, err := windows.CreateFile(
		path,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return windows.InvalidHandle, fmt.Errorf("%w: open %s: %v", ErrService, devicePath, err)
	}
	return device, nil
}

// removeService stops and deletes the driver service, best effort.
func removeService() {
	m, err := mgr.Connect()
	if err != nil {
		return
	}
	defer m.Disconnect()

	s, err := m.OpenService(serviceName)
	if err != nil {
		return
	}
	defer s.Close()

	s.Control(svc.Stop)
	s.Delete()
}

// Close releases the device handle, then stops and deletes the driver
// service so no resident driver is left behind.
func (c *Channel) Close() error {
	if c.device != windows.InvalidHandle {
		windows.CloseHandle(c.device)
		c.device = windows.InvalidHandle
	}
	removeService()
	return nil
}

// ioctl issues one control request against the device.
func (c *Channel) ioctl(code uint32, in, out []byte) error {
	var inPtr, outPtr *byte
	if len(in) > 0 {
		inPtr = &in[0]
	}
	if len(out) > 0 {
		outPtr = &out[0]
	}
	var returned uint32
	return windows.DeviceIoControl(c.device, code, inPtr, uint32(len(in)), outPtr, uint32(len(out)), &returned, nil)
}

// ReadPortByte reads a single byte from an I/O port.
func (c *Channel) ReadPortByte(port uint16) (byte, error) {
	var in, out [4]byte
	binary.LittleEndian.PutUint32(in[:], uint32(port))
	if err := c.ioctl(ioctlReadIOPortByte, in[:], out[:]); err != nil {
		return 0, fmt.Errorf("%w: read port 0x%04X: %v", ErrIO, port, err)
	}
	return out[0], nil
}

// WritePortByte writes a single byte to an I/O port. The WinRing0 input
// layout packs the port into the low 16 bits and the data into bits 16-23.
func (c *Channel) WritePortByte(port uint16, value byte) error {
	var in [4]byte
	binary.LittleEndian.PutUint32(in[:], uint32(port)|uint32(value)<<16)
	if err := c.ioctl(ioctlWriteIOPortByte, in[:], nil); err != nil {
		return fmt.Errorf("%w: write port 0x%04X: %v", ErrIO, port, err)
	}
	return nil
}

// ReadPortDword reads a 32-bit value from an I/O port.
func (c *Channel) ReadPortDword(port uint16) (uint32, error) {
	var in, out [4]byte
	binary.LittleEndian.PutUint32(in[:], uint32(port))
	if err := c.ioctl(ioctlReadIOPortDword, in[:], out[:]); err != nil {
		return 0, fmt.Errorf("%w: read port 0x%04X: %v", ErrIO, port, err)
	}
	return binary.LittleEndian.Uint32(out[:]), nil
}

// WritePortDword writes a 32-bit value to an I/O port.
func (c *Channel) WritePortDword(port uint16, value uint32) error {
	var in [8]byte
	binary.LittleEndian.PutUint32(in[0:], uint32(port))
	binary.LittleEndian.PutUint32(in[4:], value)
	if err := c.ioctl(ioctlWriteIOPortDword, in[:], nil); err != nil {
		return fmt.Errorf("%w: write port 0x%04X: %v", ErrIO, port, err)
	}
	return nil
}

var _ PortIO = (*Channel)(nil)
