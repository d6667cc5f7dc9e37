package driver

import "fmt"

// Legacy PCI configuration mechanism #1 port pair.
const (
	pciConfigAddressPort uint16 = 0xCF8
	pciConfigDataPort    uint16 = 0xCFC
)

// pciConfigAddress encodes a bus/device/function/register tuple into the
// CONFIG_ADDRESS format: enable bit 31, bus 23:16, device 15:11,
// function 10:8, register 7:2 (dword aligned).
func pciConfigAddress(bus, dev, fn, reg uint8) uint32 {
	return 0x8000_0000 |
		uint32(bus)<<16 |
		uint32(dev&0x1F)<<11 |
		uint32(fn&0x07)<<8 |
		uint32(reg&0xFC)
}

// ReadPCIConfig reads a 32-bit PCI configuration register through the
// legacy 0xCF8/0xCFC port pair. reg is rounded down to dword alignment.
func ReadPCIConfig(io PortIO, bus, dev, fn, reg uint8) (uint32, error) {
	if err := io.WritePortDword(pciConfigAddressPort, pciConfigAddress(bus, dev, fn, reg)); err != nil {
		return 0, fmt.Errorf("PCI config address %02x:%02x.%x reg 0x%02X: %w", bus, dev, fn, reg, err)
	}
	value, err := io.ReadPortDword(pciConfigDataPort)
	if err != nil {
		return 0, fmt.Errorf("PCI config read %02x:%02x.%x reg 0x%02X: %w", bus, dev, fn, reg, err)
	}
	return value, nil
}

// WritePCIConfig writes a 32-bit PCI configuration register through the
// legacy 0xCF8/0xCFC port pair.
func WritePCIConfig(io PortIO, bus, dev, fn, reg uint8, value uint32) error {
	if err := io.WritePortDword(pciConfigAddressPort, pciConfigAddress(bus, dev, fn, reg)); err != nil {
		return fmt.Errorf("PCI config address %02x:%02x.%x reg 0x%02X: %w", bus, dev, fn, reg, err)
	}
	if err := io.WritePortDword(pciConfigDataPort, value); err != nil {
		return fmt.Errorf("PCI config write %02x:%02x.%x reg 0x%02X: %w", bus, dev, fn, reg, err)
	}
	return nil
}

// readPCIConfigWord reads a 16-bit slice of a configuration register.
func readPCIConfigWord(io PortIO, bus, dev, fn, reg uint8) (uint16, error) {
	dword, err := ReadPCIConfig(io, bus, dev, fn, reg)
	if err != nil {
		return 0, err
	}
	shift := (reg & 0x02) * 8
	return uint16(dword >> shift), nil
}

// writePCIConfigWord writes a 16-bit slice of a configuration register,
// preserving the other half of the dword.
func writePCIConfigWord(io PortIO, bus, dev, fn, reg uint8, value uint16) error {
	dword, err := ReadPCIConfig(io, bus, dev, fn, reg)
	if err != nil {
		return err
	}
	shift := (reg & 0x02) * 8
	dword &^= uint32(0xFFFF) << shift
	dword |= uint32(value) << shift
	return WritePCIConfig(io, bus, dev, fn, reg, dword)
}
