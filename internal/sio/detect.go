package sio

import (
	"errors"
	"log"

	"github.com/openfanhub/asusmon/internal/driver"
)

// ErrChipNotFound means no supported Super I/O hardware-monitor block
// answered on either configuration port. Terminal; there is no retry.
var ErrChipNotFound = errors.New("no supported Super I/O chip detected (Nuvoton NCT67xx / ITE IT86xx)")

// The two legacy Super I/O configuration ports. The data port is always
// the configuration port plus one.
var configPorts = []uint16{0x2E, 0x4E}

// Detect probes both configuration ports with each family's entry
// sequence and returns the first matching chip.
func Detect(io driver.PortIO) (Chip, error) {
	for _, port := range configPorts {
		chip, ok, err := tryNuvoton(io, port)
		if err != nil {
			return Chip{}, err
		}
		if ok {
			return chip, nil
		}

		chip, ok, err = tryITE(io, port)
		if err != nil {
			return Chip{}, err
		}
		if ok {
			return chip, nil
		}
	}

	return Chip{}, ErrChipNotFound
}

// tryNuvoton probes one port with the Nuvoton/Winbond extended-function
// entry sequence. On a miss the extended mode is exited before moving on.
func tryNuvoton(io driver.PortIO, port uint16) (Chip, bool, error) {
	dataPort := port + 1

	// Enter extended function mode: 0x87 written twice.
	if err := io.WritePortByte(port, 0x87); err != nil {
		return Chip{}, false, err
	}
	if err := io.WritePortByte(port, 0x87); err != nil {
		return Chip{}, false, err
	}

	chipID, err := readChipID(io, port, dataPort)
	if err != nil {
		return Chip{}, false, err
	}

	// Low nibble is the silicon revision.
	name, ok := nuvotonChipIDs[chipID&0xFFF0]
	if !ok {
		// Not a Nuvoton; leave extended function mode.
		if err := io.WritePortByte(port, 0xAA); err != nil {
			return Chip{}, false, err
		}
		return Chip{}, false, nil
	}

	// Logical device 0x0B is the hardware monitor.
	base, err := readLogicalDeviceBase(io, port, dataPort, 0x0B)
	if err != nil {
		return Chip{}, false, err
	}

	if err := io.WritePortByte(port, 0xAA); err != nil {
		return Chip{}, false, err
	}

	if base == 0 || base == 0xFFFF {
		return Chip{}, false, nil
	}

	log.Printf("sio: detected %s, chip ID 0x%04X, HW monitor base 0x%04X", name, chipID, base)

	// AMD south bridges need the range forwarded onto the LPC bus.
	if err := driver.EnableLPCIODecode(io, base); err != nil {
		log.Printf("sio: LPC I/O decode setup: %v", err)
	}

	return Chip{Family: FamilyNuvoton, Name: name, ChipID: chipID, BaseAddr: base}, true, nil
}

// tryITE probes one port with the ITE configuration key sequence.
func tryITE(io driver.PortIO, port uint16) (Chip, bool, error) {
	dataPort := port + 1

	// The last key byte depends on the configuration port.
	key := []byte{0x87, 0x01, 0x55, 0x55}
	if port != 0x2E {
		key = []byte{0x87, 0x01, 0x55, 0xAA}
	}
	for _, b := range key {
		if err := io.WritePortByte(port, b); err != nil {
			return Chip{}, false, err
		}
	}

	chipID, err := readChipID(io, port, dataPort)
	if err != nil {
		return Chip{}, false, err
	}

	name, ok := iteChipIDs[chipID]
	if !ok {
		if err := exitITEConfig(io, port, dataPort); err != nil {
			return Chip{}, false, err
		}
		return Chip{}, false, nil
	}

	// Logical device 0x04 is the Environment Controller.
	base, err := readLogicalDeviceBase(io, port, dataPort, 0x04)
	if err != nil {
		return Chip{}, false, err
	}

	if err := exitITEConfig(io, port, dataPort); err != nil {
		return Chip{}, false, err
	}

	if base == 0 || base == 0xFFFF {
		return Chip{}, false, nil
	}

	log.Printf("sio: detected %s, chip ID 0x%04X, EC base 0x%04X", name, chipID, base)

	return Chip{Family: FamilyITE, Name: name, ChipID: chipID, BaseAddr: base}, true, nil
}

// readChipID reads the 16-bit chip ID from configuration registers
// 0x20 (high byte) and 0x21 (low byte).
func readChipID(io driver.PortIO, port, dataPort uint16) (uint16, error) {
	if err := io.WritePortByte(port, 0x20); err != nil {
		return 0, err
	}
	high, err := io.ReadPortByte(dataPort)
	if err != nil {
		return 0, err
	}
	if err := io.WritePortByte(port, 0x21); err != nil {
		return 0, err
	}
	low, err := io.ReadPortByte(dataPort)
	if err != nil {
		return 0, err
	}
	return uint16(high)<<8 | uint16(low), nil
}

// readLogicalDeviceBase selects a logical device via register 0x07 and
// reads its I/O base address from registers 0x60/0x61.
func readLogicalDeviceBase(io driver.PortIO, port, dataPort uint16, ldn byte) (uint16, error) {
	if err := io.WritePortByte(port, 0x07); err != nil {
		return 0, err
	}
	if err := io.WritePortByte(dataPort, ldn); err != nil {
		return 0, err
	}
	if err := io.WritePortByte(port, 0x60); err != nil {
		return 0, err
	}
	high, err := io.ReadPortByte(dataPort)
	if err != nil {
		return 0, err
	}
	if err := io.WritePortByte(port, 0x61); err != nil {
		return 0, err
	}
	low, err := io.ReadPortByte(dataPort)
	if err != nil {
		return 0, err
	}
	return uint16(high)<<8 | uint16(low), nil
}

// exitITEConfig writes the documented exit bytes: 0x02 to the
// configuration port, then 0x02 to the data port.
func exitITEConfig(io driver.PortIO, port, dataPort uint16) error {
	if err := io.WritePortByte(port, 0x02); err != nil {
		return err
	}
	return io.WritePortByte(dataPort, 0x02)
}
