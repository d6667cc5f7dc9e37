package sio

import (
	"fmt"

	"github.com/openfanhub/asusmon/internal/driver"
)

// Family identifies the Super I/O chip family. The set is closed: both
// register protocols are compile-time-known and matched exhaustively.
type Family int

const (
	FamilyNuvoton Family = iota
	FamilyITE
)

func (f Family) String() string {
	switch f {
	case FamilyNuvoton:
		return "nuvoton"
	case FamilyITE:
		return "ite"
	}
	return "unknown"
}

// Chip is a detected Super I/O hardware-monitor block. It is stateless
// beyond its identity; every read goes through the driver channel at
// call time, nothing is cached.
type Chip struct {
	Family   Family
	Name     string
	ChipID   uint16
	BaseAddr uint16
}

// ReadFans decodes every fan tachometer channel of the chip.
func (c Chip) ReadFans(io driver.PortIO) ([]FanReading, error) {
	switch c.Family {
	case FamilyNuvoton:
		return c.readNuvotonFans(io)
	case FamilyITE:
		return c.readITEFans(io)
	}
	return nil, fmt.Errorf("unknown chip family %d", c.Family)
}

// ReadTemps decodes every temperature channel of the chip. Out-of-range
// readings are dropped.
func (c Chip) ReadTemps(io driver.PortIO) ([]TempReading, error) {
	switch c.Family {
	case FamilyNuvoton:
		return c.readNuvotonTemps(io)
	case FamilyITE:
		return c.readITETemps(io)
	}
	return nil, fmt.Errorf("unknown chip family %d", c.Family)
}
