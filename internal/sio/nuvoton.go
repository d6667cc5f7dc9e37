package sio

import "github.com/openfanhub/asusmon/internal/driver"

// Nuvoton NCT67xxD hardware-monitor register access. The block is
// bank-switched: write the bank number to base+0x4E, the register index
// to base+0x05, then read the value from base+0x06. Register layout per
// the Nuvoton datasheets and LibreHardwareMonitor.

const (
	nuvotonBankSelectOffset = 0x4E
	nuvotonAddrOffset       = 0x05
	nuvotonDataOffset       = 0x06
)

// nuvotonChipIDs maps chip ID & 0xFFF0 to the model name. The low nibble
// is the silicon revision and is ignored.
var nuvotonChipIDs = map[uint16]string{
	0xD420: "NCT6796D",
	0xD450: "NCT6797D",
	0xD580: "NCT6798D",
	0xD800: "NCT6799D",
	0xC800: "NCT6791D",
	0xC910: "NCT6792D",
	0xC950: "NCT6795D",
}

type nuvotonFanChannel struct {
	name    string
	highReg byte // count high byte, bank 4
	lowReg  byte // count low byte, bank 4
	channel uint8
}

// Seven tachometer inputs, 16-bit counts in bank 4.
var nuvotonFanChannels = []nuvotonFanChannel{
	{name: "CPU Fan", highReg: 0xC0, lowReg: 0xC1, channel: 0},     // SYSFANIN
	{name: "Chassis #1", highReg: 0xC2, lowReg: 0xC3, channel: 1},  // CPUFANIN
	{name: "Chassis #2", highReg: 0xC4, lowReg: 0xC5, channel: 2},  // AUXFANIN0
	{name: "Chassis #3", highReg: 0xC6, lowReg: 0xC7, channel: 3},  // AUXFANIN1
	{name: "Chassis #4", highReg: 0xC8, lowReg: 0xC9, channel: 4},  // AUXFANIN2
	{name: "Chassis #5", highReg: 0xCA, lowReg: 0xCB, channel: 5},  // AUXFANIN3
	{name: "Chassis #6", highReg: 0xCC, lowReg: 0xCD, channel: 6},  // AUXFANIN4
}

type nuvotonTempChannel struct {
	name     string
	bank     byte
	intReg   byte // signed integer part, °C
	fracBank byte
	fracReg  byte // bit 7 adds 0.5 °C
	channel  uint8
}

var nuvotonTempChannels = []nuvotonTempChannel{
	{name: "Mainboard", bank: 0, intReg: 0x73, fracBank: 0, fracReg: 0x74, channel: 0},   // SYSTIN
	{name: "CPU", bank: 0, intReg: 0x75, fracBank: 0, fracReg: 0x76, channel: 1},         // CPUTIN
	{name: "Auxiliary", bank: 0, intReg: 0x77, fracBank: 0, fracReg: 0x78, channel: 2},   // AUXTIN0
	{name: "Auxiliary 1", bank: 1, intReg: 0x50, fracBank: 1, fracReg: 0x51, channel: 3}, // AUXTIN1
	{name: "Auxiliary 2", bank: 2, intReg: 0x50, fracBank: 2, fracReg: 0x51, channel: 4}, // AUXTIN2
	{name: "Auxiliary 3", bank: 6, intReg: 0x50, fracBank: 6, fracReg: 0x51, channel: 5}, // AUXTIN3
}

// readNuvotonRegister selects a bank, then reads one register through
// the index/data window.
func (c Chip) readNuvotonRegister(io driver.PortIO, bank, reg byte) (byte, error) {
	if err := io.WritePortByte(c.BaseAddr+nuvotonBankSelectOffset, bank); err != nil {
		return 0, err
	}
	if err := io.WritePortByte(c.BaseAddr+nuvotonAddrOffset, reg); err != nil {
		return 0, err
	}
	return io.ReadPortByte(c.BaseAddr + nuvotonDataOffset)
}

func (c Chip) readNuvotonFans(io driver.PortIO) ([]FanReading, error) {
	fans := make([]FanReading, 0, len(nuvotonFanChannels))

	for _, fc := range nuvotonFanChannels {
		high, err := c.readNuvotonRegister(io, 4, fc.highReg)
		if err != nil {
			return nil, err
		}
		low, err := c.readNuvotonRegister(io, 4, fc.lowReg)
		if err != nil {
			return nil, err
		}
		count := uint16(high)<<8 | uint16(low)

		fans = append(fans, FanReading{
			Name:    fc.name,
			RPM:     tachRPM(count),
			Channel: fc.channel,
		})
	}

	return fans, nil
}

func (c Chip) readNuvotonTemps(io driver.PortIO) ([]TempReading, error) {
	temps := make([]TempReading, 0, len(nuvotonTempChannels))

	for _, tc := range nuvotonTempChannels {
		intVal, err := c.readNuvotonRegister(io, tc.bank, tc.intReg)
		if err != nil {
			return nil, err
		}
		fracVal, err := c.readNuvotonRegister(io, tc.fracBank, tc.fracReg)
		if err != nil {
			return nil, err
		}

		tempC := float32(int8(intVal))
		if fracVal&0x80 != 0 {
			tempC += 0.5
		}
		if !tempValid(tempC) {
			continue
		}

		temps = append(temps, TempReading{
			Name:    tc.name,
			TempC:   tempC,
			Channel: tc.channel,
		})
	}

	return temps, nil
}
