package sio

import "github.com/openfanhub/asusmon/internal/driver"

// ITE IT86xxE Environment Controller register access: write the register
// index to base+0x05 and read the value from base+0x06. No banking.

const (
	iteAddrOffset = 0x05
	iteDataOffset = 0x06

	// EC configuration register; bit 6 selects 16-bit tachometer counts.
	iteFanConfigReg   = 0x0C
	iteFan16BitEnable = 0x40
)

var iteChipIDs = map[uint16]string{
	0x8628: "IT8628E",
	0x8686: "IT8686E",
	0x8688: "IT8688E",
	0x8689: "IT8689E",
	0x8695: "IT8695E",
}

type iteFanChannel struct {
	name    string
	lowReg  byte
	highReg byte // extended register, only meaningful in 16-bit mode
	channel uint8
}

var iteFanChannels = []iteFanChannel{
	{name: "CPU Fan", lowReg: 0x0D, highReg: 0x18, channel: 0},    // FAN1
	{name: "Chassis #1", lowReg: 0x0E, highReg: 0x19, channel: 1}, // FAN2
	{name: "Chassis #2", lowReg: 0x0F, highReg: 0x1A, channel: 2}, // FAN3
	{name: "Chassis #3", lowReg: 0x80, highReg: 0x81, channel: 3}, // FAN4
	{name: "Chassis #4", lowReg: 0x82, highReg: 0x83, channel: 4}, // FAN5
}

// Sixth tachometer input, present on IT8689E and IT8695E only.
var iteFanChannelsExt = []iteFanChannel{
	{name: "Chassis #5", lowReg: 0x84, highReg: 0x85, channel: 5}, // FAN6
}

type iteTempChannel struct {
	name    string
	reg     byte
	channel uint8
}

var iteTempChannels = []iteTempChannel{
	{name: "CPU", reg: 0x29, channel: 0},       // TMPIN1
	{name: "Mainboard", reg: 0x2A, channel: 1}, // TMPIN2
	{name: "Auxiliary", reg: 0x2B, channel: 2}, // TMPIN3
}

func (c Chip) readITERegister(io driver.PortIO, reg byte) (byte, error) {
	if err := io.WritePortByte(c.BaseAddr+iteAddrOffset, reg); err != nil {
		return 0, err
	}
	return io.ReadPortByte(c.BaseAddr + iteDataOffset)
}

// iteHasSixFans reports whether the chip exposes the FAN6 tachometer.
func (c Chip) iteHasSixFans() bool {
	return c.ChipID == 0x8689 || c.ChipID == 0x8695
}

func (c Chip) readITEFans(io driver.PortIO) ([]FanReading, error) {
	config, err := c.readITERegister(io, iteFanConfigReg)
	if err != nil {
		return nil, err
	}
	is16Bit := config&iteFan16BitEnable != 0

	channels := iteFanChannels
	if c.iteHasSixFans() {
		channels = append(append([]iteFanChannel{}, iteFanChannels...), iteFanChannelsExt...)
	}

	fans := make([]FanReading, 0, len(channels))
	for _, fc := range channels {
		low, err := c.readITERegister(io, fc.lowReg)
		if err != nil {
			return nil, err
		}

		count := uint16(low)
		if is16Bit {
			high, err := c.readITERegister(io, fc.highReg)
			if err != nil {
				return nil, err
			}
			count = uint16(high)<<8 | uint16(low)
		}

		fans = append(fans, FanReading{
			Name:    fc.name,
			RPM:     tachRPM(count),
			Channel: fc.channel,
		})
	}

	return fans, nil
}

func (c Chip) readITETemps(io driver.PortIO) ([]TempReading, error) {
	temps := make([]TempReading, 0, len(iteTempChannels))

	for _, tc := range iteTempChannels {
		raw, err := c.readITERegister(io, tc.reg)
		if err != nil {
			return nil, err
		}

		tempC := float32(int8(raw))
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
