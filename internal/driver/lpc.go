package driver

import "fmt"

// AMD FCH LPC/ISA bridge location and registers. On AMD platforms the
// firmware does not always forward the Super I/O legacy range onto the
// LPC bus, so one of the three wide-I/O decode windows has to be
// programmed explicitly. Intel bridges subtractively decode the range
// and need no setup.
const (
	amdVendorID uint32 = 0x1022

	lpcBridgeBus uint8 = 0x00
	lpcBridgeDev uint8 = 0x14
	lpcBridgeFn  uint8 = 0x03

	// IO/Mem Port Decode Enable register; holds the wide-I/O enable bits.
	lpcDecodeEnableReg uint8 = 0x48
)

// wideIOWindow describes one of the FCH's three wide-I/O decode slots.
type wideIOWindow struct {
	// Configuration register holding the 16-bit window base address.
	baseReg uint8
	// Bit in lpcDecodeEnableReg that enables the window.
	enableBit uint8
}

var wideIOWindows = [3]wideIOWindow{
	{baseReg: 0x64, enableBit: 2},  // Wide IO 0
	{baseReg: 0x66, enableBit: 24}, // Wide IO 1
	{baseReg: 0x90, enableBit: 25}, // Wide IO 2
}

// EnableLPCIODecode makes sure the south bridge forwards baseAddr onto
// the LPC bus. If an enabled window already covers the address this is a
// no-op; otherwise the first disabled window is programmed and enabled.
// Window selection is first-free-wins; there is no documented tie-break
// when all three slots are taken.
func EnableLPCIODecode(io PortIO, baseAddr uint16) error {
	id, err := ReadPCIConfig(io, lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, 0x00)
	if err != nil {
		return err
	}
	if id&0xFFFF != amdVendorID {
		// Not an AMD FCH; the legacy range is forwarded already.
		return nil
	}

	enable, err := ReadPCIConfig(io, lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, lpcDecodeEnableReg)
	if err != nil {
		return err
	}

	// Windows decode on 16-byte granularity; the low nibble is ignored.
	want := baseAddr &^ 0x000F

	for _, w := range wideIOWindows {
		if enable&(1<<w.enableBit) == 0 {
			continue
		}
		base, err := readPCIConfigWord(io, lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, w.baseReg)
		if err != nil {
			return err
		}
		if base&^0x000F == want {
			return nil
		}
	}

	for _, w := range wideIOWindows {
		if enable&(1<<w.enableBit) != 0 {
			continue
		}
		if err := writePCIConfigWord(io, lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, w.baseReg, want); err != nil {
			return err
		}
		enable |= 1 << w.enableBit
		return WritePCIConfig(io, lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, lpcDecodeEnableReg, enable)
	}

	return fmt.Errorf("no free LPC wide I/O decode window for base 0x%04X", baseAddr)
}
