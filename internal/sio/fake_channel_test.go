package sio

import (
	"sync"
	"time"
)

// portOp records one port access for ordering assertions.
type portOp struct {
	write bool
	port  uint16
	value byte
}

// fakeSIO emulates a Super I/O chip behind the PortIO interface: the
// configuration-port entry/exit protocol, chip ID and logical-device
// registers, and the hardware-monitor register window. PCI dword access
// is modeled so LPC decode setup sees a non-AMD bridge and no-ops.
type fakeSIO struct {
	mu sync.Mutex

	family   Family
	cfgPort  uint16
	chipID   uint16
	ldnBases map[byte]uint16

	inConfig bool
	keyBuf   []byte
	index    byte
	ldn      byte

	hwmBase uint16
	bank    byte
	hwmIdx  byte
	// Nuvoton registers keyed bank<<8|reg, ITE registers keyed by reg.
	hwmRegs map[uint16]byte

	pciRegs map[uint32]uint32
	pciAddr uint32

	// opDelay widens the race window in concurrency tests.
	opDelay time.Duration
	ops     []portOp
}

func newFakeNuvoton(cfgPort, chipID, base uint16) *fakeSIO {
	return &fakeSIO{
		family:   FamilyNuvoton,
		cfgPort:  cfgPort,
		chipID:   chipID,
		ldnBases: map[byte]uint16{0x0B: base},
		hwmBase:  base,
		hwmRegs:  make(map[uint16]byte),
		pciRegs:  make(map[uint32]uint32),
	}
}

func newFakeITE(cfgPort, chipID, base uint16) *fakeSIO {
	return &fakeSIO{
		family:   FamilyITE,
		cfgPort:  cfgPort,
		chipID:   chipID,
		ldnBases: map[byte]uint16{0x04: base},
		hwmBase:  base,
		hwmRegs:  make(map[uint16]byte),
		pciRegs:  make(map[uint32]uint32),
	}
}

// setNuvotonReg seeds a hardware-monitor register in a given bank.
func (f *fakeSIO) setNuvotonReg(bank, reg byte, value byte) {
	f.hwmRegs[uint16(bank)<<8|uint16(reg)] = value
}

// setITEReg seeds an Environment Controller register.
func (f *fakeSIO) setITEReg(reg byte, value byte) {
	f.hwmRegs[uint16(reg)] = value
}

func (f *fakeSIO) record(op portOp) {
	f.ops = append(f.ops, op)
	if f.opDelay > 0 {
		f.mu.Unlock()
		time.Sleep(f.opDelay)
		f.mu.Lock()
	}
}

// keyMatched reports whether the collected write sequence is this
// family's configuration entry key.
func (f *fakeSIO) keyMatched() bool {
	n := len(f.keyBuf)
	switch f.family {
	case FamilyNuvoton:
		return n >= 2 && f.keyBuf[n-1] == 0x87 && f.keyBuf[n-2] == 0x87
	case FamilyITE:
		last := byte(0x55)
		if f.cfgPort != 0x2E {
			last = 0xAA
		}
		return n >= 4 &&
			f.keyBuf[n-4] == 0x87 && f.keyBuf[n-3] == 0x01 &&
			f.keyBuf[n-2] == 0x55 && f.keyBuf[n-1] == last
	}
	return false
}

func (f *fakeSIO) WritePortByte(port uint16, value byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(portOp{write: true, port: port, value: value})

	switch port {
	case f.cfgPort:
		if !f.inConfig {
			f.keyBuf = append(f.keyBuf, value)
			if f.keyMatched() {
				f.inConfig = true
				f.keyBuf = nil
			}
			return nil
		}
		if f.family == FamilyNuvoton && value == 0xAA {
			f.inConfig = false
			return nil
		}
		f.index = value

	case f.cfgPort + 1:
		if !f.inConfig {
			return nil
		}
		switch f.index {
		case 0x07:
			f.ldn = value
		case 0x02:
			// ITE exit: 0x02 to the config port, then 0x02 here.
			if f.family == FamilyITE && value == 0x02 {
				f.inConfig = false
			}
		}

	case f.hwmBase + 0x4E:
		f.bank = value

	case f.hwmBase + 0x05:
		f.hwmIdx = value
	}

	return nil
}

func (f *fakeSIO) ReadPortByte(port uint16) (byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(portOp{write: false, port: port})

	switch port {
	case f.cfgPort + 1:
		if !f.inConfig {
			// Floating bus.
			return 0xFF, nil
		}
		switch f.index {
		case 0x20:
			return byte(f.chipID >> 8), nil
		case 0x21:
			return byte(f.chipID), nil
		case 0x60:
			return byte(f.ldnBases[f.ldn] >> 8), nil
		case 0x61:
			return byte(f.ldnBases[f.ldn]), nil
		}
		return 0, nil

	case f.hwmBase + 0x06:
		if f.family == FamilyNuvoton {
			return f.hwmRegs[uint16(f.bank)<<8|uint16(f.hwmIdx)], nil
		}
		return f.hwmRegs[uint16(f.hwmIdx)], nil
	}

	return 0xFF, nil
}

func (f *fakeSIO) ReadPortDword(port uint16) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if port == 0xCFC {
		return f.pciRegs[f.pciAddr], nil
	}
	return 0, nil
}

func (f *fakeSIO) WritePortDword(port uint16, value uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch port {
	case 0xCF8:
		f.pciAddr = value
	case 0xCFC:
		f.pciRegs[f.pciAddr] = value
	}
	return nil
}

// opLog returns a copy of the recorded port accesses.
func (f *fakeSIO) opLog() []portOp {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]portOp(nil), f.ops...)
}
