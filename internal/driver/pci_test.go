package driver

import (
	"errors"
	"testing"
)

// fakePCIBus emulates the 0xCF8/0xCFC configuration mechanism over the
// PortIO interface. Registers are keyed by the encoded config address.
type fakePCIBus struct {
	regs map[uint32]uint32
	addr uint32
}

func newFakePCIBus() *fakePCIBus {
	return &fakePCIBus{regs: make(map[uint32]uint32)}
}

func (f *fakePCIBus) ReadPortByte(port uint16) (byte, error) {
	return 0, errors.New("byte access not modeled")
}

func (f *fakePCIBus) WritePortByte(port uint16, value byte) error {
	return errors.New("byte access not modeled")
}

func (f *fakePCIBus) ReadPortDword(port uint16) (uint32, error) {
	if port != pciConfigDataPort {
		return 0, errors.New("unexpected dword read port")
	}
	return f.regs[f.addr], nil
}

func (f *fakePCIBus) WritePortDword(port uint16, value uint32) error {
	switch port {
	case pciConfigAddressPort:
		f.addr = value
	case pciConfigDataPort:
		f.regs[f.addr] = value
	default:
		return errors.New("unexpected dword write port")
	}
	return nil
}

// set seeds a config register by bus/dev/fn/reg.
func (f *fakePCIBus) set(bus, dev, fn, reg uint8, value uint32) {
	f.regs[pciConfigAddress(bus, dev, fn, reg)] = value
}

func (f *fakePCIBus) get(bus, dev, fn, reg uint8) uint32 {
	return f.regs[pciConfigAddress(bus, dev, fn, reg)]
}

func TestPCIConfigAddressEncoding(t *testing.T) {
	tests := []struct {
		bus, dev, fn, reg uint8
		want              uint32
	}{
		{0, 0, 0, 0, 0x80000000},
		{0, 0x14, 3, 0x48, 0x8000A348},
		{1, 0x1F, 7, 0xFC, 0x8001FFFC},
		{0, 0x14, 3, 0x4A, 0x8000A348}, // dword aligned
	}
	for _, tt := range tests {
		got := pciConfigAddress(tt.bus, tt.dev, tt.fn, tt.reg)
		if got != tt.want {
			t.Errorf("pciConfigAddress(%d, 0x%02X, %d, 0x%02X) = 0x%08X, want 0x%08X",
				tt.bus, tt.dev, tt.fn, tt.reg, got, tt.want)
		}
	}
}

func TestReadWritePCIConfig(t *testing.T) {
	bus := newFakePCIBus()
	bus.set(0, 0x14, 3, 0x48, 0xDEADBEEF)

	got, err := ReadPCIConfig(bus, 0, 0x14, 3, 0x48)
	if err != nil {
		t.Fatalf("ReadPCIConfig() error: %v", err)
	}
	if got != 0xDEADBEEF {
		t.Errorf("ReadPCIConfig() = 0x%08X, want 0xDEADBEEF", got)
	}

	if err := WritePCIConfig(bus, 0, 0x14, 3, 0x48, 0x12345678); err != nil {
		t.Fatalf("WritePCIConfig() error: %v", err)
	}
	if got := bus.get(0, 0x14, 3, 0x48); got != 0x12345678 {
		t.Errorf("register after write = 0x%08X, want 0x12345678", got)
	}
}

func TestPCIConfigWordHelpers(t *testing.T) {
	bus := newFakePCIBus()
	bus.set(0, 0x14, 3, 0x64, 0x0AA00290)

	low, err := readPCIConfigWord(bus, 0, 0x14, 3, 0x64)
	if err != nil {
		t.Fatalf("readPCIConfigWord(0x64) error: %v", err)
	}
	if low != 0x0290 {
		t.Errorf("low word = 0x%04X, want 0x0290", low)
	}

	high, err := readPCIConfigWord(bus, 0, 0x14, 3, 0x66)
	if err != nil {
		t.Fatalf("readPCIConfigWord(0x66) error: %v", err)
	}
	if high != 0x0AA0 {
		t.Errorf("high word = 0x%04X, want 0x0AA0", high)
	}

	// Writing one half must preserve the other.
	if err := writePCIConfigWord(bus, 0, 0x14, 3, 0x66, 0x0A20); err != nil {
		t.Fatalf("writePCIConfigWord(0x66) error: %v", err)
	}
	if got := bus.get(0, 0x14, 3, 0x64); got != 0x0A200290 {
		t.Errorf("dword after word write = 0x%08X, want 0x0A200290", got)
	}
}
