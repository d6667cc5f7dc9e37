package driver

import "testing"

func amdBridge() *fakePCIBus {
	bus := newFakePCIBus()
	// AMD FCH LPC bridge vendor/device ID.
	bus.set(lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, 0x00, 0x790E0000|amdVendorID)
	return bus
}

func TestEnableLPCIODecodeNonAMDIsNoop(t *testing.T) {
	bus := newFakePCIBus()
	bus.set(lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, 0x00, 0x54C18086) // Intel

	if err := EnableLPCIODecode(bus, 0x0290); err != nil {
		t.Fatalf("EnableLPCIODecode() error: %v", err)
	}
	if got := bus.get(lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, lpcDecodeEnableReg); got != 0 {
		t.Errorf("decode enable register touched on non-AMD bridge: 0x%08X", got)
	}
}

func TestEnableLPCIODecodeAlreadyDecoded(t *testing.T) {
	bus := amdBridge()
	// Wide IO 0 enabled and already covering 0x0290.
	bus.set(lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, 0x48, 1<<2)
	bus.set(lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, 0x64, 0x00000290)

	if err := EnableLPCIODecode(bus, 0x0295); err != nil {
		t.Fatalf("EnableLPCIODecode() error: %v", err)
	}
	if got := bus.get(lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, 0x48); got != 1<<2 {
		t.Errorf("enable register = 0x%08X, want unchanged 0x%08X", got, uint32(1)<<2)
	}
}

func TestEnableLPCIODecodeProgramsFirstFreeWindow(t *testing.T) {
	bus := amdBridge()
	// Wide IO 0 taken by another range; 1 and 2 free.
	bus.set(lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, 0x48, 1<<2)
	bus.set(lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, 0x64, 0x00000A20)

	if err := EnableLPCIODecode(bus, 0x0290); err != nil {
		t.Fatalf("EnableLPCIODecode() error: %v", err)
	}

	enable := bus.get(lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, 0x48)
	if enable&(1<<24) == 0 {
		t.Errorf("Wide IO 1 enable bit not set, enable = 0x%08X", enable)
	}
	if enable&(1<<25) != 0 {
		t.Errorf("Wide IO 2 programmed although Wide IO 1 was free")
	}
	// Wide IO 1 base lives in the high word of the 0x64 dword.
	if got := bus.get(lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, 0x64); got != 0x02900A20 {
		t.Errorf("base registers = 0x%08X, want 0x02900A20", got)
	}
}

func TestEnableLPCIODecodeAllWindowsTaken(t *testing.T) {
	bus := amdBridge()
	bus.set(lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, 0x48, 1<<2|1<<24|1<<25)
	bus.set(lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, 0x64, 0x0A300A20)
	bus.set(lpcBridgeBus, lpcBridgeDev, lpcBridgeFn, 0x90, 0x00000A40)

	if err := EnableLPCIODecode(bus, 0x0290); err == nil {
		t.Fatal("EnableLPCIODecode() = nil, want error when all windows are taken")
	}
}
