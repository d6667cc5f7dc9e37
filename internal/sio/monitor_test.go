package sio

import (
	"sync"
	"testing"
	"time"
)

func TestMonitorReadAllSnapshot(t *testing.T) {
	fake := newFakeNuvoton(0x2E, 0xD420, 0x0290)
	fake.setNuvotonReg(4, 0xC0, 0x05)
	fake.setNuvotonReg(4, 0xC1, 0x3E)
	fake.setNuvotonReg(0, 0x73, 40)

	m := newMonitorWithChannel(fake, nuvotonTestChip())

	snap, err := m.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if snap.ChipName != "NCT6796D" {
		t.Errorf("ChipName = %q, want NCT6796D", snap.ChipName)
	}
	if len(snap.Fans) != 7 {
		t.Errorf("len(Fans) = %d, want 7", len(snap.Fans))
	}
	if snap.Fans[0].RPM != 1006 {
		t.Errorf("Fans[0].RPM = %d, want 1006", snap.Fans[0].RPM)
	}
}

func TestMonitorStatus(t *testing.T) {
	m := newMonitorWithChannel(newFakeNuvoton(0x2E, 0xD420, 0x0290), nuvotonTestChip())

	status := m.Status()
	if !status.Available {
		t.Error("Status().Available = false, want true")
	}
	if status.ChipName != "NCT6796D" {
		t.Errorf("Status().ChipName = %q, want NCT6796D", status.ChipName)
	}

	unavailable := UnavailableStatus("driver binary not found")
	if unavailable.Available || unavailable.Error == "" {
		t.Errorf("UnavailableStatus() = %+v, want unavailable with error", unavailable)
	}
}

// Every Nuvoton register access is a (bank select, index write, data
// read) triple. If two ReadAll calls ever interleaved, the recorded port
// sequence would break that structure.
func TestMonitorReadAllDoesNotInterleave(t *testing.T) {
	fake := newFakeNuvoton(0x2E, 0xD420, 0x0290)
	fake.opDelay = 50 * time.Microsecond

	m := newMonitorWithChannel(fake, nuvotonTestChip())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				if _, err := m.ReadAll(); err != nil {
					t.Errorf("ReadAll() error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	ops := fake.opLog()
	if len(ops)%3 != 0 {
		t.Fatalf("op count %d is not a multiple of 3", len(ops))
	}
	for i := 0; i < len(ops); i += 3 {
		bank, index, data := ops[i], ops[i+1], ops[i+2]
		if !bank.write || bank.port != 0x0290+nuvotonBankSelectOffset {
			t.Fatalf("op %d: got %+v, want bank select write", i, bank)
		}
		if !index.write || index.port != 0x0290+nuvotonAddrOffset {
			t.Fatalf("op %d: got %+v, want register index write", i+1, index)
		}
		if data.write || data.port != 0x0290+nuvotonDataOffset {
			t.Fatalf("op %d: got %+v, want data port read", i+2, data)
		}
	}
}
