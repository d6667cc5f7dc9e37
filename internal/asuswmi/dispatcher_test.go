package asuswmi

import (
	"errors"
	"testing"
	"time"
)

func spawnFake(t *testing.T, backend Backend) (*Dispatcher, *fakeClient) {
	t.Helper()
	client := &fakeClient{
		backend: backend,
		status:  map[uint32]uint32{devCPUFanSpeed: 1500},
	}
	d, err := spawnWith(func() (Client, error) { return client, nil })
	if err != nil {
		t.Fatalf("spawnWith: %v", err)
	}
	return d, client
}

func TestDispatcherReportsBackend(t *testing.T) {
	d, _ := spawnFake(t, BackendLaptop)
	defer d.Close()

	if got := d.Backend(); got != BackendLaptop {
		t.Errorf("Backend() = %s, want %s", got, BackendLaptop)
	}
}

func TestDispatcherConnectFailure(t *testing.T) {
	connectErr := errors.New("no interface")
	d, err := spawnWith(func() (Client, error) { return nil, connectErr })
	if d != nil {
		t.Fatal("dispatcher returned despite connect failure")
	}
	if !errors.Is(err, connectErr) {
		t.Errorf("error = %v, want %v", err, connectErr)
	}
}

func TestDispatcherExecutesOnWorker(t *testing.T) {
	d, _ := spawnFake(t, BackendLaptop)
	defer d.Close()

	var rpm uint32
	err := d.Execute(func(c Client) error {
		var err error
		rpm, err = GetFanSpeed(c, TargetCPU)
		return err
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if rpm != 1500 {
		t.Errorf("rpm = %d, want 1500", rpm)
	}
}

func TestDispatcherPropagatesClosureError(t *testing.T) {
	d, _ := spawnFake(t, BackendLaptop)
	defer d.Close()

	want := errors.New("boom")
	if err := d.Execute(func(Client) error { return want }); !errors.Is(err, want) {
		t.Errorf("Execute error = %v, want %v", err, want)
	}
}

func TestDispatcherCloseReleasesClient(t *testing.T) {
	d, client := spawnFake(t, BackendLaptop)
	d.Close()

	// The worker closes the client after draining; wait for it to exit.
	select {
	case <-d.dead:
	case <-time.After(time.Second):
		t.Fatal("worker did not exit after Close")
	}
	if !client.closed {
		t.Error("client was not closed by the worker")
	}

	if err := d.Execute(func(Client) error { return nil }); !errors.Is(err, ErrDispatcherClosed) {
		t.Errorf("Execute after Close = %v, want ErrDispatcherClosed", err)
	}
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d, _ := spawnFake(t, BackendLaptop)
	d.Close()
	d.Close()
}

func TestDispatcherSerializesRequests(t *testing.T) {
	d, _ := spawnFake(t, BackendLaptop)
	defer d.Close()

	var order []int
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			i := i
			if err := d.Execute(func(Client) error {
				order = append(order, i)
				return nil
			}); err != nil {
				t.Errorf("Execute %d: %v", i, err)
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("requests did not complete")
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("request order %v, want ascending", order)
		}
	}
}
