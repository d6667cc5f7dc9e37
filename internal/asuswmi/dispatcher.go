package asuswmi

import (
	"errors"
	"runtime"
	"sync"
)

// ErrDispatcherClosed is returned when work is submitted after the
// worker has exited.
var ErrDispatcherClosed = errors.New("WMI dispatcher is no longer running")

// Dispatcher owns the WMI connection on one dedicated worker goroutine.
// COM service objects must stay on the thread that created them, so the
// worker locks its OS thread, builds the connection there, and every
// caller hands work over as a closure and blocks for the reply.
type Dispatcher struct {
	mu      sync.Mutex
	closed  bool
	reqs    chan func(Client)
	dead    chan struct{}
	backend Backend
}

// Spawn starts the worker thread and connects to the ASUS WMI interface
// on it. Connection failure is reported before any work is accepted.
func Spawn() (*Dispatcher, error) {
	return spawnWith(Connect)
}

// spawnWith lets tests substitute the platform connect function.
func spawnWith(connect func() (Client, error)) (*Dispatcher, error) {
	d := &Dispatcher{
		reqs: make(chan func(Client)),
		dead: make(chan struct{}),
	}

	type initResult struct {
		backend Backend
		err     error
	}
	initCh := make(chan initResult, 1)

	go func() {
		defer close(d.dead)

		// COM apartment affinity: the connection must be created and
		// used on this exact OS thread.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		client, err := connect()
		if err != nil {
			initCh <- initResult{err: err}
			return
		}
		initCh <- initResult{backend: client.Backend()}

		for fn := range d.reqs {
			fn(client)
		}

		client.Close()
	}()

	res := <-initCh
	if res.err != nil {
		return nil, res.err
	}
	d.backend = res.backend
	return d, nil
}

// Backend reports the backend bound at connect time. Fixed for the
// dispatcher's lifetime, so no round-trip to the worker is needed.
func (d *Dispatcher) Backend() Backend {
	return d.backend
}

// Execute runs fn on the worker thread with the live connection and
// blocks until it returns. Submissions complete in order. A dead worker
// yields ErrDispatcherClosed instead of fn's result.
func (d *Dispatcher) Execute(fn func(Client) error) error {
	done := make(chan error, 1)
	wrapped := func(c Client) {
		done <- fn(c)
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	select {
	case d.reqs <- wrapped:
		d.mu.Unlock()
	case <-d.dead:
		d.mu.Unlock()
		return ErrDispatcherClosed
	}

	select {
	case err := <-done:
		return err
	case <-d.dead:
		// The worker may have finished this request while draining.
		select {
		case err := <-done:
			return err
		default:
			return ErrDispatcherClosed
		}
	}
}

// Close stops the worker after the queue drains, releasing the
// connection and its COM resources on the worker thread.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		close(d.reqs)
	}
}
