package synth

import (
	"io"
	"sync"
)

// bufferedPipe is a thread-safe pipe whose writes never block. The
// receiver goroutine writes audio frames as they arrive from the backend
// while the caller may not start reading until the task is closed; a
// blocking pipe would deadlock there.
type bufferedPipe struct {
	buf    []byte
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
}

func newBufferedPipe(capacity int) *bufferedPipe {
	bp := &bufferedPipe{buf: make([]byte, 0, capacity)}
	bp.cond = sync.NewCond(&bp.mu)
	return bp
}

func (bp *bufferedPipe) Write(p []byte) (int, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return 0, io.ErrClosedPipe
	}

	bp.buf = append(bp.buf, p...)
	bp.cond.Signal()
	return len(p), nil
}

func (bp *bufferedPipe) Read(p []byte) (int, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	for len(bp.buf) == 0 && !bp.closed {
		bp.cond.Wait()
	}

	if len(bp.buf) == 0 && bp.closed {
		return 0, io.EOF
	}

	n := copy(p, bp.buf)
	bp.buf = bp.buf[n:]
	return n, nil
}

func (bp *bufferedPipe) Close() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	bp.closed = true
	bp.cond.Broadcast()
	return nil
}
