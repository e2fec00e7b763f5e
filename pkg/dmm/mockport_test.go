package dmm

import (
	"bytes"
	"io"
	"sync"
)

// mockPort is a scripted in-memory Port. Reads are served from queued
// response bytes; an exhausted queue behaves like a read timeout (zero-byte
// read, nil error), matching the serial library's timeout contract.
type mockPort struct {
	mu       sync.Mutex
	writes   bytes.Buffer
	reads    bytes.Buffer
	writeErr error
	closed   bool
}

func (m *mockPort) queue(lines ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range lines {
		m.reads.WriteString(l)
	}
}

func (m *mockPort) written() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes.String()
}

func (m *mockPort) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, io.ErrClosedPipe
	}
	if m.reads.Len() == 0 {
		return 0, nil
	}
	return m.reads.Read(p)
}

func (m *mockPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, io.ErrClosedPipe
	}
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	return m.writes.Write(p)
}

func (m *mockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockPort) ResetInputBuffer() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads.Reset()
	return nil
}
