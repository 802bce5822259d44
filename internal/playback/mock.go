package playback

import "sync"

// Mock is a test double for Player and PlayerSource.
type Mock struct {
	mu       sync.Mutex
	snapshot Snapshot
	source   *MediaSource
	absent   bool
	err      error
	calls    []string
}

// NewMock creates a mock player with an idle snapshot and no media.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) record(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, op)
	return m.err
}

func (m *Mock) Play() error           { return m.record("play") }
func (m *Mock) Pause() error          { return m.record("pause") }
func (m *Mock) Rewind() error         { return m.record("rewind") }
func (m *Mock) FastForward() error    { return m.record("fastForward") }
func (m *Mock) SkipToPrevious() error { return m.record("skipToPrevious") }
func (m *Mock) SkipToNext() error     { return m.record("skipToNext") }
func (m *Mock) Stop() error           { return m.record("stop") }
func (m *Mock) Raise() error          { return m.record("raise") }

func (m *Mock) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

func (m *Mock) MediaSource() *MediaSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.source == nil {
		return nil
	}
	src := *m.source
	return &src
}

// ActivePlayer returns the mock itself unless SetAbsent(true) was called.
func (m *Mock) ActivePlayer() Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.absent {
		return nil
	}
	return m
}

// Test helpers

func (m *Mock) SetSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = s
}

func (m *Mock) SetMediaSource(src *MediaSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.source = src
}

func (m *Mock) SetAbsent(absent bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.absent = absent
}

func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the control operations invoked so far, in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Verify Mock implements the player interfaces at compile time.
var (
	_ Player       = (*Mock)(nil)
	_ PlayerSource = (*Mock)(nil)
	_ Raiser       = (*Mock)(nil)
)
