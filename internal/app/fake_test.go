package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

// fakeTransport records every delivered frame in order.
type fakeTransport struct {
	mu     sync.Mutex
	frames []Frame
	closed bool
}

func (f *fakeTransport) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("closed")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeTransport) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// events decodes every recorded frame into a generic map, in order.
func (f *fakeTransport) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(fr, &m))
		out = append(out, m)
	}
	return out
}

func (f *fakeTransport) countOfType(t *testing.T, typ string) int {
	t.Helper()
	n := 0
	for _, e := range f.events(t) {
		if e["type"] == typ {
			n++
		}
	}
	return n
}

func (f *fakeTransport) lastOfType(t *testing.T, typ string) (map[string]any, bool) {
	t.Helper()
	var found map[string]any
	ok := false
	for _, e := range f.events(t) {
		if e["type"] == typ {
			found, ok = e, true
		}
	}
	return found, ok
}

func defaultLimits() Limits {
	return Limits{
		MaxParticipantsPerRoom: 8,
		MaxConcurrentRooms:     8,
		MaxTotalConnections:    32,
		MaxVideoStreamsPerRoom: 8,
		MaxAudioStreamsPerRoom: 8,
	}
}

func newTestEngine(t *testing.T, limits Limits) *Engine {
	t.Helper()
	return NewEngine(NewGovernor(limits), nil, CoordinatorOptions{ChatLogCap: 10, GracePeriod: 2 * time.Minute}, nil)
}

func connect(t *testing.T, e *Engine, uid string) *fakeTransport {
	t.Helper()
	tr := &fakeTransport{}
	require.NoError(t, e.Connect(domain.Profile{UserID: domain.UserID(uid), Name: uid}, tr))
	return tr
}
