package watcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/activewin/activewin/internal/config"
	"github.com/activewin/activewin/internal/models"
	"github.com/activewin/activewin/pkg/window"

	"github.com/pkg/errors"
)

type scriptedLocator struct {
	mu      sync.Mutex
	results []*window.Result
	errs    []error
	calls   int
}

func (l *scriptedLocator) Locate(ctx context.Context) (*window.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.calls
	if i >= len(l.results) {
		i = len(l.results) - 1
	}
	l.calls++
	var err error
	if i < len(l.errs) {
		err = l.errs[i]
	}
	return l.results[i], err
}

func (l *scriptedLocator) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type memoryStore struct {
	mu       sync.Mutex
	failures []*models.FailureLog
	err      error
}

func (m *memoryStore) CreateFailure(f *models.FailureLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.failures = append(m.failures, f)
	return nil
}

func found(pid window.ProcessID, id uint32, title string) *window.Result {
	return &window.Result{
		Reason:       window.Found,
		FrontmostPID: pid,
		Window:       &window.Descriptor{ID: id, OwnerPID: pid, OwnerName: "term", Title: title, Alpha: 1},
	}
}

func newTestService(loc Locator, store FailureStore) (*Service, *time.Time) {
	cfg := config.Default()
	cfg.Watch.PollInterval = 10 * time.Millisecond
	s := NewService(cfg, store, loc, "test")
	clock := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }
	return s, &clock
}

func TestProbeTracksSince(t *testing.T) {
	loc := &scriptedLocator{results: []*window.Result{
		found(42, 1, "a"),
		found(42, 1, "a"),
		found(42, 2, "b"),
	}}
	s, clock := newTestService(loc, &memoryStore{})

	if s.Latest() != nil {
		t.Fatal("Latest() before first probe should be nil")
	}

	start := *clock
	s.Probe(context.Background())

	*clock = start.Add(time.Second)
	s.Probe(context.Background())
	snap := s.Latest()
	if !snap.Since.Equal(start) {
		t.Errorf("Since = %v, want %v for unchanged window", snap.Since, start)
	}
	if !snap.CheckedAt.Equal(start.Add(time.Second)) {
		t.Errorf("CheckedAt = %v, want %v", snap.CheckedAt, start.Add(time.Second))
	}

	*clock = start.Add(2 * time.Second)
	s.Probe(context.Background())
	snap = s.Latest()
	if !snap.Since.Equal(start.Add(2 * time.Second)) {
		t.Errorf("Since = %v, want reset after window change", snap.Since)
	}
	if snap.Result.Window.ID != 2 {
		t.Errorf("Window.ID = %d, want 2", snap.Result.Window.ID)
	}
}

func TestProbeStoresOnlyEnumerationFailures(t *testing.T) {
	loc := &scriptedLocator{
		results: []*window.Result{
			{Reason: window.NoFrontmostApplication},
			{Reason: window.NoQualifyingWindow, FrontmostPID: 7},
			{Reason: window.EnumerationUnavailable},
		},
		errs: []error{nil, nil, errors.Wrap(window.ErrEnumerationUnavailable, "connection reset")},
	}
	store := &memoryStore{}
	s, _ := newTestService(loc, store)

	for i := 0; i < 3; i++ {
		s.Probe(context.Background())
	}

	if len(store.failures) != 1 {
		t.Fatalf("stored %d failures, want 1", len(store.failures))
	}
	f := store.failures[0]
	if f.Reason != "enumeration_unavailable" {
		t.Errorf("Reason = %q", f.Reason)
	}
	if f.Platform != "test" {
		t.Errorf("Platform = %q", f.Platform)
	}
	if f.ErrorMsg == "" {
		t.Error("ErrorMsg is empty")
	}
}

func TestProbeSkipsFailureAfterCancel(t *testing.T) {
	loc := &scriptedLocator{
		results: []*window.Result{{Reason: window.EnumerationUnavailable}},
		errs:    []error{errors.Wrap(window.ErrEnumerationUnavailable, "context canceled")},
	}
	store := &memoryStore{}
	s, _ := newTestService(loc, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Probe(ctx)
	if !errors.Is(err, window.ErrEnumerationUnavailable) {
		t.Errorf("Probe() error = %v", err)
	}
	if len(store.failures) != 0 {
		t.Errorf("stored %d failures after cancellation, want 0", len(store.failures))
	}
}

func TestProbeStoreErrorIsNotFatal(t *testing.T) {
	loc := &scriptedLocator{
		results: []*window.Result{{Reason: window.EnumerationUnavailable}},
		errs:    []error{window.ErrEnumerationUnavailable},
	}
	s, _ := newTestService(loc, &memoryStore{err: errors.New("disk full")})

	res, _ := s.Probe(context.Background())
	if res.Reason != window.EnumerationUnavailable {
		t.Errorf("Reason = %v", res.Reason)
	}
	if s.Latest() == nil {
		t.Error("Latest() should be recorded even when storing fails")
	}
}

func TestStartStop(t *testing.T) {
	loc := &scriptedLocator{results: []*window.Result{found(1, 1, "x")}}
	s, _ := newTestService(loc, nil)

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for loc.Calls() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !s.IsRunning() {
		t.Fatal("IsRunning() = false while started")
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start() should fail")
	}

	s.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned %v after Stop()", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after Stop()")
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop()")
	}
	if loc.Calls() < 2 {
		t.Errorf("locator called %d times, want at least 2", loc.Calls())
	}
}

func TestStartStopsOnContext(t *testing.T) {
	loc := &scriptedLocator{results: []*window.Result{{Reason: window.NoFrontmostApplication}}}
	s, _ := newTestService(loc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}
