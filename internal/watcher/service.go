package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/activewin/activewin/internal/config"
	"github.com/activewin/activewin/internal/logger"
	"github.com/activewin/activewin/internal/models"
	"github.com/activewin/activewin/pkg/window"

	"github.com/pkg/errors"
)

// Locator samples the active window once.
type Locator interface {
	Locate(ctx context.Context) (*window.Result, error)
}

// FailureStore persists ticks on which the window system could not be queried.
type FailureStore interface {
	CreateFailure(failure *models.FailureLog) error
}

// Snapshot is the most recent result together with the moment it became current.
type Snapshot struct {
	Result    *window.Result `json:"result"`
	Since     time.Time      `json:"since"`
	CheckedAt time.Time      `json:"checked_at"`
}

type Service struct {
	config   *config.Config
	store    FailureStore
	locator  Locator
	platform string

	mu       sync.RWMutex
	latest   *Snapshot
	running  bool
	stopChan chan struct{}

	now func() time.Time
}

func NewService(cfg *config.Config, store FailureStore, locator Locator, platform string) *Service {
	return &Service{
		config:   cfg,
		store:    store,
		locator:  locator,
		platform: platform,
		now:      time.Now,
	}
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("watcher is already running")
	}
	s.running = true
	stop := make(chan struct{})
	s.stopChan = stop
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.stopChan = nil
		s.mu.Unlock()
	}()

	logger.Infof("Starting watcher on %s with %v poll interval", s.platform, s.config.Watch.PollInterval)

	ticker := time.NewTicker(s.config.Watch.PollInterval)
	defer ticker.Stop()

	s.Probe(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watcher stopped by context")
			return ctx.Err()

		case <-stop:
			logger.Info("Watcher stopped")
			return nil

		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running && s.stopChan != nil {
		close(s.stopChan)
		s.stopChan = nil
	}
}

func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Latest returns the last recorded snapshot, or nil before the first probe.
func (s *Service) Latest() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil
	}
	cp := *s.latest
	return &cp
}

// Probe samples the active window once and records the outcome as the latest snapshot.
func (s *Service) Probe(ctx context.Context) (*window.Result, error) {
	res, err := s.locator.Locate(ctx)
	if res == nil {
		res = &window.Result{Reason: window.EnumerationUnavailable}
	}
	now := s.now()

	s.mu.Lock()
	changed := s.latest == nil || !s.latest.Result.Same(res)
	if changed {
		s.latest = &Snapshot{Result: res, Since: now, CheckedAt: now}
	} else {
		s.latest.Result = res
		s.latest.CheckedAt = now
	}
	s.mu.Unlock()

	switch res.Reason {
	case window.Found:
		if changed {
			logger.Infof("Active window: %s (pid %d) %q", res.Window.OwnerName, res.Window.OwnerPID, res.Window.Title)
		}
	case window.NoFrontmostApplication:
		if changed {
			logger.Info("No frontmost application")
		} else {
			logger.Debug("Still no frontmost application")
		}
	case window.NoQualifyingWindow:
		logger.Debugf("No qualifying window for pid %d", res.FrontmostPID)
	case window.EnumerationUnavailable:
		s.storeFailure(ctx, res, err)
	}

	return res, err
}

func (s *Service) storeFailure(ctx context.Context, res *window.Result, err error) {
	if err == nil {
		err = window.ErrEnumerationUnavailable
	}
	// A cancelled query is a shutdown, not an outage.
	if ctx.Err() != nil {
		logger.Debugf("Dropping failure after cancellation: %v", err)
		return
	}

	logger.Warnf("Window enumeration unavailable: %v", err)
	if s.store == nil {
		return
	}

	failure := &models.FailureLog{
		Timestamp: s.now(),
		Platform:  s.platform,
		Reason:    res.Reason.String(),
		ErrorMsg:  err.Error(),
	}
	if dbErr := s.store.CreateFailure(failure); dbErr != nil {
		logger.Errorf("Failed to store failure in database (original error: %v)", dbErr, err)
	}
}
