package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	"github.com/createdbygabi/Blocks-sub001/internal/log"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

// Manager keeps one Orchestrator per user so the in-flight guard holds
// across requests. A session is reloaded when the stored record has moved
// past it while nothing was in flight, and dropped when a save finds it
// stale.
type Manager struct {
	Config     *config.Config
	Store      state.Store
	Dispatcher dispatch.Dispatcher
	Logger     *slog.Logger
	OnProgress ProgressFunc

	mu       sync.Mutex
	sessions map[string]*Orchestrator
}

func NewManager(cfg *config.Config, store state.Store, d dispatch.Dispatcher, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		Config:     cfg,
		Store:      store,
		Dispatcher: d,
		Logger:     logger,
		sessions:   map[string]*Orchestrator{},
	}
}

// Get returns the cached orchestrator for userID, loading it if needed or
// if another process has saved the record since.
func (m *Manager) Get(ctx context.Context, userID string) (*Orchestrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.Store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if o, ok := m.sessions[userID]; ok {
		if !o.supersededBy(rec) {
			return o, nil
		}
		m.Logger.Info("Reloading changed session", log.UserID(userID), slog.Int64("version", rec.Version))
	}
	o := New(m.Config, rec, m.Store, m.Dispatcher)
	o.Logger = m.Logger
	o.OnProgress = m.OnProgress
	m.sessions[userID] = o
	return o, nil
}

// Forget drops the cached session for userID.
func (m *Manager) Forget(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

func (m *Manager) Start(ctx context.Context, userID, idea, audience string) (View, error) {
	return m.do(ctx, userID, func(o *Orchestrator) error {
		return o.Begin(ctx, idea, audience)
	})
}

func (m *Manager) Execute(ctx context.Context, userID, substepID string) (View, error) {
	return m.do(ctx, userID, func(o *Orchestrator) error {
		_, err := o.Execute(ctx, substepID)
		return err
	})
}

func (m *Manager) Run(ctx context.Context, userID string) (View, error) {
	return m.do(ctx, userID, func(o *Orchestrator) error {
		return o.Run(ctx)
	})
}

func (m *Manager) Reset(ctx context.Context, userID, substepID string) (View, error) {
	return m.do(ctx, userID, func(o *Orchestrator) error {
		return o.Reset(ctx, substepID)
	})
}

func (m *Manager) Defer(ctx context.Context, userID, stepID string) (View, error) {
	return m.do(ctx, userID, func(o *Orchestrator) error {
		return o.Defer(ctx, stepID)
	})
}

func (m *Manager) Resume(ctx context.Context, userID, stepID string) (View, error) {
	return m.do(ctx, userID, func(o *Orchestrator) error {
		return o.Resume(ctx, stepID)
	})
}

// Ready returns the view and the reason Run would refuse to start, if any.
func (m *Manager) Ready(ctx context.Context, userID string) (View, error) {
	o, err := m.Get(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return o.View(), o.Ready()
}

func (m *Manager) View(ctx context.Context, userID string) (View, error) {
	return m.do(ctx, userID, func(*Orchestrator) error { return nil })
}

func (m *Manager) do(ctx context.Context, userID string, fn func(*Orchestrator) error) (View, error) {
	o, err := m.Get(ctx, userID)
	if err != nil {
		return View{}, err
	}
	err = fn(o)
	if errors.Is(err, state.ErrStaleRecord) {
		m.Logger.Warn("Dropping stale session", log.UserID(userID), log.Error(err))
		m.Forget(userID)
	}
	return o.View(), err
}
