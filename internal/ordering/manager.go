package ordering

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"pandapos/internal/meal"
	"pandapos/internal/models"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("ordering session not found")

// Config holds pricing for every session
type Config struct {
	TaxRate     float64
	Pricing     meal.Pricing
	IdleTimeout time.Duration
}

// Hooks are notified of session events. Nil hooks are skipped.
type Hooks struct {
	OrderPlaced     func(order *models.Order)
	SessionsChanged func(active int)
}

// Manager owns the open sessions
type Manager struct {
	cfg    Config
	promos PromotionFinder
	placer OrderPlacer
	menu   MenuSource
	hooks  Hooks
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Deps are the collaborators sessions call into
type Deps struct {
	Promotions PromotionFinder
	Orders     OrderPlacer
	Menu       MenuSource
	Hooks      Hooks
	Logger     *slog.Logger
}

// NewManager creates a session manager
func NewManager(cfg Config, deps Deps) *Manager {
	if len(cfg.Pricing.Base) == 0 {
		cfg.Pricing = meal.DefaultPricing()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:      cfg,
		promos:   deps.Promotions,
		placer:   deps.Orders,
		menu:     deps.Menu,
		hooks:    deps.Hooks,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Open starts a new session
func (m *Manager) Open(source models.OrderSource, employeeID *uint, customerEmail string) *Session {
	if source == "" {
		source = models.SourceOnline
	}
	s := newSession(m, uuid.NewString(), source, employeeID)
	s.email = customerEmail

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.logger.Debug("ordering session opened", "session", s.ID, "source", source)
	m.sessionsChanged(n)
	return s
}

// Get returns an open session
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close discards a session and everything in it
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	if _, ok := m.sessions[id]; !ok {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	m.sessionsChanged(n)
	return nil
}

// Len returns the number of open sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the configured timeout and
// returns how many were closed
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.cfg.IdleTimeout)

	m.mu.Lock()
	closed := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			closed++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if closed > 0 {
		m.logger.Info("closed idle ordering sessions", "closed", closed, "open", n)
		m.sessionsChanged(n)
	}
	return closed
}

// Run sweeps idle sessions every interval until ctx is done
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) orderPlaced(order *models.Order) {
	m.logger.Info("order placed",
		"order", order.ID,
		"source", order.Source,
		"lines", len(order.Items),
		"total", order.Total,
		"promo", order.PromoCode,
	)
	if m.hooks.OrderPlaced != nil {
		m.hooks.OrderPlaced(order)
	}
}

func (m *Manager) sessionsChanged(n int) {
	if m.hooks.SessionsChanged != nil {
		m.hooks.SessionsChanged(n)
	}
}
