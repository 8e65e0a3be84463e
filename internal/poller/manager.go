package poller

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Manager owns one poller per configured business and runs them together.
type Manager struct {
	pollers map[string]*Poller
	logger  *zap.Logger
}

// NewManager creates a manager over the given pollers, keyed by business
// number.
func NewManager(pollers map[string]*Poller, logger *zap.Logger) *Manager {
	return &Manager{
		pollers: pollers,
		logger:  logger,
	}
}

// Start runs every poller and blocks until the context is cancelled and all
// pollers have stopped.
func (m *Manager) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for number, p := range m.pollers {
		wg.Add(1)
		go func(number string, p *Poller) {
			defer wg.Done()
			m.logger.Info("starting poller", zap.String("business_number", number))
			p.Start(ctx)
		}(number, p)
	}
	wg.Wait()
}

// Poller returns the poller for a business number.
func (m *Manager) Poller(businessNumber string) (*Poller, bool) {
	p, ok := m.pollers[businessNumber]
	return p, ok
}

// Businesses lists the configured business numbers.
func (m *Manager) Businesses() []string {
	numbers := make([]string, 0, len(m.pollers))
	for number := range m.pollers {
		numbers = append(numbers, number)
	}
	return numbers
}
