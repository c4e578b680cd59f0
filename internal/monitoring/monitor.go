package monitoring

import (
	"fmt"
	"sync"
	"time"

	"pandapos/internal/models"
)

// Monitor keeps the latest operational snapshot for the status endpoint
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetric returns a specific metric value
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	metrics := make(map[string]interface{}, len(m.metrics)+1)
	for k, v := range m.metrics {
		metrics[k] = v
	}
	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return metrics
}

// Reset clears all metrics
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]interface{})
}

func (m *Monitor) increment(name string) {
	n, _ := m.metrics[name].(int)
	m.metrics[name] = n + 1
}

// RecordOrder counts a placed order and remembers it as the latest one
func (m *Monitor) RecordOrder(order *models.Order) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	m.increment("orders_total")
	m.increment(fmt.Sprintf("orders_%s", order.Source))
	m.metrics["last_order_id"] = order.ID
	m.metrics["last_order_total"] = order.Total
	m.metrics["last_order_at"] = time.Now().Format(time.RFC3339)
}

// RecordVoiceCommand counts an interpreted transcript by outcome
func (m *Monitor) RecordVoiceCommand(action, outcome string) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	m.increment("voice_" + outcome)
	if action != "" {
		m.metrics["last_voice_action"] = action
	}
}
