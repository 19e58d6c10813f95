package grpc

import (
	"context"
	"time"

	"github.com/courtdesk/causelist/internal/config"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// StatusSetter is implemented by *health.Server.
type StatusSetter interface {
	SetServingStatus(service string, status grpc_health_v1.HealthCheckResponse_ServingStatus)
}

// HealthCheck checks whether the cause-list source answers.
type HealthCheck func(ctx context.Context) error

// Monitor keeps the ServiceName health status in line with a health check.
type Monitor struct {
	health   StatusSetter
	check    HealthCheck
	interval time.Duration
	timeout  time.Duration
}

func NewMonitor(health StatusSetter, check HealthCheck, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{health: health, check: check, interval: interval, timeout: interval / 2}
}

// Check runs the health check once and records the result.
func (m *Monitor) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.check(ctx); err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("service", ServiceName).Msg("Health check failed")
		m.health.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		return false
	}
	m.health.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return true
}

// Run checks immediately and then on every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
