package services

import (
	"context"
	"errors"
	"time"

	"github.com/peachwood/api/internal/domain"
	"github.com/peachwood/api/internal/repositories"
)

// SystemServiceDeps bundles constructor inputs for the system service.
type SystemServiceDeps struct {
	Health      repositories.HealthRepository
	Environment string
	StartedAt   time.Time
	Clock       func() time.Time
}

type systemService struct {
	health      repositories.HealthRepository
	environment string
	startedAt   time.Time
	clock       func() time.Time
}

// NewSystemService constructs the system service with the supplied dependencies.
func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.Health == nil {
		return nil, errors.New("system service: health repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	startedAt := deps.StartedAt
	if startedAt.IsZero() {
		startedAt = clock()
	}
	return &systemService{
		health:      deps.Health,
		environment: deps.Environment,
		startedAt:   startedAt.UTC(),
		clock:       func() time.Time { return clock().UTC() },
	}, nil
}

func (s *systemService) Health(ctx context.Context) HealthSnapshot {
	now := s.clock()
	return HealthSnapshot{
		Environment: s.environment,
		Uptime:      now.Sub(s.startedAt).Round(time.Second).String(),
		Timestamp:   now.Format(time.RFC3339),
	}
}

func (s *systemService) Readiness(ctx context.Context) (domain.HealthReport, error) {
	return s.health.Collect(ctx)
}
