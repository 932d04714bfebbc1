// Package ai provides health reporting for the AI provider chain
package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/ayurwell/portal/pkg/healthcheck"
	"go.uber.org/zap"
)

// ProviderHealth is the result of probing one provider
type ProviderHealth struct {
	Name    string
	Healthy bool
	Error   string
	Latency time.Duration
}

// CheckProviders probes every provider concurrently and keeps the input order
func CheckProviders(ctx context.Context, providers []outbound.AIProvider) []ProviderHealth {
	results := make([]ProviderHealth, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p outbound.AIProvider) {
			defer wg.Done()
			start := time.Now()
			err := p.HealthCheck(ctx)
			results[i] = ProviderHealth{
				Name:    p.Name(),
				Healthy: err == nil,
				Latency: time.Since(start),
			}
			if err != nil {
				results[i].Error = err.Error()
			}
		}(i, p)
	}
	wg.Wait()

	return results
}

// HealthChecker reports the provider chain to the ops health endpoint
type HealthChecker struct {
	providers []outbound.AIProvider
	logger    *zap.Logger
}

var _ healthcheck.Checker = (*HealthChecker)(nil)

// NewHealthChecker creates a new AI health checker
func NewHealthChecker(providers []outbound.AIProvider, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		providers: providers,
		logger:    logger.Named("ai-health"),
	}
}

// Check is healthy when a real provider answers, degraded when only the
// offline fallback does, and unhealthy otherwise
func (h *HealthChecker) Check(ctx context.Context) healthcheck.Check {
	start := time.Now()
	results := CheckProviders(ctx, h.providers)

	check := healthcheck.Check{
		Name:        "ai",
		LastChecked: time.Now(),
	}

	var healthy, mockOnly []string
	details := make(map[string]string, len(results))
	for _, r := range results {
		if !r.Healthy {
			details[r.Name] = r.Error
			h.logger.Debug("AI provider unhealthy", zap.String("provider", r.Name), zap.String("error", r.Error))
			continue
		}
		details[r.Name] = "ok"
		if r.Name == "mock" {
			mockOnly = append(mockOnly, r.Name)
		} else {
			healthy = append(healthy, r.Name)
		}
	}

	switch {
	case len(healthy) > 0:
		check.Status = healthcheck.StatusHealthy
		check.Message = fmt.Sprintf("available: %s", strings.Join(healthy, ", "))
	case len(mockOnly) > 0:
		check.Status = healthcheck.StatusDegraded
		check.Message = "only the offline fallback is available"
	default:
		check.Status = healthcheck.StatusUnhealthy
		check.Message = "no AI provider is available"
	}
	check.Metadata = details
	check.Duration = time.Since(start)
	return check
}
