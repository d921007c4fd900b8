package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arklim/checkout-registration/internal/core/domain"
	"github.com/arklim/checkout-registration/internal/infra/config"
)

// Provider represents a telemetry provider handle.
type Provider struct {
	outcomes *prometheus.CounterVec
}

// Attach registers the registration metrics and returns a provider handle.
func Attach(cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	outcomes := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "commerce",
		Subsystem: "registration",
		Name:      "outcomes_total",
		Help:      "Total registration completion outcomes partitioned by status and reason.",
	}, []string{"status", "reason"})

	return &Provider{outcomes: outcomes}, nil
}

// ObserveOutcome records a registration completion outcome.
func (p *Provider) ObserveOutcome(outcome domain.Outcome) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(string(outcome.Status), string(outcome.Reason)).Inc()
}
