package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arklim/commerce-platform-auth/internal/infra/config"
)

// Provider represents a telemetry provider handle.
type Provider struct {
	serviceInfo *prometheus.GaugeVec
}

// Attach registers process-level metrics and returns a provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	info := promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "auth",
		Name:      "service_info",
		Help:      "Static service metadata, always 1 for the running instance",
	}, []string{"name", "env"})

	info.WithLabelValues(cfg.App.Name, cfg.App.Env).Set(1)

	return &Provider{
		serviceInfo: info,
	}, nil
}
