package factory

import (
	"github.com/mailrisk/analyzer/internal/adapters/gateway"
	"github.com/mailrisk/analyzer/internal/adapters/httpserver"
	"github.com/mailrisk/analyzer/internal/capability"
	"github.com/mailrisk/analyzer/internal/config"
	"github.com/mailrisk/analyzer/internal/core"
	"github.com/mailrisk/analyzer/internal/ports"
	"go.uber.org/zap"
)

// GatewayFactory creates the email gateways to run
type GatewayFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.AnalysisService
}

// NewGatewayFactory creates a new gateway factory
func NewGatewayFactory(cfg *config.Config, logger *zap.Logger, service *core.AnalysisService) *GatewayFactory {
	return &GatewayFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateGateways creates the HTTP API and, when enabled, the SMTP
// content gateway
func (f *GatewayFactory) CreateGateways(registry *capability.Registry) []ports.EmailGateway {
	gateways := []ports.EmailGateway{
		httpserver.NewServer(f.service, registry, f.cfg.GetServer(), f.logger),
	}

	gatewayCfg := f.cfg.GetGateway()
	if gatewayCfg.Enabled {
		gateways = append(gateways, gateway.NewSMTPGateway(f.service, gatewayCfg, f.logger))
	}

	return gateways
}
