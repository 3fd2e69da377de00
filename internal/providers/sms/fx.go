package sms

import (
	"github.com/smallbiznis/sairex/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.sms",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if !cfg.SMS.Enabled {
		return &NoOpProvider{}
	}
	return NewGateway(GatewayConfig{
		URL:      cfg.SMS.URL,
		HashKey:  cfg.SMS.HashKey,
		SenderID: cfg.SMS.SenderID,
		Timeout:  cfg.SMS.Timeout,
	})
}
