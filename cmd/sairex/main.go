package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sairex/internal/billing"
	"github.com/smallbiznis/sairex/internal/challan"
	"github.com/smallbiznis/sairex/internal/clock"
	"github.com/smallbiznis/sairex/internal/config"
	"github.com/smallbiznis/sairex/internal/feerule"
	"github.com/smallbiznis/sairex/internal/ledger"
	"github.com/smallbiznis/sairex/internal/migration"
	"github.com/smallbiznis/sairex/internal/notification"
	"github.com/smallbiznis/sairex/internal/observability"
	"github.com/smallbiznis/sairex/internal/payment"
	"github.com/smallbiznis/sairex/internal/providers"
	"github.com/smallbiznis/sairex/internal/scheduler"
	"github.com/smallbiznis/sairex/internal/server"
	"github.com/smallbiznis/sairex/internal/tenant"
	"github.com/smallbiznis/sairex/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		providers.Module,

		// Functional Domains
		tenant.Module,
		feerule.Module,
		ledger.Module,
		challan.Module,
		payment.Module,
		notification.Module,
		billing.Module,

		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
