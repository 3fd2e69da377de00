package migration

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sairex/internal/config"
	"github.com/smallbiznis/sairex/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node, log *zap.Logger) error {
		if err := Apply(conn); err != nil {
			return err
		}

		if !cfg.SeedDemo {
			return nil
		}
		demo, err := seed.EnsureDemoTenant(context.Background(), conn, node)
		if err != nil {
			return err
		}
		log.Named("migrations").Info("demo tenant ready",
			zap.String("org_code", demo.Organization.OrgCode),
			zap.String("campus_code", demo.Campus.CampusCode),
			zap.String("admission_no", demo.Student.AdmissionNo),
		)
		return nil
	}),
)
