package tenant

import (
	"github.com/smallbiznis/sairex/internal/tenant/cache"
	"github.com/smallbiznis/sairex/internal/tenant/repository"
	"github.com/smallbiznis/sairex/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.Provide),
	fx.Provide(cache.Provide),
	fx.Provide(service.New),
)
