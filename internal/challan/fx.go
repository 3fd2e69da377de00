package challan

import (
	"github.com/smallbiznis/sairex/internal/challan/repository"
	"github.com/smallbiznis/sairex/internal/challan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("challan.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
