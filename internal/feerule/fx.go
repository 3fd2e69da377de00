package feerule

import (
	"github.com/smallbiznis/sairex/internal/feerule/repository"
	"github.com/smallbiznis/sairex/internal/feerule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("feerule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
