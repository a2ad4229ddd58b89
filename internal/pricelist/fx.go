package pricelist

import (
	"github.com/hoikulink/tsumugi/internal/pricelist/repository"
	"github.com/hoikulink/tsumugi/internal/pricelist/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricelist.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
