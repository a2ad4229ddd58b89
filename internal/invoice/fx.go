package invoice

import (
	"github.com/hoikulink/tsumugi/internal/invoice/repository"
	"github.com/hoikulink/tsumugi/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
