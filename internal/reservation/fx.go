package reservation

import (
	"github.com/hoikulink/tsumugi/internal/reservation/repository"
	"github.com/hoikulink/tsumugi/internal/reservation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reservation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
