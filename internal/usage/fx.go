package usage

import (
	"github.com/hoikulink/tsumugi/internal/usage/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("usage",
	fx.Provide(repository.ProvideBasicUsage),
	fx.Provide(repository.ProvideOptionUsage),
)
