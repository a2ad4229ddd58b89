package child

import (
	"github.com/hoikulink/tsumugi/internal/child/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("child",
	fx.Provide(repository.Provide),
)
