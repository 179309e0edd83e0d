package premium

import (
	"github.com/commentpull/commentpull/internal/premium/repository"
	"github.com/commentpull/commentpull/internal/premium/service"
	"go.uber.org/fx"
)

var Module = fx.Module("premium.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
