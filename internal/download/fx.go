package download

import (
	"github.com/commentpull/commentpull/internal/download/repository"
	"github.com/commentpull/commentpull/internal/download/service"
	"go.uber.org/fx"
)

var Module = fx.Module("download.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
