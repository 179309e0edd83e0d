package apikey

import (
	"github.com/commentpull/commentpull/internal/apikey/repository"
	"github.com/commentpull/commentpull/internal/apikey/service"
	"go.uber.org/fx"
)

var Module = fx.Module("apikey.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
