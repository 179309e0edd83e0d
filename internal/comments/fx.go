package comments

import (
	"github.com/commentpull/commentpull/internal/comments/youtube"
	"go.uber.org/fx"
)

var Module = fx.Module("comments.source",
	fx.Provide(youtube.NewClient),
)
