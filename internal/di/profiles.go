package di

import (
	"github.com/defval/di"

	. "ely.by/authlib/internal/http"
	"ely.by/authlib/internal/profiles"
	"ely.by/authlib/internal/session"
	"ely.by/authlib/internal/textures"
)

var profilesDiOptions = di.Options(
	di.Provide(profiles.NewDecorator, di.As(new(session.ProfileDecorator))),
	di.Provide(profiles.NewResolver, di.As(new(ProfileResolver))),
	di.Provide(textures.NewResolver, di.As(new(TextureResolver))),
)
