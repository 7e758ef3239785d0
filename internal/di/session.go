package di

import (
	"github.com/defval/di"
	"github.com/spf13/viper"

	. "ely.by/authlib/internal/http"
	"ely.by/authlib/internal/launcher"
	"ely.by/authlib/internal/session"
)

var sessionDiOptions = di.Options(
	di.Provide(newLaunchState, di.As(new(session.LaunchState))),
	di.Provide(session.NewVerifier, di.As(new(SessionVerifier))),
)

func newLaunchState(config *viper.Viper) *launcher.State {
	config.SetDefault("launcher.launched", false)

	return launcher.NewState(config.GetBool("launcher.launched"))
}
