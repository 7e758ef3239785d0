package di

import (
	"github.com/defval/di"
	"github.com/spf13/viper"

	"ely.by/authlib/internal/profiles"
)

var configDiOptions = di.Options(
	di.Provide(newConfig),
	di.Provide(newProfilesConfig),
)

func newConfig() *viper.Viper {
	return viper.GetViper()
}

// The textures switch is read once, so its value stays the same for the whole process lifetime
func newProfilesConfig(config *viper.Viper) profiles.Config {
	config.SetDefault("textures.disabled", false)

	return profiles.Config{
		TexturesDisabled: config.GetBool("textures.disabled"),
	}
}
