package cmd

import (
	"context"
	"errors"
	"strings"

	. "github.com/defval/di"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ely.by/authlib/internal/di"
	"ely.by/authlib/internal/http"
	"ely.by/authlib/internal/otel"
	"ely.by/authlib/internal/version"
)

var RootCmd = &cobra.Command{
	Use:           "authlib",
	Short:         "Session gateway between game servers and the Ely.by identity directory",
	Version:       version.Version(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func shouldGetContainer() *Container {
	container, err := di.New()
	if err != nil {
		panic(err)
	}

	return container
}

func startServer() (err error) {
	container := shouldGetContainer()

	var ctx context.Context
	if err := container.Resolve(&ctx); err != nil {
		return err
	}

	var config *viper.Viper
	if err := container.Resolve(&config); err != nil {
		return err
	}

	config.SetDefault("otel.enabled", false)
	if config.GetBool("otel.enabled") {
		shutdown, setupErr := otel.SetupOTelSDK(ctx)
		if setupErr != nil {
			return setupErr
		}

		defer func() {
			err = errors.Join(err, shutdown(context.Background()))
		}()
	}

	return container.Invoke(http.StartServer)
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	viper.AutomaticEnv()
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)
}
