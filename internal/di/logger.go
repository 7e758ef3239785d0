package di

import (
	"log/slog"
	"os"

	"github.com/defval/di"
	"github.com/getsentry/raven-go"
	"github.com/spf13/viper"

	"ely.by/authlib/internal/version"
)

var loggerDiOptions = di.Options(
	di.Invoke(configureLogger),
	di.Provide(newSentry),
)

func configureLogger(config *viper.Viper) error {
	config.SetDefault("log.level", "info")

	var level slog.Level
	if err := level.UnmarshalText([]byte(config.GetString("log.level"))); err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	return nil
}

func newSentry(config *viper.Viper) (*raven.Client, error) {
	sentryAddr := config.GetString("sentry.dsn")
	if sentryAddr == "" {
		return nil, nil
	}

	ravenClient, err := raven.New(sentryAddr)
	if err != nil {
		return nil, err
	}

	ravenClient.SetEnvironment("production")
	ravenClient.SetDefaultLoggerName("authlib")
	ravenClient.SetRelease(version.Version())

	raven.DefaultClient = ravenClient

	return ravenClient, nil
}
