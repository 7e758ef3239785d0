package di

import (
	"net/http"
	"time"

	"github.com/defval/di"
	"github.com/etherlabsio/healthcheck/v2"
	"github.com/spf13/viper"

	"ely.by/authlib/internal/directory"
	"ely.by/authlib/internal/profiles"
	"ely.by/authlib/internal/session"
)

var directoryDiOptions = di.Options(
	di.Provide(newDirectoryClient,
		di.As(new(session.Directory)),
		di.As(new(profiles.PlayerRecordsFinder)),
	),
)

func newDirectoryClient(container *di.Container, config *viper.Viper, httpClient *http.Client) (*directory.Client, error) {
	config.SetDefault("directory.url", "http://localhost:7240/api/session")
	config.SetDefault("directory.retries", 2)
	config.SetDefault("directory.retry_delay", 100*time.Millisecond)

	client, err := directory.NewClient(
		httpClient,
		config.GetString("directory.url"),
		config.GetUint64("directory.retries"),
		config.GetDuration("directory.retry_delay"),
	)
	if err != nil {
		return nil, err
	}

	if err := container.Provide(func() *namedHealthChecker {
		return &namedHealthChecker{
			Name:    "directory",
			Checker: healthcheck.CheckerFunc(client.Ping),
		}
	}); err != nil {
		return nil, err
	}

	return client, nil
}
