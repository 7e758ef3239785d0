package di

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/defval/di"
	"github.com/getsentry/raven-go"
	"github.com/spf13/viper"
)

var serverDiOptions = di.Options(
	di.Provide(newServer),
)

type serverParams struct {
	di.Inject

	Config  *viper.Viper  `di:""`
	Handler http.Handler  `di:""`
	Sentry  *raven.Client `di:"" optional:"true"`
}

func newServer(params serverParams) *http.Server {
	params.Config.SetDefault("server.host", "")
	params.Config.SetDefault("server.port", 80)

	var handler http.Handler
	if params.Sentry != nil {
		// raven.Recoverer uses DefaultClient and nothing can be done about it.
		// newSentry replaces DefaultClient, so the recoverer reports to the configured instance
		handler = raven.Recoverer(params.Handler)
	} else {
		// Without a panic handler mux will just reset the connection
		handler = http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					slog.ErrorContext(req.Context(), "Recovered from panic",
						slog.Any("panic", recovered),
						slog.String("stack", string(debug.Stack())),
					)
					resp.WriteHeader(http.StatusInternalServerError)
				}
			}()

			params.Handler.ServeHTTP(resp, req)
		})
	}

	address := fmt.Sprintf("%s:%d", params.Config.GetString("server.host"), params.Config.GetInt("server.port"))
	server := &http.Server{
		Addr:           address,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
		Handler:        handler,
	}

	return server
}
