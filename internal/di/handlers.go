package di

import (
	"net/http"
	"strings"

	"github.com/defval/di"
	"github.com/etherlabsio/healthcheck/v2"
	"github.com/gorilla/mux"

	. "ely.by/authlib/internal/http"
	"ely.by/authlib/internal/security"
)

var handlersDiOptions = di.Options(
	di.Provide(newHandlerFactory, di.As(new(http.Handler))),
	di.Provide(NewSessionApi),
	di.Provide(NewProfilesApi),
)

func newHandlerFactory(
	container *di.Container,
	authenticator Authenticator,
	sessionApi *SessionApi,
	profilesApi *ProfilesApi,
) (*mux.Router, error) {
	router := mux.NewRouter()
	router.StrictSlash(true)
	router.NotFoundHandler = http.HandlerFunc(NotFoundHandler)

	sessionRouter := sessionApi.Handler()
	sessionRouter.NotFoundHandler = http.HandlerFunc(NotFoundHandler)
	sessionRouter.Use(NewAuthenticationMiddleware(authenticator, security.SessionScope))
	mount(router, "/session", sessionRouter)

	profilesRouter := profilesApi.Handler()
	profilesRouter.NotFoundHandler = http.HandlerFunc(NotFoundHandler)
	profilesRouter.Use(NewAuthenticationMiddleware(authenticator, security.ProfilesScope))
	mount(router, "/profiles", profilesRouter)

	// Resolve health checkers last, because all the services required by the application
	// must first be initialized and each of them can publish its own checkers
	var healthCheckers []*namedHealthChecker
	if has, _ := container.Has(&healthCheckers); has {
		if err := container.Resolve(&healthCheckers); err != nil {
			return nil, err
		}

		checkersOptions := make([]healthcheck.Option, len(healthCheckers))
		for i, checker := range healthCheckers {
			checkersOptions[i] = healthcheck.WithChecker(checker.Name, checker.Checker)
		}

		router.Handle("/healthcheck", healthcheck.Handler(checkersOptions...)).Methods(http.MethodGet)
	}

	return router, nil
}

func mount(router *mux.Router, path string, handler http.Handler) {
	router.PathPrefix(path).Handler(
		http.StripPrefix(
			strings.TrimSuffix(path, "/"),
			handler,
		),
	)
}

type namedHealthChecker struct {
	Name    string
	Checker healthcheck.Checker
}
