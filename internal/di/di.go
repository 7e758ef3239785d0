package di

import "github.com/defval/di"

func New() (*di.Container, error) {
	return di.New(
		configDiOptions,
		contextDiOptions,
		directoryDiOptions,
		handlersDiOptions,
		httpClientDiOptions,
		loggerDiOptions,
		profilesDiOptions,
		securityDiOptions,
		serverDiOptions,
		sessionDiOptions,
	)
}
