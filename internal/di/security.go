package di

import (
	"errors"

	"github.com/defval/di"
	"github.com/spf13/viper"

	. "ely.by/authlib/internal/http"
	"ely.by/authlib/internal/security"
)

var securityDiOptions = di.Options(
	di.Provide(newAuthenticator, di.As(new(Authenticator))),
)

func newAuthenticator(config *viper.Viper) (*security.Jwt, error) {
	key := config.GetString("security.secret")
	if key == "" {
		return nil, errors.New("security.secret must be set in order to use authenticator")
	}

	return security.NewJwt([]byte(key)), nil
}
