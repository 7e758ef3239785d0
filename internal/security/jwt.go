package security

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ely.by/authlib/internal/version"
)

const (
	issuer   = "authlib"
	audience = "authlib-api"
)

var now = time.Now
var signingMethod = jwt.SigningMethodHS256

type Scope string

const (
	// SessionScope allows to join servers and to check the joins
	SessionScope Scope = "session"
	// ProfilesScope allows to read players profiles and textures
	ProfilesScope Scope = "profiles"
)

var validScopes = []Scope{
	SessionScope,
	ProfilesScope,
}

// Tokens are issued to game servers. The subject names the server the token belongs to
type claims struct {
	jwt.RegisteredClaims
	Scopes []Scope `json:"scopes"`
}

func NewJwt(key []byte) *Jwt {
	return &Jwt{
		Key: key,
	}
}

type Jwt struct {
	Key []byte
}

func (t *Jwt) NewToken(server string, scopes ...Scope) (string, error) {
	if server == "" {
		return "", errors.New("the token must be issued to a named server")
	}

	if len(scopes) == 0 {
		return "", errors.New("you must specify at least one scope")
	}

	for _, scope := range scopes {
		if !slices.Contains(validScopes, scope) {
			return "", fmt.Errorf("unknown scope %s", scope)
		}
	}

	token := jwt.NewWithClaims(signingMethod, &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  server,
			Audience: jwt.ClaimStrings{audience},
			IssuedAt: jwt.NewNumericDate(now()),
		},
		Scopes: scopes,
	})
	token.Header["v"] = version.MajorVersion

	return token.SignedString(t.Key)
}

var MissingAuthenticationError = errors.New("authentication value not provided")
var InvalidTokenError = errors.New("passed authentication value is invalid")

func (t *Jwt) Authenticate(req *http.Request, scope Scope) error {
	header := req.Header.Get("Authorization")
	if header == "" {
		return MissingAuthenticationError
	}

	tokenStr, found := cutPrefixFold(header, "bearer ")
	if !found {
		return InvalidTokenError
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(*jwt.Token) (any, error) {
			return t.Key, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return errors.Join(InvalidTokenError, err)
	}

	// Tokens of another major version may carry a different set of claims
	if v, ok := token.Header["v"].(float64); !ok || int(v) != version.MajorVersion {
		return errors.Join(InvalidTokenError, errors.New("unsupported token version"))
	}

	c := token.Claims.(*claims)
	if c.Subject == "" {
		return errors.Join(InvalidTokenError, errors.New("the token isn't issued to any server"))
	}

	if !slices.Contains(c.Scopes, scope) {
		return fmt.Errorf("the token of %s doesn't have the %s scope", c.Subject, scope)
	}

	return nil
}

func cutPrefixFold(s string, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}

	return s[len(prefix):], true
}
