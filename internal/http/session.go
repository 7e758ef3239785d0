package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"ely.by/authlib/internal/otel"
	"ely.by/authlib/internal/profiles"
	"ely.by/authlib/internal/session"
)

type SessionVerifier interface {
	VerifyJoin(ctx context.Context, profile *profiles.Profile, accessToken string, serverId string) error
	CheckJoined(ctx context.Context, profile *profiles.Profile, serverId string) (*profiles.Profile, error)
	CheckJoinedFrom(ctx context.Context, profile *profiles.Profile, serverId string, address net.IP) (*profiles.Profile, error)
}

func NewSessionApi(verifier SessionVerifier) (*SessionApi, error) {
	metrics, err := newSessionApiMetrics(otel.GetMeter())
	if err != nil {
		return nil, err
	}

	return &SessionApi{
		SessionVerifier: verifier,
		validator:       newRequestValidator(),
		metrics:         metrics,
	}, nil
}

type SessionApi struct {
	SessionVerifier

	validator *validator.Validate
	metrics   *sessionApiMetrics
}

func (s *SessionApi) Handler() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/join", s.joinHandler).Methods(http.MethodPost)
	router.HandleFunc("/hasJoined", s.hasJoinedHandler).Methods(http.MethodGet)

	return router
}

type joinRequest struct {
	AccessToken     string              `json:"accessToken" validate:"required"`
	SelectedProfile selectedProfileData `json:"selectedProfile"`
	ServerId        string              `json:"serverId" validate:"required,max=64"`
}

type selectedProfileData struct {
	Id   string `json:"id" validate:"omitempty,uuid_any"`
	Name string `json:"name" validate:"required,max=21"`
}

func (s *SessionApi) joinHandler(resp http.ResponseWriter, req *http.Request) {
	s.metrics.JoinRequest.Add(req.Context(), 1)

	var request joinRequest
	if !decodeJsonBody(resp, req, s.validator, &request) {
		return
	}

	var id uuid.UUID
	if request.SelectedProfile.Id != "" {
		id = uuid.MustParse(request.SelectedProfile.Id)
	}

	err := s.SessionVerifier.VerifyJoin(
		req.Context(),
		profiles.NewProfile(id, request.SelectedProfile.Name),
		request.AccessToken,
		request.ServerId,
	)
	if err != nil {
		var rejected *session.AuthRejectedError
		if errors.As(err, &rejected) {
			apiForbidden(resp, rejected.Reason)
			return
		}

		var unavailable *session.DirectoryUnavailableError
		if errors.As(err, &unavailable) {
			apiServiceUnavailable(resp, req, err)
			return
		}

		apiServerError(resp, req, fmt.Errorf("unable to verify join: %w", err))
		return
	}

	resp.WriteHeader(http.StatusNoContent)
}

func (s *SessionApi) hasJoinedHandler(resp http.ResponseWriter, req *http.Request) {
	s.metrics.HasJoinedRequest.Add(req.Context(), 1)

	query := req.URL.Query()
	errs := map[string][]string{}
	username := query.Get("username")
	if username == "" {
		errs["username"] = []string{"username is a required field"}
	}

	serverId := query.Get("serverId")
	if serverId == "" {
		errs["serverId"] = []string{"serverId is a required field"}
	}

	var address net.IP
	if ip := query.Get("ip"); ip != "" {
		address = net.ParseIP(ip)
		if address == nil {
			errs["ip"] = []string{"ip must be a valid IP address"}
		}
	}

	if len(errs) > 0 {
		apiBadRequest(resp, errs)
		return
	}

	var profile *profiles.Profile
	var err error
	if address != nil {
		profile, err = s.SessionVerifier.CheckJoinedFrom(req.Context(), profiles.NewProfile(uuid.Nil, username), serverId, address)
	} else {
		profile, err = s.SessionVerifier.CheckJoined(req.Context(), profiles.NewProfile(uuid.Nil, username), serverId)
	}

	if err != nil {
		var unavailable *session.DirectoryUnavailableError
		if errors.As(err, &unavailable) {
			apiServiceUnavailable(resp, req, err)
			return
		}

		apiServerError(resp, req, fmt.Errorf("unable to check join: %w", err))
		return
	}

	if profile == nil {
		resp.WriteHeader(http.StatusNoContent)
		return
	}

	apiJson(resp, serializeProfile(profile))
}

func newSessionApiMetrics(meter metric.Meter) (*sessionApiMetrics, error) {
	m := &sessionApiMetrics{}
	var errors, err error

	m.JoinRequest, err = meter.Int64Counter("authlib.app.session.join.request", metric.WithUnit("{request}"))
	errors = multierr.Append(errors, err)

	m.HasJoinedRequest, err = meter.Int64Counter("authlib.app.session.has_joined.request", metric.WithUnit("{request}"))
	errors = multierr.Append(errors, err)

	return m, errors
}

type sessionApiMetrics struct {
	JoinRequest      metric.Int64Counter
	HasJoinedRequest metric.Int64Counter
}
