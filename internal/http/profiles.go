package http

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"ely.by/authlib/internal/otel"
	"ely.by/authlib/internal/profiles"
	"ely.by/authlib/internal/textures"
)

type ProfileResolver interface {
	Resolve(ctx context.Context, profile *profiles.Profile) *profiles.Profile
}

type TextureResolver interface {
	ResolveTextures(ctx context.Context, profile *profiles.Profile) *textures.Textures
}

func NewProfilesApi(profileResolver ProfileResolver, textureResolver TextureResolver) (*ProfilesApi, error) {
	metrics, err := newProfilesApiMetrics(otel.GetMeter())
	if err != nil {
		return nil, err
	}

	return &ProfilesApi{
		ProfileResolver: profileResolver,
		TextureResolver: textureResolver,
		validator:       newRequestValidator(),
		metrics:         metrics,
	}, nil
}

type ProfilesApi struct {
	ProfileResolver
	TextureResolver

	validator *validator.Validate
	metrics   *profilesApiMetrics
}

func (p *ProfilesApi) Handler() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/textures", p.profileTexturesHandler).Methods(http.MethodPost)
	router.HandleFunc("/{uuid}", p.profileHandler).Methods(http.MethodGet)
	router.HandleFunc("/{uuid}/textures", p.texturesHandler).Methods(http.MethodGet)

	return router
}

type profileRequest struct {
	Id         string            `json:"id" validate:"omitempty,uuid_any"`
	Name       string            `json:"name" validate:"max=21"`
	Properties []propertyRequest `json:"properties" validate:"max=16,dive"`
}

type propertyRequest struct {
	Name      string `json:"name" validate:"required"`
	Value     string `json:"value"`
	Signature string `json:"signature"`
}

func (r *profileRequest) toProfile() *profiles.Profile {
	var id uuid.UUID
	if r.Id != "" {
		id = uuid.MustParse(r.Id)
	}

	profile := profiles.NewProfile(id, r.Name)
	for _, prop := range r.Properties {
		profile.SetProperty(profiles.Property{
			Name:      prop.Name,
			Value:     prop.Value,
			Signature: prop.Signature,
		})
	}

	return profile
}

// profileTexturesHandler resolves textures of the profile the game already holds,
// including the launcher overrides and the textures payload it carries
func (p *ProfilesApi) profileTexturesHandler(resp http.ResponseWriter, req *http.Request) {
	p.metrics.ProfileTexturesRequest.Add(req.Context(), 1)

	var request profileRequest
	if !decodeJsonBody(resp, req, p.validator, &request) {
		return
	}

	p.writeTextures(resp, p.TextureResolver.ResolveTextures(req.Context(), request.toProfile()))
}

func (p *ProfilesApi) profileHandler(resp http.ResponseWriter, req *http.Request) {
	p.metrics.ProfileRequest.Add(req.Context(), 1)

	profile, ok := p.resolveFromRequest(resp, req)
	if !ok {
		return
	}

	apiJson(resp, serializeProfile(profile))
}

func (p *ProfilesApi) texturesHandler(resp http.ResponseWriter, req *http.Request) {
	p.metrics.TexturesRequest.Add(req.Context(), 1)

	profile, ok := p.resolveFromRequest(resp, req)
	if !ok {
		return
	}

	p.writeTextures(resp, p.TextureResolver.ResolveTextures(req.Context(), profile))
}

func (p *ProfilesApi) writeTextures(resp http.ResponseWriter, result *textures.Textures) {
	if result.IsEmpty() {
		resp.WriteHeader(http.StatusNoContent)
		return
	}

	apiJson(resp, result)
}

func (p *ProfilesApi) resolveFromRequest(resp http.ResponseWriter, req *http.Request) (*profiles.Profile, bool) {
	id, err := uuid.Parse(mux.Vars(req)["uuid"])
	if err != nil {
		apiBadRequest(resp, map[string][]string{
			"uuid": {"uuid must be a valid UUID"},
		})
		return nil, false
	}

	profile := profiles.NewProfile(id, req.URL.Query().Get("name"))

	return p.ProfileResolver.Resolve(req.Context(), profile), true
}

type profileResponse struct {
	Id         string             `json:"id"`
	Name       string             `json:"name"`
	Properties []propertyResponse `json:"properties"`
}

type propertyResponse struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature,omitempty"`
}

func serializeProfile(profile *profiles.Profile) *profileResponse {
	result := &profileResponse{
		Id:         formatUuid(profile.Id),
		Name:       profile.Name,
		Properties: make([]propertyResponse, 0, len(profile.Properties)),
	}

	for _, prop := range profile.Properties {
		result.Properties = append(result.Properties, propertyResponse{
			Name:      prop.Name,
			Value:     prop.Value,
			Signature: prop.Signature,
		})
	}

	sort.Slice(result.Properties, func(i, j int) bool {
		return result.Properties[i].Name < result.Properties[j].Name
	})

	return result
}

func formatUuid(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}

	return strings.ReplaceAll(id.String(), "-", "")
}

func newProfilesApiMetrics(meter metric.Meter) (*profilesApiMetrics, error) {
	m := &profilesApiMetrics{}
	var errors, err error

	m.ProfileRequest, err = meter.Int64Counter("authlib.app.profiles.profile.request", metric.WithUnit("{request}"))
	errors = multierr.Append(errors, err)

	m.TexturesRequest, err = meter.Int64Counter("authlib.app.profiles.textures.request", metric.WithUnit("{request}"))
	errors = multierr.Append(errors, err)

	m.ProfileTexturesRequest, err = meter.Int64Counter("authlib.app.profiles.profile_textures.request", metric.WithUnit("{request}"))
	errors = multierr.Append(errors, err)

	return m, errors
}

type profilesApiMetrics struct {
	ProfileRequest         metric.Int64Counter
	TexturesRequest        metric.Int64Counter
	ProfileTexturesRequest metric.Int64Counter
}
