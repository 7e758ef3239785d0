package textures

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/valyala/fastjson"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"ely.by/authlib/internal/otel"
	"ely.by/authlib/internal/profiles"
)

func NewResolver(config profiles.Config) (*Resolver, error) {
	metrics, err := newResolverMetrics(otel.GetMeter())
	if err != nil {
		return nil, err
	}

	return &Resolver{
		Config:     config,
		parserPool: &fastjson.ParserPool{},
		metrics:    metrics,
	}, nil
}

type Resolver struct {
	profiles.Config

	parserPool *fastjson.ParserPool
	metrics    *resolverMetrics
}

// ResolveTextures collects textures of the profile. Textures passed by the launcher
// through the override properties always win over the ones from the textures payload
func (r *Resolver) ResolveTextures(ctx context.Context, profile *profiles.Profile) *Textures {
	textures := &Textures{}
	if profile == nil || r.TexturesDisabled {
		return textures
	}

	slog.DebugContext(ctx, "Resolving textures", slog.String("username", profile.Name))

	for _, kind := range Kinds {
		props := overrides[kind]
		url, hasUrl := profile.Property(props.url)
		digest, hasDigest := profile.Property(props.digest)
		if hasUrl && hasDigest {
			textures.set(kind, &Texture{Url: url.Value, Digest: digest.Value})
			r.metrics.Override.Add(ctx, 1)
		}
	}

	if textures.Len() != len(Kinds) {
		if payload, ok := profile.Property(profiles.TexturesProperty); ok {
			r.fillFromPayload(ctx, textures, payload.Value, profile.Name)
		}
	}

	return textures
}

// fillFromPayload sets only those kinds that are still missing
func (r *Resolver) fillFromPayload(ctx context.Context, textures *Textures, encoded string, username string) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		r.reportInvalidPayload(ctx, username, err.Error())
		return
	}

	parser := r.parserPool.Get()
	defer r.parserPool.Put(parser)

	root, err := parser.ParseBytes(decoded)
	if err != nil {
		r.reportInvalidPayload(ctx, username, err.Error())
		return
	}

	texturesObj := root.Get("textures")
	if texturesObj == nil || texturesObj.Type() != fastjson.TypeObject {
		r.reportInvalidPayload(ctx, username, "missing textures object")
		return
	}

	for _, kind := range Kinds {
		if textures.Get(kind) != nil {
			continue
		}

		entry := texturesObj.Get(kind.String())
		if entry == nil {
			continue
		}

		if entry.Type() != fastjson.TypeObject {
			r.reportInvalidPayload(ctx, username, kind.String()+" is not an object")
			continue
		}

		url := entry.Get("url")
		if url == nil || url.Type() != fastjson.TypeString {
			r.reportInvalidPayload(ctx, username, kind.String()+" has no valid url")
			continue
		}

		textures.set(kind, &Texture{Url: string(url.GetStringBytes())})
		r.metrics.Payload.Add(ctx, 1)
	}
}

func (r *Resolver) reportInvalidPayload(ctx context.Context, username string, reason string) {
	r.metrics.InvalidPayload.Add(ctx, 1)
	slog.WarnContext(ctx, "Could not decode textures payload",
		slog.String("username", username),
		slog.String("reason", reason),
	)
}

func newResolverMetrics(meter metric.Meter) (*resolverMetrics, error) {
	m := &resolverMetrics{}
	var errors, err error

	m.Override, err = meter.Int64Counter(
		"authlib.textures.override",
		metric.WithDescription("Number of textures taken from the launcher override properties"),
		metric.WithUnit("{texture}"),
	)
	errors = multierr.Append(errors, err)

	m.Payload, err = meter.Int64Counter(
		"authlib.textures.payload",
		metric.WithDescription("Number of textures taken from the textures payload"),
		metric.WithUnit("{texture}"),
	)
	errors = multierr.Append(errors, err)

	m.InvalidPayload, err = meter.Int64Counter(
		"authlib.textures.payload.invalid",
		metric.WithDescription("Number of textures payloads or their parts that could not be decoded"),
		metric.WithUnit("{payload}"),
	)
	errors = multierr.Append(errors, err)

	return m, errors
}

type resolverMetrics struct {
	Override       metric.Int64Counter
	Payload        metric.Int64Counter
	InvalidPayload metric.Int64Counter
}
