package profiles

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"ely.by/authlib/internal/otel"
)

type PlayerRecordsFinder interface {
	FindPlayerByUuid(ctx context.Context, id uuid.UUID) (*PlayerRecord, error)
}

func NewResolver(finder PlayerRecordsFinder, decorator *Decorator) (*Resolver, error) {
	metrics, err := newResolverMetrics(otel.GetMeter())
	if err != nil {
		return nil, err
	}

	return &Resolver{
		PlayerRecordsFinder: finder,
		Decorator:           decorator,
		metrics:             metrics,
	}, nil
}

type Resolver struct {
	PlayerRecordsFinder
	Decorator *Decorator

	metrics *resolverMetrics
}

// Resolve decorates the passed profile with textures of the identity directory record
// and returns a fresh profile built from that record. Decoration is optional, so on
// any failure the original profile is returned untouched
func (r *Resolver) Resolve(ctx context.Context, profile *Profile) *Profile {
	if profile == nil || profile.Id == uuid.Nil {
		return profile
	}

	slog.DebugContext(ctx, "Resolving the profile", slog.String("uuid", profile.Id.String()))

	record, err := r.PlayerRecordsFinder.FindPlayerByUuid(ctx, profile.Id)
	if err != nil {
		r.metrics.Failed.Add(ctx, 1)
		slog.DebugContext(ctx, "Couldn't fetch profile properties",
			slog.String("uuid", profile.Id.String()),
			slog.String("username", profile.Name),
			slog.Any("error", err),
		)

		return profile
	}

	if record == nil {
		r.metrics.Missed.Add(ctx, 1)
		slog.DebugContext(ctx, "Couldn't fetch profile properties as the profile does not exist",
			slog.String("uuid", profile.Id.String()),
			slog.String("username", profile.Name),
		)

		return profile
	}

	r.metrics.Found.Add(ctx, 1)
	slog.DebugContext(ctx, "Successfully fetched profile properties", slog.String("uuid", profile.Id.String()))

	r.Decorator.AttachTextures(profile, record)

	return r.Decorator.ToPublicProfile(record)
}

func newResolverMetrics(meter metric.Meter) (*resolverMetrics, error) {
	m := &resolverMetrics{}
	var errors, err error

	m.Found, err = meter.Int64Counter(
		"authlib.profiles.resolve.found",
		metric.WithDescription("Number of profiles replaced with the identity directory record"),
		metric.WithUnit("{profile}"),
	)
	errors = multierr.Append(errors, err)

	m.Missed, err = meter.Int64Counter(
		"authlib.profiles.resolve.missed",
		metric.WithDescription("Number of profiles unknown to the identity directory"),
		metric.WithUnit("{profile}"),
	)
	errors = multierr.Append(errors, err)

	m.Failed, err = meter.Int64Counter(
		"authlib.profiles.resolve.failed",
		metric.WithDescription("Number of profiles left undecorated due to a directory failure"),
		metric.WithUnit("{profile}"),
	)
	errors = multierr.Append(errors, err)

	return m, errors
}

type resolverMetrics struct {
	Found  metric.Int64Counter
	Missed metric.Int64Counter
	Failed metric.Int64Counter
}
